// Command coordinator runs the coordinator process: allocates txn ids,
// rewrites/optimizes/distributes incoming query plans, and fans RPCs out
// to workers (spec.md §5). Wiring the RPC transport and worker discovery
// is out of scope (spec.md Non-goals) — this binary constructs and logs
// the process, ready for a transport layer and a real WorkerClient set.
package main

import (
	"flag"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dolthub/zeeql/catalog"
	"github.com/dolthub/zeeql/coordinator"
)

func main() {
	workerAddrs := flag.String("workers", "", "comma-separated worker addresses")
	flag.Parse()

	log := logrus.NewEntry(logrus.StandardLogger())

	var addrs []string
	if *workerAddrs != "" {
		addrs = strings.Split(*workerAddrs, ",")
	}

	coordinator.New(catalog.New(), nil, log)
	log.WithField("workers", addrs).Info("coordinator ready")

	select {}
}
