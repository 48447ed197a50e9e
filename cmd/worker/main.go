// Command worker runs one worker process: a local partition of every
// table plus its exchange topic registry, serving the submit/broadcast
// /exchange verbs described in spec.md §5. Wiring the RPC transport
// itself is out of scope (spec.md Non-goals) — this binary constructs
// and logs the process, ready for a transport layer to drive it.
package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/dolthub/zeeql/exchange"
	"github.com/dolthub/zeeql/storage"
	"github.com/dolthub/zeeql/worker"
)

func main() {
	addr := flag.String("addr", "localhost:7100", "address this worker advertises to the coordinator")
	flag.Parse()

	log := logrus.NewEntry(logrus.StandardLogger())

	root := storage.NewRoot()
	reg := exchange.NewRegistry()
	worker.New(root, reg, log)

	log.WithField("addr", *addr).Info("worker ready")
	select {}
}
