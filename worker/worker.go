// Package worker implements a worker process's half of spec.md §5:
// handling the submit/broadcast/exchange RPC verbs against its local
// storage.Root, compiling a stage's plan.Node tree into an exec.Operator
// pipeline, and substituting bound parameters into scalar literals
// before execution. Grounded on the teacher's Engine-holds-dependencies
// shape, generalized from "one process, one database" to "one process,
// one partition of every table".
package worker

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/dolthub/zeeql/exchange"
	"github.com/dolthub/zeeql/exec"
	"github.com/dolthub/zeeql/plan"
	"github.com/dolthub/zeeql/querystate"
	"github.com/dolthub/zeeql/rpcapi"
	"github.com/dolthub/zeeql/storage"
)

// Worker holds one process's local partition of every table plus its
// exchange topic registry (spec.md §5.3, §5.4).
type Worker struct {
	Root     *storage.Root
	Exchange *exchange.Registry
	Log      *logrus.Entry
}

func New(root *storage.Root, reg *exchange.Registry, log *logrus.Entry) *Worker {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Worker{Root: root, Exchange: reg, Log: log}
}

// Submit binds params into stage, compiles it and runs it to completion
// as of req.Txn, returning every batch it produced (spec.md §5.3
// "submit"). req.PlanPayload is not read.
func (w *Worker) Submit(ctx context.Context, req rpcapi.SubmitRequest, stage plan.Node, params []rpcapi.Param) (rpcapi.SubmitResponse, error) {
	qs := querystate.New(ctx, req.Txn, nil, w.Log)
	bound, err := SubstituteParams(stage, params)
	if err != nil {
		return rpcapi.SubmitResponse{}, err
	}
	op, err := Compile(bound, w, qs)
	if err != nil {
		return rpcapi.SubmitResponse{}, err
	}
	defer op.Close()

	var batches []rpcapi.BatchPayload
	for {
		batch, err := op.Next()
		if err != nil {
			if errors.Is(err, exec.End) {
				break
			}
			return rpcapi.SubmitResponse{}, err
		}
		batches = append(batches, rpcapi.EncodeBatch(batch))
	}
	return rpcapi.SubmitResponse{Batches: batches}, nil
}

// Broadcast publishes req.Batch to every subscriber of req.Topic
// (spec.md §5.4 "broadcast").
func (w *Worker) Broadcast(ctx context.Context, req rpcapi.BroadcastRequest) (rpcapi.BroadcastResponse, error) {
	id := topicIDFromName(req.Topic)
	batch, err := rpcapi.DecodeBatch(req.Batch)
	if err != nil {
		return rpcapi.BroadcastResponse{}, err
	}
	if err := w.Exchange.Get(id).Publish(ctx, batch); err != nil {
		return rpcapi.BroadcastResponse{}, err
	}
	return rpcapi.BroadcastResponse{}, nil
}

// Exchange_ republishes req.Batch to req.Topic; HashColumns determines
// partitioning upstream of this call (the caller has already routed
// rows to the right worker by hash before invoking Exchange_), matching
// spec.md §5.4's description of exchange as shuffle-then-publish.
func (w *Worker) Exchange_(ctx context.Context, req rpcapi.ExchangeRequest) (rpcapi.ExchangeResponse, error) {
	id := topicIDFromName(req.Topic)
	batch, err := rpcapi.DecodeBatch(req.Batch)
	if err != nil {
		return rpcapi.ExchangeResponse{}, err
	}
	if err := w.Exchange.Get(id).Publish(ctx, batch); err != nil {
		return rpcapi.ExchangeResponse{}, err
	}
	return rpcapi.ExchangeResponse{}, nil
}
