// Package exchange implements the rendezvous topic fabric that carries
// batches between distributed stages (spec.md §5.3, §5.4), grounded on
// zeedb:pubsub/topic.rs's first-arrival-creates / second-arrival-consumes
// rendezvous pattern, using github.com/google/uuid for topic identity
// instead of the original's in-process counter (a distributed coordinator
// needs globally-unique topic ids across worker processes).
package exchange

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dolthub/zeeql/kernel"
)

// Topic is an unbuffered rendezvous point: a publisher's Publish call
// blocks until a subscriber's Subscribe call is ready to receive the
// same batch, and vice versa (spec.md §5.4: "exchange is a rendezvous,
// not a queue").
type Topic struct {
	ch         chan *kernel.RecordBatch
	closed     chan struct{}
	once       sync.Once
	subscribed int32 // atomic; CAS-guarded so only the first Subscribe succeeds
}

func newTopic() *Topic {
	return &Topic{ch: make(chan *kernel.RecordBatch), closed: make(chan struct{})}
}

// Publish blocks until a subscriber receives batch, the topic is closed,
// or ctx is done.
func (t *Topic) Publish(ctx context.Context, batch *kernel.RecordBatch) error {
	select {
	case t.ch <- batch:
		return nil
	case <-t.closed:
		return ErrTopicClosed.New()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe blocks until a publisher sends a batch, the topic is closed
// (in which case ok is false), or ctx is done. A topic may only be
// subscribed once: a second call is a programmer error (two consumers
// racing for the same exchange partition) and fails loudly rather than
// silently sharing the channel (spec.md §4.5).
func (t *Topic) Subscribe(ctx context.Context) (batch *kernel.RecordBatch, ok bool, err error) {
	if !atomic.CompareAndSwapInt32(&t.subscribed, 0, 1) {
		panic(ErrAlreadySubscribed.New())
	}
	select {
	case b := <-t.ch:
		return b, true, nil
	case <-t.closed:
		return nil, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Close signals every blocked Publish/Subscribe to unblock; idempotent.
func (t *Topic) Close() {
	t.once.Do(func() { close(t.closed) })
}

// Registry is the per-worker-process map from topic id to Topic,
// created lazily on first touch by either a publisher or a subscriber
// (spec.md §5.4, zeedb:pubsub/topic.rs's registry semantics).
type Registry struct {
	mu     sync.Mutex
	topics map[uuid.UUID]*Topic
}

func NewRegistry() *Registry {
	return &Registry{topics: make(map[uuid.UUID]*Topic)}
}

// NewTopicID allocates a fresh 128-bit topic identifier.
func NewTopicID() uuid.UUID {
	return uuid.New()
}

// Get returns the Topic for id, creating it if this is the first touch.
func (r *Registry) Get(id uuid.UUID) *Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topics[id]
	if !ok {
		t = newTopic()
		r.topics[id] = t
	}
	return t
}

// Drop closes and forgets id's topic, once the stage that owned it has
// finished (spec.md §5.4's stage teardown).
func (r *Registry) Drop(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.topics[id]; ok {
		t.Close()
		delete(r.topics, id)
	}
}
