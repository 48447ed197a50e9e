package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/dolthub/zeeql/kernel"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribeRendezvous(t *testing.T) {
	r := NewRegistry()
	id := NewTopicID()
	batch := kernel.NewRecordBatch([]string{"a"}, []kernel.Array{kernel.NewI64Array([]int64{1}, kernel.Trues(1))})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- r.Get(id).Publish(ctx, batch)
	}()

	got, ok, err := r.Get(id).Subscribe(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, batch, got)
	require.NoError(t, <-done)
}

func TestSubscribeAfterCloseReturnsNotOK(t *testing.T) {
	r := NewRegistry()
	id := NewTopicID()
	r.Drop(id) // closes (and is a no-op the first time since nothing was registered yet)
	topic := r.Get(id)
	topic.Close()

	ctx := context.Background()
	_, ok, err := topic.Subscribe(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetReturnsSameTopicForSameID(t *testing.T) {
	r := NewRegistry()
	id := NewTopicID()
	require.Same(t, r.Get(id), r.Get(id))
}

func TestSecondSubscribeFailsLoudly(t *testing.T) {
	r := NewRegistry()
	topic := r.Get(NewTopicID())
	topic.Close() // so the first Subscribe returns immediately instead of blocking

	ctx := context.Background()
	_, _, err := topic.Subscribe(ctx)
	require.NoError(t, err)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		require.True(t, ErrAlreadySubscribed.Is(r.(error)))
	}()
	topic.Subscribe(ctx)
}
