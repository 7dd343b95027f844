package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDeliversItems(t *testing.T) {
	got := make(chan string, 1)
	q := New("test", func(ctx context.Context, item string) error {
		got <- item
		return nil
	}, Config[string]{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Stop()

	require.NoError(t, q.Enqueue("hello"))
	select {
	case item := <-got:
		assert.Equal(t, "hello", item)
	case <-time.After(2 * time.Second):
		t.Fatal("item was not delivered")
	}
}

func TestQueueRetriesFailedDeliveries(t *testing.T) {
	var calls int32
	done := make(chan struct{})
	q := New("test", func(ctx context.Context, item int) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, Config[int]{RetryDelay: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Stop()

	require.NoError(t, q.Enqueue(7))
	select {
	case <-done:
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	case <-time.After(2 * time.Second):
		t.Fatal("item was not retried")
	}
}

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := New("idle", func(ctx context.Context, item int) error { return nil }, Config[int]{})
	err := q.Enqueue(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not started")
}
