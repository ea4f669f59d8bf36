package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineRunsImmediately(t *testing.T) {
	ran := false
	Inline{}.Dispatch(func() { ran = true })
	assert.True(t, ran)
}

func TestQueuePreservesOrder(t *testing.T) {
	q := NewQueue(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	var (
		mu  sync.Mutex
		got []int
	)
	for i := 0; i < 50; i++ {
		i := i
		q.Dispatch(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	require.NoError(t, Do(ctx, q, func() {}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestQueueRunStopsOnClose(t *testing.T) {
	q := NewQueue(0)
	errCh := make(chan error, 1)
	go func() { errCh <- q.Run(context.Background()) }()

	q.Close()
	q.Close()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}

	// Dispatch after close is dropped and does not block.
	q.Dispatch(func() { t.Error("func ran after close") })
	assert.ErrorIs(t, Do(context.Background(), q, func() {}), ErrClosed)
}

func TestQueueRunStopsOnContext(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, q.Run(ctx), context.Canceled)
}

func TestDoInline(t *testing.T) {
	n := 0
	require.NoError(t, Do(context.Background(), Inline{}, func() { n++ }))
	assert.Equal(t, 1, n)
}
