package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDrained(t *testing.T, q *Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, q.Wait(ctx), "queue did not drain")
}

func TestQueue_ProcessesInFIFOOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string

	q := New(func(ctx context.Context, task Task) error {
		mu.Lock()
		order = append(order, task.TicketID)
		mu.Unlock()
		return nil
	}, nil)

	ids := []string{"101", "102", "103", "104", "105"}
	for _, id := range ids {
		require.NoError(t, q.Push(Task{TicketID: id}, nil))
	}
	q.Close()
	q.Start(context.Background())
	waitDrained(t, q)

	assert.Equal(t, ids, order)
}

func TestQueue_ConcurrencyIsOne(t *testing.T) {
	const delay = 15 * time.Millisecond
	var inFlight, maxInFlight int32
	var mu sync.Mutex
	var starts []time.Time

	q := New(func(ctx context.Context, task Task) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			cur := atomic.LoadInt32(&maxInFlight)
			if n <= cur || atomic.CompareAndSwapInt32(&maxInFlight, cur, n) {
				break
			}
		}
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	}, nil)

	q.Start(context.Background())
	for i := 0; i < 6; i++ {
		require.NoError(t, q.Push(Task{TicketID: "t", Delay: delay}, nil))
	}
	q.Close()
	waitDrained(t, q)

	assert.Equal(t, int32(1), maxInFlight)
	require.Len(t, starts, 6)
	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), delay)
	}
}

func TestQueue_FailureDoesNotStopQueue(t *testing.T) {
	boom := errors.New("boom")
	var results []error
	var mu sync.Mutex

	q := New(func(ctx context.Context, task Task) error {
		switch task.TicketID {
		case "bad":
			return boom
		case "panic":
			panic("unexpected")
		}
		return nil
	}, nil)

	for _, id := range []string{"ok1", "bad", "panic", "ok2"} {
		require.NoError(t, q.Push(Task{TicketID: id}, func(err error) {
			mu.Lock()
			results = append(results, err)
			mu.Unlock()
		}))
	}
	q.Close()
	q.Start(context.Background())
	waitDrained(t, q)

	require.Len(t, results, 4)
	assert.NoError(t, results[0])
	assert.ErrorIs(t, results[1], boom)
	assert.Error(t, results[2])
	assert.NoError(t, results[3])
}

func TestQueue_DrainAfterLastCallback(t *testing.T) {
	var callbacks int32
	q := New(func(ctx context.Context, task Task) error { return nil }, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Push(Task{TicketID: "x", Delay: time.Millisecond}, func(error) {
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&callbacks, 1)
		}))
	}
	q.Start(context.Background())

	select {
	case <-q.Drained():
		t.Fatal("drained before Close")
	case <-time.After(50 * time.Millisecond):
	}

	q.Close()
	waitDrained(t, q)
	assert.Equal(t, int32(3), atomic.LoadInt32(&callbacks))
}

func TestQueue_EmptyDrainsImmediately(t *testing.T) {
	q := New(func(ctx context.Context, task Task) error {
		t.Fatal("worker must not run")
		return nil
	}, nil)
	q.Start(context.Background())
	q.Close()
	waitDrained(t, q)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_PushAfterClose(t *testing.T) {
	q := New(func(ctx context.Context, task Task) error { return nil }, nil)
	q.Close()
	assert.ErrorIs(t, q.Push(Task{TicketID: "late"}, nil), ErrClosed)
}

func TestQueue_StartTwice(t *testing.T) {
	var runs int32
	q := New(func(ctx context.Context, task Task) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}, nil)
	q.Start(context.Background())
	q.Start(context.Background())
	require.NoError(t, q.Push(Task{TicketID: "1"}, nil))
	q.Close()
	waitDrained(t, q)
	assert.Equal(t, int32(1), runs)
}

func TestQueue_CancelSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var worked int32
	var mu sync.Mutex
	var results []error

	q := New(func(ctx context.Context, task Task) error {
		if atomic.AddInt32(&worked, 1) == 1 {
			cancel()
		}
		return nil
	}, nil)

	for i := 0; i < 4; i++ {
		require.NoError(t, q.Push(Task{TicketID: "x", Delay: time.Second}, func(err error) {
			mu.Lock()
			results = append(results, err)
			mu.Unlock()
		}))
	}
	q.Close()
	q.Start(ctx)
	waitDrained(t, q)

	assert.Equal(t, int32(1), worked)
	require.Len(t, results, 4)
	for _, err := range results {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestSleep(t *testing.T) {
	start := time.Now()
	require.NoError(t, Sleep(context.Background(), 10*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)

	assert.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}
