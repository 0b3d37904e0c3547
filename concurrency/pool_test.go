package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueueRunsTasks(t *testing.T) {
	q := NewTaskQueue(16)
	q.Start(4)

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, q.Submit(func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()
	q.Stop()

	assert.EqualValues(t, 100, count.Load())
}

func TestTaskQueueSingleWorkerKeepsOrder(t *testing.T) {
	q := NewTaskQueue(10)
	q.Start(1)

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, q.Submit(func() { got = append(got, i) }))
	}
	q.Stop()

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestTaskQueueStopDrainsPending(t *testing.T) {
	q := NewTaskQueue(5)

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Submit(func() { count.Add(1) }))
	}
	q.Start(2)
	q.Stop()

	assert.EqualValues(t, 5, count.Load())
}

func TestTaskQueueSubmitAfterStop(t *testing.T) {
	q := NewTaskQueue(1)
	q.Start(1)
	q.Stop()
	q.Stop()

	assert.ErrorIs(t, q.Submit(func() {}), ErrQueueStopped)
	assert.Error(t, NewTaskQueue(1).Submit(nil))
}

func TestTaskQueueRecoversPanics(t *testing.T) {
	recovered := make(chan any, 1)
	q := NewTaskQueue(2).OnPanic(func(r any, stack []byte) {
		assert.NotEmpty(t, stack)
		recovered <- r
	})
	q.Start(1)

	require.NoError(t, q.Submit(func() { panic("boom") }))

	done := make(chan struct{})
	require.NoError(t, q.Submit(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker died after panic")
	}
	q.Stop()
	assert.Equal(t, "boom", <-recovered)
}
