package concurrency

import (
	"errors"
	"runtime/debug"
	"sync"

	"github.com/leeforge/resizer/logging"
	"go.uber.org/zap"
)

// ErrQueueStopped is returned by Submit after Stop.
var ErrQueueStopped = errors.New("task queue stopped")

// PanicHandler receives a recovered task panic and its stack.
type PanicHandler func(recovered any, stack []byte)

// TaskQueue runs submitted funcs on a fixed set of worker goroutines, in
// submission order per worker.
type TaskQueue struct {
	queue   chan func()
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
	started bool
	onPanic PanicHandler
}

// NewTaskQueue creates a queue holding up to bufferSize pending tasks.
func NewTaskQueue(bufferSize int) *TaskQueue {
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &TaskQueue{
		queue: make(chan func(), bufferSize),
	}
}

// OnPanic sets the handler for panicking tasks. Must be called before Start.
func (t *TaskQueue) OnPanic(handler PanicHandler) *TaskQueue {
	t.onPanic = handler
	return t
}

// Start launches the workers. Calling it again is a no-op.
func (t *TaskQueue) Start(workers int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started || t.stopped {
		return
	}
	t.started = true

	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		t.wg.Add(1)
		go t.worker()
	}
}

func (t *TaskQueue) worker() {
	defer t.wg.Done()
	for task := range t.queue {
		t.run(task)
	}
}

func (t *TaskQueue) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			if t.onPanic != nil {
				t.onPanic(r, debug.Stack())
				return
			}
			logging.Error("task panic", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		}
	}()
	task()
}

// Submit enqueues a task. It blocks while the buffer is full.
func (t *TaskQueue) Submit(task func()) error {
	if task == nil {
		return errors.New("nil task")
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.stopped {
		return ErrQueueStopped
	}
	t.queue <- task
	return nil
}

// Stop rejects new tasks, lets the workers drain what is queued and waits
// for them. It is safe to call more than once.
func (t *TaskQueue) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	close(t.queue)
	t.mu.Unlock()

	t.wg.Wait()
}
