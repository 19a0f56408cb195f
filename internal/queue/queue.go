// Package queue provides a single-lane FIFO task scheduler with a minimum
// spacing between task starts, used to serialize all pipeline runs against the
// rate-sensitive Chatwoot API.
package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Task is one unit of pipeline work. Errors are logged at the task boundary
// and never propagate to later tasks.
type Task func(ctx context.Context) error

type item struct {
	name string
	run  Task
}

// Queue executes enqueued tasks one at a time in FIFO order.
type Queue struct {
	logger  *slog.Logger
	limiter *rate.Limiter

	mu    sync.Mutex
	tasks []item

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Queue whose driver leaves at least interval between
// consecutive task starts.
func New(log *slog.Logger, interval time.Duration) *Queue {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		logger:  log.With(slog.String("service", "queue")),
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Enqueue appends a task; it never blocks and returns no result to the caller.
func (q *Queue) Enqueue(name string, task Task) {
	if task == nil {
		return
	}
	q.mu.Lock()
	q.tasks = append(q.tasks, item{name: name, run: task})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len reports how many tasks are pending.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Start launches the driver goroutine.
func (q *Queue) Start() {
	q.wg.Add(1)
	go q.drive()
}

// Stop terminates the driver and waits for the in-flight task to finish.
// Pending tasks are dropped.
func (q *Queue) Stop() {
	q.cancel()
	q.wg.Wait()
}

func (q *Queue) drive() {
	defer q.wg.Done()
	for {
		task, ok := q.next()
		if !ok {
			select {
			case <-q.ctx.Done():
				return
			case <-q.wake:
				continue
			}
		}
		if err := q.limiter.Wait(q.ctx); err != nil {
			return
		}
		q.execute(task)
	}
}

func (q *Queue) next() (item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return item{}, false
	}
	task := q.tasks[0]
	q.tasks = q.tasks[1:]
	return task, true
}

// execute runs one task, recovering panics so a faulty task cannot stop the driver.
func (q *Queue) execute(task item) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("task panic", slog.String("task", task.name), slog.Any("panic", r))
		}
	}()
	if err := task.run(q.ctx); err != nil {
		q.logger.Error("task failed", slog.String("task", task.name), slog.Any("error", err))
	}
}
