// Package schedule runs deferred tasks on a single goroutine.
//
// Tasks fire in deadline order; tasks sharing a deadline fire in the order they
// were scheduled. A scheduled task cannot be withdrawn.
package schedule

import (
	"container/heap"
	"sync"
	"time"
)

// Scheduler defers a task by delay.
type Scheduler interface {
	After(delay time.Duration, task func())
}

type item struct {
	at  time.Time
	seq uint64
	fn  func()
}

type taskHeap []*item

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(*item)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

type Queue struct {
	mu      sync.Mutex
	tasks   taskHeap
	seq     uint64
	stopped bool

	now      func() time.Time
	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

var _ Scheduler = (*Queue)(nil)

func NewQueue() *Queue {
	return newQueue(time.Now)
}

func newQueue(now func() time.Time) *Queue {
	q := &Queue{
		now:  now,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) After(delay time.Duration, task func()) {
	if delay < 0 {
		delay = 0
	}

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.seq++
	heap.Push(&q.tasks, &item{at: q.now().Add(delay), seq: q.seq, fn: task})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of tasks not yet fired.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Stop drops pending tasks and ends the firing goroutine.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.stopped = true
		q.tasks = nil
		q.mu.Unlock()
		close(q.done)
	})
}

func (q *Queue) run() {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		due, wait := q.popDue()
		for _, it := range due {
			select {
			case <-q.done:
				return
			default:
			}
			it.fn()
		}
		if len(due) > 0 {
			continue
		}

		var fire <-chan time.Time
		if wait >= 0 {
			timer.Reset(wait)
			fire = timer.C
		}

		select {
		case <-q.done:
			return
		case <-q.wake:
			timer.Stop()
		case <-fire:
		}
	}
}

// popDue removes every task whose deadline has passed. wait is the time until
// the next pending deadline, or -1 when nothing is pending.
func (q *Queue) popDue() (due []*item, wait time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	for len(q.tasks) > 0 && !q.tasks[0].at.After(now) {
		due = append(due, heap.Pop(&q.tasks).(*item))
	}
	if len(q.tasks) == 0 {
		return due, -1
	}
	return due, q.tasks[0].at.Sub(now)
}
