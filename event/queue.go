package event

import (
	"sync"

	"github.com/hupe1980/rocketsim/internal/queue"
)

// Queue is the priority-ordered mailbox between subsystems and the controller.
//
// Pop always returns the highest-priority event; events of equal priority
// come out in the order they were pushed. The queue has no capacity limit.
// All methods are safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	pq    *queue.PriorityQueue[Event]
	ready chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		pq:    queue.New[Event](16),
		ready: make(chan struct{}, 1),
	}
}

// Push inserts an event by priority.
func (q *Queue) Push(e Event) {
	q.mu.Lock()
	q.pq.PushItem(e, int(e.Priority))
	q.mu.Unlock()

	// Coalescing wake-up; a pending signal is enough.
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Pop removes and returns the head of the queue.
// The boolean is false if the queue was empty.
func (q *Queue) Pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.pq.PopItem()
	if !ok {
		return Event{}, false
	}
	return item.Value, true
}

// Drain removes every queued event under a single lock and returns them in
// pop order. Events pushed during the drain wait for the next one.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pq.Len() == 0 {
		return nil
	}
	events := make([]Event, 0, q.pq.Len())
	for {
		item, ok := q.pq.PopItem()
		if !ok {
			return events
		}
		events = append(events, item.Value)
	}
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pq.Len()
}

// Ready returns a channel that receives after one or more pushes.
// Signals coalesce: one receive may stand for many events.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}
