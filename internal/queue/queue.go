// Package queue provides a stable max-priority queue.
package queue

// Item is an entry in the priority queue.
// Value-based: no pointers, no index bookkeeping.
type Item[T any] struct {
	Value    T   // Value is the payload of the item.
	Priority int // Priority orders items; larger values pop first.
	seq      uint64
}

// PriorityQueue is a binary max-heap ordered by Priority.
//
// Items with equal priority pop in insertion order: every push is stamped
// with a monotonically increasing sequence number that breaks ties.
//
// PriorityQueue is not safe for concurrent use.
type PriorityQueue[T any] struct {
	items []Item[T]
	seq   uint64
}

// New initializes an empty priority queue with the given capacity hint.
func New[T any](capacity int) *PriorityQueue[T] {
	return &PriorityQueue[T]{
		items: make([]Item[T], 0, capacity),
	}
}

// Len returns the number of elements in the priority queue.
func (pq *PriorityQueue[T]) Len() int { return len(pq.items) }

// PushItem inserts a value while maintaining the heap invariant.
func (pq *PriorityQueue[T]) PushItem(value T, priority int) {
	pq.items = append(pq.items, Item[T]{Value: value, Priority: priority, seq: pq.seq})
	pq.seq++
	pq.siftUp(len(pq.items) - 1)
}

// TopItem returns the top element of the heap without removing it.
func (pq *PriorityQueue[T]) TopItem() (Item[T], bool) {
	if len(pq.items) == 0 {
		return Item[T]{}, false
	}
	return pq.items[0], true
}

// PopItem removes and returns the top element while maintaining the heap invariant.
func (pq *PriorityQueue[T]) PopItem() (Item[T], bool) {
	n := len(pq.items)
	if n == 0 {
		return Item[T]{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items[n-1] = Item[T]{} // Zero out for GC
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

// Reset clears the priority queue for reuse.
// The sequence counter keeps running so ordering stays stable across resets.
func (pq *PriorityQueue[T]) Reset() {
	clear(pq.items)
	pq.items = pq.items[:0]
}

func (pq *PriorityQueue[T]) less(i, j int) bool {
	a, b := pq.items[i], pq.items[j]
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.seq < b.seq
}

func (pq *PriorityQueue[T]) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue[T]) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}
