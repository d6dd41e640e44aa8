// Package event defines the status reports subsystems send to the controller
// and the priority queue that carries them.
//
// # Ordering
//
// Queue.Pop yields events in non-increasing priority. Among equal
// priorities, the event pushed first is popped first:
//
//	q := event.NewQueue()
//	q.Push(event.New(gen, energy, resource.StatusCapacity, event.PriorityLow, 50))
//	q.Push(event.New(crew, oxygen, resource.StatusEmpty, event.PriorityHigh, 0))
//	e, _ := q.Pop() // the oxygen event
//
// The queue is a binary heap; a per-push sequence number provides the FIFO
// tie-break a plain heap lacks.
//
// # Signalling
//
// Ready exposes a coalescing wake-up channel so a consumer can react to new
// events without waiting for its next poll.
package event
