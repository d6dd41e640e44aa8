package event

import (
	"fmt"

	"github.com/hupe1980/rocketsim/resource"
)

// Priority ranks events. Larger values are more urgent.
type Priority int

const (
	// PriorityLow is used for self-correcting conditions such as overflow.
	PriorityLow Priority = 1
	// PriorityMedium is the middle tier.
	PriorityMedium Priority = 2
	// PriorityHigh is used for conditions that starve downstream subsystems.
	PriorityHigh Priority = 3
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// Source identifies who reported an event.
type Source interface {
	Name() string
}

// Event is an immutable report of a resource condition observed by a subsystem.
type Event struct {
	Subsystem Source
	Resource  *resource.Resource
	Status    resource.Status
	Priority  Priority
	Amount    int // amount of Resource observed when the event was raised
}

// New creates an event.
func New(src Source, res *resource.Resource, status resource.Status, priority Priority, amount int) Event {
	return Event{
		Subsystem: src,
		Resource:  res,
		Status:    status,
		Priority:  priority,
		Amount:    amount,
	}
}

// SubsystemName returns the reporting subsystem's name, or "" if unknown.
func (e Event) SubsystemName() string {
	if e.Subsystem == nil {
		return ""
	}
	return e.Subsystem.Name()
}

func (e Event) String() string {
	return fmt.Sprintf("Event: [%s] Resource [%s : %d] Status [%s]",
		e.SubsystemName(), e.Resource.Name(), e.Amount, e.Status)
}
