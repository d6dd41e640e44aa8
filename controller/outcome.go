package controller

import "fmt"

// Outcome is the terminal state of a run.
type Outcome int32

const (
	// OutcomeRunning means no terminal event has been handled yet.
	OutcomeRunning Outcome = iota
	// OutcomeCompleted means the goal resource reached capacity.
	OutcomeCompleted
	// OutcomeCriticalFailure means the vital resource ran empty.
	OutcomeCriticalFailure
	// OutcomeCancelled means the run was stopped from outside.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "RUNNING"
	case OutcomeCompleted:
		return "COMPLETED"
	case OutcomeCriticalFailure:
		return "CRITICAL_FAILURE"
	case OutcomeCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("Outcome(%d)", int32(o))
	}
}

// Terminal reports whether the outcome ends the run.
func (o Outcome) Terminal() bool {
	return o != OutcomeRunning
}
