package rocketsim

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned when Run is called more than once.
	ErrAlreadyRunning = errors.New("simulation already started")

	// ErrNilScenario is returned when New is called without a scenario.
	ErrNilScenario = errors.New("scenario must not be nil")
)

// ErrPanic reports a panic recovered from a worker or the controller.
type ErrPanic struct {
	Task  string
	Value any
}

func (e *ErrPanic) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Task, e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *ErrPanic) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
