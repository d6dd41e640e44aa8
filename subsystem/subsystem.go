package subsystem

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hupe1980/rocketsim/resource"
)

var (
	// ErrEmptyName is returned when a subsystem is created without a name.
	ErrEmptyName = errors.New("subsystem name must not be empty")

	// ErrInvalidProcessingTime is returned for a negative processing time.
	ErrInvalidProcessingTime = errors.New("processing time must not be negative")
)

// Subsystem converts one resource into another over simulated time.
//
// Its status is the only field written by goroutines other than its worker;
// it is kept in an atomic. The stored buffer belongs to the worker.
type Subsystem struct {
	name           string
	consumed       resource.Amount
	produced       resource.Amount
	processingTime time.Duration

	status atomic.Int32

	stored int // produced but not yet deposited; owned by the worker
}

// New creates a subsystem in StatusStandard.
func New(name string, consumed, produced resource.Amount, processingTime time.Duration) (*Subsystem, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if processingTime < 0 {
		return nil, fmt.Errorf("%w: %s has %s", ErrInvalidProcessingTime, name, processingTime)
	}
	if err := consumed.Validate(); err != nil {
		return nil, fmt.Errorf("subsystem %s consumes: %w", name, err)
	}
	if err := produced.Validate(); err != nil {
		return nil, fmt.Errorf("subsystem %s produces: %w", name, err)
	}

	s := &Subsystem{
		name:           name,
		consumed:       consumed,
		produced:       produced,
		processingTime: processingTime,
	}
	s.status.Store(int32(StatusStandard))
	return s, nil
}

// Name returns the subsystem name.
func (s *Subsystem) Name() string { return s.name }

// Consumed returns what the subsystem consumes per cycle.
func (s *Subsystem) Consumed() resource.Amount { return s.consumed }

// Produced returns what the subsystem produces per cycle.
func (s *Subsystem) Produced() resource.Amount { return s.produced }

// ProcessingTime returns the nominal processing time.
func (s *Subsystem) ProcessingTime() time.Duration { return s.processingTime }

// Produces reports whether the subsystem deposits into r.
func (s *Subsystem) Produces(r *resource.Resource) bool {
	return r != nil && s.produced.Resource == r
}

// Status returns the current status.
func (s *Subsystem) Status() Status {
	return Status(s.status.Load())
}

// SetStatus changes the status and returns the previous one.
//
// StatusTerminate is final: once set, later calls leave it in place and
// report changed == false.
func (s *Subsystem) SetStatus(to Status) (prev Status, changed bool) {
	for {
		cur := s.status.Load()
		if Status(cur) == StatusTerminate || Status(cur) == to {
			return Status(cur), false
		}
		if s.status.CompareAndSwap(cur, int32(to)) {
			return Status(cur), true
		}
	}
}

// Stored returns the produced-but-not-deposited amount.
// Only meaningful from the worker goroutine or after the worker exited.
func (s *Subsystem) Stored() int { return s.stored }

// Snapshot is a point-in-time view of a subsystem.
type Snapshot struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// Snapshot returns a best-effort view taken without locks.
func (s *Subsystem) Snapshot() Snapshot {
	return Snapshot{Name: s.name, Status: s.Status()}
}
