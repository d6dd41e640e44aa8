package resource

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultLowThreshold is the fraction of capacity below which a resource is
// considered low.
const DefaultLowThreshold = 0.3

var (
	// ErrEmptyName is returned when a resource is created without a name.
	ErrEmptyName = errors.New("resource name must not be empty")

	// ErrInvalidCapacity is returned when the maximum capacity is not positive.
	ErrInvalidCapacity = errors.New("max capacity must be positive")

	// ErrInvalidAmount is returned when an amount is negative or exceeds capacity.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Resource is a named, capacity-bounded quantity shared between subsystems.
//
// The amount is only mutated while holding the resource's own lock. It is
// additionally kept in an atomic so that display code can read it without
// taking the lock.
type Resource struct {
	name        string
	maxCapacity int

	mu     sync.Mutex
	amount atomic.Int64 // written under mu only
}

// New creates a resource holding amount units out of maxCapacity.
func New(name string, amount, maxCapacity int) (*Resource, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if maxCapacity <= 0 {
		return nil, fmt.Errorf("%w: %s has capacity %d", ErrInvalidCapacity, name, maxCapacity)
	}
	if amount < 0 || amount > maxCapacity {
		return nil, fmt.Errorf("%w: %s starts at %d of %d", ErrInvalidAmount, name, amount, maxCapacity)
	}

	r := &Resource{
		name:        name,
		maxCapacity: maxCapacity,
	}
	r.amount.Store(int64(amount))
	return r, nil
}

// Name returns the resource name. An absent resource has no name.
func (r *Resource) Name() string {
	if r == nil {
		return ""
	}
	return r.name
}

// MaxCapacity returns the maximum amount the resource can hold.
func (r *Resource) MaxCapacity() int {
	if r == nil {
		return 0
	}
	return r.maxCapacity
}

// Amount returns the current amount without taking the lock.
// The value may be stale by the time the caller looks at it.
func (r *Resource) Amount() int {
	if r == nil {
		return 0
	}
	return int(r.amount.Load())
}

// IsLow reports whether the current amount is below threshold * capacity.
func (r *Resource) IsLow(threshold float64) bool {
	if r == nil {
		return false
	}
	return float64(r.Amount()) < threshold*float64(r.maxCapacity)
}

// TryConsume removes amount units if that many are available.
//
// It returns StatusOK after decrementing, StatusEmpty if the resource holds
// nothing, or StatusInsufficient if it holds less than requested. A nil
// resource stands for "nothing consumed" and always succeeds.
func (r *Resource) TryConsume(amount int) Status {
	if r == nil || amount <= 0 {
		return StatusOK
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.amount.Load()
	if int64(amount) <= current {
		r.amount.Store(current - int64(amount))
		return StatusOK
	}
	if current == 0 {
		return StatusEmpty
	}
	return StatusInsufficient
}

// TryProduce deposits up to amount units.
//
// If the headroom covers the whole batch it is stored and StatusOK is
// returned with no leftover. Otherwise the headroom is filled, StatusCapacity
// is returned and leftover holds the units that could not be stored. A nil
// resource stands for "nothing produced" and always succeeds.
func (r *Resource) TryProduce(amount int) (leftover int, status Status) {
	if r == nil || amount <= 0 {
		return 0, StatusOK
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.amount.Load()
	available := int64(r.maxCapacity) - current
	if available >= int64(amount) {
		r.amount.Store(current + int64(amount))
		return 0, StatusOK
	}
	if available > 0 {
		r.amount.Store(current + available)
	} else {
		available = 0
	}
	return amount - int(available), StatusCapacity
}

// Snapshot is a point-in-time view of a resource.
type Snapshot struct {
	Name        string `json:"name"`
	Amount      int    `json:"amount"`
	MaxCapacity int    `json:"max_capacity"`
}

// Snapshot returns a best-effort view taken without the lock.
func (r *Resource) Snapshot() Snapshot {
	return Snapshot{
		Name:        r.Name(),
		Amount:      r.Amount(),
		MaxCapacity: r.MaxCapacity(),
	}
}

// IsLow reports whether the captured amount is below threshold * capacity.
func (s Snapshot) IsLow(threshold float64) bool {
	return float64(s.Amount) < threshold*float64(s.MaxCapacity)
}

// Amount pairs a resource with the quantity a subsystem consumes or
// produces per cycle. A nil Resource means no resource is involved.
type Amount struct {
	Resource *Resource
	Amount   int
}

// None is the empty pairing used by pure sources and pure sinks.
var None = Amount{}

// IsNone reports whether no resource is involved.
func (a Amount) IsNone() bool {
	return a.Resource == nil
}

// Validate checks that the quantity is usable.
func (a Amount) Validate() error {
	if a.Amount < 0 {
		return fmt.Errorf("%w: %d units of %q", ErrInvalidAmount, a.Amount, a.Resource.Name())
	}
	return nil
}
