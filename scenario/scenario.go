// Package scenario describes the resources and subsystems of a simulation
// and builds them.
package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/rocketsim/resource"
	"github.com/hupe1980/rocketsim/subsystem"
)

var (
	// ErrDuplicateName is returned when two resources or two subsystems share a name.
	ErrDuplicateName = errors.New("scenario: duplicate name")

	// ErrEmptyName is returned for an unnamed resource or subsystem.
	ErrEmptyName = errors.New("scenario: empty name")

	// ErrNoSubsystems is returned for a scenario without subsystems.
	ErrNoSubsystems = errors.New("scenario: no subsystems")
)

// ErrUnknownResource is returned when a subsystem or sentinel references a
// resource the scenario does not define.
type ErrUnknownResource struct {
	Name string
	By   string
}

func (e *ErrUnknownResource) Error() string {
	return fmt.Sprintf("scenario: %s references unknown resource %q", e.By, e.Name)
}

// Scenario is the declarative description of a run.
type Scenario struct {
	Name       string          `yaml:"name,omitempty"`
	Vital      string          `yaml:"vital,omitempty"`
	Goal       string          `yaml:"goal,omitempty"`
	Resources  []ResourceSpec  `yaml:"resources"`
	Subsystems []SubsystemSpec `yaml:"subsystems"`
}

// ResourceSpec describes one resource.
type ResourceSpec struct {
	Name        string `yaml:"name"`
	Amount      int    `yaml:"amount"`
	MaxCapacity int    `yaml:"max_capacity"`
}

// AmountSpec is a per-cycle quantity of a named resource.
type AmountSpec struct {
	Resource string `yaml:"resource"`
	Amount   int    `yaml:"amount"`
}

// SubsystemSpec describes one subsystem. A nil Consumes makes it a pure
// source; a nil Produces makes it a pure sink.
type SubsystemSpec struct {
	Name           string        `yaml:"name"`
	Consumes       *AmountSpec   `yaml:"consumes,omitempty"`
	Produces       *AmountSpec   `yaml:"produces,omitempty"`
	ProcessingTime time.Duration `yaml:"processing_time"`
}

// World holds the live objects built from a scenario, in declaration order.
type World struct {
	Resources  []*resource.Resource
	Subsystems []*subsystem.Subsystem
}

//go:embed rocket.yaml
var rocketYAML []byte

// Rocket returns the built-in rocket scenario: Fuel, Oxygen, Energy and
// Distance shared by Propulsion, Life Support, Crew and Generator.
func Rocket() *Scenario {
	s, err := Parse(rocketYAML)
	if err != nil {
		panic(fmt.Errorf("scenario: built-in rocket: %w", err))
	}
	return s
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a YAML scenario from r.
func Load(r io.Reader) (*Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("scenario: read: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a YAML scenario from path.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	return Parse(data)
}

// Marshal encodes the scenario as YAML.
func (s *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate reports every problem in the scenario at once.
func (s *Scenario) Validate() error {
	var errs []error

	known := make(map[string]bool, len(s.Resources))
	for _, r := range s.Resources {
		switch {
		case r.Name == "":
			errs = append(errs, fmt.Errorf("%w: resource", ErrEmptyName))
			continue
		case known[r.Name]:
			errs = append(errs, fmt.Errorf("%w: resource %s", ErrDuplicateName, r.Name))
		}
		known[r.Name] = true

		if r.MaxCapacity <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s has capacity %d", resource.ErrInvalidCapacity, r.Name, r.MaxCapacity))
		} else if r.Amount < 0 || r.Amount > r.MaxCapacity {
			errs = append(errs, fmt.Errorf("%w: %s starts at %d of %d", resource.ErrInvalidAmount, r.Name, r.Amount, r.MaxCapacity))
		}
	}

	if len(s.Subsystems) == 0 {
		errs = append(errs, ErrNoSubsystems)
	}

	seen := make(map[string]bool, len(s.Subsystems))
	for _, sys := range s.Subsystems {
		switch {
		case sys.Name == "":
			errs = append(errs, fmt.Errorf("%w: subsystem", ErrEmptyName))
		case seen[sys.Name]:
			errs = append(errs, fmt.Errorf("%w: subsystem %s", ErrDuplicateName, sys.Name))
		}
		seen[sys.Name] = true

		if sys.ProcessingTime < 0 {
			errs = append(errs, fmt.Errorf("%w: %s has %s", subsystem.ErrInvalidProcessingTime, sys.Name, sys.ProcessingTime))
		}

		for _, a := range []*AmountSpec{sys.Consumes, sys.Produces} {
			if a == nil {
				continue
			}
			if !known[a.Resource] {
				errs = append(errs, &ErrUnknownResource{Name: a.Resource, By: "subsystem " + sys.Name})
			}
			if a.Amount < 0 {
				errs = append(errs, fmt.Errorf("%w: %s uses %d %s", resource.ErrInvalidAmount, sys.Name, a.Amount, a.Resource))
			}
		}
	}

	if s.Vital != "" && !known[s.Vital] {
		errs = append(errs, &ErrUnknownResource{Name: s.Vital, By: "vital"})
	}
	if s.Goal != "" && !known[s.Goal] {
		errs = append(errs, &ErrUnknownResource{Name: s.Goal, By: "goal"})
	}

	return errors.Join(errs...)
}

// Build validates the scenario and creates fresh resources and subsystems.
// Every call returns independent objects.
func (s *Scenario) Build() (*World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		Resources:  make([]*resource.Resource, 0, len(s.Resources)),
		Subsystems: make([]*subsystem.Subsystem, 0, len(s.Subsystems)),
	}

	byName := make(map[string]*resource.Resource, len(s.Resources))
	for _, spec := range s.Resources {
		r, err := resource.New(spec.Name, spec.Amount, spec.MaxCapacity)
		if err != nil {
			return nil, err
		}
		byName[spec.Name] = r
		w.Resources = append(w.Resources, r)
	}

	amount := func(a *AmountSpec) resource.Amount {
		if a == nil {
			return resource.None
		}
		return resource.Amount{Resource: byName[a.Resource], Amount: a.Amount}
	}

	for _, spec := range s.Subsystems {
		sys, err := subsystem.New(spec.Name, amount(spec.Consumes), amount(spec.Produces), spec.ProcessingTime)
		if err != nil {
			return nil, err
		}
		w.Subsystems = append(w.Subsystems, sys)
	}

	return w, nil
}

// Resource returns the named resource, or nil.
func (w *World) Resource(name string) *resource.Resource {
	for _, r := range w.Resources {
		if r.Name() == name {
			return r
		}
	}
	return nil
}

// Subsystem returns the named subsystem, or nil.
func (w *World) Subsystem(name string) *subsystem.Subsystem {
	for _, s := range w.Subsystems {
		if s.Name() == name {
			return s
		}
	}
	return nil
}
