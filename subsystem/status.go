package subsystem

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownStatus is returned when parsing an unrecognized status name.
var ErrUnknownStatus = errors.New("unknown subsystem status")

// Status controls how a subsystem's worker behaves on its next iteration.
type Status int32

const (
	// StatusTerminate makes the worker exit. It is final.
	StatusTerminate Status = iota
	// StatusDisabled makes the worker idle without touching resources.
	StatusDisabled
	// StatusSlow doubles the processing time.
	StatusSlow
	// StatusStandard runs at the nominal processing time.
	StatusStandard
	// StatusFast halves the processing time.
	StatusFast
)

func (s Status) String() string {
	switch s {
	case StatusTerminate:
		return "TERMINATE"
	case StatusDisabled:
		return "DISABLED"
	case StatusSlow:
		return "SLOW"
	case StatusStandard:
		return "STANDARD"
	case StatusFast:
		return "FAST"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// ParseStatus parses a status name such as "FAST". Case is ignored.
func ParseStatus(name string) (Status, error) {
	for s := StatusTerminate; s <= StatusFast; s++ {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, name)
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	if s < StatusTerminate || s > StatusFast {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int32(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Scale returns the processing time adjusted for the status.
func (s Status) Scale(d time.Duration) time.Duration {
	switch s {
	case StatusSlow:
		return d * 2
	case StatusFast:
		return d / 2
	default:
		return d
	}
}
