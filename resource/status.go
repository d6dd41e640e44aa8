package resource

// Status is the outcome of a consume or produce attempt on a Resource.
//
// The set is closed. None of these are Go errors: every non-OK status is
// recoverable and the caller decides whether to back off and retry.
type Status int

const (
	// StatusOK means the operation was applied in full.
	StatusOK Status = iota
	// StatusEmpty means the resource holds nothing.
	StatusEmpty
	// StatusLow means the resource is below its warning threshold.
	// No built-in operation reports it; it is reserved for producers of
	// threshold warnings.
	StatusLow
	// StatusInsufficient means the resource is non-empty but holds less than requested.
	StatusInsufficient
	// StatusCapacity means there was not enough headroom to store a full batch.
	StatusCapacity
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusEmpty:
		return "EMPTY"
	case StatusLow:
		return "LOW"
	case StatusInsufficient:
		return "INSUFFICIENT"
	case StatusCapacity:
		return "CAPACITY"
	default:
		return "UNKNOWN"
	}
}

// NeedsMore reports whether the status signals a shortfall of the resource.
func (s Status) NeedsMore() bool {
	return s == StatusLow || s == StatusEmpty || s == StatusInsufficient
}
