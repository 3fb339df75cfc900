package enums

import "fmt"

// Phase partitions checklist tasks around an event.
type Phase string

const (
	PhasePre   Phase = "pre"
	PhaseEvent Phase = "event"
	PhaseClose Phase = "close"
)

var validPhases = []Phase{
	PhasePre,
	PhaseEvent,
	PhaseClose,
}

// Phases returns the phases in display order.
func Phases() []Phase {
	out := make([]Phase, len(validPhases))
	copy(out, validPhases)
	return out
}

// String implements fmt.Stringer.
func (p Phase) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Phase.
func (p Phase) IsValid() bool {
	for _, candidate := range validPhases {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePhase converts raw input into a Phase.
func ParsePhase(value string) (Phase, error) {
	for _, candidate := range validPhases {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid phase %q", value)
}
