package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OutcomeKind classifies how a task or scheduled task reached a terminal
// state.
type OutcomeKind uint8

const (
	// Unknown is the zero value, reserved for filtering contexts where no
	// kind filter should be applied.
	Unknown OutcomeKind = iota

	// Done means the work completed successfully.
	Done

	// Dead means the work exhausted its retry budget without succeeding.
	Dead

	// Cancelled means the work was cancelled, by either the caller or the
	// task's own inner token, before reaching Done or Dead.
	Cancelled
)

func outcomeKindToString(k OutcomeKind) string {
	switch k {
	case Done:
		return "Done"
	case Dead:
		return "Dead"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

func outcomeKindFromString(s string) (OutcomeKind, error) {
	switch s {
	case "Done":
		return Done, nil
	case "Dead":
		return Dead, nil
	case "Cancelled":
		return Cancelled, nil
	case "Unknown":
		return Unknown, nil
	default:
		return 0, fmt.Errorf("unknown outcome kind: %s", s)
	}
}

// ParseOutcomeKind converts a string representation into an OutcomeKind.
func ParseOutcomeKind(s string) (OutcomeKind, error) {
	return outcomeKindFromString(s)
}

// MarshalText implements encoding.TextMarshaler.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(outcomeKindToString(k)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OutcomeKind) UnmarshalText(text []byte) error {
	kind, err := outcomeKindFromString(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// String returns the canonical string representation of the kind.
func (k OutcomeKind) String() string {
	return outcomeKindToString(k)
}

// Outcome is a single terminal-event record appended to the ledger.
type Outcome struct {
	TaskID     uuid.UUID
	Kind       OutcomeKind
	Message    string
	OccurredAt time.Time
}
