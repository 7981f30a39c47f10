// Package battle implements the two-combatant turn engine: combatant and battle
// state, action validation, effect resolution, and termination detection.
package battle

import "fmt"

// Slot is one of the two combatant positions, independent of identity.
type Slot int

const (
	SlotA Slot = iota
	SlotB
)

// Other returns the opposing slot.
func (s Slot) Other() Slot {
	if s == SlotA {
		return SlotB
	}
	return SlotA
}

// Valid reports whether s is SlotA or SlotB.
func (s Slot) Valid() bool { return s == SlotA || s == SlotB }

// String returns "A" or "B".
func (s Slot) String() string {
	switch s {
	case SlotA:
		return "A"
	case SlotB:
		return "B"
	default:
		return fmt.Sprintf("Slot(%d)", int(s))
	}
}

// ParseSlot converts "A"/"a"/"B"/"b" into a Slot.
func ParseSlot(s string) (Slot, error) {
	switch s {
	case "A", "a":
		return SlotA, nil
	case "B", "b":
		return SlotB, nil
	default:
		return 0, fmt.Errorf("invalid slot %q", s)
	}
}

// MarshalText encodes the slot as "A" or "B".
func (s Slot) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid slot %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes "A" or "B".
func (s *Slot) UnmarshalText(b []byte) error {
	parsed, err := ParseSlot(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Status is the lifecycle state of a battle.
type Status int

const (
	StatusInProgress Status = iota
	StatusCompleted
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// ParseStatus converts a wire name into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "in_progress":
		return StatusInProgress, nil
	case "completed":
		return StatusCompleted, nil
	default:
		return 0, fmt.Errorf("invalid status %q", s)
	}
}

// MarshalText encodes the status by wire name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a status wire name.
func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
