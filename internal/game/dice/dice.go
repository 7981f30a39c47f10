// Package dice provides the randomness abstraction and range-roll audit types
// used by the battle engine.
package dice

import "fmt"

// Source is the randomness provider for all rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// RangeRoll holds the audit trail for a single inclusive range draw.
//
// Invariant: Min <= Value <= Max.
type RangeRoll struct {
	Label string // what the roll was for, e.g. "damage"
	Min   int
	Max   int
	Value int
}

// String returns a human-readable audit string in the format:
//
//	"damage [10..15] = 12"
func (r RangeRoll) String() string {
	label := r.Label
	if label == "" {
		label = "roll"
	}
	return fmt.Sprintf("%s [%d..%d] = %d", label, r.Min, r.Max, r.Value)
}

// Between draws a uniformly distributed integer in the inclusive range [lo, hi].
// A degenerate range (lo == hi) returns lo without consuming randomness.
//
// Precondition: lo <= hi; src must be non-nil.
// Postcondition: lo <= result <= hi.
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}
