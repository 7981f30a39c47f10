package battle

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/cardbattle/internal/game/catalog"
)

// MaxLogEntries bounds the action log.
const MaxLogEntries = 3

// State is the complete, persistable record of one battle.
//
// Invariant: RoundNumber >= 1; TurnCounter >= 0; ActionLog is non-nil with at most
// MaxLogEntries entries, the most recent first; Status transitions to StatusCompleted at most once.
type State struct {
	BattleID           string
	InstanceID         string
	SlotA              Combatant
	SlotB              Combatant
	TurnSlot           Slot
	RoundNumber        int
	TurnCounter        int
	ActionLog          []string
	IsComputerOpponent bool
	Status             Status
}

// NewState builds the opening state of a battle between a and b.
//
// Precondition: battleID and instanceID must be non-empty; cat must not be nil.
// Postcondition: TurnSlot is SlotA, RoundNumber is 1, TurnCounter is 0, the log is
// empty, and Status is StatusInProgress. Returns an error wrapping
// catalog.ErrUnknownClass when either class is not in cat.
func NewState(battleID, instanceID string, a, b CombatantInit, computer bool, cat *catalog.Catalog) (*State, error) {
	if battleID == "" {
		return nil, errors.New("battle id must not be empty")
	}
	if instanceID == "" {
		return nil, errors.New("instance id must not be empty")
	}
	ca, err := NewCombatant(a, cat)
	if err != nil {
		return nil, fmt.Errorf("slot A: %w", err)
	}
	cb, err := NewCombatant(b, cat)
	if err != nil {
		return nil, fmt.Errorf("slot B: %w", err)
	}
	return &State{
		BattleID:           battleID,
		InstanceID:         instanceID,
		SlotA:              ca,
		SlotB:              cb,
		TurnSlot:           SlotA,
		RoundNumber:        1,
		ActionLog:          []string{},
		IsComputerOpponent: computer,
		Status:             StatusInProgress,
	}, nil
}

// Combatant returns a pointer to the combatant occupying slot.
//
// Precondition: slot must be valid.
func (s *State) Combatant(slot Slot) *Combatant {
	if slot == SlotA {
		return &s.SlotA
	}
	return &s.SlotB
}

// Completed reports whether the battle has terminated.
func (s *State) Completed() bool { return s.Status == StatusCompleted }

// Winner returns the winning slot of a completed battle. When both combatants are
// defeated the slot that acted last wins.
//
// Postcondition: ok is false while the battle is in progress.
func (s *State) Winner() (Slot, bool) {
	if !s.Completed() {
		return 0, false
	}
	a, b := s.SlotA.IsDefeated(), s.SlotB.IsDefeated()
	switch {
	case a && !b:
		return SlotB, true
	case b && !a:
		return SlotA, true
	default:
		return s.TurnSlot.Other(), true
	}
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	c := *s
	c.SlotA = s.SlotA.clone()
	c.SlotB = s.SlotB.clone()
	c.ActionLog = append(make([]string, 0, len(s.ActionLog)), s.ActionLog...)
	return &c
}

// Validate checks every structural invariant of s. When cat is non-nil each
// combatant's cooldown list must also match its class's power count.
func (s *State) Validate(cat *catalog.Catalog) error {
	var errs []error
	if s.BattleID == "" {
		errs = append(errs, errors.New("battleId must not be empty"))
	}
	if !s.TurnSlot.Valid() {
		errs = append(errs, fmt.Errorf("invalid turnSlot %d", int(s.TurnSlot)))
	}
	if s.Status != StatusInProgress && s.Status != StatusCompleted {
		errs = append(errs, fmt.Errorf("invalid status %d", int(s.Status)))
	}
	if s.RoundNumber < 1 {
		errs = append(errs, fmt.Errorf("roundNumber %d must be >= 1", s.RoundNumber))
	}
	if s.TurnCounter < 0 {
		errs = append(errs, fmt.Errorf("turnCounter %d must be >= 0", s.TurnCounter))
	}
	if len(s.ActionLog) > MaxLogEntries {
		errs = append(errs, fmt.Errorf("actionLog holds %d entries, max %d", len(s.ActionLog), MaxLogEntries))
	}
	for _, slot := range []Slot{SlotA, SlotB} {
		c := s.Combatant(slot)
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("slot %s: %w", slot, err))
			continue
		}
		if cat == nil {
			continue
		}
		powers, err := cat.PowersFor(c.Class)
		if err != nil {
			errs = append(errs, fmt.Errorf("slot %s: %w", slot, err))
			continue
		}
		if len(powers) != len(c.Cooldowns) {
			errs = append(errs, fmt.Errorf("slot %s: %d cooldowns for %d powers", slot, len(c.Cooldowns), len(powers)))
		}
	}
	return errors.Join(errs...)
}

// pushLog prepends entry and truncates the log to MaxLogEntries.
func (s *State) pushLog(entry string) {
	log := make([]string, 0, MaxLogEntries)
	log = append(log, entry)
	for _, e := range s.ActionLog {
		if len(log) == MaxLogEntries {
			break
		}
		log = append(log, e)
	}
	s.ActionLog = log
}

// advanceTurn hands the turn to the other slot. Handing back to SlotA opens a new
// round, and each combatant regenerates one mana.
func (s *State) advanceTurn() {
	s.TurnCounter++
	s.TurnSlot = s.TurnSlot.Other()
	if s.TurnSlot == SlotA {
		s.RoundNumber++
		s.SlotA.GainMana(1)
		s.SlotB.GainMana(1)
	}
}
