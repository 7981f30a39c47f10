package storage

import (
	"encoding/json"
	"fmt"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/catalog"
)

// combatantRecord is the persisted shape of one combatant.
type combatantRecord struct {
	Identity               string          `json:"identity"`
	Name                   string          `json:"name"`
	Class                  catalog.ClassID `json:"class"`
	PortraitRef            string          `json:"portraitRef,omitempty"`
	Health                 int             `json:"health"`
	Mana                   int             `json:"mana"`
	MaxMana                int             `json:"maxMana"`
	Shield                 int             `json:"shield"`
	Cooldowns              []int           `json:"cooldowns"`
	PendingNextAttackBonus int             `json:"pendingNextAttackBonus"`
}

// Record is the persisted shape of a battle.
type Record struct {
	BattleID           string          `json:"battleId"`
	InstanceID         string          `json:"instanceId"`
	SlotA              combatantRecord `json:"slotA"`
	SlotB              combatantRecord `json:"slotB"`
	TurnSlot           battle.Slot     `json:"turnSlot"`
	RoundNumber        int             `json:"roundNumber"`
	TurnCounter        int             `json:"turnCounter"`
	ActionLog          []string        `json:"actionLog"`
	IsComputerOpponent bool            `json:"isComputerOpponent"`
	Status             battle.Status   `json:"status"`
}

func toCombatantRecord(c battle.Combatant) combatantRecord {
	return combatantRecord{
		Identity:               c.Identity,
		Name:                   c.Name,
		Class:                  c.Class,
		PortraitRef:            c.PortraitRef,
		Health:                 c.Health,
		Mana:                   c.Mana,
		MaxMana:                c.MaxMana,
		Shield:                 c.Shield,
		Cooldowns:              c.Cooldowns,
		PendingNextAttackBonus: c.PendingNextAttackBonus,
	}
}

func (r combatantRecord) toCombatant() battle.Combatant {
	return battle.Combatant{
		Identity:               r.Identity,
		Name:                   r.Name,
		Class:                  r.Class,
		PortraitRef:            r.PortraitRef,
		Health:                 r.Health,
		Mana:                   r.Mana,
		MaxMana:                r.MaxMana,
		Shield:                 r.Shield,
		Cooldowns:              r.Cooldowns,
		PendingNextAttackBonus: r.PendingNextAttackBonus,
	}
}

// Encode serializes s into its persisted JSON form.
//
// Precondition: s must not be nil.
func Encode(s *battle.State) ([]byte, error) {
	log := s.ActionLog
	if log == nil {
		log = []string{}
	}
	rec := Record{
		BattleID:           s.BattleID,
		InstanceID:         s.InstanceID,
		SlotA:              toCombatantRecord(s.SlotA),
		SlotB:              toCombatantRecord(s.SlotB),
		TurnSlot:           s.TurnSlot,
		RoundNumber:        s.RoundNumber,
		TurnCounter:        s.TurnCounter,
		ActionLog:          log,
		IsComputerOpponent: s.IsComputerOpponent,
		Status:             s.Status,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding battle %q: %w", s.BattleID, err)
	}
	return b, nil
}

// Decode parses a persisted record and validates it against cat.
//
// Postcondition: Returns a state satisfying battle.State.Validate, or an error
// wrapping ErrCorruptState.
func Decode(b []byte, cat *catalog.Catalog) (*battle.State, error) {
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if rec.ActionLog == nil {
		rec.ActionLog = []string{}
	}
	s := &battle.State{
		BattleID:           rec.BattleID,
		InstanceID:         rec.InstanceID,
		SlotA:              rec.SlotA.toCombatant(),
		SlotB:              rec.SlotB.toCombatant(),
		TurnSlot:           rec.TurnSlot,
		RoundNumber:        rec.RoundNumber,
		TurnCounter:        rec.TurnCounter,
		ActionLog:          rec.ActionLog,
		IsComputerOpponent: rec.IsComputerOpponent,
		Status:             rec.Status,
	}
	if s.InstanceID == "" {
		return nil, fmt.Errorf("%w: instanceId must not be empty", ErrCorruptState)
	}
	if err := s.Validate(cat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return s, nil
}
