package battle

import "github.com/cory-johannsen/cardbattle/internal/game/catalog"

// CombatantView is the read-only presentation of one combatant.
type CombatantView struct {
	Identity               string          `json:"identity"`
	Name                   string          `json:"name"`
	Class                  catalog.ClassID `json:"class"`
	PortraitRef            string          `json:"portraitRef,omitempty"`
	Health                 int             `json:"health"`
	MaxHealth              int             `json:"maxHealth"`
	Mana                   int             `json:"mana"`
	MaxMana                int             `json:"maxMana"`
	Shield                 int             `json:"shield"`
	Cooldowns              []int           `json:"cooldowns"`
	PendingNextAttackBonus int             `json:"pendingNextAttackBonus"`
}

// Snapshot is the read-only view of a battle handed to the presentation layer.
type Snapshot struct {
	BattleID           string          `json:"battleId"`
	SlotA              CombatantView   `json:"slotA"`
	SlotB              CombatantView   `json:"slotB"`
	TurnSlot           Slot            `json:"turnSlot"`
	RoundNumber        int             `json:"roundNumber"`
	TurnCounter        int             `json:"turnCounter"`
	ActionLog          []string        `json:"actionLog"`
	Status             Status          `json:"status"`
	IsComputerOpponent bool            `json:"isComputerOpponent"`
	Powers             []catalog.Power `json:"powers"`
	Legal              []int           `json:"legal"`
}

func viewOf(c *Combatant) CombatantView {
	return CombatantView{
		Identity:               c.Identity,
		Name:                   c.Name,
		Class:                  c.Class,
		PortraitRef:            c.PortraitRef,
		Health:                 c.Health,
		MaxHealth:              MaxHealth,
		Mana:                   c.Mana,
		MaxMana:                c.MaxMana,
		Shield:                 c.Shield,
		Cooldowns:              append([]int(nil), c.Cooldowns...),
		PendingNextAttackBonus: c.PendingNextAttackBonus,
	}
}

// Snapshot renders s with the powers and legal indices of the slot to act.
//
// Postcondition: the returned view shares no mutable memory with s.
func (e *Engine) Snapshot(s *State) Snapshot {
	snap := Snapshot{
		BattleID:           s.BattleID,
		SlotA:              viewOf(&s.SlotA),
		SlotB:              viewOf(&s.SlotB),
		TurnSlot:           s.TurnSlot,
		RoundNumber:        s.RoundNumber,
		TurnCounter:        s.TurnCounter,
		ActionLog:          append([]string{}, s.ActionLog...),
		Status:             s.Status,
		IsComputerOpponent: s.IsComputerOpponent,
		Legal:              []int{},
	}
	if powers, err := e.catalog.PowersFor(s.Combatant(s.TurnSlot).Class); err == nil {
		snap.Powers = powers
	}
	if !s.Completed() {
		if legal := e.LegalPowers(s, s.TurnSlot); legal != nil {
			snap.Legal = legal
		}
	}
	return snap
}
