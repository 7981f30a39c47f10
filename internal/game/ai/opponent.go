// Package ai selects moves for the computer-controlled combatant.
//
// The opponent has no look-ahead: it picks uniformly among the powers the turn
// engine currently accepts and passes when none are legal.
package ai

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/dice"
)

// LegalSet reports the power indices a slot may submit.
type LegalSet interface {
	LegalPowers(s *battle.State, slot battle.Slot) []int
}

// Opponent chooses actions for an AI-controlled slot.
//
// Invariant: rules and src are non-nil.
type Opponent struct {
	rules  LegalSet
	src    dice.Source
	logger *zap.Logger
}

// NewOpponent constructs an Opponent.
//
// Precondition: rules and src must not be nil.
func NewOpponent(rules LegalSet, src dice.Source, logger *zap.Logger) *Opponent {
	if rules == nil {
		panic("ai.NewOpponent: rules must not be nil")
	}
	if src == nil {
		panic("ai.NewOpponent: src must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opponent{rules: rules, src: src, logger: logger}
}

// ChooseAction picks a power for slot.
//
// Precondition: s must not be nil.
// Postcondition: ok is false when no power is legal and the caller should pass;
// otherwise powerIndex is drawn uniformly from the legal set.
func (o *Opponent) ChooseAction(s *battle.State, slot battle.Slot) (powerIndex int, ok bool) {
	legal := o.rules.LegalPowers(s, slot)
	if len(legal) == 0 {
		o.logger.Debug("no legal power, passing",
			zap.String("battle_id", s.BattleID),
			zap.String("slot", slot.String()),
		)
		return 0, false
	}
	choice := legal[0]
	if len(legal) > 1 {
		choice = legal[o.src.Intn(len(legal))]
	}
	o.logger.Debug("ai chose power",
		zap.String("battle_id", s.BattleID),
		zap.String("slot", slot.String()),
		zap.Int("power", choice),
		zap.Ints("legal", legal),
	)
	return choice, true
}
