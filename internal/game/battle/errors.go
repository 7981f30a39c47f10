package battle

import (
	"errors"
	"fmt"
)

// ErrIllegalAction is wrapped by every submit rejection. A rejected submission
// never mutates the battle.
var ErrIllegalAction = errors.New("illegal action")

// ErrInvalidCombatant is returned when a CombatantInit cannot seed a combatant.
var ErrInvalidCombatant = errors.New("invalid combatant")

// Rejection reasons, in the order the preconditions are checked.
var (
	ErrBattleCompleted  = fmt.Errorf("%w: battle is completed", ErrIllegalAction)
	ErrNotYourTurn      = fmt.Errorf("%w: not your turn", ErrIllegalAction)
	ErrInvalidPower     = fmt.Errorf("%w: no such power", ErrIllegalAction)
	ErrInsufficientMana = fmt.Errorf("%w: insufficient mana", ErrIllegalAction)
	ErrOnCooldown       = fmt.Errorf("%w: power on cooldown", ErrIllegalAction)
)
