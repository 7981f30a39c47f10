package battle

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/game/catalog"
	"github.com/cory-johannsen/cardbattle/internal/game/dice"
)

// Roller draws inclusive integer ranges for effect resolution.
type Roller interface {
	Between(label string, lo, hi int) dice.RangeRoll
}

// Outcome describes the effects of one resolved submission or pass.
type Outcome struct {
	Actor        Slot
	Passed       bool
	PowerIndex   int
	Power        string
	Kind         catalog.Kind
	Rolls        []dice.RangeRoll
	RawDamage    int
	DamageDealt  int
	ShieldGained int
	Healed       int
	ManaGained   int
	SelfDamage   int
	LogEntry     string
	Completed    bool
}

// Engine validates and resolves actions against a battle State.
// It holds no per-battle state; callers serialize access to each State.
type Engine struct {
	catalog *catalog.Catalog
	roller  Roller
	logger  *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: cat and roller must not be nil.
func NewEngine(cat *catalog.Catalog, roller Roller, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{catalog: cat, roller: roller, logger: logger}
}

// Catalog returns the catalog the engine resolves powers against.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// check runs the submission preconditions in order and returns the power to resolve.
func (e *Engine) check(s *State, actor Slot, idx int) (catalog.Power, error) {
	if s.Completed() {
		return catalog.Power{}, ErrBattleCompleted
	}
	if actor != s.TurnSlot {
		return catalog.Power{}, ErrNotYourTurn
	}
	c := s.Combatant(actor)
	if idx < 0 || idx >= len(c.Cooldowns) {
		return catalog.Power{}, ErrInvalidPower
	}
	p, ok := e.catalog.Power(c.Class, idx)
	if !ok {
		return catalog.Power{}, ErrInvalidPower
	}
	if c.Mana < p.ManaCost {
		return catalog.Power{}, ErrInsufficientMana
	}
	if c.Cooldowns[idx] != 0 {
		return catalog.Power{}, ErrOnCooldown
	}
	return p, nil
}

// LegalPowers returns the indices of the powers slot may submit right now.
//
// Postcondition: empty when the battle is completed or it is not slot's turn.
func (e *Engine) LegalPowers(s *State, slot Slot) []int {
	if !slot.Valid() {
		return nil
	}
	var legal []int
	for i := range s.Combatant(slot).Cooldowns {
		if _, err := e.check(s, slot, i); err == nil {
			legal = append(legal, i)
		}
	}
	return legal
}

// Submit validates and resolves actor's use of the power at powerIndex.
//
// Precondition: s must satisfy State.Validate.
// Postcondition: On error s is unchanged and the error wraps ErrIllegalAction.
// On success the power's effects, costs, and cooldowns are applied, the turn
// advances, one log entry is prepended, and Status becomes StatusCompleted when
// either combatant's health reached zero.
func (e *Engine) Submit(s *State, actor Slot, powerIndex int) (Outcome, error) {
	p, err := e.check(s, actor, powerIndex)
	if err != nil {
		return Outcome{}, err
	}

	a := s.Combatant(actor)
	d := s.Combatant(actor.Other())
	out := Outcome{Actor: actor, PowerIndex: powerIndex, Power: p.Name, Kind: p.Kind}

	switch p.Kind {
	case catalog.KindAttack:
		e.strike(p, a, d, &out)
		e.restore(p, a, &out, true)
	case catalog.KindDefend:
		if !p.Shield.IsZero() {
			r := e.roller.Between(p.Name+" shield", p.Shield.Min, p.Shield.Max)
			out.Rolls = append(out.Rolls, r)
			a.Shield += r.Value
			out.ShieldGained = r.Value
		}
		e.restore(p, a, &out, true)
		a.PendingNextAttackBonus += p.NextAttackBonus
	case catalog.KindSpecial:
		e.strike(p, a, d, &out)
		if p.SelfDamage > 0 {
			before := a.Health
			a.ApplyDamage(p.SelfDamage)
			out.SelfDamage = before - a.Health
		}
		e.restore(p, a, &out, false)
	}

	a.Mana -= p.ManaCost
	s.SlotA.tickCooldowns()
	s.SlotB.tickCooldowns()
	a.Cooldowns[powerIndex] = p.CooldownTurns

	s.advanceTurn()
	out.LogEntry = describe(a.Name, &out)
	s.pushLog(out.LogEntry)

	if d.IsDefeated() || a.IsDefeated() {
		s.Status = StatusCompleted
		out.Completed = true
	}

	e.logger.Debug("action resolved",
		zap.String("battle_id", s.BattleID),
		zap.String("actor", actor.String()),
		zap.String("power", p.Name),
		zap.Int("damage", out.DamageDealt),
		zap.Int("shield_gained", out.ShieldGained),
		zap.Bool("completed", out.Completed),
	)
	return out, nil
}

// Pass hands the turn to the other slot without resolving any power.
//
// Postcondition: On error s is unchanged. On success only the turn, round, round
// mana regeneration, and TurnCounter change; cooldowns and the log are untouched.
func (e *Engine) Pass(s *State, actor Slot) (Outcome, error) {
	if s.Completed() {
		return Outcome{}, ErrBattleCompleted
	}
	if actor != s.TurnSlot {
		return Outcome{}, ErrNotYourTurn
	}
	s.advanceTurn()
	e.logger.Debug("turn passed",
		zap.String("battle_id", s.BattleID),
		zap.String("actor", actor.String()),
	)
	return Outcome{Actor: actor, Passed: true, PowerIndex: -1}, nil
}

// strike applies the damage path shared by Attack and Special powers. Pending
// bonus damage is consumed whether or not the power has a damage range.
func (e *Engine) strike(p catalog.Power, a, d *Combatant, out *Outcome) {
	raw := a.PendingNextAttackBonus
	a.PendingNextAttackBonus = 0
	if !p.Damage.IsZero() {
		r := e.roller.Between(p.Name+" damage", p.Damage.Min, p.Damage.Max)
		out.Rolls = append(out.Rolls, r)
		raw += r.Value
	}
	out.RawDamage = raw

	effective := 0
	if !p.IgnoreShield {
		effective = EffectiveShield(d.Shield, p.ShieldPenetration)
	}
	actual := max(0, raw-effective)
	before := d.Health
	d.ApplyDamage(actual)
	out.DamageDealt = before - d.Health
	if !p.IgnoreShield {
		d.Shield = max(0, d.Shield-raw)
	}
}

// restore applies heal and, when withMana is set, mana gain to the actor.
func (e *Engine) restore(p catalog.Power, a *Combatant, out *Outcome, withMana bool) {
	if !p.Heal.IsZero() {
		r := e.roller.Between(p.Name+" heal", p.Heal.Min, p.Heal.Max)
		out.Rolls = append(out.Rolls, r)
		before := a.Health
		a.Heal(r.Value)
		out.Healed = a.Health - before
	}
	if withMana && p.ManaGain > 0 {
		before := a.Mana
		a.GainMana(p.ManaGain)
		out.ManaGained = a.Mana - before
	}
}

// EffectiveShield returns the portion of shield that blocks damage after
// penetration, truncated toward zero.
func EffectiveShield(shield int, penetration float64) int {
	if shield <= 0 {
		return 0
	}
	penetration = math.Min(1, math.Max(0, penetration))
	return int(math.Floor(float64(shield)*(1-penetration) + 1e-9))
}

func describe(name string, out *Outcome) string {
	var line string
	switch out.Kind {
	case catalog.KindDefend:
		line = fmt.Sprintf("%s uses %s and gains %d shield!", name, out.Power, out.ShieldGained)
	default:
		line = fmt.Sprintf("%s uses %s for %d damage!", name, out.Power, out.DamageDealt)
	}
	if out.Healed > 0 {
		line += fmt.Sprintf(" (+%d health)", out.Healed)
	}
	return line
}
