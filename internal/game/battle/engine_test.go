package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cardbattle/internal/game/catalog"
	"github.com/cory-johannsen/cardbattle/internal/game/dice"
)

// fixedRoller returns value clamped into the requested range.
type fixedRoller struct{ value int }

func (f fixedRoller) Between(label string, lo, hi int) dice.RangeRoll {
	v := min(max(f.value, lo), hi)
	return dice.RangeRoll{Label: label, Min: lo, Max: hi, Value: v}
}

func newTestEngine(t *testing.T, value int) *Engine {
	t.Helper()
	return NewEngine(catalog.Default(), fixedRoller{value: value}, zaptest.NewLogger(t))
}

func newTestState(t *testing.T, classA, classB catalog.ClassID) *State {
	t.Helper()
	s, err := NewState("b1", "i1",
		CombatantInit{Identity: "alice", Name: "Alice", Class: string(classA), BaseHealth: 100, BaseMana: 10},
		CombatantInit{Identity: "bob", Name: "Bob", Class: string(classB), BaseHealth: 100, BaseMana: 10},
		true, catalog.Default())
	require.NoError(t, err)
	return s
}

func TestNewState_Defaults(t *testing.T) {
	s := newTestState(t, catalog.Warrior, catalog.Mage)
	assert.Equal(t, SlotA, s.TurnSlot)
	assert.Equal(t, 1, s.RoundNumber)
	assert.Equal(t, 0, s.TurnCounter)
	assert.Empty(t, s.ActionLog)
	assert.Equal(t, StatusInProgress, s.Status)
	assert.Equal(t, []int{0, 0, 0}, s.SlotA.Cooldowns)
	assert.Equal(t, 10, s.SlotB.Mana)
	assert.Equal(t, 10, s.SlotB.MaxMana)
	require.NoError(t, s.Validate(catalog.Default()))
}

func TestNewState_DerivesHealthAndMana(t *testing.T) {
	s, err := NewState("b1", "i1",
		CombatantInit{Identity: "a", Class: "Warrior", BaseHealth: 250, BaseMana: 0},
		CombatantInit{Identity: "b", Class: "rogue", BaseHealth: 40, BaseMana: 6},
		false, catalog.Default())
	require.NoError(t, err)
	assert.Equal(t, MaxHealth, s.SlotA.Health)
	assert.Equal(t, DefaultMaxMana, s.SlotA.MaxMana)
	assert.Equal(t, "a", s.SlotA.Name)
	assert.Equal(t, 40, s.SlotB.Health)
	assert.Equal(t, 6, s.SlotB.Mana)
}

func TestNewState_UnknownClass(t *testing.T) {
	_, err := NewState("b1", "i1",
		CombatantInit{Identity: "a", Class: "bard"},
		CombatantInit{Identity: "b", Class: "mage"},
		false, catalog.Default())
	assert.ErrorIs(t, err, catalog.ErrUnknownClass)
}

func TestNewState_MissingIdentity(t *testing.T) {
	_, err := NewState("b1", "i1",
		CombatantInit{Class: "warrior"},
		CombatantInit{Identity: "b", Class: "mage"},
		false, catalog.Default())
	assert.ErrorIs(t, err, ErrInvalidCombatant)
	assert.NotErrorIs(t, err, ErrIllegalAction)
}

func TestNewState_LogIsNonNilAndClonePreservesIt(t *testing.T) {
	s := newTestState(t, catalog.Warrior, catalog.Mage)
	require.NotNil(t, s.ActionLog)
	assert.NotNil(t, s.Clone().ActionLog)
	assert.Equal(t, s, s.Clone())
}

func TestSubmit_ShieldAbsorbsAndDepletes(t *testing.T) {
	e := newTestEngine(t, 10)
	s := newTestState(t, catalog.Warrior, catalog.Mage)
	s.SlotB.Shield = 6

	out, err := e.Submit(s, SlotA, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, out.RawDamage)
	assert.Equal(t, 4, out.DamageDealt)
	assert.Equal(t, 96, s.SlotB.Health)
	assert.Equal(t, 0, s.SlotB.Shield)
}

func TestSubmit_ShieldPenetration(t *testing.T) {
	e := newTestEngine(t, 10)
	s := newTestState(t, catalog.Rogue, catalog.Mage)
	s.SlotB.Shield = 6

	out, err := e.Submit(s, SlotA, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, out.DamageDealt)
	assert.Equal(t, 93, s.SlotB.Health)
	assert.Equal(t, 0, s.SlotB.Shield)
}

func TestSubmit_IgnoreShieldLeavesShieldIntact(t *testing.T) {
	e := newTestEngine(t, 25)
	s := newTestState(t, catalog.Mage, catalog.Warrior)
	s.SlotB.Shield = 8

	out, err := e.Submit(s, SlotA, 2)
	require.NoError(t, err)
	assert.Equal(t, 25, out.DamageDealt)
	assert.Equal(t, 75, s.SlotB.Health)
	assert.Equal(t, 8, s.SlotB.Shield)
}

func TestSubmit_ShieldLargerThanDamage(t *testing.T) {
	e := newTestEngine(t, 10)
	s := newTestState(t, catalog.Warrior, catalog.Mage)
	s.SlotB.Shield = 15

	out, err := e.Submit(s, SlotA, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, out.DamageDealt)
	assert.Equal(t, 100, s.SlotB.Health)
	assert.Equal(t, 5, s.SlotB.Shield)
}

func TestSubmit_DefendStacksBonusConsumedByAttack(t *testing.T) {
	e := newTestEngine(t, 5)
	s := newTestState(t, catalog.Warrior, catalog.Mage)

	_, err := e.Submit(s, SlotA, 1) // Shield Wall
	require.NoError(t, err)
	assert.Equal(t, 5, s.SlotA.Shield)
	assert.Equal(t, 3, s.SlotA.PendingNextAttackBonus)

	_, err = e.Pass(s, SlotB)
	require.NoError(t, err)

	out, err := e.Submit(s, SlotA, 0) // Cleave, roll clamps to 10
	require.NoError(t, err)
	assert.Equal(t, 13, out.RawDamage)
	assert.Equal(t, 0, s.SlotA.PendingNextAttackBonus)
}

func TestSubmit_ManaGainCappedAndCostDeducted(t *testing.T) {
	e := newTestEngine(t, 8)
	s := newTestState(t, catalog.Mage, catalog.Warrior)

	out, err := e.Submit(s, SlotA, 0) // Arcane Bolt: cost 1, gain 1 at full mana
	require.NoError(t, err)
	assert.Equal(t, 0, out.ManaGained)
	assert.Equal(t, 9, s.SlotA.Mana)
}

func TestSubmit_HealCappedAtMax(t *testing.T) {
	e := newTestEngine(t, 10)
	s := newTestState(t, catalog.Cleric, catalog.Warrior)
	s.SlotA.Health = 97

	out, err := e.Submit(s, SlotA, 1) // Sanctuary
	require.NoError(t, err)
	assert.Equal(t, MaxHealth, s.SlotA.Health)
	assert.Equal(t, 3, out.Healed)
}

func TestSubmit_CooldownSetAndTicked(t *testing.T) {
	e := newTestEngine(t, 20)
	s := newTestState(t, catalog.Warrior, catalog.Warrior)

	_, err := e.Submit(s, SlotA, 2) // Berserk, cooldown 3
	require.NoError(t, err)
	assert.Equal(t, 3, s.SlotA.Cooldowns[2])

	_, err = e.Submit(s, SlotB, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, s.SlotA.Cooldowns[2])

	_, err = e.Submit(s, SlotA, 2)
	assert.ErrorIs(t, err, ErrOnCooldown)
}

func TestSubmit_PassDoesNotTickCooldowns(t *testing.T) {
	e := newTestEngine(t, 20)
	s := newTestState(t, catalog.Warrior, catalog.Warrior)

	_, err := e.Submit(s, SlotA, 2)
	require.NoError(t, err)
	_, err = e.Pass(s, SlotB)
	require.NoError(t, err)
	assert.Equal(t, 3, s.SlotA.Cooldowns[2])
}

func TestSubmit_RejectionOrder(t *testing.T) {
	e := newTestEngine(t, 10)
	cat := catalog.Default()

	t.Run("completed before turn", func(t *testing.T) {
		s := newTestState(t, catalog.Warrior, catalog.Mage)
		s.Status = StatusCompleted
		_, err := e.Submit(s, SlotB, 99)
		assert.ErrorIs(t, err, ErrBattleCompleted)
	})
	t.Run("turn before index", func(t *testing.T) {
		s := newTestState(t, catalog.Warrior, catalog.Mage)
		_, err := e.Submit(s, SlotB, 99)
		assert.ErrorIs(t, err, ErrNotYourTurn)
	})
	t.Run("index before mana", func(t *testing.T) {
		s := newTestState(t, catalog.Warrior, catalog.Mage)
		s.SlotA.Mana = 0
		_, err := e.Submit(s, SlotA, -1)
		assert.ErrorIs(t, err, ErrInvalidPower)
	})
	t.Run("mana before cooldown", func(t *testing.T) {
		s := newTestState(t, catalog.Warrior, catalog.Mage)
		s.SlotA.Mana = 4
		s.SlotA.Cooldowns[2] = 2
		_, err := e.Submit(s, SlotA, 2)
		assert.ErrorIs(t, err, ErrInsufficientMana)
	})
	t.Run("cooldown", func(t *testing.T) {
		s := newTestState(t, catalog.Warrior, catalog.Mage)
		s.SlotA.Cooldowns[2] = 1
		_, err := e.Submit(s, SlotA, 2)
		assert.ErrorIs(t, err, ErrOnCooldown)
		assert.ErrorIs(t, err, ErrIllegalAction)
		require.NoError(t, s.Validate(cat))
	})
}

func TestSubmit_ExactZeroHealthTerminates(t *testing.T) {
	e := newTestEngine(t, 10)
	s := newTestState(t, catalog.Warrior, catalog.Mage)
	s.SlotB.Health = 10

	out, err := e.Submit(s, SlotA, 0)
	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.Equal(t, 0, s.SlotB.Health)
	assert.Equal(t, StatusCompleted, s.Status)

	winner, ok := s.Winner()
	require.True(t, ok)
	assert.Equal(t, SlotA, winner)

	_, err = e.Submit(s, SlotB, 0)
	assert.ErrorIs(t, err, ErrBattleCompleted)
	_, err = e.Pass(s, SlotB)
	assert.ErrorIs(t, err, ErrBattleCompleted)
}

func TestSubmit_SelfDamageCanTerminate(t *testing.T) {
	e := newTestEngine(t, 20)
	s := newTestState(t, catalog.Warrior, catalog.Mage)
	s.SlotA.Health = 5

	out, err := e.Submit(s, SlotA, 2)
	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.Equal(t, 5, out.SelfDamage)
	assert.Equal(t, 0, s.SlotA.Health)

	winner, ok := s.Winner()
	require.True(t, ok)
	assert.Equal(t, SlotB, winner)
}

func TestWinner_BothDefeatedFavoursLastActor(t *testing.T) {
	s := newTestState(t, catalog.Warrior, catalog.Mage)
	s.SlotA.Health = 0
	s.SlotB.Health = 0
	s.Status = StatusCompleted
	s.TurnSlot = SlotB

	winner, ok := s.Winner()
	require.True(t, ok)
	assert.Equal(t, SlotA, winner)
}

func TestWinner_InProgress(t *testing.T) {
	s := newTestState(t, catalog.Warrior, catalog.Mage)
	_, ok := s.Winner()
	assert.False(t, ok)
}

func TestPass_AdvancesTurnOnly(t *testing.T) {
	e := newTestEngine(t, 10)
	s := newTestState(t, catalog.Warrior, catalog.Mage)
	s.SlotA.Mana = 3
	s.SlotB.Mana = 2

	out, err := e.Pass(s, SlotA)
	require.NoError(t, err)
	assert.True(t, out.Passed)
	assert.Equal(t, SlotB, s.TurnSlot)
	assert.Equal(t, 1, s.RoundNumber)
	assert.Equal(t, 1, s.TurnCounter)
	assert.Empty(t, s.ActionLog)

	_, err = e.Pass(s, SlotB)
	require.NoError(t, err)
	assert.Equal(t, 2, s.RoundNumber)
	assert.Equal(t, 4, s.SlotA.Mana)
	assert.Equal(t, 3, s.SlotB.Mana)

	_, err = e.Pass(s, SlotB)
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestActionLog_MostRecentFirstCapped(t *testing.T) {
	e := newTestEngine(t, 1)
	s := newTestState(t, catalog.Warrior, catalog.Warrior)

	for i := 0; i < 5; i++ {
		_, err := e.Submit(s, s.TurnSlot, 0)
		require.NoError(t, err)
	}
	require.Len(t, s.ActionLog, MaxLogEntries)
	assert.Equal(t, "Alice uses Cleave for 10 damage!", s.ActionLog[0])
	assert.Equal(t, "Bob uses Cleave for 10 damage!", s.ActionLog[1])
}

func TestLegalPowers(t *testing.T) {
	e := newTestEngine(t, 10)
	s := newTestState(t, catalog.Warrior, catalog.Mage)
	s.SlotA.Mana = 1
	assert.Equal(t, []int{0, 1}, e.LegalPowers(s, SlotA))
	assert.Empty(t, e.LegalPowers(s, SlotB))

	s.SlotA.Mana = 0
	assert.Empty(t, e.LegalPowers(s, SlotA))
}

func TestSnapshot_ReflectsState(t *testing.T) {
	e := newTestEngine(t, 10)
	s := newTestState(t, catalog.Warrior, catalog.Mage)
	snap := e.Snapshot(s)
	assert.Equal(t, "b1", snap.BattleID)
	assert.Equal(t, []int{0, 1, 2}, snap.Legal)
	require.Len(t, snap.Powers, 3)
	assert.Equal(t, "Cleave", snap.Powers[0].Name)

	snap.SlotA.Cooldowns[0] = 9
	assert.Equal(t, 0, s.SlotA.Cooldowns[0])
}

func TestEffectiveShield(t *testing.T) {
	cases := []struct {
		shield int
		pen    float64
		want   int
	}{
		{6, 0, 6},
		{6, 0.5, 3},
		{7, 0.5, 3},
		{10, 0.3, 7},
		{10, 1, 0},
		{0, 0.5, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EffectiveShield(tc.shield, tc.pen), "shield=%d pen=%v", tc.shield, tc.pen)
	}
}

// TestProperty_InvariantsHoldOverRandomPlay drives random submissions and passes
// and asserts resource bounds, no-op rejections, and round accounting.
func TestProperty_InvariantsHoldOverRandomPlay(t *testing.T) {
	cat := catalog.Default()
	rapid.Check(t, func(rt *rapid.T) {
		classA := rapid.SampledFrom(catalog.AllClassIDs).Draw(rt, "classA")
		classB := rapid.SampledFrom(catalog.AllClassIDs).Draw(rt, "classB")
		seed := rapid.Uint64().Draw(rt, "seed")
		e := NewEngine(cat, dice.NewLoggedRoller(dice.NewSeededSource(seed), nil), nil)
		s, err := NewState("p", "i",
			CombatantInit{Identity: "a", Class: string(classA), BaseHealth: rapid.IntRange(1, 100).Draw(rt, "hpA"), BaseMana: rapid.IntRange(1, 12).Draw(rt, "mpA")},
			CombatantInit{Identity: "b", Class: string(classB), BaseHealth: rapid.IntRange(1, 100).Draw(rt, "hpB"), BaseMana: rapid.IntRange(1, 12).Draw(rt, "mpB")},
			true, cat)
		if err != nil {
			rt.Fatalf("NewState: %v", err)
		}

		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps && !s.Completed(); i++ {
			slot := rapid.SampledFrom([]Slot{SlotA, SlotB}).Draw(rt, "slot")
			idx := rapid.IntRange(-1, 3).Draw(rt, "idx")
			pass := rapid.Bool().Draw(rt, "pass")

			before := s.Clone()
			var stepErr error
			if pass {
				_, stepErr = e.Pass(s, slot)
			} else {
				_, stepErr = e.Submit(s, slot, idx)
			}
			if stepErr != nil {
				if !assert.ObjectsAreEqual(before, s) {
					rt.Fatalf("rejected action mutated state: %v", stepErr)
				}
				continue
			}
			if s.TurnCounter != before.TurnCounter+1 {
				rt.Fatalf("turnCounter %d, want %d", s.TurnCounter, before.TurnCounter+1)
			}
			wantRound := before.RoundNumber
			if s.TurnSlot == SlotA {
				wantRound++
			}
			if s.RoundNumber != wantRound {
				rt.Fatalf("roundNumber %d, want %d", s.RoundNumber, wantRound)
			}
			if err := s.Validate(cat); err != nil {
				rt.Fatalf("invariant violated: %v", err)
			}
			if !s.Completed() && (s.SlotA.IsDefeated() || s.SlotB.IsDefeated()) {
				rt.Fatalf("defeated combatant in a battle still in progress")
			}
		}
	})
}
