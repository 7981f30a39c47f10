package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cardbattle/internal/game/ai"
	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/catalog"
	"github.com/cory-johannsen/cardbattle/internal/game/dice"
)

type staticLegal []int

func (s staticLegal) LegalPowers(*battle.State, battle.Slot) []int { return s }

func newState(t *testing.T) *battle.State {
	t.Helper()
	s, err := battle.NewState("b1", "i1",
		battle.CombatantInit{Identity: "p", Class: "warrior"},
		battle.CombatantInit{Identity: "cpu", Class: "mage"},
		true, catalog.Default())
	require.NoError(t, err)
	return s
}

func TestChooseAction_NoLegalPowers(t *testing.T) {
	o := ai.NewOpponent(staticLegal(nil), dice.NewSeededSource(1), zaptest.NewLogger(t))
	_, ok := o.ChooseAction(newState(t), battle.SlotB)
	assert.False(t, ok)
}

func TestChooseAction_SingleLegalPower(t *testing.T) {
	o := ai.NewOpponent(staticLegal{2}, dice.NewSeededSource(1), zaptest.NewLogger(t))
	idx, ok := o.ChooseAction(newState(t), battle.SlotB)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestChooseAction_UsesEngineLegality(t *testing.T) {
	engine := battle.NewEngine(catalog.Default(), dice.NewLoggedRoller(dice.NewSeededSource(3), nil), nil)
	s := newState(t)
	s.TurnSlot = battle.SlotB
	s.SlotB.Mana = 1 // only Arcane Bolt is affordable

	o := ai.NewOpponent(engine, dice.NewSeededSource(7), zaptest.NewLogger(t))
	for i := 0; i < 20; i++ {
		idx, ok := o.ChooseAction(s, battle.SlotB)
		require.True(t, ok)
		assert.Equal(t, 0, idx)
	}
}

func TestChooseAction_UniformOverLegalSet(t *testing.T) {
	o := ai.NewOpponent(staticLegal{0, 1, 2}, dice.NewSeededSource(42), nil)
	s := newState(t)
	counts := map[int]int{}
	const draws = 3000
	for i := 0; i < draws; i++ {
		idx, ok := o.ChooseAction(s, battle.SlotB)
		require.True(t, ok)
		counts[idx]++
	}
	for _, idx := range []int{0, 1, 2} {
		assert.InDelta(t, draws/3, counts[idx], draws*0.05, "power %d drawn %d times", idx, counts[idx])
	}
}

func TestProperty_ChooseAction_AlwaysLegal(t *testing.T) {
	s := newState(t)
	rapid.Check(t, func(rt *rapid.T) {
		legal := rapid.SliceOfNDistinct(rapid.IntRange(0, 5), 1, 6, rapid.ID[int]).Draw(rt, "legal")
		o := ai.NewOpponent(staticLegal(legal), dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")), nil)
		idx, ok := o.ChooseAction(s, battle.SlotB)
		if !ok {
			rt.Fatalf("expected a choice from %v", legal)
		}
		assert.Contains(rt, legal, idx)
	})
}

func TestNewOpponent_PanicsOnNilRules(t *testing.T) {
	assert.Panics(t, func() { ai.NewOpponent(nil, dice.NewSeededSource(1), nil) })
}
