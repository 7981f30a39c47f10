package storage_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/catalog"
	"github.com/cory-johannsen/cardbattle/internal/game/dice"
	"github.com/cory-johannsen/cardbattle/internal/storage"
	"github.com/cory-johannsen/cardbattle/internal/storage/memory"
)

func sampleState(t *testing.T) *battle.State {
	t.Helper()
	s, err := battle.NewState("arena-1", "inst-1",
		battle.CombatantInit{Identity: "alice", Name: "Alice", Class: "cleric", BaseHealth: 90, BaseMana: 8, PortraitRef: "alice.png"},
		battle.CombatantInit{Identity: "cpu", Name: "Golem", Class: "warrior", BaseHealth: 100, BaseMana: 10},
		true, catalog.Default())
	require.NoError(t, err)
	return s
}

func TestKey(t *testing.T) {
	assert.Equal(t, "battle_arena-1", storage.Key("arena-1"))
}

func TestEncode_WireShape(t *testing.T) {
	s := sampleState(t)
	b, err := storage.Encode(s)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "arena-1", raw["battleId"])
	assert.Equal(t, "A", raw["turnSlot"])
	assert.Equal(t, "in_progress", raw["status"])
	assert.Equal(t, []any{}, raw["actionLog"])
	slotA := raw["slotA"].(map[string]any)
	assert.Equal(t, "cleric", slotA["class"])
	assert.Equal(t, float64(8), slotA["maxMana"])
}

func TestBattleStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	store := storage.NewBattleStore(kv, catalog.Default(), zaptest.NewLogger(t))
	s := sampleState(t)
	s.SlotA.Shield = 4
	s.SlotB.Cooldowns[2] = 2
	s.ActionLog = []string{"Golem uses Berserk for 22 damage!"}

	require.NoError(t, store.Save(ctx, s))
	got, found, err := store.Load(ctx, "arena-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, s, got)
}

func TestBattleStore_LoadAbsent(t *testing.T) {
	store := storage.NewBattleStore(memory.New(), catalog.Default(), zaptest.NewLogger(t))
	got, found, err := store.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestBattleStore_CorruptRecordTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	cases := map[string]func(rec map[string]any){
		"not json": nil,
		"health out of range": func(rec map[string]any) {
			rec["slotA"].(map[string]any)["health"] = 150
		},
		"negative shield": func(rec map[string]any) {
			rec["slotB"].(map[string]any)["shield"] = -1
		},
		"bad slot": func(rec map[string]any) {
			rec["turnSlot"] = "C"
		},
		"cooldown count mismatch": func(rec map[string]any) {
			rec["slotA"].(map[string]any)["cooldowns"] = []int{0}
		},
		"unknown class": func(rec map[string]any) {
			rec["slotB"].(map[string]any)["class"] = "bard"
		},
		"round zero": func(rec map[string]any) {
			rec["roundNumber"] = 0
		},
		"log too long": func(rec map[string]any) {
			rec["actionLog"] = []string{"a", "b", "c", "d"}
		},
		"mana above max": func(rec map[string]any) {
			rec["slotA"].(map[string]any)["mana"] = 99
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			kv := memory.New()
			store := storage.NewBattleStore(kv, catalog.Default(), zaptest.NewLogger(t))
			payload := []byte("{not json")
			if mutate != nil {
				b, err := storage.Encode(sampleState(t))
				require.NoError(t, err)
				var rec map[string]any
				require.NoError(t, json.Unmarshal(b, &rec))
				mutate(rec)
				payload, err = json.Marshal(rec)
				require.NoError(t, err)
			}
			require.NoError(t, kv.Put(ctx, storage.Key("arena-1"), payload))

			_, found, err := store.Load(ctx, "arena-1")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestDecode_WrapsErrCorruptState(t *testing.T) {
	_, err := storage.Decode([]byte(`{"battleId":"x"}`), nil)
	assert.ErrorIs(t, err, storage.ErrCorruptState)
}

func TestBattleStore_Delete(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	store := storage.NewBattleStore(kv, catalog.Default(), zaptest.NewLogger(t))
	require.NoError(t, store.Save(ctx, sampleState(t)))
	require.NoError(t, store.Delete(ctx, "arena-1"))
	assert.Equal(t, 0, kv.Len())
	require.NoError(t, store.Delete(ctx, "arena-1"))
}

func TestBattleStore_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := storage.NewBattleStore(memory.New(), catalog.Default(), zaptest.NewLogger(t))
	s := sampleState(t)
	require.NoError(t, store.Save(ctx, s))
	s.TurnCounter = 5
	require.NoError(t, store.Save(ctx, s))

	got, found, err := store.Load(ctx, "arena-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 5, got.TurnCounter)
}

// TestProperty_SaveLoadRoundTrip asserts that any state reached through play
// survives a save and load unchanged.
func TestProperty_SaveLoadRoundTrip(t *testing.T) {
	cat := catalog.Default()
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		engine := battle.NewEngine(cat, dice.NewLoggedRoller(dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")), nil), nil)
		s, err := battle.NewState("p", "i",
			battle.CombatantInit{Identity: "a", Class: string(rapid.SampledFrom(catalog.AllClassIDs).Draw(rt, "a"))},
			battle.CombatantInit{Identity: "b", Class: string(rapid.SampledFrom(catalog.AllClassIDs).Draw(rt, "b"))},
			rapid.Bool().Draw(rt, "computer"), cat)
		if err != nil {
			rt.Fatalf("NewState: %v", err)
		}
		steps := rapid.IntRange(0, 30).Draw(rt, "steps")
		for i := 0; i < steps && !s.Completed(); i++ {
			_, _ = engine.Submit(s, s.TurnSlot, rapid.IntRange(0, 2).Draw(rt, "idx"))
		}

		store := storage.NewBattleStore(memory.New(), cat, nil)
		if err := store.Save(ctx, s); err != nil {
			rt.Fatalf("Save: %v", err)
		}
		got, found, err := store.Load(ctx, "p")
		if err != nil || !found {
			rt.Fatalf("Load: found=%v err=%v", found, err)
		}
		if !assert.ObjectsAreEqual(s, got) {
			rt.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", s, got)
		}
	})
}
