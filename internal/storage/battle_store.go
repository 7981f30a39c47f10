package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/catalog"
)

// BattleStore saves and restores whole battle snapshots keyed by battle id.
type BattleStore struct {
	kv      KV
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewBattleStore creates a BattleStore over kv.
//
// Precondition: kv must not be nil. cat may be nil, in which case cooldown
// lengths are not checked against class definitions on load.
func NewBattleStore(kv KV, cat *catalog.Catalog, logger *zap.Logger) *BattleStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BattleStore{kv: kv, catalog: cat, logger: logger}
}

// Save writes the full snapshot of s, replacing any previous one.
//
// Precondition: s must not be nil.
func (b *BattleStore) Save(ctx context.Context, s *battle.State) error {
	payload, err := Encode(s)
	if err != nil {
		return err
	}
	if err := b.kv.Put(ctx, Key(s.BattleID), payload); err != nil {
		return fmt.Errorf("saving battle %q: %w", s.BattleID, err)
	}
	return nil
}

// Load restores the snapshot of battleID.
//
// Postcondition: found is false when no record exists or the record is corrupt;
// corrupt records are logged at warn. err is non-nil only when the backing
// store itself fails.
func (b *BattleStore) Load(ctx context.Context, battleID string) (*battle.State, bool, error) {
	payload, found, err := b.kv.Get(ctx, Key(battleID))
	if err != nil {
		return nil, false, fmt.Errorf("loading battle %q: %w", battleID, err)
	}
	if !found {
		return nil, false, nil
	}
	s, err := Decode(payload, b.catalog)
	if err != nil {
		if errors.Is(err, ErrCorruptState) {
			b.logger.Warn("discarding corrupt battle record",
				zap.String("battle_id", battleID),
				zap.Error(err),
			)
			return nil, false, nil
		}
		return nil, false, err
	}
	if s.BattleID != battleID {
		b.logger.Warn("discarding battle record stored under another id",
			zap.String("battle_id", battleID),
			zap.String("record_battle_id", s.BattleID),
		)
		return nil, false, nil
	}
	return s, true, nil
}

// Delete removes the snapshot of battleID.
func (b *BattleStore) Delete(ctx context.Context, battleID string) error {
	if err := b.kv.Delete(ctx, Key(battleID)); err != nil {
		return fmt.Errorf("deleting battle %q: %w", battleID, err)
	}
	return nil
}
