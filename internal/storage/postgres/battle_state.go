package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BattleStateRepository stores battle snapshots in the battle_states table. It
// implements storage.KV.
type BattleStateRepository struct {
	db *pgxpool.Pool
}

// NewBattleStateRepository creates a BattleStateRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleStateRepository(db *pgxpool.Pool) *BattleStateRepository {
	return &BattleStateRepository{db: db}
}

// Get returns the payload stored at key.
//
// Postcondition: found is false when no row exists for key.
func (r *BattleStateRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT payload FROM battle_states WHERE key = $1`, key,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying battle state: %w", err)
	}
	return payload, true, nil
}

// Put upserts the payload at key.
//
// Precondition: value must be a JSON document.
func (r *BattleStateRepository) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO battle_states (key, payload, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upserting battle state: %w", err)
	}
	return nil
}

// Delete removes the row at key.
func (r *BattleStateRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM battle_states WHERE key = $1`, key); err != nil {
		return fmt.Errorf("deleting battle state: %w", err)
	}
	return nil
}
