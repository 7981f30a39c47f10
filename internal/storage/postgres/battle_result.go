package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/cardbattle/internal/game/result"
)

// ErrResultNotFound is returned when a result lookup yields no rows.
var ErrResultNotFound = errors.New("battle result not found")

// ResultRepository records battle outcomes in the battle_results table, the
// hand-off point for the settlement collaborator. It implements result.Sink.
type ResultRepository struct {
	db *pgxpool.Pool
}

// NewResultRepository creates a ResultRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewResultRepository(db *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{db: db}
}

// Publish inserts r. A second publish for the same battle instance is a no-op.
//
// Precondition: r.BattleID, r.InstanceID, and r.WinnerIdentity must be non-empty.
func (repo *ResultRepository) Publish(ctx context.Context, r result.BattleResult) error {
	_, err := repo.db.Exec(ctx,
		`INSERT INTO battle_results
		   (instance_id, battle_id, winner_identity, experience_gained,
		    loser_identity, loser_experience, rounds, turns, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (instance_id) DO NOTHING`,
		r.InstanceID, r.BattleID, r.WinnerIdentity, r.ExperienceGained,
		r.LoserIdentity, r.LoserExperience, r.Rounds, r.Turns, r.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting battle result: %w", err)
	}
	return nil
}

// Get returns the result recorded for a battle instance.
//
// Postcondition: Returns ErrResultNotFound when no result exists.
func (repo *ResultRepository) Get(ctx context.Context, instanceID string) (result.BattleResult, error) {
	var r result.BattleResult
	err := repo.db.QueryRow(ctx,
		`SELECT instance_id, battle_id, winner_identity, experience_gained,
		        loser_identity, loser_experience, rounds, turns, completed_at
		 FROM battle_results WHERE instance_id = $1`,
		instanceID,
	).Scan(&r.InstanceID, &r.BattleID, &r.WinnerIdentity, &r.ExperienceGained,
		&r.LoserIdentity, &r.LoserExperience, &r.Rounds, &r.Turns, &r.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return result.BattleResult{}, ErrResultNotFound
	}
	if err != nil {
		return result.BattleResult{}, fmt.Errorf("querying battle result: %w", err)
	}
	return r, nil
}

// ListForIdentity returns up to limit results in which identity took part, most
// recent first.
//
// Precondition: limit must be > 0.
func (repo *ResultRepository) ListForIdentity(ctx context.Context, identity string, limit int) ([]result.BattleResult, error) {
	rows, err := repo.db.Query(ctx,
		`SELECT instance_id, battle_id, winner_identity, experience_gained,
		        loser_identity, loser_experience, rounds, turns, completed_at
		 FROM battle_results
		 WHERE winner_identity = $1 OR loser_identity = $1
		 ORDER BY completed_at DESC
		 LIMIT $2`,
		identity, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battle results: %w", err)
	}
	defer rows.Close()

	var out []result.BattleResult
	for rows.Next() {
		var r result.BattleResult
		if err := rows.Scan(&r.InstanceID, &r.BattleID, &r.WinnerIdentity, &r.ExperienceGained,
			&r.LoserIdentity, &r.LoserExperience, &r.Rounds, &r.Turns, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning battle result: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battle results: %w", err)
	}
	return out, nil
}
