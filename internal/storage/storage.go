// Package storage persists battle state snapshots behind a key-value surface.
package storage

import (
	"context"
	"errors"
)

// ErrCorruptState is returned when a stored record cannot be decoded into a
// battle state that satisfies every invariant.
var ErrCorruptState = errors.New("corrupt battle state")

// KeyPrefix is prepended to a battle id to form its storage key.
const KeyPrefix = "battle_"

// Key returns the storage key of battleID.
func Key(battleID string) string { return KeyPrefix + battleID }

// KV is the key-value surface battle snapshots are stored on.
//
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value stored at key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Put stores value at key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
