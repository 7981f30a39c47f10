package result

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/dice"
)

// Default experience bounds for the winner.
const (
	DefaultRewardMin = 50
	DefaultRewardMax = 100
)

// Deleter removes a stored battle snapshot.
type Deleter interface {
	Delete(ctx context.Context, battleID string) error
}

// Rewards bounds the winner's experience draw.
type Rewards struct {
	Min int
	Max int
}

// Validate checks 0 <= Min <= Max.
func (r Rewards) Validate() error {
	if r.Min < 0 || r.Max < r.Min {
		return fmt.Errorf("reward bounds [%d,%d] must satisfy 0 <= min <= max", r.Min, r.Max)
	}
	return nil
}

// Reporter publishes battle results exactly once per battle instance and then
// deletes the stored snapshot.
//
// Invariant: reported maps each battle id to the last instance published for it;
// that instance is never published again. Only one entry is held per battle id.
type Reporter struct {
	sink    Sink
	store   Deleter
	roller  *dice.Roller
	rewards Rewards
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	reported map[string]string
}

// NewReporter creates a Reporter.
//
// Precondition: sink, store, and roller must not be nil; rewards must be valid.
func NewReporter(sink Sink, store Deleter, roller *dice.Roller, rewards Rewards, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{
		sink:     sink,
		store:    store,
		roller:   roller,
		rewards:  rewards,
		logger:   logger,
		now:      time.Now,
		reported: make(map[string]string),
	}
}

// OnTermination publishes the result of the completed battle s and deletes its
// stored snapshot.
//
// Precondition: s must be completed.
// Postcondition: reported is false, and nothing is published, when s is still in
// progress or its instance has already been reported. A sink failure is logged
// and the snapshot is deleted regardless.
func (r *Reporter) OnTermination(ctx context.Context, s *battle.State) (BattleResult, bool) {
	winnerSlot, ok := s.Winner()
	if !ok {
		r.logger.Error("termination signalled for battle in progress",
			zap.String("battle_id", s.BattleID))
		return BattleResult{}, false
	}

	r.mu.Lock()
	if last, seen := r.reported[s.BattleID]; seen && last == s.InstanceID {
		r.mu.Unlock()
		r.logger.Warn("double termination ignored",
			zap.String("battle_id", s.BattleID),
			zap.String("instance_id", s.InstanceID),
		)
		return BattleResult{}, false
	}
	r.reported[s.BattleID] = s.InstanceID
	r.mu.Unlock()

	winner := s.Combatant(winnerSlot)
	loser := s.Combatant(winnerSlot.Other())
	exp := r.roller.Between("experience", r.rewards.Min, r.rewards.Max).Value
	res := BattleResult{
		BattleID:         s.BattleID,
		InstanceID:       s.InstanceID,
		WinnerIdentity:   winner.Identity,
		ExperienceGained: exp,
		LoserIdentity:    loser.Identity,
		LoserExperience:  exp / 2,
		Rounds:           s.RoundNumber,
		Turns:            s.TurnCounter,
		CompletedAt:      r.now().UTC(),
	}

	if err := r.sink.Publish(ctx, res); err != nil {
		r.logger.Error("publishing battle result",
			zap.String("battle_id", s.BattleID),
			zap.Error(err),
		)
	}
	if err := r.store.Delete(ctx, s.BattleID); err != nil {
		r.logger.Error("deleting completed battle",
			zap.String("battle_id", s.BattleID),
			zap.Error(err),
		)
	}
	r.logger.Info("battle completed",
		zap.String("battle_id", s.BattleID),
		zap.String("winner", res.WinnerIdentity),
		zap.Int("experience", res.ExperienceGained),
	)
	return res, true
}
