package result

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes each result as a structured info log line.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Publish logs r.
func (l *LogSink) Publish(_ context.Context, r BattleResult) error {
	l.logger.Info("battle result",
		zap.String("battle_id", r.BattleID),
		zap.String("instance_id", r.InstanceID),
		zap.String("winner", r.WinnerIdentity),
		zap.Int("experience", r.ExperienceGained),
		zap.String("loser", r.LoserIdentity),
		zap.Int("loser_experience", r.LoserExperience),
		zap.Int("rounds", r.Rounds),
		zap.Int("turns", r.Turns),
	)
	return nil
}
