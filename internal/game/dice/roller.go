package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged range draws.
// Every draw is logged at debug level with label, bounds, and value.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src must be non-nil. A nil logger is replaced by a no-op logger.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Between draws from the inclusive range [lo, hi] and logs the result.
//
// Precondition: lo <= hi.
// Postcondition: the returned RangeRoll has lo <= Value <= hi.
func (r *Roller) Between(label string, lo, hi int) RangeRoll {
	roll := RangeRoll{Label: label, Min: lo, Max: hi, Value: Between(r.src, lo, hi)}
	r.logger.Debug("range roll",
		zap.String("label", roll.Label),
		zap.Int("min", roll.Min),
		zap.Int("max", roll.Max),
		zap.Int("value", roll.Value),
	)
	return roll
}
