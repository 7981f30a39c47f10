// Package result converts a terminated battle into a BattleResult, hands it to
// the settlement sinks exactly once per battle instance, and clears the stored
// snapshot.
package result

import (
	"context"
	"errors"
	"time"
)

// BattleResult is the termination event handed to settlement.
type BattleResult struct {
	BattleID         string    `json:"battleId"`
	InstanceID       string    `json:"instanceId"`
	WinnerIdentity   string    `json:"winnerIdentity"`
	ExperienceGained int       `json:"experienceGained"`
	LoserIdentity    string    `json:"loserIdentity"`
	LoserExperience  int       `json:"loserExperience"`
	Rounds           int       `json:"rounds"`
	Turns            int       `json:"turns"`
	CompletedAt      time.Time `json:"completedAt"`
}

// Sink receives battle results.
type Sink interface {
	Publish(ctx context.Context, r BattleResult) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, r BattleResult) error

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, r BattleResult) error { return f(ctx, r) }

// MultiSink publishes to every sink in order. All sinks are attempted; the
// returned error joins every failure.
type MultiSink []Sink

// Publish fans r out to every sink.
func (m MultiSink) Publish(ctx context.Context, r BattleResult) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ChanSink delivers results on a buffered channel.
type ChanSink struct {
	C chan BattleResult
}

// NewChanSink returns a ChanSink with the given buffer size.
func NewChanSink(size int) *ChanSink {
	return &ChanSink{C: make(chan BattleResult, size)}
}

// Publish sends r, giving up when ctx is done.
func (c *ChanSink) Publish(ctx context.Context, r BattleResult) error {
	select {
	case c.C <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
