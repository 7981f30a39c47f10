package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/result"
)

// ErrBattleNotFound is returned when no live or stored battle exists for an id.
var ErrBattleNotFound = errors.New("battle not found")

// ErrComputerControlled is returned when a caller tries to act for the slot
// driven by the computer opponent.
var ErrComputerControlled = fmt.Errorf("%w: slot is computer controlled", battle.ErrIllegalAction)

// aiTurnTimeout bounds the persistence work of one computer move.
const aiTurnTimeout = 5 * time.Second

// BattleStore persists battle snapshots.
type BattleStore interface {
	Save(ctx context.Context, s *battle.State) error
	Load(ctx context.Context, battleID string) (*battle.State, bool, error)
	Delete(ctx context.Context, battleID string) error
}

// Terminator settles completed battles.
type Terminator interface {
	OnTermination(ctx context.Context, s *battle.State) (result.BattleResult, bool)
}

// Chooser selects the computer opponent's move.
type Chooser interface {
	ChooseAction(s *battle.State, slot battle.Slot) (int, bool)
}

// EnterRequest is the pairing used to create a battle that does not exist yet.
type EnterRequest struct {
	SlotA            battle.CombatantInit `json:"slotA"`
	SlotB            battle.CombatantInit `json:"slotB"`
	ComputerOpponent bool                 `json:"computerOpponent"`
}

// ActionResult reports a resolved move together with the battle as it now stands.
type ActionResult struct {
	Outcome  battle.Outcome
	Snapshot battle.Snapshot
	// Result is set when this move completed the battle and the result was reported.
	Result *result.BattleResult
}

// liveBattle is the in-memory owner of one battle. mu serializes every read,
// validate, mutate, and persist sequence on state.
type liveBattle struct {
	mu    sync.Mutex
	state *battle.State
}

// BattleHandler is the single owner of in-progress battles. It serializes moves
// per battle, persists every resolved move, drives the computer opponent on a
// paced timer, and hands completed battles to the Terminator.
//
// Precondition: All fields must be non-nil after construction.
type BattleHandler struct {
	engine    *battle.Engine
	store     BattleStore
	reporter  Terminator
	opponent  Chooser
	scheduler *TurnScheduler
	logger    *zap.Logger
	newID     func() string

	mu      sync.Mutex
	battles map[string]*liveBattle
}

// NewBattleHandler creates a BattleHandler.
//
// Precondition: all arguments except logger must be non-nil.
// Postcondition: Returns a non-nil BattleHandler.
func NewBattleHandler(
	engine *battle.Engine,
	store BattleStore,
	reporter Terminator,
	opponent Chooser,
	scheduler *TurnScheduler,
	logger *zap.Logger,
) *BattleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BattleHandler{
		engine:    engine,
		store:     store,
		reporter:  reporter,
		opponent:  opponent,
		scheduler: scheduler,
		logger:    logger,
		newID:     uuid.NewString,
		battles:   make(map[string]*liveBattle),
	}
}

// lock returns the live entry for battleID with its mutex held, creating the
// entry when absent. It retries when the entry was forgotten while waiting.
func (h *BattleHandler) lock(battleID string) *liveBattle {
	for {
		h.mu.Lock()
		lb, ok := h.battles[battleID]
		if !ok {
			lb = &liveBattle{}
			h.battles[battleID] = lb
		}
		h.mu.Unlock()

		lb.mu.Lock()
		h.mu.Lock()
		current := h.battles[battleID] == lb
		h.mu.Unlock()
		if current {
			return lb
		}
		lb.mu.Unlock()
	}
}

// forget drops the map entry for battleID if it is still lb and holds no battle.
//
// Precondition: lb.mu is held.
func (h *BattleHandler) forget(battleID string, lb *liveBattle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.battles[battleID] == lb && lb.state == nil {
		delete(h.battles, battleID)
	}
}

// restoreLocked makes lb.state the in-progress battle for battleID, loading it
// from the store when it is not live.
//
// Precondition: lb.mu is held.
// Postcondition: returns ErrBattleNotFound when neither memory nor the store
// holds the battle.
func (h *BattleHandler) restoreLocked(ctx context.Context, battleID string, lb *liveBattle) error {
	if lb.state != nil {
		return nil
	}
	s, found, err := h.store.Load(ctx, battleID)
	if err != nil {
		return err
	}
	if !found {
		h.forget(battleID, lb)
		return ErrBattleNotFound
	}
	lb.state = s
	h.logger.Info("battle restored",
		zap.String("battle_id", battleID),
		zap.String("instance_id", s.InstanceID),
		zap.Int("round", s.RoundNumber),
	)
	return nil
}

// Enter resumes the in-progress battle for battleID, or starts a new one from req
// when none exists or the previous one has completed.
//
// Postcondition: any pending computer move for battleID is cancelled and, when the
// computer is to act, rescheduled against the resumed or new instance.
func (h *BattleHandler) Enter(ctx context.Context, battleID string, req EnterRequest) (battle.Snapshot, error) {
	lb := h.lock(battleID)
	defer lb.mu.Unlock()
	defer func() {
		if lb.state == nil {
			h.forget(battleID, lb)
		}
	}()

	h.scheduler.Cancel(battleID)

	if lb.state != nil && lb.state.Completed() {
		lb.state = nil
	}
	if lb.state == nil {
		s, found, err := h.store.Load(ctx, battleID)
		if err != nil {
			return battle.Snapshot{}, err
		}
		if found && !s.Completed() {
			lb.state = s
		}
	}

	if lb.state == nil {
		s, err := battle.NewState(battleID, h.newID(), req.SlotA, req.SlotB, req.ComputerOpponent, h.engine.Catalog())
		if err != nil {
			return battle.Snapshot{}, err
		}
		if err := h.store.Save(ctx, s); err != nil {
			return battle.Snapshot{}, fmt.Errorf("persisting new battle: %w", err)
		}
		lb.state = s
		h.logger.Info("battle started",
			zap.String("battle_id", battleID),
			zap.String("instance_id", s.InstanceID),
			zap.String("slot_a", s.SlotA.Identity),
			zap.String("slot_b", s.SlotB.Identity),
			zap.Bool("computer", s.IsComputerOpponent),
		)
	}

	h.scheduleAILocked(lb.state)
	return h.engine.Snapshot(lb.state), nil
}

// SubmitAction resolves slot's use of the power at powerIndex.
//
// Postcondition: On an illegal move the battle is unchanged and the error wraps
// battle.ErrIllegalAction. On a persistence failure the in-memory battle is rolled
// back to its state before the move.
func (h *BattleHandler) SubmitAction(ctx context.Context, battleID string, slot battle.Slot, powerIndex int) (ActionResult, error) {
	return h.act(ctx, battleID, slot, func(s *battle.State) (battle.Outcome, error) {
		return h.engine.Submit(s, slot, powerIndex)
	})
}

// Pass hands the turn over without resolving a power.
//
// Postcondition: as SubmitAction.
func (h *BattleHandler) Pass(ctx context.Context, battleID string, slot battle.Slot) (ActionResult, error) {
	return h.act(ctx, battleID, slot, func(s *battle.State) (battle.Outcome, error) {
		return h.engine.Pass(s, slot)
	})
}

func (h *BattleHandler) act(ctx context.Context, battleID string, slot battle.Slot, move func(*battle.State) (battle.Outcome, error)) (ActionResult, error) {
	lb := h.lock(battleID)
	defer lb.mu.Unlock()

	if err := h.restoreLocked(ctx, battleID, lb); err != nil {
		return ActionResult{}, err
	}
	s := lb.state
	if s.IsComputerOpponent && slot == battle.SlotB && !s.Completed() {
		return ActionResult{}, ErrComputerControlled
	}
	return h.applyLocked(ctx, lb, move)
}

// applyLocked runs move against lb.state, persists the result, and settles or
// schedules whatever comes next.
//
// Precondition: lb.mu is held and lb.state is non-nil.
func (h *BattleHandler) applyLocked(ctx context.Context, lb *liveBattle, move func(*battle.State) (battle.Outcome, error)) (ActionResult, error) {
	before := lb.state.Clone()
	out, err := move(lb.state)
	if err != nil {
		return ActionResult{}, err
	}
	if err := h.store.Save(ctx, lb.state); err != nil {
		lb.state = before
		h.logger.Error("persisting battle failed, move rolled back",
			zap.String("battle_id", before.BattleID),
			zap.Error(err),
		)
		return ActionResult{}, fmt.Errorf("persisting battle: %w", err)
	}

	res := ActionResult{Outcome: out}
	if out.Completed {
		h.scheduler.Cancel(lb.state.BattleID)
		if r, reported := h.reporter.OnTermination(ctx, lb.state); reported {
			res.Result = &r
		}
	} else {
		h.scheduleAILocked(lb.state)
	}
	res.Snapshot = h.engine.Snapshot(lb.state)
	return res, nil
}

// Snapshot returns the read-only view of battleID.
func (h *BattleHandler) Snapshot(ctx context.Context, battleID string) (battle.Snapshot, error) {
	lb := h.lock(battleID)
	defer lb.mu.Unlock()
	if err := h.restoreLocked(ctx, battleID, lb); err != nil {
		return battle.Snapshot{}, err
	}
	return h.engine.Snapshot(lb.state), nil
}

// Stop cancels every pending computer move.
func (h *BattleHandler) Stop() {
	h.scheduler.Stop()
}

// scheduleAILocked queues the computer's move when it is slot B's turn in a
// computer battle. The callback is bound to the instance and turn it was
// scheduled for.
//
// Precondition: the battle's lock is held.
func (h *BattleHandler) scheduleAILocked(s *battle.State) {
	if !s.IsComputerOpponent || s.Completed() || s.TurnSlot != battle.SlotB {
		return
	}
	battleID, instanceID, turn := s.BattleID, s.InstanceID, s.TurnCounter
	h.scheduler.Schedule(battleID, func() {
		h.aiTurn(battleID, instanceID, turn)
	})
}

// aiTurn plays the computer's move if the battle is still at the instance and
// turn the move was scheduled for.
func (h *BattleHandler) aiTurn(battleID, instanceID string, turn int) {
	h.mu.Lock()
	lb, ok := h.battles[battleID]
	h.mu.Unlock()
	if !ok {
		return
	}

	lb.mu.Lock()
	defer lb.mu.Unlock()

	s := lb.state
	if s == nil || s.InstanceID != instanceID || s.TurnCounter != turn || s.Completed() || s.TurnSlot != battle.SlotB {
		h.logger.Debug("discarding stale computer move",
			zap.String("battle_id", battleID),
			zap.String("instance_id", instanceID),
			zap.Int("turn", turn),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), aiTurnTimeout)
	defer cancel()

	idx, ok := h.opponent.ChooseAction(s, battle.SlotB)
	var err error
	if ok {
		_, err = h.applyLocked(ctx, lb, func(st *battle.State) (battle.Outcome, error) {
			return h.engine.Submit(st, battle.SlotB, idx)
		})
	} else {
		_, err = h.applyLocked(ctx, lb, func(st *battle.State) (battle.Outcome, error) {
			return h.engine.Pass(st, battle.SlotB)
		})
	}
	if err != nil {
		h.logger.Error("computer move failed",
			zap.String("battle_id", battleID),
			zap.Error(err),
		)
	}
}
