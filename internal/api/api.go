// Package api exposes the battle handler and class catalog over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/catalog"
	"github.com/cory-johannsen/cardbattle/internal/gameserver"
	"github.com/cory-johannsen/cardbattle/internal/observability"
)

const jsonKeyError = "error"

// Battles is the battle surface served by the API.
type Battles interface {
	Enter(ctx context.Context, battleID string, req gameserver.EnterRequest) (battle.Snapshot, error)
	SubmitAction(ctx context.Context, battleID string, slot battle.Slot, powerIndex int) (gameserver.ActionResult, error)
	Pass(ctx context.Context, battleID string, slot battle.Slot) (gameserver.ActionResult, error)
	Snapshot(ctx context.Context, battleID string) (battle.Snapshot, error)
}

// HealthFunc reports whether a backing dependency is reachable.
type HealthFunc func(ctx context.Context) error

// Handler serves the HTTP routes.
type Handler struct {
	battles Battles
	catalog *catalog.Catalog
	health  HealthFunc
	logger  *zap.Logger
}

// NewHandler creates a Handler. health may be nil.
//
// Precondition: battles and cat must not be nil.
func NewHandler(battles Battles, cat *catalog.Catalog, health HealthFunc, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{battles: battles, catalog: cat, health: health, logger: logger}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(observability.Recovery(h.logger), observability.RequestLogger(h.logger))

	r.GET("/healthz", h.Healthz)
	r.GET("/classes", h.ListClasses)
	r.GET("/classes/:class", h.GetClass)

	b := r.Group("/battles/:battleId")
	b.POST("", h.EnterBattle)
	b.GET("", h.GetBattle)
	b.POST("/actions", h.SubmitAction)
	b.POST("/pass", h.Pass)
	return r
}

// Healthz reports liveness and, when configured, backing store reachability.
func (h *Handler) Healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", jsonKeyError: err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps domain errors onto HTTP status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, gameserver.ErrBattleNotFound):
		c.JSON(http.StatusNotFound, gin.H{jsonKeyError: err.Error()})
	case errors.Is(err, battle.ErrIllegalAction):
		c.JSON(http.StatusConflict, gin.H{jsonKeyError: err.Error()})
	case errors.Is(err, catalog.ErrUnknownClass), errors.Is(err, battle.ErrInvalidCombatant):
		c.JSON(http.StatusBadRequest, gin.H{jsonKeyError: err.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: "internal error"})
	}
}
