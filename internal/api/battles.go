package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/result"
	"github.com/cory-johannsen/cardbattle/internal/gameserver"
)

// ActionRequest is the body of a power submission.
type ActionRequest struct {
	Slot  *battle.Slot `json:"slot" binding:"required"`
	Power *int         `json:"power" binding:"required"`
}

// PassRequest is the body of a pass.
type PassRequest struct {
	Slot *battle.Slot `json:"slot" binding:"required"`
}

// OutcomeView is the JSON form of a resolved move.
type OutcomeView struct {
	Actor        battle.Slot `json:"actor"`
	Passed       bool        `json:"passed"`
	Power        string      `json:"power,omitempty"`
	DamageDealt  int         `json:"damageDealt"`
	ShieldGained int         `json:"shieldGained"`
	Healed       int         `json:"healed"`
	SelfDamage   int         `json:"selfDamage"`
	LogEntry     string      `json:"logEntry,omitempty"`
	Completed    bool        `json:"completed"`
}

// ActionResponse is returned by the action and pass routes.
type ActionResponse struct {
	Outcome OutcomeView          `json:"outcome"`
	Battle  battle.Snapshot      `json:"battle"`
	Result  *result.BattleResult `json:"result,omitempty"`
}

func toResponse(res gameserver.ActionResult) ActionResponse {
	o := res.Outcome
	return ActionResponse{
		Outcome: OutcomeView{
			Actor:        o.Actor,
			Passed:       o.Passed,
			Power:        o.Power,
			DamageDealt:  o.DamageDealt,
			ShieldGained: o.ShieldGained,
			Healed:       o.Healed,
			SelfDamage:   o.SelfDamage,
			LogEntry:     o.LogEntry,
			Completed:    o.Completed,
		},
		Battle: res.Snapshot,
		Result: res.Result,
	}
}

// EnterBattle resumes or creates the battle named in the path.
func (h *Handler) EnterBattle(c *gin.Context) {
	var req gameserver.EnterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{jsonKeyError: "invalid request: " + err.Error()})
		return
	}
	snap, err := h.battles.Enter(c.Request.Context(), c.Param("battleId"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetBattle returns the battle snapshot.
func (h *Handler) GetBattle(c *gin.Context) {
	snap, err := h.battles.Snapshot(c.Request.Context(), c.Param("battleId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// SubmitAction resolves one power submission.
func (h *Handler) SubmitAction(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{jsonKeyError: "invalid request: " + err.Error()})
		return
	}
	res, err := h.battles.SubmitAction(c.Request.Context(), c.Param("battleId"), *req.Slot, *req.Power)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(res))
}

// Pass hands the turn over without resolving a power.
func (h *Handler) Pass(c *gin.Context) {
	var req PassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{jsonKeyError: "invalid request: " + err.Error()})
		return
	}
	res, err := h.battles.Pass(c.Request.Context(), c.Param("battleId"), *req.Slot)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(res))
}
