package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cory-johannsen/cardbattle/internal/game/catalog"
)

// ListClasses returns every class definition in catalog order.
func (h *Handler) ListClasses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"classes": h.catalog.Classes()})
}

// GetClass returns one class definition.
func (h *Handler) GetClass(c *gin.Context) {
	id, err := catalog.ParseClassID(c.Param("class"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{jsonKeyError: err.Error()})
		return
	}
	cls, err := h.catalog.Class(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{jsonKeyError: err.Error()})
		return
	}
	c.JSON(http.StatusOK, cls)
}
