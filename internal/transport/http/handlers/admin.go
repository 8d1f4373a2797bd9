package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/usecase"
)

// AdminHandler serves administrative reporting endpoints.
type AdminHandler struct {
	users *usecase.UserService
}

// NewAdminHandler builds an admin handler.
func NewAdminHandler(users *usecase.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

// UserStats reports account counts grouped by status.
func (h *AdminHandler) UserStats(c *gin.Context) {
	stats, err := h.users.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "INTERNAL_ERROR", "failed to collect user stats"))
		return
	}

	c.JSON(http.StatusOK, UserStatsResponse{
		Pending:  stats.Pending,
		Active:   stats.Active,
		Locked:   stats.Locked,
		Disabled: stats.Disabled,
		Total:    stats.Total,
	})
}
