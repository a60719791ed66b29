// File: waymate/handlers/supporter.go
package handlers

import (
	"net/http"

	supporterSvc "waymate/services/supporter"
	"waymate/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SupporterHandler serves the responder-roster endpoints.
type SupporterHandler struct {
	Svc supporterSvc.SupporterService
}

// EnrollHandler handles POST /supporters: the caller joins the roster.
func (h *SupporterHandler) EnrollHandler(c *gin.Context) {
	logger := getLogger(c)
	userID := c.GetString("userID")

	sup, err := h.Svc.Enroll(userID)
	if err != nil {
		logger.Error("Failed to enroll supporter", zap.String("userId", userID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to enroll supporter")
		return
	}
	utils.JSONData(c, http.StatusCreated, sup)
}

// WithdrawHandler handles DELETE /supporters/:id. Self-service or console.
func (h *SupporterHandler) WithdrawHandler(c *gin.Context) {
	logger := getLogger(c)
	id := c.Param("id")
	if c.GetString("userID") != id && !c.GetBool("isAdmin") {
		utils.JSONError(c, http.StatusForbidden, "You can only withdraw yourself")
		return
	}

	if err := h.Svc.Withdraw(id); err != nil {
		logger.Error("Failed to withdraw supporter", zap.String("id", id), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to withdraw supporter")
		return
	}
	utils.JSONData(c, http.StatusOK, gin.H{"message": "Supporter withdrawn"})
}

// SetAvailabilityHandler handles PATCH /supporters/:id/availability.
func (h *SupporterHandler) SetAvailabilityHandler(c *gin.Context) {
	logger := getLogger(c)
	id := c.Param("id")
	if c.GetString("userID") != id && !c.GetBool("isAdmin") {
		utils.JSONError(c, http.StatusForbidden, "You can only change your own availability")
		return
	}

	var req struct {
		IsAvailable *bool `json:"is_available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: is_available is required")
		return
	}

	if err := h.Svc.SetAvailability(id, *req.IsAvailable); err != nil {
		logger.Error("Failed to set availability", zap.String("id", id), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to set availability")
		return
	}
	utils.JSONData(c, http.StatusOK, gin.H{"is_available": *req.IsAvailable})
}

// ListHandler handles GET /supporters.
func (h *SupporterHandler) ListHandler(c *gin.Context) {
	roster, err := h.Svc.List()
	if err != nil {
		getLogger(c).Error("Failed to list supporters", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list supporters")
		return
	}
	utils.JSONData(c, http.StatusOK, roster)
}

// ListWithUserInfoHandler handles GET /supporters/with-user-info. The console
// uses this to render names and phone numbers next to availability.
func (h *SupporterHandler) ListWithUserInfoHandler(c *gin.Context) {
	roster, err := h.Svc.ListWithUserInfo()
	if err != nil {
		getLogger(c).Error("Failed to list supporters with user info", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list supporters")
		return
	}
	utils.JSONData(c, http.StatusOK, roster)
}
