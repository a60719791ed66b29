// File: waymate/handlers/traveller.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	travellerRepo "waymate/database/repository/traveller"
	userRepo "waymate/database/repository/user"
	"waymate/models"
	sosSvc "waymate/services/sos"
	"waymate/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// TravellerHandler serves the emergency-record endpoints for all three
// surfaces: traveler self-service, supporter feed and admin console.
type TravellerHandler struct {
	Travellers travellerRepo.TravellerRepository
	Users      userRepo.UserRepository
	SOS        sosSvc.SOSService
}

// CreateTravellerHandler handles POST /travellers. The record belongs to the
// authenticated caller; registration normally bootstraps it, so this mostly
// serves accounts migrated from older app versions.
func (h *TravellerHandler) CreateTravellerHandler(c *gin.Context) {
	logger := getLogger(c)
	userID := c.GetString("userID")

	var req struct {
		Bio              string  `json:"bio"`
		Latitude         float64 `json:"latitude"`
		Longitude        float64 `json:"longitude"`
		IsSharedLocation bool    `json:"is_shared_location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	now := time.Now().UTC()
	t := &models.Traveller{
		UserID:            userID,
		Bio:               req.Bio,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		IsSafe:            true,
		IsSharedLocation:  req.IsSharedLocation,
		EmergencyContacts: models.ContactList{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := h.Travellers.Create(t); err != nil {
		logger.Error("Failed to create traveller record", zap.String("userId", userID), zap.Error(err))
		utils.JSONError(c, http.StatusConflict, "Traveller record already exists")
		return
	}
	utils.JSONData(c, http.StatusCreated, t)
}

// GetTravellerHandler handles GET /travellers/:id.
func (h *TravellerHandler) GetTravellerHandler(c *gin.Context) {
	id := c.Param("id")
	t, err := h.Travellers.GetByID(id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.JSONError(c, http.StatusNotFound, "Traveller not found")
			return
		}
		getLogger(c).Error("Failed to fetch traveller", zap.String("id", id), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to fetch traveller")
		return
	}
	utils.JSONData(c, http.StatusOK, t)
}

// UpdateTravellerHandler handles PATCH /travellers/:id. Only the owner may
// edit the profile; assignment-list changes go through the dedicated contact
// endpoints so concurrent supporters never overwrite each other.
func (h *TravellerHandler) UpdateTravellerHandler(c *gin.Context) {
	logger := getLogger(c)
	id := c.Param("id")
	if !h.callerOwns(c, id) {
		utils.JSONError(c, http.StatusForbidden, "You can only update your own record")
		return
	}

	var upd models.TravellerUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	t, err := h.Travellers.Update(id, upd)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.JSONError(c, http.StatusNotFound, "Traveller not found")
			return
		}
		logger.Error("Failed to update traveller", zap.String("id", id), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to update traveller")
		return
	}
	utils.JSONData(c, http.StatusOK, t)
}

// ActivateSOSHandler handles POST /travellers/:id/activate. Coordinates come
// from the device; the store write flips the record into an active emergency
// in a single operation.
func (h *TravellerHandler) ActivateSOSHandler(c *gin.Context) {
	logger := getLogger(c)
	id := c.Param("id")
	if !h.callerOwns(c, id) {
		utils.JSONError(c, http.StatusForbidden, "You can only raise an SOS for yourself")
		return
	}

	var req struct {
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: latitude and longitude are required")
		return
	}

	t, err := h.SOS.Activate(c.Request.Context(), id, *req.Latitude, *req.Longitude)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.JSONError(c, http.StatusNotFound, "Traveller not found")
			return
		}
		logger.Error("Failed to activate SOS", zap.String("id", id), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to activate SOS")
		return
	}
	utils.JSONData(c, http.StatusOK, t)
}

// ResolveSOSHandler handles POST /travellers/:id/resolve. Travelers cancel
// their own SOS; supporters and the console resolve on someone's behalf.
func (h *TravellerHandler) ResolveSOSHandler(c *gin.Context) {
	logger := getLogger(c)
	id := c.Param("id")

	resolvedBy := c.GetString("userID")
	if resolvedBy == "" && c.GetBool("isAdmin") {
		resolvedBy = "console"
	}
	if resolvedBy != id && !c.GetBool("isAdmin") && !h.callerIsSupporter(c) {
		utils.JSONError(c, http.StatusForbidden, "Only supporters may resolve another traveler's SOS")
		return
	}

	t, err := h.SOS.Resolve(c.Request.Context(), id, resolvedBy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.JSONError(c, http.StatusNotFound, "Traveller not found")
			return
		}
		logger.Error("Failed to resolve SOS", zap.String("id", id), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to resolve SOS")
		return
	}
	utils.JSONData(c, http.StatusOK, t)
}

// AssignContactHandler handles POST /travellers/:id/contacts. The body may
// name the supporter; without one, the caller assigns themselves.
func (h *TravellerHandler) AssignContactHandler(c *gin.Context) {
	logger := getLogger(c)
	id := c.Param("id")

	var req struct {
		SupporterID string `json:"supporter_id"`
	}
	// Body is optional for self-assignment.
	_ = c.ShouldBindJSON(&req)
	if req.SupporterID == "" {
		req.SupporterID = c.GetString("userID")
	}
	if req.SupporterID == "" {
		utils.JSONError(c, http.StatusBadRequest, "supporter_id is required")
		return
	}

	t, err := h.SOS.AssignSupporter(c.Request.Context(), id, req.SupporterID)
	if err != nil {
		switch {
		case errors.Is(err, sosSvc.ErrAlreadyAssigned):
			utils.JSONError(c, http.StatusConflict, "Supporter is already assigned to this SOS")
		case errors.Is(err, sosSvc.ErrNoActiveEmergency):
			utils.JSONError(c, http.StatusConflict, "Traveller has no active SOS")
		case errors.Is(err, sosSvc.ErrNotSupporter):
			utils.JSONError(c, http.StatusBadRequest, "Assignee is not a registered supporter")
		default:
			logger.Error("Failed to assign supporter",
				zap.String("id", id), zap.String("supporterId", req.SupporterID), zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Failed to assign supporter")
		}
		return
	}
	utils.JSONData(c, http.StatusOK, t)
}

// RemoveContactHandler handles DELETE /travellers/:id/contacts/:supporterId.
func (h *TravellerHandler) RemoveContactHandler(c *gin.Context) {
	logger := getLogger(c)
	id := c.Param("id")
	supporterID := c.Param("supporterId")

	t, err := h.SOS.RemoveSupporter(c.Request.Context(), id, supporterID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.JSONError(c, http.StatusNotFound, "Traveller not found")
			return
		}
		logger.Error("Failed to remove supporter",
			zap.String("id", id), zap.String("supporterId", supporterID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to remove supporter")
		return
	}
	utils.JSONData(c, http.StatusOK, t)
}

// GetAllSOSHandler handles the console's GET /admin/sos: every active
// emergency plus the recently resolved ones.
func (h *TravellerHandler) GetAllSOSHandler(c *gin.Context) {
	records, err := h.SOS.ListAll()
	if err != nil {
		getLogger(c).Error("Failed to list SOS records", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list SOS records")
		return
	}
	utils.JSONData(c, http.StatusOK, records)
}

// GetSupporterFeedHandler handles GET /travellers/sos/supporter/:id: the
// emergencies one supporter can act on.
func (h *TravellerHandler) GetSupporterFeedHandler(c *gin.Context) {
	id := c.Param("id")
	if !h.callerOwns(c, id) && !c.GetBool("isAdmin") {
		utils.JSONError(c, http.StatusForbidden, "You can only read your own feed")
		return
	}

	records, err := h.SOS.ListForSupporter(id)
	if err != nil {
		getLogger(c).Error("Failed to list supporter feed", zap.String("id", id), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list supporter feed")
		return
	}
	utils.JSONData(c, http.StatusOK, records)
}

func (h *TravellerHandler) callerOwns(c *gin.Context, id string) bool {
	return c.GetString("userID") == id
}

func (h *TravellerHandler) callerIsSupporter(c *gin.Context) bool {
	if c.GetBool("isSupporter") {
		return true
	}
	userID := c.GetString("userID")
	if userID == "" {
		return false
	}
	u, err := h.Users.GetByIDWithProjection(userID, bson.M{"id": 1, "is_supporter": 1})
	return err == nil && u != nil && u.IsSupporter
}
