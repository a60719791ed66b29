// File: waymate/handlers/user.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	"waymate/models"
	userSvc "waymate/services/user"
	"waymate/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves account and session endpoints.
type UserHandler struct {
	Svc userSvc.UserService
}

func deviceFromContext(c *gin.Context) models.Device {
	return models.Device{
		DeviceID:   c.GetString("deviceID"),
		DeviceName: c.GetString("deviceName"),
		IP:         c.GetString("deviceIP"),
		LastLogin:  time.Now().UTC(),
	}
}

// RegisterUserHandler handles POST /users/register.
func (h *UserHandler) RegisterUserHandler(c *gin.Context) {
	logger := getLogger(c)

	var req userSvc.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid registration request: "+err.Error())
		return
	}

	resp, err := h.Svc.RegisterUser(req, deviceFromContext(c))
	if err != nil {
		if strings.Contains(err.Error(), "already registered") {
			utils.JSONError(c, http.StatusConflict, "Email is already registered")
			return
		}
		logger.Error("Failed to register user", zap.String("email", req.Email), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to register user")
		return
	}
	utils.JSONData(c, http.StatusCreated, resp)
}

// AuthenticateUserHandler handles POST /users/login.
func (h *UserHandler) AuthenticateUserHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid login request: "+err.Error())
		return
	}

	resp, err := h.Svc.AuthenticateUser(req.Email, req.Password, deviceFromContext(c))
	if err != nil {
		logger.Warn("Login failed", zap.String("email", req.Email), zap.Error(err))
		utils.JSONError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	utils.JSONData(c, http.StatusOK, resp)
}

// GetMeHandler handles GET /users/me.
func (h *UserHandler) GetMeHandler(c *gin.Context) {
	userID := c.GetString("userID")
	usr, err := h.Svc.GetUserByID(userID)
	if err != nil {
		getLogger(c).Error("Failed to fetch own user", zap.String("id", userID), zap.Error(err))
		utils.JSONError(c, http.StatusNotFound, "User not found")
		return
	}
	utils.JSONData(c, http.StatusOK, usr)
}

// GetActorHandler handles GET /users/me/actor: the caller's coordination
// identity, which the app uses to decide which SOS screens to show.
func (h *UserHandler) GetActorHandler(c *gin.Context) {
	userID := c.GetString("userID")
	actor, err := h.Svc.GetActor(userID)
	if err != nil {
		getLogger(c).Error("Failed to resolve actor", zap.String("id", userID), zap.Error(err))
		utils.JSONError(c, http.StatusNotFound, "User not found")
		return
	}
	utils.JSONData(c, http.StatusOK, actor)
}

// GetUserByIDHandler handles GET /users/:id. Other people's accounts come
// back as display profiles only.
func (h *UserHandler) GetUserByIDHandler(c *gin.Context) {
	id := c.Param("id")
	usr, err := h.Svc.GetUserByID(id)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "User not found")
		return
	}
	if c.GetString("userID") == id || c.GetBool("isAdmin") {
		utils.JSONData(c, http.StatusOK, usr)
		return
	}
	utils.JSONData(c, http.StatusOK, usr.Profile())
}

// UpdateFCMTokenHandler handles POST /users/fcm-token.
func (h *UserHandler) UpdateFCMTokenHandler(c *gin.Context) {
	logger := getLogger(c)
	userID := c.GetString("userID")

	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: token is required")
		return
	}

	if err := h.Svc.UpdateFCMToken(userID, req.Token); err != nil {
		logger.Error("Failed to store FCM token", zap.String("userId", userID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to store push token")
		return
	}
	utils.JSONData(c, http.StatusOK, gin.H{"message": "Push token updated"})
}

// RevokeUserAuthTokenHandler handles POST /users/revoke (logout for the
// current device).
func (h *UserHandler) RevokeUserAuthTokenHandler(c *gin.Context) {
	logger := getLogger(c)
	userID := c.GetString("userID")
	deviceID := c.GetString("deviceID")

	if err := h.Svc.RevokeUserAuthToken(userID, deviceID); err != nil {
		logger.Error("Failed to revoke token",
			zap.String("userId", userID), zap.String("deviceId", deviceID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to revoke token")
		return
	}
	utils.JSONData(c, http.StatusOK, gin.H{"message": "Token revoked"})
}

// GetAllUsersHandler handles the console's GET /admin/users.
func (h *UserHandler) GetAllUsersHandler(c *gin.Context) {
	users, err := h.Svc.GetAllUsers()
	if err != nil {
		getLogger(c).Error("Failed to list users", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list users")
		return
	}
	utils.JSONData(c, http.StatusOK, users)
}
