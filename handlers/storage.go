// File: waymate/handlers/storage.go
package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	userRepo "waymate/database/repository/user"
	storageSvc "waymate/services/storage"
	"waymate/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StorageHandler serves avatar uploads.
type StorageHandler struct {
	Svc   storageSvc.StorageService
	Users userRepo.UserRepository
}

const avatarFolder = "avatars"

// UploadAvatarHandler handles POST /storage/avatar. The uploaded image is
// pushed to hosted storage and its URL persisted on the caller's account so
// the supporter feed and console can render it.
func (h *StorageHandler) UploadAvatarHandler(c *gin.Context) {
	logger := getLogger(c)
	userID := c.GetString("userID")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "file not provided")
		return
	}

	tempFilePath := filepath.Join(os.TempDir(), fileHeader.Filename)
	if err := c.SaveUploadedFile(fileHeader, tempFilePath); err != nil {
		logger.Error("Failed to persist upload", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}
	defer os.Remove(tempFilePath)

	publicID, err := h.Svc.UploadFile(c.Request.Context(), tempFilePath, avatarFolder)
	if err != nil {
		logger.Error("Avatar upload failed", zap.String("userId", userID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Avatar upload failed")
		return
	}

	url, err := h.Svc.GetDownloadURL(c.Request.Context(), publicID, 0*time.Second)
	if err != nil {
		logger.Error("Failed to build avatar URL", zap.String("publicId", publicID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to build avatar URL")
		return
	}

	usr, err := h.Users.GetByID(userID)
	if err != nil || usr == nil {
		utils.JSONError(c, http.StatusNotFound, "User not found")
		return
	}
	usr.AvatarURL = url
	usr.UpdatedAt = time.Now().UTC()
	if err := h.Users.Update(usr); err != nil {
		logger.Error("Failed to persist avatar URL", zap.String("userId", userID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to persist avatar URL")
		return
	}

	utils.JSONData(c, http.StatusOK, gin.H{"avatar_url": url})
}

// GetAvatarURLHandler handles GET /storage/avatar/:publicId.
func (h *StorageHandler) GetAvatarURLHandler(c *gin.Context) {
	publicID := c.Param("publicId")
	url, err := h.Svc.GetDownloadURL(c.Request.Context(), publicID, 0)
	if err != nil {
		getLogger(c).Error("Failed to build avatar URL", zap.String("publicId", publicID), zap.Error(err))
		utils.JSONError(c, http.StatusNotFound, "Avatar not found")
		return
	}
	utils.JSONData(c, http.StatusOK, gin.H{"avatar_url": url})
}
