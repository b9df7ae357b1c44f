package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"expense-ledger/internal/models"

	"github.com/gin-gonic/gin"
)

var allowedPictureExts = []string{".jpg", ".jpeg", ".png"}

// UploadProfilePicture stores the caller's profile picture on disk,
// replacing any previous one. Requires authentication.
func (h *Handlers) UploadProfilePicture(c *gin.Context) {
	user, ok := c.MustGet(CurrentUserKey).(*models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	file, err := c.FormFile("picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "picture file is required"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExt(ext) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Only jpg, jpeg and png images are allowed"})
		return
	}

	if err := os.MkdirAll(h.cfg.Upload.Dir, 0o755); err != nil {
		h.serverError(c, "profile-picture: create upload dir", err)
		return
	}

	// Drop any previously uploaded picture with a different extension.
	for _, old := range allowedPictureExts {
		if old != ext {
			_ = os.Remove(filepath.Join(h.cfg.Upload.Dir, user.ID+old))
		}
	}

	dest := filepath.Join(h.cfg.Upload.Dir, user.ID+ext)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		h.serverError(c, "profile-picture: save file", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile picture uploaded successfully"})
}

// GetProfilePicture serves a user's profile picture.
func (h *Handlers) GetProfilePicture(c *gin.Context) {
	userID := c.Param("userId")
	for _, ext := range allowedPictureExts {
		path := filepath.Join(h.cfg.Upload.Dir, userID+ext)
		if _, err := os.Stat(path); err == nil {
			c.File(path)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Profile picture not found"})
}

func allowedExt(ext string) bool {
	for _, allowed := range allowedPictureExts {
		if ext == allowed {
			return true
		}
	}
	return false
}
