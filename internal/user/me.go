package user

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/microblog-app/microblog-back/internal/apperr"
	"github.com/microblog-app/microblog-back/internal/logs"
	"github.com/microblog-app/microblog-back/internal/middleware"
	"github.com/microblog-app/microblog-back/internal/storage"
)

var validAvatarExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// GetMe GET /api/me
func GetMe(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	u, err := FindByID(userID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": "Utilisateur non trouvé"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": u})
}

// UpdateMe PATCH /api/me
func UpdateMe(c *gin.Context) {
	route := c.FullPath()
	userID, _ := middleware.CurrentUserID(c)

	u, err := FindByID(userID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": "Utilisateur non trouvé"})
		return
	}

	username := strings.TrimSpace(c.PostForm("username"))
	renaming := username != "" && username != u.Username
	if renaming {
		if err := ValidateUsername(username); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": apperr.Message(err)})
			return
		}
	}

	// A failed upload must leave the account unchanged, so it runs before the rename.
	var avatarURL string
	file, header, err := c.Request.FormFile("avatar")
	if err == nil {
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !validAvatarExtensions[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Extension fichier invalide"})
			return
		}

		filename := fmt.Sprintf("user_%d_%d%s", userID, time.Now().Unix(), ext)
		avatarURL, err = storage.Upload(c.Request.Context(), file, filename, header.Header.Get("Content-Type"), storage.AvatarFolder)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, storage.ErrNotConfigured) {
				status = http.StatusServiceUnavailable
			}
			c.JSON(status, gin.H{"error": "Erreur upload de l'avatar"})
			logs.LogJSON("ERROR", "Avatar upload failed", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": userID,
			})
			return
		}
	}

	if renaming {
		renamed, err := Rename(userID, username)
		if err != nil {
			if avatarURL != "" {
				RemoveAvatar(c, avatarURL)
			}
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			logs.LogJSON("WARN", "Rename rejected", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": userID,
			})
			return
		}
		u = renamed
	}

	if avatarURL != "" {
		if err := SetAvatarURL(userID, avatarURL); err != nil {
			RemoveAvatar(c, avatarURL)
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}
		RemoveAvatar(c, u.AvatarURL)
		u.AvatarURL = avatarURL
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profil mis à jour", "user": u})
	logs.LogJSON("INFO", "Profile updated", map[string]interface{}{
		"route":  route,
		"userID": userID,
	})
}

// RemoveAvatar deletes a stored avatar, best-effort.
func RemoveAvatar(c *gin.Context, url string) {
	key, ok := storage.KeyFromURL(url)
	if !ok {
		return
	}
	if err := storage.Delete(c.Request.Context(), key); err != nil {
		logs.LogJSON("WARN", "Avatar deletion failed", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
	}
}
