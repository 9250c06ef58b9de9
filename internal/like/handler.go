package like

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/microblog-app/microblog-back/internal/apperr"
	"github.com/microblog-app/microblog-back/internal/logs"
	"github.com/microblog-app/microblog-back/internal/middleware"
	"github.com/microblog-app/microblog-back/internal/utils"
)

// ToggleLikeHandler POST /api/posts/:id/like
func ToggleLikeHandler(c *gin.Context) {
	route := c.FullPath()
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	postID, ok := utils.ParamID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de post invalide"})
		return
	}

	result, err := ToggleLike(postID, userID)
	if err != nil {
		status := apperr.HTTPStatus(err)
		c.JSON(status, gin.H{"error": apperr.Message(err)})
		level := "WARN"
		if status >= http.StatusInternalServerError {
			level = "ERROR"
		}
		logs.LogJSON(level, "Like toggle failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
			"postID": postID,
		})
		return
	}

	c.JSON(http.StatusOK, result)
	logs.LogJSON("INFO", "Like toggled", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"postID": postID,
		"action": result.Action,
	})
}

// GetLikeStatus GET /api/posts/:id/likes
func GetLikeStatus(c *gin.Context) {
	route := c.FullPath()
	postID, ok := utils.ParamID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de post invalide"})
		return
	}

	response, err := Status(postID, middleware.ViewerID(c))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
		logs.LogJSON("WARN", "Like status unavailable", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"postID": postID,
		})
		return
	}

	c.JSON(http.StatusOK, response)
}
