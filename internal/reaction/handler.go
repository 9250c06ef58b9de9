package reaction

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/microblog-app/microblog-back/internal/apperr"
	"github.com/microblog-app/microblog-back/internal/logs"
	"github.com/microblog-app/microblog-back/internal/middleware"
	"github.com/microblog-app/microblog-back/internal/post"
	"github.com/microblog-app/microblog-back/internal/utils"
)

// ToggleReactionHandler POST /api/posts/:id/reactions
func ToggleReactionHandler(c *gin.Context) {
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

	var input struct {
		Emoji string `json:"emoji" form:"emoji" binding:"required"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Emoji manquant"})
		return
	}

	result, err := ToggleReaction(postID, userID, input.Emoji)
	if err != nil {
		status := apperr.HTTPStatus(err)
		c.JSON(status, gin.H{"error": apperr.Message(err)})
		level := "WARN"
		if status >= http.StatusInternalServerError {
			level = "ERROR"
		}
		logs.LogJSON(level, "Reaction toggle failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
			"postID": postID,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetReactions GET /api/posts/:id/reactions
func GetReactions(c *gin.Context) {
	postID, ok := utils.ParamID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de post invalide"})
		return
	}

	histogram, err := Histogram(postID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post_id": postID, "reactions": histogram})
}

// GetPostDetail GET /api/posts/:id
func GetPostDetail(c *gin.Context) {
	route := c.FullPath()
	postID, ok := utils.ParamID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de post invalide"})
		return
	}
	viewerID := middleware.ViewerID(c)

	p, err := post.GetPost(postID, viewerID)
	if err != nil {
		status := apperr.HTTPStatus(err)
		msg := apperr.Message(err)
		if status == http.StatusNotFound {
			msg = "Post non trouvé"
		}
		c.JSON(status, gin.H{"error": msg})
		logs.LogJSON("WARN", "Post lookup failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"postID": postID,
		})
		return
	}

	histogram, err := Histogram(postID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
		logs.LogJSON("ERROR", "Reaction histogram failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"postID": postID,
		})
		return
	}

	mine := []string{}
	if viewerID != nil {
		mine, err = UserEmojis(postID, *viewerID)
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"post":         p,
		"reactions":    histogram,
		"my_reactions": mine,
	})
}
