package post

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/microblog-app/microblog-back/internal/apperr"
	"github.com/microblog-app/microblog-back/internal/logs"
	"github.com/microblog-app/microblog-back/internal/middleware"
	"github.com/microblog-app/microblog-back/internal/user"
)

// GetUserProfile GET /api/users/:username
func GetUserProfile(c *gin.Context) {
	route := c.FullPath()
	username := c.Param("username")
	viewerID := middleware.ViewerID(c)

	u, err := user.FindByUsername(username)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": "Utilisateur non trouvé"})
		logs.LogJSON("WARN", "User not found", map[string]interface{}{
			"error":    err.Error(),
			"route":    route,
			"username": username,
		})
		return
	}

	posts, err := PostsByAuthor(u.Username, viewerID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": "Erreur de récupération des posts"})
		logs.LogJSON("ERROR", "Error during profile posts retrieval", map[string]interface{}{
			"error":    err.Error(),
			"route":    route,
			"username": username,
		})
		return
	}

	var totalLikes int64
	for _, p := range posts {
		totalLikes += p.Likes
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"username":     u.Username,
			"avatar_url":   u.AvatarURL,
			"member_since": u.MemberSince,
		},
		"is_me": viewerID != nil && *viewerID == u.ID,
		"stats": gin.H{
			"posts_count":    len(posts),
			"likes_received": totalLikes,
		},
		"posts": posts,
	})
}
