package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/microblog-app/microblog-back/internal/apperr"
	"github.com/microblog-app/microblog-back/internal/logs"
	"github.com/microblog-app/microblog-back/internal/middleware"
	"github.com/microblog-app/microblog-back/internal/user"
)

// DeleteMe DELETE /api/me
func DeleteMe(cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		userID, _ := middleware.CurrentUserID(c)

		summary, err := DeleteAccount(userID)
		if err != nil {
			status := apperr.HTTPStatus(err)
			msg := "Erreur lors de la suppression du compte"
			if status == http.StatusNotFound {
				msg = "Utilisateur non trouvé"
			}
			c.JSON(status, gin.H{"error": msg})
			logs.LogJSON("ERROR", "Account deletion failed", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": userID,
			})
			return
		}

		user.RemoveAvatar(c, summary.User.AvatarURL)

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", cookieSecure, true)
		c.JSON(http.StatusOK, gin.H{
			"message": "Compte supprimé",
			"summary": summary,
		})
		logs.LogJSON("INFO", "Account deleted", map[string]interface{}{
			"route":     route,
			"userID":    userID,
			"posts":     summary.Posts,
			"likes":     summary.Likes,
			"reactions": summary.Reactions,
		})
	}
}
