package post

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/microblog-app/microblog-back/internal/apperr"
	"github.com/microblog-app/microblog-back/internal/logs"
	"github.com/microblog-app/microblog-back/internal/middleware"
	"github.com/microblog-app/microblog-back/internal/user"
	"github.com/microblog-app/microblog-back/internal/utils"
)

// GetPosts GET /api/posts?sort=recency|likes&page=N
func GetPosts(c *gin.Context) {
	route := c.FullPath()
	viewerID := middleware.ViewerID(c)

	sort := ParseSortKey(c.Query("sort"))
	page := utils.QueryInt(c, "page", 1)

	result, err := ListPosts(sort, page, PostsPerPage, viewerID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": "Erreur lors de la récupération des posts"})
		logs.LogJSON("ERROR", "Error during feed retrieval", map[string]interface{}{
			"error": err.Error(),
			"route": route,
			"sort":  sort,
			"page":  page,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreatePostHandler POST /api/posts
func CreatePostHandler(c *gin.Context) {
	route := c.FullPath()
	userID, _ := middleware.CurrentUserID(c)

	var input struct {
		Title   string `json:"title" form:"title"`
		Content string `json:"content" form:"content"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	author, err := user.FindByID(userID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": "Utilisateur non trouvé"})
		logs.LogJSON("WARN", "Post author not found", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	newPost, err := CreatePost(input.Title, input.Content, author.Username)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
		logs.LogJSON("WARN", "Post creation rejected", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post créé avec succès",
		"post":    newPost,
	})
	logs.LogJSON("INFO", "Post created", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"postID": newPost.ID,
	})
}

// DeletePostHandler DELETE /api/posts/:id
func DeletePostHandler(c *gin.Context) {
	route := c.FullPath()
	userID, _ := middleware.CurrentUserID(c)

	postID, ok := utils.ParamID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de post invalide"})
		return
	}

	// The session may predate a rename, the stored name is authoritative.
	requester, err := user.FindByID(userID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": "Utilisateur non trouvé"})
		return
	}

	if err := DeletePost(postID, requester.Username); err != nil {
		status := apperr.HTTPStatus(err)
		c.JSON(status, gin.H{"error": apperr.Message(err)})
		level := "WARN"
		if status >= http.StatusInternalServerError {
			level = "ERROR"
		}
		logs.LogJSON(level, "Post deletion refused", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
			"postID": postID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post supprimé avec succès"})
	logs.LogJSON("INFO", "Post deleted", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"postID": postID,
	})
}
