package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/microblog-app/microblog-back/internal/account"
	"github.com/microblog-app/microblog-back/internal/auth"
	"github.com/microblog-app/microblog-back/internal/config"
	"github.com/microblog-app/microblog-back/internal/like"
	"github.com/microblog-app/microblog-back/internal/middleware"
	"github.com/microblog-app/microblog-back/internal/post"
	"github.com/microblog-app/microblog-back/internal/reaction"
	"github.com/microblog-app/microblog-back/internal/user"
)

// New builds the router. The database and the optional backends must be
// initialised beforehand.
func New(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := auth.NewHandler(cfg)
	authGroup := r.Group("/auth")
	authGroup.GET("/google", authHandler.GoogleLogin)
	authGroup.GET("/google/callback", authHandler.GoogleCallback)
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/logout", authHandler.Logout)

	required := middleware.AuthMiddleware(cfg.JWTSecret)
	optional := middleware.OptionalAuthMiddleware(cfg.JWTSecret)

	api := r.Group("/api")

	// Posts
	api.GET("/posts", optional, post.GetPosts)
	api.GET("/posts/:id", optional, reaction.GetPostDetail)
	api.POST("/posts", required, post.CreatePostHandler)
	api.DELETE("/posts/:id", required, post.DeletePostHandler)

	// Likes & reactions
	api.POST("/posts/:id/like", required, like.ToggleLikeHandler)
	api.GET("/posts/:id/likes", optional, like.GetLikeStatus)
	api.POST("/posts/:id/reactions", required, reaction.ToggleReactionHandler)
	api.GET("/posts/:id/reactions", reaction.GetReactions)

	// Users
	api.GET("/users/:username", optional, post.GetUserProfile)
	api.GET("/me", required, user.GetMe)
	api.PATCH("/me", required, user.UpdateMe)
	api.DELETE("/me", required, account.DeleteMe(cfg.CookieSecure))

	return r
}
