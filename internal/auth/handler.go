package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/microblog-app/microblog-back/internal/apperr"
	"github.com/microblog-app/microblog-back/internal/config"
	"github.com/microblog-app/microblog-back/internal/logs"
	"github.com/microblog-app/microblog-back/internal/middleware"
	"github.com/microblog-app/microblog-back/internal/user"
	"github.com/microblog-app/microblog-back/internal/utils"
)

const (
	stateCookie        = "oauth_state"
	registrationCookie = "registration"
	registrationTTL    = 15 * time.Minute
)

type Handler struct {
	Google           *GoogleClient
	JWTSecret        string
	ExternalIDSecret string
	SessionTTL       time.Duration
	CookieSecure     bool
	FrontendURL      string
}

func NewHandler(cfg *config.Config) *Handler {
	return &Handler{
		Google:           NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
		JWTSecret:        cfg.JWTSecret,
		ExternalIDSecret: cfg.ExternalIDSecret,
		SessionTTL:       cfg.SessionTTL,
		CookieSecure:     cfg.CookieSecure,
		FrontendURL:      cfg.FrontendURL,
	}
}

// GoogleLogin GET /auth/google
func (h *Handler) GoogleLogin(c *gin.Context) {
	state := uuid.New().String()
	h.setCookie(c, stateCookie, state, 10*time.Minute)
	c.Redirect(http.StatusFound, h.Google.ConsentURL(state))
}

// GoogleCallback GET /auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	route := c.FullPath()

	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || expected != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "État OAuth invalide"})
		logs.LogJSON("WARN", "OAuth state mismatch", map[string]interface{}{
			"route": route,
		})
		return
	}
	h.clearCookie(c, stateCookie)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code d'autorisation manquant"})
		return
	}

	profile, err := h.Google.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erreur d'authentification Google"})
		logs.LogJSON("ERROR", "Google exchange failed", map[string]interface{}{
			"error": err.Error(),
			"route": route,
		})
		return
	}

	hash := utils.HashExternalID(h.ExternalIDSecret, profile.Subject)
	existing, err := user.FindByExternalID(hash)
	switch {
	case err == nil:
		if err := h.startSession(c, existing); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création de session"})
			return
		}
		logs.LogJSON("INFO", "User logged in", map[string]interface{}{
			"route":  route,
			"userID": existing.ID,
		})
		c.Redirect(http.StatusFound, h.FrontendURL+"/")

	case errors.Is(err, apperr.ErrNotFound):
		token, err := utils.GenerateRegistrationToken(hash, profile.Name, h.JWTSecret, registrationTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création de session"})
			return
		}
		h.setCookie(c, registrationCookie, token, registrationTTL)
		logs.LogJSON("INFO", "New Google identity, username required", map[string]interface{}{
			"route": route,
		})
		c.Redirect(http.StatusFound, h.FrontendURL+"/register")

	default:
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
		logs.LogJSON("ERROR", "User lookup failed", map[string]interface{}{
			"error": err.Error(),
			"route": route,
		})
	}
}

// Register POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	route := c.FullPath()

	var input struct {
		Username          string `json:"username" binding:"required"`
		RegistrationToken string `json:"registration_token"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom d'utilisateur requis"})
		return
	}

	tokenStr := input.RegistrationToken
	if tokenStr == "" {
		tokenStr, _ = c.Cookie(registrationCookie)
	}
	claims, err := utils.ParseRegistrationToken(tokenStr, h.JWTSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Connexion Google requise avant l'inscription"})
		logs.LogJSON("WARN", "Registration without a valid Google identity", map[string]interface{}{
			"error": err.Error(),
			"route": route,
		})
		return
	}

	newUser, err := user.Register(input.Username, claims.ExternalIDHash)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
		logs.LogJSON("WARN", "Registration rejected", map[string]interface{}{
			"error":    err.Error(),
			"route":    route,
			"username": input.Username,
		})
		return
	}

	h.clearCookie(c, registrationCookie)
	if err := h.startSession(c, newUser); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création de session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Utilisateur inscrit",
		"user":    newUser,
	})
	logs.LogJSON("INFO", "User registered", map[string]interface{}{
		"route":  route,
		"userID": newUser.ID,
	})
}

// Logout POST /auth/logout
func (h *Handler) Logout(c *gin.Context) {
	h.clearCookie(c, middleware.SessionCookie)
	c.JSON(http.StatusOK, gin.H{"message": "Déconnecté"})
}

func (h *Handler) startSession(c *gin.Context, u *user.User) error {
	token, err := utils.GenerateSessionToken(u.ID, u.Username, h.JWTSecret, h.SessionTTL)
	if err != nil {
		logs.LogJSON("ERROR", "Session token signing failed", map[string]interface{}{
			"error":  err.Error(),
			"userID": u.ID,
		})
		return err
	}
	h.setCookie(c, middleware.SessionCookie, token, h.SessionTTL)
	return nil
}

func (h *Handler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", h.CookieSecure, true)
}

func (h *Handler) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", h.CookieSecure, true)
}
