package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microblog-app/microblog-back/internal/utils"
)

const testSecret = "test-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	whoami := func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "logged_in": ok, "username": c.GetString("username")})
	}
	r.GET("/private", AuthMiddleware(testSecret), whoami)
	r.GET("/public", OptionalAuthMiddleware(testSecret), whoami)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	token, err := utils.GenerateSessionToken(3, "Josefina", testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name           string
		path           string
		setup          func(req *http.Request)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Missing token",
			path:           "/private",
			setup:          func(req *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Bearer token",
			path: "/private",
			setup: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+token)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"username":"Josefina"`,
		},
		{
			name: "Session cookie",
			path: "/private",
			setup: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"user_id":3`,
		},
		{
			name: "Forged token",
			path: "/private",
			setup: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+token+"x")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Anonymous on optional route",
			path:           "/public",
			setup:          func(req *http.Request) {},
			expectedStatus: http.StatusOK,
			expectedBody:   `"logged_in":false`,
		},
		{
			name: "Invalid token on optional route",
			path: "/public",
			setup: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer nope")
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"logged_in":false`,
		},
	}

	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(req)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}
