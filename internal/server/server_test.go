package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microblog-app/microblog-back/internal/config"
	"github.com/microblog-app/microblog-back/internal/middleware"
	"github.com/microblog-app/microblog-back/internal/testutil"
	"github.com/microblog-app/microblog-back/internal/user"
	"github.com/microblog-app/microblog-back/internal/utils"
)

const testSecret = "server-test-secret"

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	testutil.SetupDB(t)
	return New(&config.Config{
		JWTSecret:        testSecret,
		ExternalIDSecret: "pepper",
		SessionTTL:       time.Hour,
		FrontendURL:      "http://front.test",
	})
}

func login(t *testing.T, r *gin.Engine, username string) (*client, *user.User) {
	t.Helper()
	u, err := user.Register(username, "hash-"+username)
	require.NoError(t, err)
	token, err := utils.GenerateSessionToken(u.ID, u.Username, testSecret, time.Hour)
	require.NoError(t, err)
	return &client{t: t, router: r, token: token}, u
}

func (c *client) do(method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: c.token})
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func TestHealth(t *testing.T) {
	r := newTestServer(t)
	anon := &client{t: t, router: r}

	w, body := anon.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestPostLifecycle(t *testing.T) {
	r := newTestServer(t)
	josefina, _ := login(t, r, "Josefina")
	mia, _ := login(t, r, "Mia")
	anon := &client{t: t, router: r}

	w, _ := anon.do(http.MethodPost, "/api/posts", `{"title":"Hi","content":"There"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = josefina.do(http.MethodPost, "/api/posts", `{"title":"","content":"There"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := josefina.do(http.MethodPost, "/api/posts", `{"title":"Hi","content":"There"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := body["post"].(map[string]interface{})
	postPath := "/api/posts/" + jsonID(created["id"])

	w, body = mia.do(http.MethodPost, postPath+"/like", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "liked", body["action"])
	assert.Equal(t, float64(1), body["count"])

	w, body = mia.do(http.MethodGet, "/api/posts?sort=likes", "")
	require.Equal(t, http.StatusOK, w.Code)
	posts := body["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, true, posts[0].(map[string]interface{})["is_liked"])

	w, body = anon.do(http.MethodGet, postPath+"/likes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["like_count"])
	assert.Equal(t, false, body["is_liked"])

	w, body = mia.do(http.MethodPost, postPath+"/reactions", `{"emoji":"🔥"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "added", body["action"])

	w, _ = mia.do(http.MethodPost, postPath+"/reactions", `{"emoji":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = mia.do(http.MethodGet, postPath, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"🔥": float64(1)}, body["reactions"])
	assert.Equal(t, []interface{}{"🔥"}, body["my_reactions"])

	w, _ = mia.do(http.MethodDelete, postPath, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = josefina.do(http.MethodDelete, postPath, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = anon.do(http.MethodGet, postPath, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = mia.do(http.MethodPost, postPath+"/like", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBadPostID(t *testing.T) {
	r := newTestServer(t)
	mia, _ := login(t, r, "Mia")

	w, _ := mia.do(http.MethodPost, "/api/posts/abc/like", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileAndRename(t *testing.T) {
	r := newTestServer(t)
	josefina, _ := login(t, r, "Josefina")
	anon := &client{t: t, router: r}

	w, _ := josefina.do(http.MethodPost, "/api/posts", `{"title":"Hi","content":"There"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := josefina.do(http.MethodGet, "/api/users/JOSEFINA", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["is_me"])
	assert.Len(t, body["posts"], 1)

	w, _ = anon.do(http.MethodGet, "/api/users/nobody", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	require.NoError(t, mw.WriteField("username", "Fina"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPatch, "/api/me", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: josefina.token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// the session still carries the old name, the handlers use the stored one
	w, body = josefina.do(http.MethodGet, "/api/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Fina", body["user"].(map[string]interface{})["username"])

	w, body = anon.do(http.MethodGet, "/api/users/fina", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["posts"], 1)
	assert.Equal(t, false, body["is_me"])

	_, err := user.FindByUsername("josefina")
	assert.Error(t, err)
}

func (c *client) patchMe(username, avatarName string) *httptest.ResponseRecorder {
	c.t.Helper()
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	require.NoError(c.t, mw.WriteField("username", username))
	if avatarName != "" {
		fw, err := mw.CreateFormFile("avatar", avatarName)
		require.NoError(c.t, err)
		_, err = fw.Write([]byte("\x89PNG\r\n"))
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/api/me", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: c.token})
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func TestUpdateMeFailedAvatarKeepsName(t *testing.T) {
	r := newTestServer(t)
	josefina, _ := login(t, r, "Josefina")

	tests := []struct {
		name   string
		avatar string
		status int
	}{
		{name: "Bad extension", avatar: "notes.txt", status: http.StatusBadRequest},
		{name: "Storage not configured", avatar: "me.png", status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := josefina.patchMe("Fina", tt.avatar)
			assert.Equal(t, tt.status, rec.Code)

			w, body := josefina.do(http.MethodGet, "/api/me", "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "Josefina", body["user"].(map[string]interface{})["username"])
			_, err := user.FindByUsername("fina")
			assert.Error(t, err)
		})
	}
}

func TestDeleteMe(t *testing.T) {
	r := newTestServer(t)
	josefina, u := login(t, r, "Josefina")
	mia, _ := login(t, r, "Mia")

	w, body := mia.do(http.MethodPost, "/api/posts", `{"title":"Hi","content":"There"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	postPath := "/api/posts/" + jsonID(body["post"].(map[string]interface{})["id"])

	w, _ = josefina.do(http.MethodPost, postPath+"/like", "")
	require.Equal(t, http.StatusOK, w.Code)

	w, body = josefina.do(http.MethodDelete, "/api/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["likes_removed"])

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)

	w, body = mia.do(http.MethodGet, postPath+"/likes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), body["like_count"])

	_, err := user.FindByID(u.ID)
	assert.Error(t, err)

	w, _ = josefina.do(http.MethodDelete, "/api/me", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func jsonID(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}
