package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/session"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/users"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

type accountMap map[string]users.User

func (m accountMap) Get(_ context.Context, username string) (users.User, error) {
	u, ok := m[username]
	if !ok {
		return users.User{}, users.ErrUserNotFound
	}
	return u, nil
}

func TestCORS(t *testing.T) {
	router := setupTestRouter()
	router.Use(CORS(DefaultCORSConfig()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	tests := []struct {
		name           string
		method         string
		origin         string
		wantStatus     int
		wantCORSHeader bool
	}{
		{"simple GET request with origin", "GET", "http://192.168.1.20:8000", http.StatusOK, true},
		{"preflight OPTIONS request", "OPTIONS", "http://192.168.1.20:8000", http.StatusNoContent, true},
		{"no origin header", "GET", "", http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCORSHeader {
				assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	router := setupTestRouter()
	router.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2, IdleTTL: time.Minute}))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	do := func(ip string) int {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("192.168.1.1"))
	assert.Equal(t, http.StatusOK, do("192.168.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("192.168.1.1"))

	// separate bucket per client
	assert.Equal(t, http.StatusOK, do("192.168.1.2"))
}

func newAuthRouter(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	sessions := session.NewManager(time.Hour)
	accounts := accountMap{
		"alice": {Username: "alice", Name: "Alice"},
		"root":  {Username: "root", Name: "Root", Admin: true},
	}
	auth := NewAuth(sessions, accounts, "session")

	router := setupTestRouter()
	api := router.Group("/api", auth.RequireUser())
	api.GET("/me", func(c *gin.Context) {
		who := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"username": who.Username, "admin": who.Admin, "token": SessionToken(c) != ""})
	})
	api.GET("/admin", auth.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router, sessions
}

func TestRequireUser(t *testing.T) {
	router, sessions := newAuthRouter(t)

	alice, err := sessions.Create("alice")
	require.NoError(t, err)
	ghost, err := sessions.Create("ghost")
	require.NoError(t, err)

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
	}{
		{"no credentials", func(*http.Request) {}, http.StatusUnauthorized},
		{"unknown token", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "session", Value: "bogus"}) }, http.StatusUnauthorized},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "session", Value: alice.Token}) }, http.StatusOK},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+alice.Token) }, http.StatusOK},
		{"deleted account", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "session", Value: ghost.Token}) }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	_, err = sessions.Lookup(ghost.Token)
	assert.ErrorIs(t, err, session.ErrUnknown)
}

func TestRequireAdmin(t *testing.T) {
	router, sessions := newAuthRouter(t)
	alice, _ := sessions.Create("alice")
	root, _ := sessions.Create("root")

	for token, want := range map[string]int{alice.Token: http.StatusForbidden, root.Token: http.StatusNoContent} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code)
	}
}

func TestRequestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := setupTestRouter()
	router.Use(RequestLog(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "abc-123", entries[1].ContextMap()["request_id"])
}
