package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/session"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/users"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/namespace"
)

const (
	userKey  = "user"
	tokenKey = "session_token"
)

// AccountLookup fetches the account behind a session.
type AccountLookup interface {
	Get(ctx context.Context, username string) (users.User, error)
}

// Auth authenticates requests from the session cookie or a bearer token.
type Auth struct {
	sessions *session.Manager
	accounts AccountLookup
	cookie   string
}

// NewAuth creates the authentication middleware factory.
func NewAuth(sessions *session.Manager, accounts AccountLookup, cookie string) *Auth {
	return &Auth{sessions: sessions, accounts: accounts, cookie: cookie}
}

// CookieName returns the session cookie name.
func (a *Auth) CookieName() string { return a.cookie }

// Token extracts the session token of the request.
func (a *Auth) Token(c *gin.Context) string {
	if token, err := c.Cookie(a.cookie); err == nil && token != "" {
		return token
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// RequireUser rejects unauthenticated requests with 401.
func (a *Auth) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := a.Token(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}

		s, err := a.sessions.Lookup(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}

		u, err := a.accounts.Get(c.Request.Context(), s.Username)
		if err != nil {
			a.sessions.Revoke(token)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}

		c.Set(userKey, u)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// RequireAdmin rejects non-admin users with 403. It must run after
// RequireUser.
func (a *Auth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}
		if !u.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated account.
func CurrentUser(c *gin.Context) (users.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return users.User{}, false
	}
	u, ok := v.(users.User)
	return u, ok
}

// CurrentIdentity returns the caller as a namespace identity.
func CurrentIdentity(c *gin.Context) namespace.Identity {
	u, _ := CurrentUser(c)
	return namespace.Identity{Username: u.Username, Admin: u.Admin}
}

// SessionToken returns the token validated by RequireUser.
func SessionToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
