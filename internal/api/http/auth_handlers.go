package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/api/middleware"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/audit"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/users"
)

// UserResponse is an account without its password hash.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u users.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Username: u.Username, Name: u.Name, Admin: u.Admin, CreatedAt: u.CreatedAt}
}

type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Login checks credentials and starts a session. Accepts a form or JSON.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	h.metrics.TrackLogin(err == nil)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			h.record(c, req.Username, audit.ActionLogin, "rejected credentials", err)
		}
		h.fail(c, err)
		return
	}

	s, err := h.sessions.Create(u.Username)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.record(c, u.Username, audit.ActionLogin, "user logged in", nil)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.auth.CookieName(), s.Token, int(h.sessions.MaxAge().Seconds()), "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{
		"user":       toUserResponse(u),
		"token":      s.Token,
		"expires_at": s.ExpiresAt,
	})
}

// Logout ends the current session, if any, and clears the cookie.
func (h *Handlers) Logout(c *gin.Context) {
	if token := h.auth.Token(c); token != "" {
		if s, err := h.sessions.Lookup(token); err == nil {
			h.sessions.Revoke(token)
			h.record(c, s.Username, audit.ActionLogout, "user logged out", nil)
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.auth.CookieName(), "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Me returns the logged-in account.
func (h *Handlers) Me(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, toUserResponse(u))
}
