package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/api/middleware"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/audit"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/users"
)

type createUserRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Name     string `form:"name" json:"name"`
	Admin    bool   `form:"admin" json:"admin"`
}

type updateUserRequest struct {
	Name     string `form:"name" json:"name"`
	Password string `form:"password" json:"password"`
	Admin    bool   `form:"admin" json:"admin"`
}

// ListUsers returns every account.
func (h *Handlers) ListUsers(c *gin.Context) {
	all, err := h.users.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]UserResponse, 0, len(all))
	for _, u := range all {
		out = append(out, toUserResponse(u))
	}
	c.JSON(http.StatusOK, out)
}

// CreateUser adds an account.
func (h *Handlers) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid user request: "+err.Error())
		return
	}
	admin, _ := middleware.CurrentUser(c)

	u, err := h.users.Create(c.Request.Context(), users.CreateRequest{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Admin:    req.Admin,
	})
	h.record(c, admin.Username, audit.ActionCreateUser, "user "+req.Username, err)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(u))
}

// UpdateUser replaces name and admin flag, and the password when given.
// Changing the password ends the user's sessions.
func (h *Handlers) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid user request: "+err.Error())
		return
	}
	admin, _ := middleware.CurrentUser(c)
	username := c.Param("username")

	u, err := h.users.Update(c.Request.Context(), username, users.UpdateRequest{
		Name:     req.Name,
		Password: req.Password,
		Admin:    req.Admin,
	})
	h.record(c, admin.Username, audit.ActionUpdateUser, "user "+username, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	if req.Password != "" && username != admin.Username {
		h.sessions.RevokeUser(username)
	}

	c.JSON(http.StatusOK, toUserResponse(u))
}

// DeleteUser removes an account, its sessions and its personal storage.
func (h *Handlers) DeleteUser(c *gin.Context) {
	admin, _ := middleware.CurrentUser(c)
	username := c.Param("username")
	if username == admin.Username {
		badRequest(c, "cannot delete your own account")
		return
	}

	err := h.users.Delete(c.Request.Context(), username)
	h.record(c, admin.Username, audit.ActionDeleteUser, "user "+username, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.sessions.RevokeUser(username)

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// UserFiles lists the top level of a user's personal root with its disk
// usage. A user who never stored anything has an empty listing.
func (h *Handlers) UserFiles(c *gin.Context) {
	ins, err := h.files.InspectPersonalRoot(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": toEntryResponses(ins.Entries),
		"usage":   ins.Usage,
	})
}

// ListLogs returns audit events oldest first; ?limit= keeps the newest.
func (h *Handlers) ListLogs(c *gin.Context) {
	if h.logs == nil {
		c.JSON(http.StatusOK, []audit.Event{})
		return
	}
	events, err := h.logs.Events(c.Request.Context(), queryLimit(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	c.JSON(http.StatusOK, events)
}
