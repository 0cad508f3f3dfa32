package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/api/middleware"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/audit"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/chat"
)

type messageRequest struct {
	Message string `form:"message" json:"message"`
}

// ListMessages returns the chat history; ?limit= keeps the newest.
func (h *Handlers) ListMessages(c *gin.Context) {
	msgs, err := h.chat.Messages(c.Request.Context(), queryLimit(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

// SendMessage posts to the chat as the logged-in user.
func (h *Handlers) SendMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid message request: "+err.Error())
		return
	}
	u, _ := middleware.CurrentUser(c)

	msg, err := h.chat.Post(c.Request.Context(), u.Username, u.Name, req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.TrackChatMessage()
	h.record(c, u.Username, audit.ActionSendMessage, "sent message "+msg.ID, nil)

	c.JSON(http.StatusCreated, gin.H{"status": "success", "message": msg})
}
