package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/api/middleware"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/chat"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/users"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/namespace"
)

const (
	kindInvalidRequest = "invalid_request"
	kindUnauthorized   = "unauthorized"
	kindTooLarge       = "too_large"
	kindInternal       = "internal"
)

// statusOf maps an error to its HTTP status and wire kind.
func statusOf(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, kindTooLarge
	}

	var nsErr *namespace.Error
	if errors.As(err, &nsErr) {
		switch nsErr.Kind {
		case namespace.KindPathViolation:
			return http.StatusBadRequest, nsErr.Kind.String()
		case namespace.KindNotFound, namespace.KindNotADirectory:
			return http.StatusNotFound, nsErr.Kind.String()
		case namespace.KindAlreadyExists:
			return http.StatusConflict, nsErr.Kind.String()
		default:
			return http.StatusInternalServerError, nsErr.Kind.String()
		}
	}

	switch {
	case errors.Is(err, users.ErrUserNotFound):
		return http.StatusNotFound, namespace.KindNotFound.String()
	case errors.Is(err, users.ErrUserExists):
		return http.StatusConflict, namespace.KindAlreadyExists.String()
	case errors.Is(err, users.ErrInvalidUser), errors.Is(err, chat.ErrInvalidMessage):
		return http.StatusBadRequest, kindInvalidRequest
	case errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized, kindUnauthorized
	}
	return http.StatusInternalServerError, kindInternal
}

// fail writes the error response for err.
func (h *Handlers) fail(c *gin.Context, err error) {
	status, kind := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}

// badRequest rejects a malformed request body.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "kind": kindInvalidRequest})
}
