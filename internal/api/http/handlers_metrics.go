package http

import (
	"net/http"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/infrastructure/monitoring"
)

// HandlerMetrics records handler-level counters. A nil HandlerMetrics
// records nothing.
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// TrackLogin counts a login attempt.
func (hm *HandlerMetrics) TrackLogin(success bool) {
	if hm == nil || hm.metrics == nil {
		return
	}
	hm.metrics.RecordLogin(success)
}

// TrackChatMessage counts a posted chat message.
func (hm *HandlerMetrics) TrackChatMessage() {
	if hm == nil || hm.metrics == nil {
		return
	}
	hm.metrics.IncChatMessages()
}

// Handler exposes the registry, or nil when metrics are off.
func (hm *HandlerMetrics) Handler() http.Handler {
	if hm == nil || hm.metrics == nil {
		return nil
	}
	return hm.metrics.Handler()
}
