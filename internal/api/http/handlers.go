package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/api/middleware"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/audit"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/chat"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/session"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/users"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/namespace"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Dependencies are the collaborators the handlers serve.
type Dependencies struct {
	Files    *namespace.Service
	Users    *users.Manager
	Sessions *session.Manager
	Chat     *chat.Room
	Auth     *middleware.Auth
	Audit    audit.Sink
	Logs     *audit.StoreSink
	Metrics  *HandlerMetrics
	Logger   *zap.Logger

	// SecureCookie marks the session cookie Secure.
	SecureCookie   bool
	MaxUploadBytes int64
}

// Handlers contains all HTTP handlers
type Handlers struct {
	files    *namespace.Service
	users    *users.Manager
	sessions *session.Manager
	chat     *chat.Room
	auth     *middleware.Auth
	audit    audit.Sink
	logs     *audit.StoreSink
	metrics  *HandlerMetrics
	logger   *zap.Logger

	secureCookie bool
	maxUpload    int64
	started      time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(deps Dependencies) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		files:        deps.Files,
		users:        deps.Users,
		sessions:     deps.Sessions,
		chat:         deps.Chat,
		auth:         deps.Auth,
		audit:        deps.Audit,
		logs:         deps.Logs,
		metrics:      deps.Metrics,
		logger:       logger.Named("api"),
		secureCookie: deps.SecureCookie,
		maxUpload:    deps.MaxUploadBytes,
		started:      time.Now(),
	}
}

// Register mounts every route on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	if handler := h.metrics.Handler(); handler != nil {
		r.GET("/metrics", gin.WrapH(handler))
	}

	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	api := r.Group("/api", h.auth.RequireUser())
	api.GET("/me", h.Me)

	api.GET("/chat", h.ListMessages)
	api.POST("/chat", h.SendMessage)

	api.GET("/files/:category", h.ListFiles)
	api.DELETE("/files/:category/:filename", h.DeleteFile)
	api.POST("/upload/:category", h.UploadFile)
	api.GET("/download/:category/:filename", h.DownloadFile)
	api.GET("/archive/:category/:name", h.DownloadArchive)
	api.POST("/rename/:category", h.RenameFile)
	api.POST("/folder/:category", h.CreateFolder)

	admin := api.Group("", h.auth.RequireAdmin())
	admin.GET("/users", h.ListUsers)
	admin.POST("/users", h.CreateUser)
	admin.PUT("/users/:username", h.UpdateUser)
	admin.DELETE("/users/:username", h.DeleteUser)
	admin.GET("/users/:username/files", h.UserFiles)
	admin.GET("/logs", h.ListLogs)
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "NowDrop",
		"version": Version,
	})
}

// Health reports whether the account store answers.
func (h *Handlers) Health(c *gin.Context) {
	count, err := h.users.Count(c.Request.Context())
	if err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"users":          count,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// record writes a non-namespace audit event. Failures are logged only.
func (h *Handlers) record(c *gin.Context, username, action, details string, err error) {
	if h.audit == nil {
		return
	}
	outcome := audit.Success
	if err != nil {
		outcome = audit.Failure
	}
	ev := audit.NewEvent(username, action, details, outcome)
	if rerr := h.audit.Record(context.WithoutCancel(c.Request.Context()), ev); rerr != nil {
		h.logger.Warn("audit record failed",
			zap.String("action", action),
			zap.String("username", username),
			zap.Error(rerr),
		)
	}
}

// queryLimit reads a non-negative ?limit=, zero meaning unlimited.
func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
