package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	api "github.com/Flecksis/Local-NET-Storage-Chat/internal/api/http"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/api/middleware"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/audit"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/chat"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/session"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/domain/users"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/infrastructure/config"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/infrastructure/logging"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/infrastructure/monitoring"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/namespace"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/store"
)

const (
	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
	sweepInterval     = time.Minute
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	store    store.Store
	sessions *session.Manager
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.FromConfig(cfg.Logging)
	logger.Info("Initializing NowDrop server",
		zap.String("addr", cfg.Addr()),
		zap.String("storage_root", cfg.Storage.Root),
		zap.String("data_dir", cfg.Data.Dir),
		zap.String("store_backend", cfg.Data.Backend),
	)

	metrics := monitoring.NewMetrics()

	st, err := store.Open(cfg.Data.Backend, cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	srv, err := assemble(cfg, st, logger, metrics)
	if err != nil {
		st.Close()
		return nil, err
	}

	logger.Info("Server initialized successfully")
	return srv, nil
}

func assemble(cfg *config.Config, st store.Store, logger *logging.Logger, metrics *monitoring.Metrics) (*Server, error) {
	ctx := context.Background()

	logs, err := audit.NewStoreSink(st)
	if err != nil {
		return nil, err
	}
	sink := audit.Multi{logs, audit.NewLogSink(logger.For("audit"))}

	resolver, err := namespace.NewResolver(cfg.Storage.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare storage root: %w", err)
	}
	opts := []namespace.Option{
		namespace.WithAudit(sink),
		namespace.WithLogger(logger.For("namespace")),
		namespace.WithMetrics(metrics),
	}
	if cfg.Storage.SerializeDirs {
		opts = append(opts, namespace.WithDirectoryLocks())
	}
	files := namespace.NewService(resolver, opts...)
	logger.Info("Storage ready", zap.String("root", resolver.Root()))

	accounts, err := users.NewManager(st, files, users.WithLogger(logger.For("users")))
	if err != nil {
		return nil, err
	}
	if err := seedAccounts(ctx, accounts, cfg.Data.SeedUsers, logger); err != nil {
		return nil, err
	}

	room, err := chat.NewRoom(st)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(cfg.Session.MaxAge)
	auth := middleware.NewAuth(sessions, accounts, cfg.Session.CookieName)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog(logger.For("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limit := middleware.DefaultRateLimitConfig()
		limit.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limit.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limit))
	}

	handlers := api.NewHandlers(api.Dependencies{
		Files:          files,
		Users:          accounts,
		Sessions:       sessions,
		Chat:           room,
		Auth:           auth,
		Audit:          sink,
		Logs:           logs,
		Metrics:        api.NewHandlerMetrics(metrics),
		Logger:         logger.For("api"),
		SecureCookie:   cfg.Session.Secure,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})
	handlers.Register(router)

	return &Server{
		router:   router,
		store:    st,
		sessions: sessions,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

func seedAccounts(ctx context.Context, accounts *users.Manager, seedFile string, logger *logging.Logger) error {
	seeds := users.DefaultSeeds()
	if seedFile != "" {
		var err error
		if seeds, err = users.LoadSeedFile(seedFile); err != nil {
			return err
		}
	}

	created, err := accounts.EnsureSeeded(ctx, seeds)
	if err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}
	if created > 0 {
		logger.Info("Seeded accounts", zap.Int("count", created), zap.String("source", seedSource(seedFile)))
	}
	return nil
}

func seedSource(seedFile string) string {
	if seedFile == "" {
		return "defaults"
	}
	return seedFile
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sessions.RunSweeper(sweepCtx, sweepInterval)

	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the store and flushes the logger.
func (s *Server) Close() error {
	err := s.store.Close()
	if err != nil {
		s.logger.Error("Failed to close store", zap.Error(err))
	}
	_ = s.logger.Sync()
	return err
}
