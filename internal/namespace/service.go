package namespace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/audit"
)

// Identity is the authenticated caller of an operation.
type Identity struct {
	Username string
	Admin    bool
}

// AuditSink receives one event per operation.
type AuditSink interface {
	Record(ctx context.Context, ev audit.Event) error
}

// Recorder receives operation metrics.
type Recorder interface {
	RecordNamespaceOperation(op, outcome string, d time.Duration)
	RecordUploadBytes(n int64)
}

// Service performs namespace operations on behalf of authenticated users.
type Service struct {
	resolver *Resolver
	audit    AuditSink
	logger   *zap.Logger
	metrics  Recorder
	locks    *dirLocks
}

// Option configures a Service.
type Option func(*Service)

// WithAudit sets the audit sink.
func WithAudit(sink AuditSink) Option {
	return func(s *Service) { s.audit = sink }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger.Named("namespace") }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithDirectoryLocks serializes mutating operations that target the same
// physical directory. Without it, allocate-then-write and check-then-create
// sequences may race.
func WithDirectoryLocks() Option {
	return func(s *Service) { s.locks = newDirLocks() }
}

// NewService creates a namespace service.
func NewService(resolver *Resolver, opts ...Option) *Service {
	s := &Service{
		resolver: resolver,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolver returns the underlying resolver.
func (s *Service) Resolver() *Resolver { return s.resolver }

// describe renders the audit detail text of an operation target, for
// example "common:/docs/report.pdf".
func describe(loc Location, names ...string) string {
	target := string(loc.Category) + ":/" + loc.Rel
	if len(names) == 0 {
		return target
	}
	if loc.Rel != "" {
		target += "/"
	}
	return target + strings.Join(names, " -> ")
}

// finish reports the outcome of an operation that passed resolution:
// metrics, logging and exactly one audit event.
func (s *Service) finish(ctx context.Context, who Identity, action string, start time.Time, details string, err error) error {
	outcome := audit.Success
	if err != nil {
		outcome = audit.Failure
		details = fmt.Sprintf("%s (error: %v)", details, err)
	}

	if s.metrics != nil {
		s.metrics.RecordNamespaceOperation(action, string(outcome), time.Since(start))
	}

	fields := []zap.Field{
		zap.String("action", action),
		zap.String("username", who.Username),
		zap.String("details", details),
		zap.Duration("duration", time.Since(start)),
	}
	switch {
	case err == nil:
		s.logger.Debug("namespace operation", fields...)
	case KindOf(err) == KindIOFailure:
		s.logger.Error("namespace operation failed", append(fields, zap.Error(err))...)
	default:
		s.logger.Warn("namespace operation rejected", append(fields, zap.Error(err))...)
	}

	if s.audit != nil {
		ev := audit.NewEvent(who.Username, action, details, outcome)
		if aerr := s.audit.Record(context.WithoutCancel(ctx), ev); aerr != nil {
			s.logger.Warn("audit record failed",
				zap.String("action", action),
				zap.String("username", who.Username),
				zap.Error(aerr),
			)
		}
	}
	return err
}
