// Package logging builds the service's zap logger.
//
// Production output is JSON; development output is colored console text.
// Every record carries service=nowdrop, and subsystems log through named
// children:
//
//	logger := logging.FromConfig(cfg.Logging)
//	files := namespace.NewService(resolver, namespace.WithLogger(logger.For("namespace")))
package logging
