// Package server assembles the NowDrop service.
//
// NewServer wires the components together:
//   - zap logger and prometheus metrics
//   - key-value store (JSON file or badger) for accounts, chat and audit
//   - storage root resolver and namespace service
//   - account seeding, sessions, chat room
//   - gin router with recovery, request log, metrics, CORS and rate limiting
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer srv.Close()
//	if err := srv.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package server
