// Package main is the entry point for the NowDrop server: shared and
// personal file storage plus a chat room for a local network.
//
// Configuration:
//   - Environment variables (PORT, STORAGE_ROOT, DATA_DIR, STORE_BACKEND, ...)
//   - CLI flags override them
//
// Usage:
//
//	./server --port 8000 --storage ./storage --data ./data
//
//	# Development mode (colored logs, debug gin output)
//	./server --dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
