// Package config provides 12-factor configuration management for the file
// sharing server.
//
// Configuration is loaded from environment variables with sensible defaults
// and validated with go-playground/validator. CLI flags can override the
// most common values.
//
// Configuration Sections:
//   - Server: HTTP listen address and upload size limit
//   - Storage: storage root and optional per-directory serialization
//   - Data: key-value store location, backend and seed users file
//   - Session: cookie name, lifetime and Secure flag
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting configuration
//
// Environment Variables:
//   - PORT, HOST, MAX_UPLOAD_MB
//   - STORAGE_ROOT, STORAGE_SERIALIZE_DIRS
//   - DATA_DIR, STORE_BACKEND, SEED_USERS_FILE
//   - SESSION_COOKIE, SESSION_MAX_AGE, SESSION_SECURE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
