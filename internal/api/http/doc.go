// Package http exposes the file namespace, accounts and chat over a JSON
// REST API built on gin.
//
// Endpoints:
//   - Health: / and /health, metrics on /metrics
//   - Auth: /login, /logout, /api/me
//   - Files: /api/files/:category, /api/upload/:category,
//     /api/download/:category/:filename, /api/archive/:category/:name,
//     /api/rename/:category, /api/folder/:category
//   - Chat: /api/chat
//   - Admin: /api/users, /api/users/:username, /api/users/:username/files,
//     /api/logs
//
// Namespace failures map to statuses by kind: path_violation 400,
// not_found and not_a_directory 404, already_exists 409, io_failure 500.
// Every error body is {"error": message, "kind": kind}.
package http
