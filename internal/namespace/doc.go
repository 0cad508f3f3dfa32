// Package namespace maps logical file references onto the on-disk storage
// layout and performs the file operations exposed by the service.
//
// Layout:
//
//	<root>/common/**               shared area, visible to every user
//	<root>/users/user_<name>/**    personal area, one per username
//
// Components:
//   - Resolver: (category, username, relative path) to a contained directory
//   - Allocate: collision-free names using the stem_N.ext scheme
//   - List: folders first, then files, each group in enumeration order
//   - Service: create folder, store upload, delete, rename, download, archive
//
// Every Service operation that gets past path resolution reports exactly one
// audit event through the configured Sink, whether it succeeded or failed.
// Resolution failures are rejected before any mutation and are not audited.
//
// Example Usage:
//
//	resolver, err := namespace.NewResolver("storage")
//	svc := namespace.NewService(resolver, namespace.WithAudit(sink))
//	entries, err := svc.List(ctx, who, namespace.Personal, "docs", "")
package namespace
