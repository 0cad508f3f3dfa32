// Package store provides the key-value persistence used for user accounts,
// chat messages and audit events.
//
// Records live in named collections. Each Put or Delete is applied
// atomically for a single record. Two backends are available:
//   - json: one <collection>.json file per collection, rewritten through a
//     temporary file and rename
//   - badger: a single embedded badger database, keys "<collection>/<key>"
//
// Both backends scan in key order. Callers that need another order (for
// example by timestamp) sort the decoded records themselves.
package store
