// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

/*
Package kv defines the durable store primitive for PhishGuard.

Every logical collection (users, reports, comments, archive index) is one
JSON document under one well-known key. Reads and writes happen at
whole-collection granularity: a store operation reads the full collection,
computes the new collection, and writes it back.

# Consistency Model

There is no multi-key transaction. A crash between two collection writes
during a cascading deletion can leave a dangling cross-reference; readers
tolerate this by defensively filtering references to records that no longer
exist. When multiple processes share one backend, the last writer wins at
collection granularity — acceptable for the target of a single active
session, not a general multi-writer mechanism.

# Backends

  - [Redis]: the primary production backend.
  - [Postgres]: one JSONB row per collection key, atomic per-key upserts.
  - [Memory]: process-local map for tests and embedded library use.

All backends agree that a missing key reads as "absent", which callers treat
as the empty collection.
*/
package kv

import "context"

// Well-known collection keys. The "pg" prefix is the PhishGuard namespace
// shared by every backend.
const (
	// KeyUsers holds the full []identity.User collection.
	KeyUsers = "pg:users"

	// KeyReports holds the full []report.Report collection, newest first.
	KeyReports = "pg:reports"

	// KeyComments holds the full []comment.Comment collection, append order.
	KeyComments = "pg:comments"

	// KeyArchive holds the map[userID][]reportID archive index.
	KeyArchive = "pg:archive"

	// KeySession holds the current SessionIdentity (password-free) or is
	// absent when no session is active.
	KeySession = "pg:session"
)

// Store is the synchronous whole-collection persistence primitive.
//
// # Contract
//
//   - Get unmarshals the JSON document at key into target and reports whether
//     the key existed. An absent key is not an error: (false, nil).
//   - Put marshals value to JSON and replaces the document at key.
//   - Delete removes the key. Deleting an absent key is a no-op.
//
// Implementations must be safe for concurrent use; callers serialize their
// own read-modify-write cycles.
type Store interface {
	Get(ctx context.Context, key string, target any) (bool, error)
	Put(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}
