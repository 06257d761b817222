// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

// Package report implements the report store: the reactive aggregate over
// the reports collection and the per-user archive index.
//
// # Architecture
//
// All mutation operations are scoped by an explicit caller identity passed
// as an argument — the store never reaches into ambient session state. The
// authorization rules are enforced here, not in the UI:
//
//   - delete / publish / unpublish require ownership;
//   - archive and like require only an authenticated caller;
//   - mutations without an identity are safe no-ops (except Submit).
package report

import (
	"time"

	"github.com/vantran/phishguard/internal/analysis"
	"github.com/vantran/phishguard/internal/identity"
)

// Report is one submitted phishing report.
//
// # Rules
//   - Author is fixed at creation; ownership never transfers.
//   - LikedBy holds each user id at most once.
//   - IsPublic controls global-feed membership only; personal and archived
//     feeds are unaffected by it.
//   - The collection is stored newest-first: submissions prepend, so storage
//     order is feed order.
type Report struct {
	ID            string                   `json:"id"`
	Author        identity.SessionIdentity `json:"author"`
	OriginalEmail string                   `json:"original_email"`
	Analysis      analysis.Result          `json:"analysis"`
	CreatedAt     time.Time                `json:"created_at"`
	IsPublic      bool                     `json:"is_public"`
	LikedBy       []string                 `json:"liked_by"`
}

// LikedByUser reports whether the given user id is in LikedBy.
func (r *Report) LikedByUser(userID string) bool {
	for _, id := range r.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}
