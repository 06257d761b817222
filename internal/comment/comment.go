// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

// Package comment implements the comment store: discussion threads attached
// to reports.
//
// Comments live in their own collection keyed by report id rather than
// nested inside reports, so a report deletion cascades here through
// [Service.RemoveForReports] instead of rewriting report documents.
package comment

import (
	"time"

	"github.com/vantran/phishguard/internal/identity"
)

// Comment is one discussion entry on a report.
//
// Content is stored trimmed; whitespace-only submissions are rejected before
// they reach the collection.
type Comment struct {
	ID        string                   `json:"id"`
	ReportID  string                   `json:"report_id"`
	Author    identity.SessionIdentity `json:"author"`
	Content   string                   `json:"content"`
	CreatedAt time.Time                `json:"created_at"`
}
