// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package comment

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/vantran/phishguard/internal/identity"
	"github.com/vantran/phishguard/internal/platform/apperr"
	"github.com/vantran/phishguard/internal/platform/kv"
	"github.com/vantran/phishguard/pkg/uuidv7"
)

// Service implements the comment store.
//
// It reads the reports collection only to verify that a comment's target
// exists; it never modifies reports. The reverse direction — report deletion
// dropping comment threads — arrives through [Service.RemoveForReports].
type Service struct {
	store kv.Store
	log   *slog.Logger
}

// NewService constructs the comment store.
func NewService(store kv.Store, logger *slog.Logger) *Service {
	return &Service{store: store, log: logger}
}

// ListForReport returns the comments on a report, newest first.
//
// An unknown report id yields an empty list, not an error: threads and
// reports are deleted in separate writes, and a thread observed after its
// report is gone should read as empty.
func (service *Service) ListForReport(ctx context.Context, reportID string) ([]Comment, error) {
	comments, err := service.loadComments(ctx)
	if err != nil {
		return nil, err
	}

	thread := make([]Comment, 0, 8)
	for i := range comments {
		if comments[i].ReportID == reportID {
			thread = append(thread, comments[i])
		}
	}

	sort.SliceStable(thread, func(i, j int) bool {
		return thread[i].CreatedAt.After(thread[j].CreatedAt)
	})

	return thread, nil
}

// Post adds a comment to a report's thread.
//
// # Returns
//   - The stored comment (content trimmed) on success.
//   - [apperr.Unauthenticated] for a nil identity.
//   - [apperr.EmptyContent] when the content is empty after trimming.
//   - [apperr.NotFound] when the target report does not exist.
func (service *Service) Post(ctx context.Context, ident *identity.SessionIdentity, reportID, content string) (*Comment, error) {
	// ── 1. Authorization + Content ────────────────────────────────────────

	if ident == nil {
		return nil, apperr.Unauthenticated()
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, apperr.EmptyContent()
	}

	// ── 2. Target Existence ───────────────────────────────────────────────

	exists, err := service.reportExists(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("Report")
	}

	// ── 3. Persistence ────────────────────────────────────────────────────

	comment := Comment{
		ID:        uuidv7.New(),
		ReportID:  reportID,
		Author:    *ident,
		Content:   trimmed,
		CreatedAt: time.Now().UTC(),
	}

	comments, err := service.loadComments(ctx)
	if err != nil {
		return nil, err
	}

	comments = append(comments, comment)
	if err := service.saveComments(ctx, comments); err != nil {
		return nil, err
	}

	service.log.Info("comment_posted",
		slog.String("comment_id", comment.ID),
		slog.String("report_id", reportID),
		slog.String("user_id", ident.ID),
	)

	return &comment, nil
}

// RemoveForReports drops every comment attached to the given report ids.
// Cascade entry point invoked by the report store; idempotent.
func (service *Service) RemoveForReports(ctx context.Context, reportIDs []string) error {
	doomed := map[string]bool{}
	for _, id := range reportIDs {
		doomed[id] = true
	}

	return service.filterComments(ctx, func(c *Comment) bool {
		return !doomed[c.ReportID]
	})
}

// RemoveByAuthor drops every comment written by the given user, across all
// reports. Idempotent.
func (service *Service) RemoveByAuthor(ctx context.Context, userID string) error {
	return service.filterComments(ctx, func(c *Comment) bool {
		return c.Author.ID != userID
	})
}

// PurgeUserData implements [identity.UserDataPurger].
//
// Only authored comments are removed here; comments on the user's reports
// are handled by the report store's cascade, which calls
// [Service.RemoveForReports] with the deleted report ids.
func (service *Service) PurgeUserData(ctx context.Context, userID string) error {
	return service.RemoveByAuthor(ctx, userID)
}

// # Internals

// filterComments rewrites the collection keeping only comments for which
// keep returns true.
func (service *Service) filterComments(ctx context.Context, keep func(*Comment) bool) error {
	comments, err := service.loadComments(ctx)
	if err != nil {
		return err
	}

	remaining := comments[:0]
	for i := range comments {
		if keep(&comments[i]) {
			remaining = append(remaining, comments[i])
		}
	}

	if len(remaining) == len(comments) {
		return nil
	}

	return service.saveComments(ctx, remaining)
}

// reportExists checks the reports collection for the given id. Only the ids
// are decoded; the rest of each report document is skipped.
func (service *Service) reportExists(ctx context.Context, reportID string) (bool, error) {
	var reports []struct {
		ID string `json:"id"`
	}
	if _, err := service.store.Get(ctx, kv.KeyReports, &reports); err != nil {
		return false, fmt.Errorf("comment: check report: %w", err)
	}

	for i := range reports {
		if reports[i].ID == reportID {
			return true, nil
		}
	}
	return false, nil
}

func (service *Service) loadComments(ctx context.Context) ([]Comment, error) {
	var comments []Comment
	if _, err := service.store.Get(ctx, kv.KeyComments, &comments); err != nil {
		return nil, fmt.Errorf("comment: load comments: %w", err)
	}
	return comments, nil
}

func (service *Service) saveComments(ctx context.Context, comments []Comment) error {
	if err := service.store.Put(ctx, kv.KeyComments, comments); err != nil {
		return fmt.Errorf("comment: save comments: %w", err)
	}
	return nil
}
