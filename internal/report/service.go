// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vantran/phishguard/internal/analysis"
	"github.com/vantran/phishguard/internal/identity"
	"github.com/vantran/phishguard/internal/platform/apperr"
	"github.com/vantran/phishguard/internal/platform/kv"
	"github.com/vantran/phishguard/pkg/uuidv7"
)

// CommentPruner removes comments attached to deleted reports.
//
// Implemented by the comment store; wired at startup to keep the cascade
// direction one-way (reports know nothing else about comments).
type CommentPruner interface {
	RemoveForReports(ctx context.Context, reportIDs []string) error
}

// Service implements the report store.
//
// # Snapshot Model
//
// The durable store holds the truth; the service keeps an in-memory snapshot
// of the reports collection and the archive index from which all feed reads
// are served. Every mutation follows the same cycle: read the collection from
// the store, compute the replacement, write it back, refresh the snapshot.
// Readers therefore always see a complete post-mutation state.
type Service struct {
	store    kv.Store
	log      *slog.Logger
	comments CommentPruner

	mu      sync.RWMutex
	reports []Report
	archive map[string][]string
}

// NewService constructs the report store and loads the initial snapshot.
func NewService(ctx context.Context, store kv.Store, logger *slog.Logger) (*Service, error) {
	service := &Service{
		store:   store,
		log:     logger,
		archive: map[string][]string{},
	}

	if err := service.refresh(ctx); err != nil {
		return nil, err
	}

	return service, nil
}

// AttachCommentPruner registers the comment cascade target.
//
// Called once during wiring; not safe to call after the service is serving.
func (service *Service) AttachCommentPruner(pruner CommentPruner) {
	service.comments = pruner
}

// # Feeds

// GlobalFeed returns all public reports, newest first.
func (service *Service) GlobalFeed() []Report {
	service.mu.RLock()
	defer service.mu.RUnlock()

	feed := make([]Report, 0, len(service.reports))
	for i := range service.reports {
		if service.reports[i].IsPublic {
			feed = append(feed, service.reports[i])
		}
	}
	return feed
}

// PersonalFeed returns the caller's own reports (public and private), newest
// first. A nil identity sees an empty feed.
func (service *Service) PersonalFeed(ident *identity.SessionIdentity) []Report {
	if ident == nil {
		return []Report{}
	}

	service.mu.RLock()
	defer service.mu.RUnlock()

	feed := make([]Report, 0, len(service.reports))
	for i := range service.reports {
		if service.reports[i].Author.ID == ident.ID {
			feed = append(feed, service.reports[i])
		}
	}
	return feed
}

// ArchivedFeed returns the reports the caller has archived, in collection
// order (newest first). Archive entries pointing at reports that no longer
// exist are filtered out, so a partially completed cascade never surfaces
// dangling references. A nil identity sees an empty feed.
func (service *Service) ArchivedFeed(ident *identity.SessionIdentity) []Report {
	if ident == nil {
		return []Report{}
	}

	service.mu.RLock()
	defer service.mu.RUnlock()

	archived := map[string]bool{}
	for _, id := range service.archive[ident.ID] {
		archived[id] = true
	}

	feed := make([]Report, 0, len(archived))
	for i := range service.reports {
		if archived[service.reports[i].ID] {
			feed = append(feed, service.reports[i])
		}
	}
	return feed
}

// IsArchived reports whether the caller has archived the given report.
// Always false for a nil identity.
func (service *Service) IsArchived(ident *identity.SessionIdentity, reportID string) bool {
	if ident == nil {
		return false
	}

	service.mu.RLock()
	defer service.mu.RUnlock()

	for _, id := range service.archive[ident.ID] {
		if id == reportID {
			return true
		}
	}
	return false
}

// GetByID returns a copy of the report, or [apperr.NotFound].
func (service *Service) GetByID(reportID string) (*Report, error) {
	service.mu.RLock()
	defer service.mu.RUnlock()

	for i := range service.reports {
		if service.reports[i].ID == reportID {
			rep := service.reports[i]
			return &rep, nil
		}
	}
	return nil, apperr.NotFound("Report")
}

// # Mutations

// Submit stores a new report authored by ident.
//
// The analysis verdict is accepted as given except the confidence score,
// which is clamped into [0, 1]. The new report is prepended so the
// collection stays newest-first. The only store mutation that rejects an
// unauthenticated caller with an error rather than a no-op.
func (service *Service) Submit(ctx context.Context, ident *identity.SessionIdentity, emailText string, verdict analysis.Result, isPublic bool) (*Report, error) {
	if ident == nil {
		return nil, apperr.Unauthenticated()
	}

	verdict.ClampConfidence()

	rep := Report{
		ID:            uuidv7.New(),
		Author:        *ident,
		OriginalEmail: emailText,
		Analysis:      verdict,
		CreatedAt:     time.Now().UTC(),
		IsPublic:      isPublic,
		LikedBy:       []string{},
	}

	reports, err := service.loadReports(ctx)
	if err != nil {
		return nil, err
	}

	reports = append([]Report{rep}, reports...)
	if err := service.saveReports(ctx, reports); err != nil {
		return nil, err
	}

	service.log.Info("report_submitted",
		slog.String("report_id", rep.ID),
		slog.String("user_id", ident.ID),
		slog.Bool("is_public", isPublic),
	)

	return &rep, service.refresh(ctx)
}

// Delete removes a report the caller owns, cascading to its comments and to
// every archive entry referencing it.
//
// Silently a no-op when the caller is nil, the report does not exist, or the
// caller is not its author.
func (service *Service) Delete(ctx context.Context, ident *identity.SessionIdentity, reportID string) error {
	if ident == nil {
		return nil
	}

	// ── 1. Primary Deletion ───────────────────────────────────────────────

	reports, err := service.loadReports(ctx)
	if err != nil {
		return err
	}

	index := -1
	for i := range reports {
		if reports[i].ID == reportID && reports[i].Author.ID == ident.ID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}

	reports = append(reports[:index], reports[index+1:]...)
	if err := service.saveReports(ctx, reports); err != nil {
		return err
	}

	// ── 2. Cascades (best-effort) ─────────────────────────────────────────

	service.pruneCascades(ctx, []string{reportID})

	service.log.Info("report_deleted",
		slog.String("report_id", reportID),
		slog.String("user_id", ident.ID),
	)

	return service.refresh(ctx)
}

// Publish makes a report public. Conditional: writes only when the caller
// owns the report and it is currently private; every other case is a no-op.
func (service *Service) Publish(ctx context.Context, ident *identity.SessionIdentity, reportID string) error {
	return service.setVisibility(ctx, ident, reportID, true)
}

// Unpublish makes a report private. Conditional like [Service.Publish].
func (service *Service) Unpublish(ctx context.Context, ident *identity.SessionIdentity, reportID string) error {
	return service.setVisibility(ctx, ident, reportID, false)
}

// ToggleLike flips the caller's membership in the report's liked-by set.
// Any authenticated user may like any report; a nil identity is a no-op.
func (service *Service) ToggleLike(ctx context.Context, ident *identity.SessionIdentity, reportID string) error {
	if ident == nil {
		return nil
	}

	reports, err := service.loadReports(ctx)
	if err != nil {
		return err
	}

	found := false
	for i := range reports {
		if reports[i].ID != reportID {
			continue
		}
		found = true

		if reports[i].LikedByUser(ident.ID) {
			reports[i].LikedBy = removeString(reports[i].LikedBy, ident.ID)
		} else {
			reports[i].LikedBy = append(reports[i].LikedBy, ident.ID)
		}
		break
	}
	if !found {
		return nil
	}

	if err := service.saveReports(ctx, reports); err != nil {
		return err
	}
	return service.refresh(ctx)
}

// ToggleArchive flips the report in the caller's personal archive set.
// Any authenticated user may archive any report; archiving is independent of
// visibility and survives later unpublishing. A nil identity or an unknown
// report id is a no-op, so archive entries only ever reference live reports.
func (service *Service) ToggleArchive(ctx context.Context, ident *identity.SessionIdentity, reportID string) error {
	if ident == nil {
		return nil
	}

	if _, err := service.GetByID(reportID); err != nil {
		return nil
	}

	archive, err := service.loadArchive(ctx)
	if err != nil {
		return err
	}

	set := archive[ident.ID]
	if containsString(set, reportID) {
		set = removeString(set, reportID)
	} else {
		set = append(set, reportID)
	}

	if len(set) == 0 {
		delete(archive, ident.ID)
	} else {
		archive[ident.ID] = set
	}

	if err := service.saveArchive(ctx, archive); err != nil {
		return err
	}
	return service.refresh(ctx)
}

// # Cascades

// PurgeUserData implements [identity.UserDataPurger]: it removes every report
// the user authored (with comment and archive cascades), strips the user from
// all liked-by sets, and drops the user's own archive entry.
func (service *Service) PurgeUserData(ctx context.Context, userID string) error {
	// ── 1. Reports ────────────────────────────────────────────────────────

	reports, err := service.loadReports(ctx)
	if err != nil {
		return err
	}

	removedIDs := []string{}
	remaining := reports[:0]
	for i := range reports {
		if reports[i].Author.ID == userID {
			removedIDs = append(removedIDs, reports[i].ID)
			continue
		}
		reports[i].LikedBy = removeString(reports[i].LikedBy, userID)
		remaining = append(remaining, reports[i])
	}

	if err := service.saveReports(ctx, remaining); err != nil {
		return err
	}

	// ── 2. Archive Entry + Cascades ───────────────────────────────────────

	if archive, err := service.loadArchive(ctx); err != nil {
		service.log.Warn("archive_purge_failed", slog.String("user_id", userID), slog.Any("error", err))
	} else {
		delete(archive, userID)
		if err := service.saveArchive(ctx, archive); err != nil {
			service.log.Warn("archive_purge_failed", slog.String("user_id", userID), slog.Any("error", err))
		}
	}

	if len(removedIDs) > 0 {
		service.pruneCascades(ctx, removedIDs)
	}

	service.log.Info("report_data_purged",
		slog.String("user_id", userID),
		slog.Int("reports_removed", len(removedIDs)),
	)

	return service.refresh(ctx)
}

// pruneCascades removes the given report ids from every archive set and asks
// the comment store to drop their comment threads. Both cascades are
// best-effort: failures are logged, never propagated, because the primary
// deletion has already been committed and readers filter dangling references.
func (service *Service) pruneCascades(ctx context.Context, reportIDs []string) {
	if archive, err := service.loadArchive(ctx); err != nil {
		service.log.Warn("archive_prune_failed", slog.Any("error", err))
	} else {
		for userID, set := range archive {
			for _, reportID := range reportIDs {
				set = removeString(set, reportID)
			}
			if len(set) == 0 {
				delete(archive, userID)
			} else {
				archive[userID] = set
			}
		}
		if err := service.saveArchive(ctx, archive); err != nil {
			service.log.Warn("archive_prune_failed", slog.Any("error", err))
		}
	}

	if service.comments != nil {
		if err := service.comments.RemoveForReports(ctx, reportIDs); err != nil {
			service.log.Warn("comment_prune_failed", slog.Any("error", err))
		}
	}
}

// # Internals

// setVisibility is the shared conditional write behind Publish / Unpublish.
func (service *Service) setVisibility(ctx context.Context, ident *identity.SessionIdentity, reportID string, public bool) error {
	if ident == nil {
		return nil
	}

	reports, err := service.loadReports(ctx)
	if err != nil {
		return err
	}

	changed := false
	for i := range reports {
		if reports[i].ID == reportID && reports[i].Author.ID == ident.ID && reports[i].IsPublic != public {
			reports[i].IsPublic = public
			changed = true
		}
		if reports[i].ID == reportID {
			break
		}
	}
	if !changed {
		return nil
	}

	if err := service.saveReports(ctx, reports); err != nil {
		return err
	}
	return service.refresh(ctx)
}

// refresh replaces the in-memory snapshot with the store's current state.
func (service *Service) refresh(ctx context.Context) error {
	reports, err := service.loadReports(ctx)
	if err != nil {
		return err
	}
	archive, err := service.loadArchive(ctx)
	if err != nil {
		return err
	}

	service.mu.Lock()
	service.reports = reports
	service.archive = archive
	service.mu.Unlock()

	return nil
}

func (service *Service) loadReports(ctx context.Context) ([]Report, error) {
	var reports []Report
	if _, err := service.store.Get(ctx, kv.KeyReports, &reports); err != nil {
		return nil, fmt.Errorf("report: load reports: %w", err)
	}
	return reports, nil
}

func (service *Service) saveReports(ctx context.Context, reports []Report) error {
	if err := service.store.Put(ctx, kv.KeyReports, reports); err != nil {
		return fmt.Errorf("report: save reports: %w", err)
	}
	return nil
}

func (service *Service) loadArchive(ctx context.Context) (map[string][]string, error) {
	archive := map[string][]string{}
	if _, err := service.store.Get(ctx, kv.KeyArchive, &archive); err != nil {
		return nil, fmt.Errorf("report: load archive: %w", err)
	}
	return archive, nil
}

func (service *Service) saveArchive(ctx context.Context, archive map[string][]string) error {
	if err := service.store.Put(ctx, kv.KeyArchive, archive); err != nil {
		return fmt.Errorf("report: save archive: %w", err)
	}
	return nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func removeString(values []string, target string) []string {
	out := values[:0]
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
