// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

// Package seed populates the durable store with demo data on first run.
//
// # Idempotency
//
// Each collection is seeded only when its key is absent from the store. An
// empty-but-present collection (for example after the last user deleted
// their account) is respected and never re-seeded.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vantran/phishguard/internal/analysis"
	"github.com/vantran/phishguard/internal/comment"
	"github.com/vantran/phishguard/internal/identity"
	"github.com/vantran/phishguard/internal/platform/kv"
	"github.com/vantran/phishguard/internal/platform/sec"
	"github.com/vantran/phishguard/internal/report"
)

// demoPassword is the login password for both demo accounts.
const demoPassword = "password123"

// Run seeds every absent collection. Safe to call on every startup.
func Run(ctx context.Context, store kv.Store, logger *slog.Logger) error {
	users, err := seedUsers(ctx, store)
	if err != nil {
		return err
	}

	reports, err := seedReports(ctx, store, users)
	if err != nil {
		return err
	}

	if err := seedComments(ctx, store, users, reports); err != nil {
		return err
	}

	if err := seedArchive(ctx, store); err != nil {
		return err
	}

	logger.Info("seed_completed")
	return nil
}

// seedUsers writes the two demo accounts when the users collection is absent.
// It always returns the identities referenced by the demo reports, read back
// from the store when seeding was skipped.
func seedUsers(ctx context.Context, store kv.Store) ([]identity.User, error) {
	var existing []identity.User
	found, err := store.Get(ctx, kv.KeyUsers, &existing)
	if err != nil {
		return nil, fmt.Errorf("seed: users: %w", err)
	}
	if found {
		return existing, nil
	}

	hash, err := sec.HashPassword(demoPassword)
	if err != nil {
		return nil, fmt.Errorf("seed: users: %w", err)
	}

	users := []identity.User{
		{ID: "user-1", Username: "alex_cyber", Email: "alex@example.com", PasswordHash: hash},
		{ID: "user-2", Username: "sec_guru", Email: "guru@example.com", PasswordHash: hash},
	}

	if err := store.Put(ctx, kv.KeyUsers, users); err != nil {
		return nil, fmt.Errorf("seed: users: %w", err)
	}
	return users, nil
}

// seedReports writes two worked analysis examples when the reports
// collection is absent. Collection order is newest first.
func seedReports(ctx context.Context, store kv.Store, users []identity.User) ([]report.Report, error) {
	var existing []report.Report
	found, err := store.Get(ctx, kv.KeyReports, &existing)
	if err != nil {
		return nil, fmt.Errorf("seed: reports: %w", err)
	}
	if found {
		return existing, nil
	}

	alex := findIdentity(users, "alex_cyber")
	guru := findIdentity(users, "sec_guru")
	if alex == nil || guru == nil {
		// Users collection was hand-edited; nothing sensible to attach to.
		return existing, nil
	}

	now := time.Now().UTC()

	reports := []report.Report{
		{
			ID:     "rep-1",
			Author: *alex,
			OriginalEmail: "From: security@microsft-support.com\n" +
				"Subject: Urgent: Your account has been compromised!\n\n" +
				"Dear user, we detected unusual activity. Click here immediately to verify your identity: http://bit.ly/fake-link or your account will be suspended within 24 hours.",
			Analysis: analysis.Result{
				IsPhishing:      true,
				ConfidenceScore: 0.98,
				Summary:         "This email exhibits classic phishing characteristics including a misspelled sender domain, urgent threatening language, and a suspicious shortened link.",
				RedFlags: []analysis.RedFlag{
					{Category: "Sender Anomaly", Description: "The domain 'microsft-support.com' is a misspelling of Microsoft."},
					{Category: "Urgency", Description: "Threatens account suspension within 24 hours to force hasty action."},
					{Category: "Suspicious Link", Description: "Uses a URL shortener to mask the true destination."},
				},
				RecommendedAction:   "Delete this email immediately and do not click the link.",
				EducationalTakeaway: "Legitimate companies never pressure you with urgent deadlines to verify credentials.",
			},
			CreatedAt: now.Add(-1 * time.Hour),
			IsPublic:  true,
			LikedBy:   []string{guru.ID},
		},
		{
			ID:     "rep-2",
			Author: *guru,
			OriginalEmail: "From: billing@secure-bank-alerts.net\n" +
				"Subject: Payment declined - action required\n\n" +
				"Hello, your recent payment was declined. Please update your banking details at our secure portal to avoid service interruption.",
			Analysis: analysis.Result{
				IsPhishing:      true,
				ConfidenceScore: 0.95,
				Summary:         "A credential harvesting attempt impersonating a bank, using a generic greeting and a vague threat of service interruption.",
				RedFlags: []analysis.RedFlag{
					{Category: "Generic Greeting", Description: "Addresses the reader as 'Hello' instead of by name."},
					{Category: "Suspicious Link", Description: "Directs to an unofficial 'secure portal' to enter banking details."},
					{Category: "Vague Threat", Description: "Warns of unspecified 'service interruption' to create anxiety."},
				},
				RecommendedAction:   "Contact your bank directly through its official website or app.",
				EducationalTakeaway: "Banks never ask you to update details via email links. Always navigate to the site yourself.",
			},
			CreatedAt: now.Add(-2 * time.Hour),
			IsPublic:  true,
			LikedBy:   []string{},
		},
	}

	if err := store.Put(ctx, kv.KeyReports, reports); err != nil {
		return nil, fmt.Errorf("seed: reports: %w", err)
	}
	return reports, nil
}

// seedComments writes the demo discussion when the comments collection is
// absent and its targets exist.
func seedComments(ctx context.Context, store kv.Store, users []identity.User, reports []report.Report) error {
	var existing []comment.Comment
	found, err := store.Get(ctx, kv.KeyComments, &existing)
	if err != nil {
		return fmt.Errorf("seed: comments: %w", err)
	}
	if found {
		return nil
	}

	guru := findIdentity(users, "sec_guru")
	if guru == nil || !reportPresent(reports, "rep-1") {
		return store.Put(ctx, kv.KeyComments, []comment.Comment{})
	}

	comments := []comment.Comment{
		{
			ID:        "com-1",
			ReportID:  "rep-1",
			Author:    *guru,
			Content:   "Classic textbook example. The misspelled domain is a dead giveaway. Thanks for sharing!",
			CreatedAt: time.Now().UTC().Add(-30 * time.Minute),
		},
	}

	if err := store.Put(ctx, kv.KeyComments, comments); err != nil {
		return fmt.Errorf("seed: comments: %w", err)
	}
	return nil
}

// seedArchive writes an empty archive index when the key is absent, so the
// first real archive toggle starts from a present collection.
func seedArchive(ctx context.Context, store kv.Store) error {
	var existing map[string][]string
	found, err := store.Get(ctx, kv.KeyArchive, &existing)
	if err != nil {
		return fmt.Errorf("seed: archive: %w", err)
	}
	if found {
		return nil
	}

	if err := store.Put(ctx, kv.KeyArchive, map[string][]string{}); err != nil {
		return fmt.Errorf("seed: archive: %w", err)
	}
	return nil
}

func findIdentity(users []identity.User, username string) *identity.SessionIdentity {
	for i := range users {
		if users[i].Username == username {
			ident := users[i].Identity()
			return &ident
		}
	}
	return nil
}

func reportPresent(reports []report.Report, id string) bool {
	for i := range reports {
		if reports[i].ID == id {
			return true
		}
	}
	return false
}
