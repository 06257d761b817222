// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package seed_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantran/phishguard/internal/comment"
	"github.com/vantran/phishguard/internal/identity"
	"github.com/vantran/phishguard/internal/platform/kv"
	"github.com/vantran/phishguard/internal/platform/sec"
	"github.com/vantran/phishguard/internal/report"
	"github.com/vantran/phishguard/internal/seed"
)

func TestRun_PopulatesEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	require.NoError(t, seed.Run(ctx, store, slog.New(slog.DiscardHandler)))

	var users []identity.User
	found, err := store.Get(ctx, kv.KeyUsers, &users)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, users, 2)
	assert.Equal(t, "alex_cyber", users[0].Username)
	assert.Equal(t, "sec_guru", users[1].Username)

	// Demo accounts log in with the documented password, stored hashed.
	assert.True(t, sec.CheckPasswordHash("password123", users[0].PasswordHash))
	assert.NotEqual(t, "password123", users[0].PasswordHash)

	var reports []report.Report
	found, err = store.Get(ctx, kv.KeyReports, &reports)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, reports, 2)

	// Newest first, both public, verdicts within range.
	assert.Equal(t, "rep-1", reports[0].ID)
	assert.Equal(t, "rep-2", reports[1].ID)
	assert.True(t, reports[0].CreatedAt.After(reports[1].CreatedAt))
	for _, rep := range reports {
		assert.True(t, rep.IsPublic)
		assert.True(t, rep.Analysis.IsPhishing)
		assert.GreaterOrEqual(t, rep.Analysis.ConfidenceScore, 0.0)
		assert.LessOrEqual(t, rep.Analysis.ConfidenceScore, 1.0)
		assert.Len(t, rep.Analysis.RedFlags, 3)
	}

	// The demo discussion references seeded records only.
	var comments []comment.Comment
	found, err = store.Get(ctx, kv.KeyComments, &comments)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, comments, 1)
	assert.Equal(t, "rep-1", comments[0].ReportID)
	assert.Equal(t, "sec_guru", comments[0].Author.Username)

	// Archive starts present and empty.
	var archive map[string][]string
	found, err = store.Get(ctx, kv.KeyArchive, &archive)
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, archive)
}

func TestRun_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	logger := slog.New(slog.DiscardHandler)

	require.NoError(t, seed.Run(ctx, store, logger))
	require.NoError(t, seed.Run(ctx, store, logger))

	var users []identity.User
	_, err := store.Get(ctx, kv.KeyUsers, &users)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	var reports []report.Report
	_, err = store.Get(ctx, kv.KeyReports, &reports)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

// TestRun_RespectsPresentButEmptyCollections models the "last user deleted
// everything" state: present keys must never be re-seeded, even when empty.
func TestRun_RespectsPresentButEmptyCollections(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	require.NoError(t, store.Put(ctx, kv.KeyUsers, []identity.User{}))
	require.NoError(t, store.Put(ctx, kv.KeyReports, []report.Report{}))

	require.NoError(t, seed.Run(ctx, store, slog.New(slog.DiscardHandler)))

	var users []identity.User
	_, err := store.Get(ctx, kv.KeyUsers, &users)
	require.NoError(t, err)
	assert.Empty(t, users)

	var reports []report.Report
	_, err = store.Get(ctx, kv.KeyReports, &reports)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestRun_PreservesUserModifications(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	logger := slog.New(slog.DiscardHandler)

	require.NoError(t, seed.Run(ctx, store, logger))

	// A user deletes a seeded report; a restart must not resurrect it.
	var reports []report.Report
	_, err := store.Get(ctx, kv.KeyReports, &reports)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, kv.KeyReports, reports[:1]))

	require.NoError(t, seed.Run(ctx, store, logger))

	_, err = store.Get(ctx, kv.KeyReports, &reports)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}
