// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package report_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantran/phishguard/internal/analysis"
	"github.com/vantran/phishguard/internal/comment"
	"github.com/vantran/phishguard/internal/identity"
	"github.com/vantran/phishguard/internal/platform/apperr"
	"github.com/vantran/phishguard/internal/platform/kv"
	"github.com/vantran/phishguard/internal/report"
)

var (
	alex = identity.SessionIdentity{ID: "user-alex", Username: "alex_cyber", Email: "alex@example.com"}
	guru = identity.SessionIdentity{ID: "user-guru", Username: "sec_guru", Email: "guru@example.com"}
)

func newTestService(t *testing.T) (context.Context, kv.Store, *report.Service) {
	t.Helper()

	ctx := context.Background()
	store := kv.NewMemory()

	service, err := report.NewService(ctx, store, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	return ctx, store, service
}

func testVerdict(confidence float64) analysis.Result {
	return analysis.Result{
		IsPhishing:      true,
		ConfidenceScore: confidence,
		Summary:         "test verdict",
		RedFlags:        []analysis.RedFlag{{Category: "Urgency", Description: "d"}},
	}
}

func TestSubmit_PrependsNewestFirst(t *testing.T) {
	ctx, _, service := newTestService(t)

	first, err := service.Submit(ctx, &alex, "first email", testVerdict(0.9), true)
	require.NoError(t, err)
	second, err := service.Submit(ctx, &alex, "second email", testVerdict(0.8), true)
	require.NoError(t, err)

	feed := service.GlobalFeed()
	require.Len(t, feed, 2)
	assert.Equal(t, second.ID, feed[0].ID)
	assert.Equal(t, first.ID, feed[1].ID)
}

func TestSubmit_ClampsConfidence(t *testing.T) {
	ctx, _, service := newTestService(t)

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "above_range", in: 1.7, want: 1.0},
		{name: "below_range", in: -0.3, want: 0.0},
		{name: "in_range", in: 0.42, want: 0.42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := service.Submit(ctx, &alex, "body", testVerdict(tt.in), true)
			require.NoError(t, err)

			stored, err := service.GetByID(rep.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stored.Analysis.ConfidenceScore)
		})
	}
}

func TestSubmit_RequiresIdentity(t *testing.T) {
	ctx, _, service := newTestService(t)

	_, err := service.Submit(ctx, nil, "body", testVerdict(0.9), true)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUnauthenticated, apperr.CodeOf(err))
}

func TestFeeds_PartitionByVisibilityAndAuthor(t *testing.T) {
	ctx, _, service := newTestService(t)

	public, err := service.Submit(ctx, &alex, "public email", testVerdict(0.9), true)
	require.NoError(t, err)
	private, err := service.Submit(ctx, &alex, "private email", testVerdict(0.9), false)
	require.NoError(t, err)

	global := service.GlobalFeed()
	require.Len(t, global, 1)
	assert.Equal(t, public.ID, global[0].ID)

	personal := service.PersonalFeed(&alex)
	require.Len(t, personal, 2)
	assert.Equal(t, private.ID, personal[0].ID)
	assert.Equal(t, public.ID, personal[1].ID)

	assert.Empty(t, service.PersonalFeed(&guru))
	assert.Empty(t, service.PersonalFeed(nil))

	// Private reports stay directly addressable.
	fetched, err := service.GetByID(private.ID)
	require.NoError(t, err)
	assert.False(t, fetched.IsPublic)
}

func TestPublishUnpublish_OwnerOnly(t *testing.T) {
	ctx, _, service := newTestService(t)

	rep, err := service.Submit(ctx, &alex, "body", testVerdict(0.9), true)
	require.NoError(t, err)

	// A non-owner's unpublish changes nothing.
	require.NoError(t, service.Unpublish(ctx, &guru, rep.ID))
	assert.Len(t, service.GlobalFeed(), 1)

	// The owner's unpublish removes it from the global feed only.
	require.NoError(t, service.Unpublish(ctx, &alex, rep.ID))
	assert.Empty(t, service.GlobalFeed())
	assert.Len(t, service.PersonalFeed(&alex), 1)

	// Publishing again restores global membership.
	require.NoError(t, service.Publish(ctx, &alex, rep.ID))
	assert.Len(t, service.GlobalFeed(), 1)

	// Publishing an already-public report stays stable.
	require.NoError(t, service.Publish(ctx, &alex, rep.ID))
	assert.Len(t, service.GlobalFeed(), 1)
}

func TestToggleLike_ParityAndIdentityScoping(t *testing.T) {
	ctx, _, service := newTestService(t)

	rep, err := service.Submit(ctx, &alex, "body", testVerdict(0.9), true)
	require.NoError(t, err)

	// Any authenticated user may like, including repeatedly: membership
	// after n toggles equals n mod 2.
	for i := 1; i <= 5; i++ {
		require.NoError(t, service.ToggleLike(ctx, &guru, rep.ID))

		stored, err := service.GetByID(rep.ID)
		require.NoError(t, err)
		assert.Equal(t, i%2 == 1, stored.LikedByUser(guru.ID), "after %d toggles", i)
	}

	// Likes are per-identity sets, never counters.
	require.NoError(t, service.ToggleLike(ctx, &alex, rep.ID))
	stored, err := service.GetByID(rep.ID)
	require.NoError(t, err)
	assert.True(t, stored.LikedByUser(alex.ID))
	assert.True(t, stored.LikedByUser(guru.ID))
	assert.Len(t, stored.LikedBy, 2)
}

func TestToggleArchive_IndependentOfVisibility(t *testing.T) {
	ctx, _, service := newTestService(t)

	rep, err := service.Submit(ctx, &alex, "body", testVerdict(1.7), true)
	require.NoError(t, err)

	// A non-author archives someone else's report.
	require.NoError(t, service.ToggleArchive(ctx, &guru, rep.ID))

	archived := service.ArchivedFeed(&guru)
	require.Len(t, archived, 1)
	assert.Equal(t, rep.ID, archived[0].ID)
	assert.Equal(t, 1.0, archived[0].Analysis.ConfidenceScore)
	assert.True(t, service.IsArchived(&guru, rep.ID))

	// Archive sets are personal.
	assert.Empty(t, service.ArchivedFeed(&alex))
	assert.False(t, service.IsArchived(&alex, rep.ID))

	// Unpublishing does not evict it from anyone's archive.
	require.NoError(t, service.Unpublish(ctx, &alex, rep.ID))
	assert.Len(t, service.ArchivedFeed(&guru), 1)

	// Toggling again removes it.
	require.NoError(t, service.ToggleArchive(ctx, &guru, rep.ID))
	assert.Empty(t, service.ArchivedFeed(&guru))
	assert.False(t, service.IsArchived(&guru, rep.ID))
}

func TestToggleArchive_UnknownReportIsNoOp(t *testing.T) {
	ctx, store, service := newTestService(t)

	require.NoError(t, service.ToggleArchive(ctx, &guru, "missing-report"))

	var archive map[string][]string
	_, err := store.Get(ctx, kv.KeyArchive, &archive)
	require.NoError(t, err)
	assert.Empty(t, archive[guru.ID])
}

func TestDelete_OwnerOnlyWithCascades(t *testing.T) {
	ctx, store, service := newTestService(t)
	commentService := comment.NewService(store, slog.New(slog.DiscardHandler))
	service.AttachCommentPruner(commentService)

	rep, err := service.Submit(ctx, &alex, "body", testVerdict(0.9), true)
	require.NoError(t, err)
	keeper, err := service.Submit(ctx, &guru, "other body", testVerdict(0.9), true)
	require.NoError(t, err)

	_, err = commentService.Post(ctx, &guru, rep.ID, "on the doomed report")
	require.NoError(t, err)
	_, err = commentService.Post(ctx, &guru, keeper.ID, "on the surviving report")
	require.NoError(t, err)
	require.NoError(t, service.ToggleArchive(ctx, &guru, rep.ID))

	// Deleting someone else's report, or a missing one, is a silent no-op.
	require.NoError(t, service.Delete(ctx, &guru, rep.ID))
	require.NoError(t, service.Delete(ctx, &alex, "missing-report"))
	_, err = service.GetByID(rep.ID)
	require.NoError(t, err)

	// The owner's delete removes the report, its comments, and every archive
	// reference — other threads stay intact.
	require.NoError(t, service.Delete(ctx, &alex, rep.ID))

	_, err = service.GetByID(rep.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	doomedThread, err := commentService.ListForReport(ctx, rep.ID)
	require.NoError(t, err)
	assert.Empty(t, doomedThread)

	survivingThread, err := commentService.ListForReport(ctx, keeper.ID)
	require.NoError(t, err)
	assert.Len(t, survivingThread, 1)

	assert.Empty(t, service.ArchivedFeed(&guru))
}

func TestNilIdentityMutationsAreNoOps(t *testing.T) {
	ctx, _, service := newTestService(t)

	rep, err := service.Submit(ctx, &alex, "body", testVerdict(0.9), true)
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, nil, rep.ID))
	require.NoError(t, service.Unpublish(ctx, nil, rep.ID))
	require.NoError(t, service.ToggleLike(ctx, nil, rep.ID))
	require.NoError(t, service.ToggleArchive(ctx, nil, rep.ID))

	stored, err := service.GetByID(rep.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPublic)
	assert.Empty(t, stored.LikedBy)
	assert.Empty(t, service.ArchivedFeed(nil))
}

func TestGetByID_NotFound(t *testing.T) {
	_, _, service := newTestService(t)

	_, err := service.GetByID("missing-report")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestPurgeUserData_RemovesEveryTrace(t *testing.T) {
	ctx, store, service := newTestService(t)
	commentService := comment.NewService(store, slog.New(slog.DiscardHandler))
	service.AttachCommentPruner(commentService)

	doomed, err := service.Submit(ctx, &alex, "alex body", testVerdict(0.9), true)
	require.NoError(t, err)
	survivor, err := service.Submit(ctx, &guru, "guru body", testVerdict(0.9), true)
	require.NoError(t, err)

	require.NoError(t, service.ToggleLike(ctx, &alex, survivor.ID))
	require.NoError(t, service.ToggleArchive(ctx, &alex, survivor.ID))
	require.NoError(t, service.ToggleArchive(ctx, &guru, doomed.ID))
	_, err = commentService.Post(ctx, &guru, doomed.ID, "thread on doomed report")
	require.NoError(t, err)

	require.NoError(t, service.PurgeUserData(ctx, alex.ID))

	// Authored report gone; the other user's report survives unliked.
	_, err = service.GetByID(doomed.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	kept, err := service.GetByID(survivor.ID)
	require.NoError(t, err)
	assert.Empty(t, kept.LikedBy)

	// Both the purged user's archive entry and other users' references to
	// the purged reports are gone.
	var archive map[string][]string
	_, err = store.Get(ctx, kv.KeyArchive, &archive)
	require.NoError(t, err)
	assert.NotContains(t, archive, alex.ID)
	assert.NotContains(t, archive[guru.ID], doomed.ID)

	thread, err := commentService.ListForReport(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, thread)
}
