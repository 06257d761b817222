// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package identity_test

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

func newTestService(t *testing.T) (context.Context, kv.Store, *identity.Service) {
	t.Helper()

	ctx := context.Background()
	store := kv.NewMemory()

	service, err := identity.NewService(ctx, store, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	return ctx, store, service
}

func TestRegister_EstablishesSession(t *testing.T) {
	ctx, store, service := newTestService(t)

	ident, err := service.Register(ctx, "alex_cyber", "alex@example.com", "password123")
	require.NoError(t, err)

	assert.NotEmpty(t, ident.ID)
	assert.Equal(t, "alex_cyber", ident.Username)
	assert.Equal(t, "alex@example.com", ident.Email)

	current := service.Current()
	require.NotNil(t, current)
	assert.Equal(t, ident.ID, current.ID)

	// The persisted user record carries a hash, never the plaintext password.
	var users []identity.User
	found, err := store.Get(ctx, kv.KeyUsers, &users)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, users, 1)
	assert.NotEmpty(t, users[0].PasswordHash)
	assert.NotEqual(t, "password123", users[0].PasswordHash)
}

func TestRegister_UniquenessIsCaseInsensitive(t *testing.T) {
	ctx, _, service := newTestService(t)

	_, err := service.Register(ctx, "Alex_Cyber", "alex@example.com", "password123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		email    string
		wantCode string
	}{
		{
			name:     "same_username_different_case",
			username: "ALEX_CYBER",
			email:    "other@example.com",
			wantCode: apperr.CodeDuplicateUsername,
		},
		{
			name:     "same_email_different_case",
			username: "someone_else",
			email:    "ALEX@example.com",
			wantCode: apperr.CodeDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(ctx, tt.username, tt.email, "password123")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.CodeOf(err))
		})
	}
}

func TestRegister_DuplicateWinsOverBadEmailFormat(t *testing.T) {
	ctx, _, service := newTestService(t)

	_, err := service.Register(ctx, "alex_cyber", "alex@example.com", "password123")
	require.NoError(t, err)

	// Both failures apply; the duplicate check runs first.
	_, err = service.Register(ctx, "alex_cyber", "not-an-email", "password123")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeDuplicateUsername, apperr.CodeOf(err))
}

func TestRegister_RejectsMalformedEmail(t *testing.T) {
	ctx, _, service := newTestService(t)

	for _, email := range []string{"plain", "no@tld", "spaces in@body.com", "@missing.local", "trailing@dot."} {
		_, err := service.Register(ctx, "user_"+email, email, "password123")
		require.Error(t, err, "email %q should be rejected", email)
		assert.Equal(t, apperr.CodeInvalidEmailFormat, apperr.CodeOf(err))
	}
}

func TestLogin_MatchesUsernameCaseInsensitively(t *testing.T) {
	ctx, _, service := newTestService(t)

	registered, err := service.Register(ctx, "Sec_Guru", "guru@example.com", "password123")
	require.NoError(t, err)
	service.Logout(ctx)

	ident, err := service.Login(ctx, "sec_guru", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, ident.ID)
	// The stored spelling is returned, not the login spelling.
	assert.Equal(t, "Sec_Guru", ident.Username)
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	ctx, _, service := newTestService(t)

	_, err := service.Register(ctx, "alex_cyber", "alex@example.com", "password123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong_password", username: "alex_cyber", password: "wrong-password"},
		{name: "unknown_username", username: "nobody", password: "password123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Login(ctx, tt.username, tt.password)
			require.Error(t, err)
			// Identical code for both cases: no account enumeration.
			assert.Equal(t, apperr.CodeInvalidCredentials, apperr.CodeOf(err))
		})
	}
}

func TestLogout_IsIdempotent(t *testing.T) {
	ctx, _, service := newTestService(t)

	_, err := service.Register(ctx, "alex_cyber", "alex@example.com", "password123")
	require.NoError(t, err)

	service.Logout(ctx)
	assert.Nil(t, service.Current())

	service.Logout(ctx)
	assert.Nil(t, service.Current())
}

func TestNewService_RestoresPersistedSession(t *testing.T) {
	ctx, store, service := newTestService(t)

	ident, err := service.Register(ctx, "alex_cyber", "alex@example.com", "password123")
	require.NoError(t, err)

	// A second service over the same store models a process restart.
	restarted, err := identity.NewService(ctx, store, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	current := restarted.Current()
	require.NotNil(t, current)
	assert.Equal(t, ident.ID, current.ID)
	assert.Equal(t, "alex_cyber", current.Username)
}

func TestDeleteAccount_NoSessionIsNoOp(t *testing.T) {
	ctx, _, service := newTestService(t)
	require.NoError(t, service.DeleteAccount(ctx))
}

// TestDeleteAccount_CascadesAcrossAllCollections exercises the full purge:
// deleting a user removes their account, their reports (with attached
// comments from anyone), their comments on other reports, their likes, and
// their archive entry — while other users' data survives untouched.
func TestDeleteAccount_CascadesAcrossAllCollections(t *testing.T) {
	ctx, store, identityService := newTestService(t)
	log := slog.New(slog.DiscardHandler)

	reportService, err := report.NewService(ctx, store, log)
	require.NoError(t, err)
	commentService := comment.NewService(store, log)
	reportService.AttachCommentPruner(commentService)
	identityService.AttachPurgers(reportService, commentService)

	alex, err := identityService.Register(ctx, "alex_cyber", "alex@example.com", "password123")
	require.NoError(t, err)
	guru, err := identityService.Register(ctx, "sec_guru", "guru@example.com", "password123")
	require.NoError(t, err)

	verdict := analysis.Result{IsPhishing: true, ConfidenceScore: 0.9, Summary: "s"}

	alexReport, err := reportService.Submit(ctx, alex, "suspicious body", verdict, true)
	require.NoError(t, err)
	guruReport, err := reportService.Submit(ctx, guru, "another body", verdict, true)
	require.NoError(t, err)

	// Cross-references in every direction.
	_, err = commentService.Post(ctx, guru, alexReport.ID, "nice catch")
	require.NoError(t, err)
	_, err = commentService.Post(ctx, alex, guruReport.ID, "seen this one too")
	require.NoError(t, err)
	require.NoError(t, reportService.ToggleLike(ctx, alex, guruReport.ID))
	require.NoError(t, reportService.ToggleArchive(ctx, alex, guruReport.ID))
	require.NoError(t, reportService.ToggleArchive(ctx, guru, alexReport.ID))

	require.NoError(t, identityService.DeleteAccountAs(ctx, *alex))

	// User record gone, session cleared if it was alex's... guru logged in last.
	var users []identity.User
	_, err = store.Get(ctx, kv.KeyUsers, &users)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, guru.ID, users[0].ID)

	// Alex's report is gone; guru's survives with alex's like stripped.
	_, err = reportService.GetByID(alexReport.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	survivor, err := reportService.GetByID(guruReport.ID)
	require.NoError(t, err)
	assert.Empty(t, survivor.LikedBy)

	// Every comment involving alex (authored by, or on their report) is gone.
	var comments []comment.Comment
	_, err = store.Get(ctx, kv.KeyComments, &comments)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// No archive set references alex or their report anymore.
	var archive map[string][]string
	_, err = store.Get(ctx, kv.KeyArchive, &archive)
	require.NoError(t, err)
	_, hasAlex := archive[alex.ID]
	assert.False(t, hasAlex)
	for userID, set := range archive {
		assert.NotContains(t, set, alexReport.ID, "archive set of %s still references the deleted report", userID)
	}
}

func TestDeleteAccount_LogsOutDeletedSessionOnly(t *testing.T) {
	ctx, _, service := newTestService(t)

	alex, err := service.Register(ctx, "alex_cyber", "alex@example.com", "password123")
	require.NoError(t, err)
	_, err = service.Register(ctx, "sec_guru", "guru@example.com", "password123")
	require.NoError(t, err)

	// Current session belongs to sec_guru; deleting alex must not end it.
	require.NoError(t, service.DeleteAccountAs(ctx, *alex))
	current := service.Current()
	require.NotNil(t, current)
	assert.Equal(t, "sec_guru", current.Username)

	// Deleting the session owner does end it.
	require.NoError(t, service.DeleteAccountAs(ctx, *current))
	assert.Nil(t, service.Current())
}
