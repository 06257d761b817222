// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package identity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/cases"

	"github.com/vantran/phishguard/internal/platform/apperr"
	"github.com/vantran/phishguard/internal/platform/kv"
	"github.com/vantran/phishguard/internal/platform/sec"
	"github.com/vantran/phishguard/internal/platform/validate"
	"github.com/vantran/phishguard/pkg/uuidv7"
)

// caseFolder implements Unicode case folding for uniqueness comparisons.
// Folding is stricter than ToLower for non-ASCII usernames.
var caseFolder = cases.Fold()

// UserDataPurger removes everything a domain stores about a user.
//
// # Cascade Contract
//
// Implementations are invoked during account deletion, before the user
// record itself is removed. They must be idempotent: purging a user with no
// data is a successful no-op.
type UserDataPurger interface {
	PurgeUserData(ctx context.Context, userID string) error
}

// Service implements the identity store: registration, login, logout,
// account deletion and the current session.
//
// # Session Model
//
// One session per process. The current [SessionIdentity] is held in memory
// and written through to the durable store, from which it is restored at
// construction. HTTP callers additionally carry their identity in token
// claims; the persisted session serves embedded (library) use.
type Service struct {
	store   kv.Store
	log     *slog.Logger
	purgers []UserDataPurger

	mu      sync.RWMutex
	current *SessionIdentity
}

// NewService constructs the identity store and restores any persisted session.
func NewService(ctx context.Context, store kv.Store, logger *slog.Logger) (*Service, error) {
	service := &Service{
		store: store,
		log:   logger,
	}

	var restored SessionIdentity
	found, err := store.Get(ctx, kv.KeySession, &restored)
	if err != nil {
		return nil, fmt.Errorf("identity: restore session: %w", err)
	}
	if found {
		service.current = &restored
		logger.Info("session_restored", slog.String("user_id", restored.ID))
	}

	return service, nil
}

// AttachPurgers registers the cascade targets for account deletion.
//
// Called once during wiring; not safe to call after the service is serving.
func (service *Service) AttachPurgers(purgers ...UserDataPurger) {
	service.purgers = append(service.purgers, purgers...)
}

// Register creates a new account and establishes it as the current session.
//
// # Returns
//   - The new [SessionIdentity] on success.
//   - [apperr.DuplicateUsername] / [apperr.DuplicateEmail] when another live
//     user already holds the name (case-insensitive).
//   - [apperr.InvalidEmailFormat] when the email fails the local@domain.tld check.
func (service *Service) Register(ctx context.Context, username, email, password string) (*SessionIdentity, error) {
	// ── 1. Uniqueness Checks ──────────────────────────────────────────────

	users, err := service.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if foldEqual(users[i].Username, username) {
			return nil, apperr.DuplicateUsername()
		}
	}
	for i := range users {
		if foldEqual(users[i].Email, email) {
			return nil, apperr.DuplicateEmail()
		}
	}

	// ── 2. Email Shape ────────────────────────────────────────────────────

	if !validate.EmailFormatOK(email) {
		return nil, apperr.InvalidEmailFormat()
	}

	// ── 3. Security ───────────────────────────────────────────────────────

	hashedPassword, err := sec.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("identity: register: %w", err)
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	user := User{
		ID:           uuidv7.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	users = append(users, user)
	if err := service.saveUsers(ctx, users); err != nil {
		return nil, err
	}

	// ── 5. Session ────────────────────────────────────────────────────────

	ident := user.Identity()
	if err := service.establishSession(ctx, ident); err != nil {
		return nil, err
	}

	service.log.Info("user_registered", slog.String("user_id", user.ID))

	return &ident, nil
}

// Login authenticates by username (case-insensitive) and password.
//
// Unknown usernames and wrong passwords both return
// [apperr.InvalidCredentials] to prevent account enumeration.
func (service *Service) Login(ctx context.Context, username, password string) (*SessionIdentity, error) {
	users, err := service.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	var user *User
	for i := range users {
		if foldEqual(users[i].Username, username) {
			user = &users[i]
			break
		}
	}

	if user == nil || !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	ident := user.Identity()
	if err := service.establishSession(ctx, ident); err != nil {
		return nil, err
	}

	service.log.Info("user_logged_in", slog.String("user_id", ident.ID))

	return &ident, nil
}

// Logout clears the in-memory session and its persisted record.
//
// Idempotent: logging out with no active session succeeds. A failed delete
// of the persisted record is logged, never surfaced — the in-memory session
// is gone either way.
func (service *Service) Logout(ctx context.Context) {
	service.mu.Lock()
	service.current = nil
	service.mu.Unlock()

	if err := service.store.Delete(ctx, kv.KeySession); err != nil {
		service.log.Warn("session_delete_failed", slog.Any("error", err))
	}
}

// Current returns a copy of the active session identity, or nil when logged out.
func (service *Service) Current() *SessionIdentity {
	service.mu.RLock()
	defer service.mu.RUnlock()

	if service.current == nil {
		return nil
	}

	ident := *service.current
	return &ident
}

// DeleteAccount removes the current session's account with full cascade.
// No-op when there is no active session.
func (service *Service) DeleteAccount(ctx context.Context) error {
	current := service.Current()
	if current == nil {
		return nil
	}

	return service.DeleteAccountAs(ctx, *current)
}

// DeleteAccountAs removes the given user's account with full cascade:
// reports, foreign likes, comments and the archive entry go first (via the
// attached purgers), then the user record, then logout semantics if the
// deleted account owned the current session.
//
// # Failure Policy
//
// Cascades are best-effort: a failing subordinate purge is logged and must
// not abort the primary deletion. Readers filter dangling references
// defensively, so a partial cascade degrades to stale-but-invisible data.
func (service *Service) DeleteAccountAs(ctx context.Context, ident SessionIdentity) error {
	// ── 1. Cascade ────────────────────────────────────────────────────────

	for _, purger := range service.purgers {
		if err := purger.PurgeUserData(ctx, ident.ID); err != nil {
			service.log.Warn("account_cascade_failed",
				slog.String("user_id", ident.ID),
				slog.Any("error", err),
			)
		}
	}

	// ── 2. Primary Deletion ───────────────────────────────────────────────

	users, err := service.loadUsers(ctx)
	if err != nil {
		return err
	}

	remaining := users[:0]
	for i := range users {
		if users[i].ID != ident.ID {
			remaining = append(remaining, users[i])
		}
	}

	if err := service.saveUsers(ctx, remaining); err != nil {
		return err
	}

	// ── 3. Session Teardown ───────────────────────────────────────────────

	current := service.Current()
	if current != nil && current.ID == ident.ID {
		service.Logout(ctx)
	}

	service.log.Info("account_deleted", slog.String("user_id", ident.ID))

	return nil
}

// # Internals

// establishSession sets the in-memory session and writes it through to the
// durable store before returning.
func (service *Service) establishSession(ctx context.Context, ident SessionIdentity) error {
	service.mu.Lock()
	service.current = &ident
	service.mu.Unlock()

	if err := service.store.Put(ctx, kv.KeySession, ident); err != nil {
		return fmt.Errorf("identity: persist session: %w", err)
	}

	return nil
}

// loadUsers reads the full users collection; an absent key is the empty set.
func (service *Service) loadUsers(ctx context.Context) ([]User, error) {
	var users []User
	if _, err := service.store.Get(ctx, kv.KeyUsers, &users); err != nil {
		return nil, fmt.Errorf("identity: load users: %w", err)
	}
	return users, nil
}

// saveUsers writes the full users collection back.
func (service *Service) saveUsers(ctx context.Context, users []User) error {
	if err := service.store.Put(ctx, kv.KeyUsers, users); err != nil {
		return fmt.Errorf("identity: save users: %w", err)
	}
	return nil
}

// foldEqual compares two strings under Unicode case folding.
func foldEqual(a, b string) bool {
	return caseFolder.String(a) == caseFolder.String(b)
}
