// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vantran/phishguard/internal/platform/constants"
	requestutil "github.com/vantran/phishguard/internal/platform/request"
	"github.com/vantran/phishguard/internal/platform/respond"
	"github.com/vantran/phishguard/internal/platform/sec"
	"github.com/vantran/phishguard/internal/platform/validate"
)

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// Everything related to the account lifecycle: registration, login, logout,
// the current identity, and account deletion. Contains NO business logic —
// uniqueness, hashing and the cascade all live in [Service].
type Handler struct {
	identityService *Service
	tokens          *sec.TokenService
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, tokens *sec.TokenService) *Handler {
	return &Handler{identityService: service, tokens: tokens}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST   /register : Creates a new account and returns a JWT.
//   - POST   /login    : Authenticates and returns a JWT.
//   - POST   /logout   : Clears the persisted session.
//   - GET    /me       : Returns the caller's identity from token claims.
//   - DELETE /account  : Deletes the caller's account with full cascade.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Get("/me", handler.me)
	router.Delete("/account", handler.deleteAccount)

	return router
}

// registerRequest represents the JSON payload expected for account creation.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// register handles POST /api/v1/auth/register requests.
//
// # Returns
//   - Writes HTTP 201 Created on success with the access token and identity.
//   - Writes HTTP 400 Bad Request if validation rules fail.
//   - Writes HTTP 409 Conflict if the username or email is taken.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	// Fast-fail shape checks. Uniqueness and the email regex are enforced
	// inside the service so embedded callers get the same rules.
	if input.Username == "" || len(input.Username) < 3 {
		respond.Error(writer, request, validate.RequiredError("username", "must be at least 3 characters"))
		return
	}
	if input.Email == "" {
		respond.Error(writer, request, validate.RequiredError("email", "is required"))
		return
	}
	if input.Password == "" || len(input.Password) < 8 {
		respond.Error(writer, request, validate.RequiredError("password", "must be at least 8 characters"))
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	ident, err := handler.identityService.Register(request.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	handler.respondWithToken(writer, request, ident, http.StatusCreated)
}

// loginRequest represents the JSON payload expected for authentication.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// login handles POST /api/v1/auth/login requests.
//
// # Returns
//   - Writes HTTP 200 OK on success with the access token and identity.
//   - Writes HTTP 401 Unauthorized for bad credentials.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	if input.Username == "" || input.Password == "" {
		respond.Error(writer, request, validate.RequiredError("username/password", "are required"))
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	ident, err := handler.identityService.Login(request.Context(), input.Username, input.Password)
	if err != nil {
		// Returns HTTP 401 without leaking whether the username or the
		// password was wrong.
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	handler.respondWithToken(writer, request, ident, http.StatusOK)
}

// logout handles POST /api/v1/auth/logout requests. Always succeeds.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.identityService.Logout(request.Context())
	respond.NoContent(writer)
}

// me handles GET /api/v1/auth/me requests.
//
// The identity comes from the verified token claims, not the persisted
// session, so every token holder sees themselves regardless of which account
// logged in last on this process.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, FromClaims(claims))
}

// deleteAccount handles DELETE /api/v1/auth/account requests.
//
// # Returns
//   - Writes HTTP 204 No Content after the account and all its data are gone.
//   - Writes HTTP 401 Unauthorized without a valid token.
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.identityService.DeleteAccountAs(request.Context(), *FromClaims(claims)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// respondWithToken issues an access token for ident and writes the standard
// authentication envelope.
func (handler *Handler) respondWithToken(writer http.ResponseWriter, request *http.Request, ident *SessionIdentity, statusCode int) {
	accessToken, err := handler.tokens.GenerateAccessToken(
		ident.ID, ident.Username, ident.Email, constants.AccessTokenTTL,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, statusCode, respond.SuccessEnvelope{Data: map[string]any{
		"access_token": accessToken,
		"identity":     ident,
	}})
}
