// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package report

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vantran/phishguard/internal/analysis"
	"github.com/vantran/phishguard/internal/identity"
	requestutil "github.com/vantran/phishguard/internal/platform/request"
	"github.com/vantran/phishguard/internal/platform/respond"
	"github.com/vantran/phishguard/internal/platform/validate"
	"github.com/vantran/phishguard/pkg/pagination"
)

// Handler implements the HTTP layer for report submission and interaction.
// It translates web requests into report store calls; the analysis provider
// is invoked here so the store only ever sees finished verdicts.
type Handler struct {
	reportService *Service
	analyzer      analysis.Provider
}

// NewHandler constructs a new report [Handler] with its dependencies.
func NewHandler(service *Service, analyzer analysis.Provider) *Handler {
	return &Handler{reportService: service, analyzer: analyzer}
}

// Routes returns a [chi.Router] configured with the report endpoints.
//
// # Endpoints
//   - POST   /                     : Analyze an email and store the report.
//   - GET    /{reportID}           : Fetch a single report.
//   - DELETE /{reportID}           : Delete an owned report (cascading).
//   - POST   /{reportID}/publish   : Make an owned report public.
//   - POST   /{reportID}/unpublish : Make an owned report private.
//   - POST   /{reportID}/like      : Toggle the caller's like.
//   - POST   /{reportID}/archive   : Toggle the caller's archive entry.
//   - GET    /{reportID}/archived  : Whether the caller archived the report.
//
// The comment sub-router is mounted under /{reportID}/comments so comment
// handlers can read the report id from the URL.
func (handler *Handler) Routes(commentRoutes chi.Router) chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.submit)
	router.Get("/{reportID}", handler.getReport)
	router.Delete("/{reportID}", handler.deleteReport)

	router.Post("/{reportID}/publish", handler.publish)
	router.Post("/{reportID}/unpublish", handler.unpublish)
	router.Post("/{reportID}/like", handler.toggleLike)
	router.Post("/{reportID}/archive", handler.toggleArchive)
	router.Get("/{reportID}/archived", handler.isArchived)

	if commentRoutes != nil {
		router.Mount("/{reportID}/comments", commentRoutes)
	}

	return router
}

// FeedRoutes returns a [chi.Router] with the three derived feed endpoints.
//
// # Endpoints
//   - GET /global   : All public reports, newest first.
//   - GET /personal : The caller's own reports, public and private.
//   - GET /archived : The reports the caller archived.
func (handler *Handler) FeedRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/global", handler.globalFeed)
	router.Get("/personal", handler.personalFeed)
	router.Get("/archived", handler.archivedFeed)

	return router
}

// submitRequest represents the JSON payload for report submission.
type submitRequest struct {
	EmailText string `json:"email_text"`
	IsPublic  bool   `json:"is_public"`
}

// submit handles POST /api/v1/reports requests.
//
// # Returns
//   - Writes HTTP 201 Created with the stored report (verdict included).
//   - Writes HTTP 401 Unauthorized without a valid token.
//   - Writes HTTP 502 Bad Gateway when the analysis provider fails.
func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Authentication ─────────────────────────────────────────────────

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Payload Extraction + Boundary Validation ───────────────────────

	var input submitRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if strings.TrimSpace(input.EmailText) == "" {
		respond.Error(writer, request, validate.RequiredError("email_text", "is required"))
		return
	}

	// ── 3. Analysis ───────────────────────────────────────────────────────

	verdict, err := handler.analyzer.Analyze(request.Context(), input.EmailText)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	rep, err := handler.reportService.Submit(
		request.Context(), identity.FromClaims(claims), input.EmailText, *verdict, input.IsPublic,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, rep)
}

// getReport handles GET /api/v1/reports/{reportID} requests.
func (handler *Handler) getReport(writer http.ResponseWriter, request *http.Request) {
	rep, err := handler.reportService.GetByID(requestutil.Param(request, "reportID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, rep)
}

// deleteReport handles DELETE /api/v1/reports/{reportID} requests.
//
// Deleting a report you do not own (or one that does not exist) is a silent
// no-op, so the response is 204 either way.
func (handler *Handler) deleteReport(writer http.ResponseWriter, request *http.Request) {
	handler.mutate(writer, request, handler.reportService.Delete)
}

// publish handles POST /api/v1/reports/{reportID}/publish requests.
func (handler *Handler) publish(writer http.ResponseWriter, request *http.Request) {
	handler.mutate(writer, request, handler.reportService.Publish)
}

// unpublish handles POST /api/v1/reports/{reportID}/unpublish requests.
func (handler *Handler) unpublish(writer http.ResponseWriter, request *http.Request) {
	handler.mutate(writer, request, handler.reportService.Unpublish)
}

// toggleLike handles POST /api/v1/reports/{reportID}/like requests.
func (handler *Handler) toggleLike(writer http.ResponseWriter, request *http.Request) {
	handler.mutate(writer, request, handler.reportService.ToggleLike)
}

// toggleArchive handles POST /api/v1/reports/{reportID}/archive requests.
func (handler *Handler) toggleArchive(writer http.ResponseWriter, request *http.Request) {
	handler.mutate(writer, request, handler.reportService.ToggleArchive)
}

// isArchived handles GET /api/v1/reports/{reportID}/archived requests.
func (handler *Handler) isArchived(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	archived := handler.reportService.IsArchived(identity.FromClaims(claims), requestutil.Param(request, "reportID"))
	respond.OK(writer, map[string]bool{"archived": archived})
}

// # Feed Endpoints

// globalFeed handles GET /api/v1/feeds/global requests. Public, paginated.
func (handler *Handler) globalFeed(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	page, meta := pagination.Slice(handler.reportService.GlobalFeed(), params)
	respond.Paginated(writer, page, meta)
}

// personalFeed handles GET /api/v1/feeds/personal requests.
func (handler *Handler) personalFeed(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	page, meta := pagination.Slice(handler.reportService.PersonalFeed(identity.FromClaims(claims)), params)
	respond.Paginated(writer, page, meta)
}

// archivedFeed handles GET /api/v1/feeds/archived requests.
func (handler *Handler) archivedFeed(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	page, meta := pagination.Slice(handler.reportService.ArchivedFeed(identity.FromClaims(claims)), params)
	respond.Paginated(writer, page, meta)
}

// mutate is the shared shape of the identity-scoped report mutations: require
// a token, run the store operation against the reportID path parameter, 204.
func (handler *Handler) mutate(
	writer http.ResponseWriter,
	request *http.Request,
	operation func(ctx context.Context, ident *identity.SessionIdentity, reportID string) error,
) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	reportID := requestutil.Param(request, "reportID")
	if err := operation(request.Context(), identity.FromClaims(claims), reportID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
