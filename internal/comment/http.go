// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vantran/phishguard/internal/identity"
	requestutil "github.com/vantran/phishguard/internal/platform/request"
	"github.com/vantran/phishguard/internal/platform/respond"
)

// Handler implements the HTTP layer for report discussion threads.
//
// Its router is mounted by the report handler under /{reportID}/comments, so
// every endpoint reads the report id from the enclosing route.
type Handler struct {
	commentService *Service
}

// NewHandler constructs a new comment [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{commentService: service}
}

// Routes returns a [chi.Router] configured with the thread endpoints.
//
// # Endpoints
//   - GET  / : List the report's comments, newest first.
//   - POST / : Add a comment to the report.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listComments)
	router.Post("/", handler.postComment)

	return router
}

// listComments handles GET /api/v1/reports/{reportID}/comments requests.
func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	thread, err := handler.commentService.ListForReport(request.Context(), requestutil.Param(request, "reportID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, thread)
}

// postRequest represents the JSON payload for posting a comment.
type postRequest struct {
	Content string `json:"content"`
}

// postComment handles POST /api/v1/reports/{reportID}/comments requests.
//
// # Returns
//   - Writes HTTP 201 Created with the stored comment.
//   - Writes HTTP 400 Bad Request for empty (after trimming) content.
//   - Writes HTTP 401 Unauthorized without a valid token.
//   - Writes HTTP 404 Not Found for an unknown report.
func (handler *Handler) postComment(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Authentication ─────────────────────────────────────────────────

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Payload Extraction ─────────────────────────────────────────────

	var input postRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	// Content trimming and the empty check live in the service so embedded
	// callers get identical rules.
	comment, err := handler.commentService.Post(
		request.Context(), identity.FromClaims(claims), requestutil.Param(request, "reportID"), input.Content,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comment)
}
