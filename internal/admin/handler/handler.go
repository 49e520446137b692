package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"votegate/internal/admin/models"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	adminmw "votegate/pkg/platform/middleware/admin"
	request "votegate/pkg/platform/middleware/request"
)

// Service defines the admin operations exposed over HTTP.
type Service interface {
	Login(ctx context.Context, password string) (*models.TokenResponse, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)
	ElectionAction(ctx context.Context, action models.ElectionAction) (*models.ActionResult, error)
	AddCandidate(ctx context.Context, name string) (*models.ActionResult, error)
	RemoveCandidate(ctx context.Context, candidateID uint64) (*models.ActionResult, error)
	RemoveVoter(ctx context.Context, voterID uint64) (*models.RemoveVoterResult, error)
}

// Handler handles admin login, the dashboard and election controls.
type Handler struct {
	service   Service
	validator adminmw.TokenValidator
	logger    *slog.Logger
}

func New(service Service, validator adminmw.TokenValidator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, validator: validator, logger: logger}
}

// Register registers admin routes with the router. Everything except login
// requires an admin bearer token.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.Group(func(r chi.Router) {
			r.Use(adminmw.RequireAdmin(h.validator, h.logger))
			r.Get("/dashboard", h.HandleDashboard)
			r.Post("/election/{action}", h.HandleElectionAction)
			r.Post("/candidates", h.HandleAddCandidate)
			r.Delete("/candidates/{id}", h.HandleRemoveCandidate)
			r.Delete("/voters/{id}", h.HandleRemoveVoter)
		})
	})
}

// HandleLogin implements POST /admin/login.
// Input: { "password": "..." }
// Output: { "access_token": "...", "token_type": "Bearer", "expires_in": 3600 }
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	res, err := h.service.Login(ctx, req.Password)
	if err != nil {
		h.fail(ctx, w, "admin login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dash, err := h.service.Dashboard(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to load dashboard", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dash)
}

// HandleElectionAction implements POST /admin/election/{start|end|new}.
func (h *Handler) HandleElectionAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	action, ok := models.ParseElectionAction(chi.URLParam(r, "action"))
	if !ok {
		h.fail(ctx, w, "unknown election action", dErrors.New(dErrors.CodeNotFound, "unknown election action"))
		return
	}
	res, err := h.service.ElectionAction(ctx, action)
	if err != nil {
		h.fail(ctx, w, "election action failed", err)
		return
	}
	h.logger.InfoContext(ctx, "election action submitted",
		"action", string(action),
		"request_id", request.GetRequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusAccepted, res)
}

// HandleAddCandidate implements POST /admin/candidates.
// Input: { "name": "Bob" }
func (h *Handler) HandleAddCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.AddCandidateRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	res, err := h.service.AddCandidate(ctx, req.Name)
	if err != nil {
		h.fail(ctx, w, "add candidate failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, res)
}

func (h *Handler) HandleRemoveCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r)
	if err != nil {
		h.fail(ctx, w, "invalid candidate id", err)
		return
	}
	res, err := h.service.RemoveCandidate(ctx, id)
	if err != nil {
		h.fail(ctx, w, "remove candidate failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, res)
}

// HandleRemoveVoter implements DELETE /admin/voters/{id}.
// Output: { "tx_hash": "0x...", "confirmed": false, "fingerprint_deleted": true }
func (h *Handler) HandleRemoveVoter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r)
	if err != nil {
		h.fail(ctx, w, "invalid voter id", err)
		return
	}
	res, err := h.service.RemoveVoter(ctx, id)
	if err != nil {
		h.fail(ctx, w, "remove voter failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, res)
}

func parseID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "id must be a positive integer")
	}
	return id, nil
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{
		"error", err,
		"actor", adminmw.GetAdminActorID(ctx),
		"request_id", request.GetRequestID(ctx),
	}
	if httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
