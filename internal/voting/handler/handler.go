package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"votegate/internal/voting/models"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	"votegate/pkg/platform/middleware/request"
)

// Service defines the voting session operations exposed over HTTP.
type Service interface {
	Start(ctx context.Context, userAgent string) (*models.SessionView, error)
	Get(ctx context.Context, id string) (*models.SessionView, error)
	End(ctx context.Context, id string) error
	Authenticate(ctx context.Context, id, voterID string) (*models.SessionView, error)
	VerifyFace(ctx context.Context, id string, sample []byte) (*models.SessionView, error)
	VerifyFingerprint(ctx context.Context, id string) (*models.SessionView, error)
	Proceed(ctx context.Context, id string) (*models.SessionView, error)
	Select(ctx context.Context, id string, candidateID uint64) (*models.SessionView, error)
	ResetSelection(ctx context.Context, id string) (*models.SessionView, error)
	Back(ctx context.Context, id string) (*models.SessionView, error)
	CastVote(ctx context.Context, id string) (*models.SessionView, error)
}

// Handler serves the kiosk-facing voting session endpoints.
type Handler struct {
	voting         Service
	logger         *slog.Logger
	maxUploadBytes int64
}

func New(voting Service, logger *slog.Logger, maxUploadBytes int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{voting: voting, logger: logger, maxUploadBytes: maxUploadBytes}
}

// Register registers the voting session routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.HandleStart)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Delete("/", h.HandleEnd)
			r.Post("/authenticate", h.HandleAuthenticate)
			r.Post("/face", h.HandleFace)
			r.Post("/fingerprint", h.HandleFingerprint)
			r.Post("/proceed", h.HandleProceed)
			r.Post("/back", h.HandleBack)
			r.Post("/selection", h.HandleSelect)
			r.Delete("/selection", h.HandleResetSelection)
			r.Post("/vote", h.HandleVote)
		})
	})
}

// HandleStart implements POST /sessions.
// Output: SessionView in the login phase, with the candidate roster.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.voting.Start(ctx, r.UserAgent())
	if err != nil {
		h.fail(w, r, "start session failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.voting.Get(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, "get session failed", view, err)
}

// HandleEnd implements DELETE /sessions/{id}: the kiosk was reset.
func (h *Handler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	if err := h.voting.End(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "end session failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAuthenticate implements POST /sessions/{id}/authenticate.
// Input: { "voter_id": "7" }
func (h *Handler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.AuthenticateRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	view, err := h.voting.Authenticate(ctx, chi.URLParam(r, "id"), req.VoterID)
	h.respond(w, r, "authenticate failed", view, err)
}

// HandleFace implements POST /sessions/{id}/face. The capture is either a
// multipart "file" field or a raw image body.
func (h *Handler) HandleFace(w http.ResponseWriter, r *http.Request) {
	sample, err := httputil.ReadUpload(r, "file", h.maxUploadBytes)
	if err != nil {
		h.fail(w, r, "read face capture failed", err)
		return
	}
	view, err := h.voting.VerifyFace(r.Context(), chi.URLParam(r, "id"), sample)
	h.respond(w, r, "face verification failed", view, err)
}

func (h *Handler) HandleFingerprint(w http.ResponseWriter, r *http.Request) {
	view, err := h.voting.VerifyFingerprint(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, "fingerprint verification failed", view, err)
}

func (h *Handler) HandleProceed(w http.ResponseWriter, r *http.Request) {
	view, err := h.voting.Proceed(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, "proceed failed", view, err)
}

func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	view, err := h.voting.Back(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, "back failed", view, err)
}

// HandleSelect implements POST /sessions/{id}/selection.
// Input: { "candidate_id": 1 }
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.SelectCandidateRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	view, err := h.voting.Select(ctx, chi.URLParam(r, "id"), *req.CandidateID)
	h.respond(w, r, "select candidate failed", view, err)
}

func (h *Handler) HandleResetSelection(w http.ResponseWriter, r *http.Request) {
	view, err := h.voting.ResetSelection(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, "reset selection failed", view, err)
}

// HandleVote implements POST /sessions/{id}/vote.
// Output: SessionView in the success phase with tx_hash set and confirmed=false.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	view, err := h.voting.CastVote(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, "cast vote failed", view, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, msg string, view *models.SessionView, err error) {
	if err != nil {
		h.fail(w, r, msg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// fail logs business rejections at warn and everything else at error.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	attrs := []any{
		"error", err,
		"code", string(dErrors.CodeOf(err)),
		"session_id", chi.URLParam(r, "id"),
		"request_id", request.GetRequestID(ctx),
	}
	if httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
