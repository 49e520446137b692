package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"votegate/internal/registration/models"
	"votegate/pkg/platform/httputil"
	"votegate/pkg/platform/middleware/request"
)

// Service defines the voter enrollment operations.
type Service interface {
	CaptureFace(ctx context.Context, image []byte) (*models.FaceCaptureResult, error)
	EnrollFingerprint(ctx context.Context, req *models.EnrollFingerprintRequest) (*models.FingerprintResult, error)
	Register(ctx context.Context, req *models.Request) (*models.Result, error)
}

type Handler struct {
	registration   Service
	logger         *slog.Logger
	maxUploadBytes int64
}

func New(registration Service, logger *slog.Logger, maxUploadBytes int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{registration: registration, logger: logger, maxUploadBytes: maxUploadBytes}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/registration/face", h.HandleCaptureFace)
	r.Post("/registration/fingerprint", h.HandleEnrollFingerprint)
	r.Post("/registration", h.HandleRegister)
}

// HandleCaptureFace implements POST /registration/face.
// Input: multipart file field "file", or a raw image body.
// Output: { "encoding": "[...]" }
func (h *Handler) HandleCaptureFace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	image, err := httputil.ReadUpload(r, "file", h.maxUploadBytes)
	if err != nil {
		h.fail(ctx, w, "read face capture failed", err)
		return
	}
	res, err := h.registration.CaptureFace(ctx, image)
	if err != nil {
		h.fail(ctx, w, "face capture failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleEnrollFingerprint implements POST /registration/fingerprint.
// Input: { "voter_id": 12, "name": "Erin" }
func (h *Handler) HandleEnrollFingerprint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.EnrollFingerprintRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	res, err := h.registration.EnrollFingerprint(ctx, req)
	if err != nil {
		h.fail(ctx, w, "fingerprint enrollment failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleRegister implements POST /registration.
// Output: { "tx_hash": "0x...", "confirmed": false }
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.Request](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	res, err := h.registration.Register(ctx, req)
	if err != nil {
		h.fail(ctx, w, "registration failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", request.GetRequestID(ctx),
	)
	httputil.WriteError(w, err)
}
