// Package handler exposes the verification API over HTTP. It stays thin:
// decoding, auth context, and error translation live here, everything else is
// delegated to the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"verigate/internal/platform/middleware"
	"verigate/internal/verification/models"
	"verigate/internal/verification/service"
	id "verigate/pkg/domain"
	dErrors "verigate/pkg/domain-errors"
	"verigate/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/verification-mocks.go -package=mocks Service

// Service defines the interface for verification operations.
type Service interface {
	Submit(ctx context.Context, in service.SubmitInput) (*models.VerificationRequest, error)
	Get(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, error)
	GetVerdict(ctx context.Context, requestID id.RequestID) (*models.VerificationVerdict, error)
	ListEvents(ctx context.Context, requestID id.RequestID) ([]models.Event, error)
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]*models.VerificationRequest, error)
}

// Handler handles verification endpoints.
type Handler struct {
	logger        *slog.Logger
	verifications Service
	validator     middleware.TokenValidator
}

// New creates a new verification Handler.
func New(verifications Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:        logger,
		verifications: verifications,
		validator:     validator,
	}
}

// Register registers the verification routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	vr := chi.NewRouter()
	vr.Use(middleware.Recovery(h.logger))
	vr.Use(middleware.RequestID)
	vr.Use(middleware.Logger(h.logger))
	vr.Use(middleware.Timeout(30 * time.Second))
	vr.Use(middleware.ContentTypeJSON)
	vr.Use(middleware.RequireAuth(h.validator, h.logger))

	vr.Post("/verifications", h.handleSubmit)
	vr.Get("/verifications/{requestID}", h.handleGet)
	vr.Get("/verifications/{requestID}/verdict", h.handleGetVerdict)
	vr.Get("/verifications/{requestID}/events", h.handleListEvents)
	vr.Get("/subjects/{subjectID}/verifications", h.handleListBySubject)

	r.Mount("/", vr)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	submitReq, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	in, err := submitReq.ToInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.verifications.Submit(ctx, in)
	if err != nil {
		if dErrors.IsCode(err, dErrors.CodeInvalidInput) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "verification submit failed",
			"request_id", requestID,
			"caller_id", middleware.GetCallerID(ctx),
			"error", err.Error())
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "verification failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, newVerificationResponse(result))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID, ok := parseRequestID(w, r)
	if !ok {
		return
	}

	result, err := h.verifications.Get(ctx, reqID)
	if err != nil {
		h.writeLookupError(w, ctx, reqID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newVerificationResponse(result))
}

func (h *Handler) handleGetVerdict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID, ok := parseRequestID(w, r)
	if !ok {
		return
	}

	v, err := h.verifications.GetVerdict(ctx, reqID)
	if err != nil {
		if dErrors.IsCode(err, dErrors.CodeConflict) {
			httputil.WriteError(w, err)
			return
		}
		h.writeLookupError(w, ctx, reqID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newVerdictResponse(v))
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID, ok := parseRequestID(w, r)
	if !ok {
		return
	}

	events, err := h.verifications.ListEvents(ctx, reqID)
	if err != nil {
		h.writeLookupError(w, ctx, reqID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, EventsResponse{RequestID: reqID.String(), Events: events})
}

func (h *Handler) handleListBySubject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := chi.URLParam(r, "subjectID")
	if subjectID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "subject id is required"))
		return
	}

	results, err := h.verifications.ListBySubject(ctx, id.SubjectID(subjectID))
	if err != nil {
		h.logger.ErrorContext(ctx, "subject listing failed",
			"request_id", middleware.GetRequestID(ctx),
			"subject_id", subjectID,
			"error", err.Error())
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "listing failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newListResponse(subjectID, results))
}

func parseRequestID(w http.ResponseWriter, r *http.Request) (id.RequestID, bool) {
	reqID, ok := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed verification request id"))
		return "", false
	}
	return reqID, true
}

func (h *Handler) writeLookupError(w http.ResponseWriter, ctx context.Context, reqID id.RequestID, err error) {
	if dErrors.IsCode(err, dErrors.CodeNotFound) {
		httputil.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, "verification lookup failed",
		"request_id", middleware.GetRequestID(ctx),
		"verification_id", reqID,
		"error", err.Error())
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "lookup failed"))
}
