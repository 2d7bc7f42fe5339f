// Package service is the application facade over the verification pipeline.
// It owns persistence around pipeline runs, verdict caching, and the audit
// trail; transport handlers stay thin.
package service

import (
	"context"
	"log/slog"

	"verigate/internal/audit"
	"verigate/internal/verification/models"
	"verigate/internal/verification/pipeline"
	"verigate/internal/verification/store"
	id "verigate/pkg/domain"
	dErrors "verigate/pkg/domain-errors"
)

// SubmitInput carries a validated intake request. The document image is
// required; the live photo and claims are optional and gate which pipeline
// stages run.
type SubmitInput struct {
	Subject   models.Subject
	Category  models.DocumentCategory
	Document  models.Image
	LivePhoto *models.Image
	Claims    []models.ProfessionalClaim
}

// Validate enforces the intake invariants the DTO layer cannot express.
func (in SubmitInput) Validate() error {
	if in.Subject.ID.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "subject id is required")
	}
	if !in.Category.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown document category: "+string(in.Category))
	}
	if in.Document.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "document image is required")
	}
	for _, claim := range in.Claims {
		if !claim.Type.IsValid() {
			return dErrors.New(dErrors.CodeInvalidInput, "unknown claim type: "+string(claim.Type))
		}
	}
	return nil
}

// Service runs verifications end to end and answers status lookups.
type Service struct {
	requests  store.RequestStore
	verdicts  store.VerdictCache
	pipeline  *pipeline.Orchestrator
	publisher *audit.Publisher
	logger    *slog.Logger
}

func New(requests store.RequestStore, verdicts store.VerdictCache, p *pipeline.Orchestrator, publisher *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{
		requests:  requests,
		verdicts:  verdicts,
		pipeline:  p,
		publisher: publisher,
		logger:    logger,
	}
}

// Submit runs the full pipeline synchronously and returns the finalized
// request. The pending request is persisted before the pipeline starts so a
// crash mid-run leaves a record behind.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*models.VerificationRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	req := models.NewVerificationRequest(in.Subject, in.Category, in.Document, in.LivePhoto, in.Claims)
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist verification request")
	}

	if err := s.pipeline.Run(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "pipeline run failed")
	}

	if err := s.requests.Save(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist verification result")
	}

	s.cacheVerdict(ctx, req)
	s.emitTrail(ctx, req)
	return req, nil
}

// Get returns a request by ID, pending or finalized.
func (s *Service) Get(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, error) {
	return s.requests.FindByID(ctx, requestID)
}

// GetVerdict reads the verdict through the cache, falling back to the request
// store and repopulating the cache on a miss.
func (s *Service) GetVerdict(ctx context.Context, requestID id.RequestID) (*models.VerificationVerdict, error) {
	if v, err := s.verdicts.Get(ctx, requestID); err == nil {
		return v, nil
	} else if !dErrors.IsCode(err, dErrors.CodeNotFound) {
		s.logger.WarnContext(ctx, "verdict cache read failed",
			"request_id", requestID,
			"error", err)
	}

	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.FinalVerdict == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "verification has not completed yet")
	}

	s.cacheVerdict(ctx, req)
	return req.FinalVerdict, nil
}

// ListEvents returns the request's append-only event log.
func (s *Service) ListEvents(ctx context.Context, requestID id.RequestID) ([]models.Event, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return req.Events, nil
}

// ListBySubject returns all requests filed for a subject, oldest first.
func (s *Service) ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]*models.VerificationRequest, error) {
	return s.requests.ListBySubject(ctx, subjectID)
}

func (s *Service) cacheVerdict(ctx context.Context, req *models.VerificationRequest) {
	if req.FinalVerdict == nil {
		return
	}
	if err := s.verdicts.Put(ctx, req.ID, req.FinalVerdict); err != nil {
		s.logger.WarnContext(ctx, "failed to cache verdict",
			"request_id", req.ID,
			"error", err)
	}
}

func (s *Service) emitTrail(ctx context.Context, req *models.VerificationRequest) {
	for _, e := range req.Events {
		s.publisher.Emit(ctx, audit.Event{
			Timestamp: e.Timestamp,
			RequestID: req.ID,
			SubjectID: req.Subject.ID,
			Stage:     string(e.Stage),
			Decision:  decisionFor(e.Stage),
			Reason:    e.Detail,
		})
	}
}

func decisionFor(stage models.RequestStatus) string {
	if stage.IsTerminal() {
		return string(stage)
	}
	return "proceed"
}
