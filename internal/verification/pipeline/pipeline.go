// Package pipeline implements the verification state machine. An Orchestrator
// drives a request from pending through the provider stages to exactly one
// terminal status, recording an audit event per stage and never leaving a
// request stranded: provider failures and panics finalize as flagged.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"verigate/internal/verification/metrics"
	"verigate/internal/verification/models"
	"verigate/internal/verification/ports"
	"verigate/internal/verification/verdict"
	dErrors "verigate/pkg/domain-errors"
)

const tracerName = "verigate"

// Issuer extends ports.VerdictIssuer with the fallback verdict used when the
// pipeline itself fails mid-flight.
type Issuer interface {
	ports.VerdictIssuer
	IssuePipelineError(req *models.VerificationRequest, cause string) *models.VerificationVerdict
}

// Orchestrator wires the stage adapters into the request state machine.
type Orchestrator struct {
	extractor   ports.DocumentExtractor
	faces       ports.FaceComparer
	credentials ports.CredentialChecker
	scorer      ports.RiskScorer
	issuer      Issuer
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// NewOrchestrator creates an Orchestrator. metrics may be nil in tests.
func NewOrchestrator(
	extractor ports.DocumentExtractor,
	faces ports.FaceComparer,
	credentials ports.CredentialChecker,
	scorer ports.RiskScorer,
	issuer Issuer,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Orchestrator {
	return &Orchestrator{
		extractor:   extractor,
		faces:       faces,
		credentials: credentials,
		scorer:      scorer,
		issuer:      issuer,
		logger:      logger,
		metrics:     m,
	}
}

// Run drives the request to a terminal status. On return the request always
// holds a final verdict and CompletedAt is set; the only error conditions are
// being handed a request that is already finalized, or a finalization
// invariant violation, which cannot happen through this method's own flow.
//
// Stage order: ocr_scanning, then face_matching (only when a live photo was
// supplied), then credential_checking (only when claims were supplied), then
// ml_scoring. A likely_fraudulent extraction or a face no_match short-circuits
// straight to rejected without running the remaining stages.
func (o *Orchestrator) Run(ctx context.Context, req *models.VerificationRequest) error {
	if req.Status.IsTerminal() || req.IsCompleted() {
		return dErrors.New(dErrors.CodeConflict, "verification request is already finalized")
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline.run",
		trace.WithAttributes(
			attribute.String("verification.request_id", req.ID.String()),
			attribute.String("verification.category", string(req.Category)),
		))
	defer span.End()
	defer func() { span.SetAttributes(attribute.String("verification.status", string(req.Status))) }()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.logger.ErrorContext(ctx, "pipeline panicked, flagging request",
				"request_id", req.ID,
				"stage", req.Status,
				"panic", r)
			o.fail(ctx, req, fmt.Sprintf("panic in stage %s: %v", req.Status, r))
		}
		o.metrics.ObservePipelineLatency(time.Since(start))
		o.metrics.IncrementOutcome(string(req.Status))
	}()

	o.logger.InfoContext(ctx, "starting verification pipeline",
		"request_id", req.ID,
		"category", req.Category,
		"has_live_photo", req.HasLivePhoto(),
		"claim_count", len(req.Claims))

	if err := o.runExtraction(ctx, req); err != nil {
		return o.fail(ctx, req, err.Error())
	}
	if req.Extraction.Authenticity == models.AuthenticityLikelyFraudulent {
		return o.earlyExit(ctx, req, verdict.EarlyExitFraudulentDocument)
	}

	if req.HasLivePhoto() {
		if err := o.runFaceMatch(ctx, req); err != nil {
			return o.fail(ctx, req, err.Error())
		}
		if req.FaceMatch.Verdict == models.FaceNoMatch {
			return o.earlyExit(ctx, req, verdict.EarlyExitFaceNoMatch)
		}
	}

	if req.HasClaims() {
		if err := o.runCredentialCheck(ctx, req); err != nil {
			return o.fail(ctx, req, err.Error())
		}
	}

	if err := o.runRiskScoring(ctx, req); err != nil {
		return o.fail(ctx, req, err.Error())
	}

	return o.finish(ctx, req, terminalFor(req.RiskScore.Recommendation), "")
}

// stage sets the request status, opens a span, and times the stage body.
func (o *Orchestrator) stage(ctx context.Context, req *models.VerificationRequest, status models.RequestStatus, body func(context.Context) error) error {
	req.Status = status
	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline."+string(status),
		trace.WithAttributes(attribute.String("verification.request_id", req.ID.String())))
	defer span.End()

	start := time.Now()
	err := body(ctx)
	o.metrics.ObserveStageLatency(string(status), time.Since(start))
	return err
}

func (o *Orchestrator) runExtraction(ctx context.Context, req *models.VerificationRequest) error {
	return o.stage(ctx, req, models.StatusOCRScanning, func(ctx context.Context) error {
		res, err := o.extractor.Extract(ctx, req.Document, req.Category)
		if err != nil {
			return fmt.Errorf("document extraction: %w", err)
		}
		req.Extraction = res
		req.RecordEvent(models.StatusOCRScanning, fmt.Sprintf(
			"extraction by %s: confidence %.2f, authenticity %s",
			res.Provider, res.Confidence, res.Authenticity))
		return nil
	})
}

func (o *Orchestrator) runFaceMatch(ctx context.Context, req *models.VerificationRequest) error {
	return o.stage(ctx, req, models.StatusFaceMatching, func(ctx context.Context) error {
		res, err := o.faces.Compare(ctx, req.Document, *req.LivePhoto)
		if err != nil {
			return fmt.Errorf("face comparison: %w", err)
		}
		req.FaceMatch = res
		req.RecordEvent(models.StatusFaceMatching, fmt.Sprintf(
			"face comparison: %s, match confidence %.2f, liveness %.2f",
			res.Verdict, res.MatchConfidence, res.LivenessScore))
		return nil
	})
}

func (o *Orchestrator) runCredentialCheck(ctx context.Context, req *models.VerificationRequest) error {
	return o.stage(ctx, req, models.StatusCredentialChecking, func(ctx context.Context) error {
		res, err := o.credentials.Check(ctx, req.Claims, req.Extraction.Fields.FullName)
		if err != nil {
			return fmt.Errorf("credential check: %w", err)
		}
		req.Credentials = res
		req.RecordEvent(models.StatusCredentialChecking, fmt.Sprintf(
			"assessed %d claims, credibility %d", len(res.Outcomes), res.Credibility))
		return nil
	})
}

func (o *Orchestrator) runRiskScoring(ctx context.Context, req *models.VerificationRequest) error {
	return o.stage(ctx, req, models.StatusMLScoring, func(ctx context.Context) error {
		score, err := o.scorer.Score(ctx, ports.RiskInput{
			Extraction:  req.Extraction,
			FaceMatch:   req.FaceMatch,
			Credentials: req.Credentials,
		})
		if err != nil {
			return fmt.Errorf("risk scoring: %w", err)
		}
		req.RiskScore = score
		req.RecordEvent(models.StatusMLScoring, fmt.Sprintf(
			"risk score %d (%s) by %s, recommendation %s",
			score.Score, score.Level, score.Provider, score.Recommendation))
		return nil
	})
}

// earlyExit rejects the request on a disqualifying signal without running the
// remaining stages.
func (o *Orchestrator) earlyExit(ctx context.Context, req *models.VerificationRequest, trigger string) error {
	o.metrics.IncrementEarlyExit(trigger)
	o.logger.WarnContext(ctx, "early pipeline exit",
		"request_id", req.ID,
		"trigger", trigger)
	return o.finish(ctx, req, models.StatusRejected, trigger)
}

// fail flags the request after an unrecoverable stage error. The fallback
// verdict forces manual review instead of losing the request.
func (o *Orchestrator) fail(ctx context.Context, req *models.VerificationRequest, cause string) error {
	o.logger.ErrorContext(ctx, "pipeline stage failed, flagging request",
		"request_id", req.ID,
		"stage", req.Status,
		"cause", cause)

	failedStage := req.Status
	req.Status = models.StatusFlagged
	req.FinalVerdict = o.issuer.IssuePipelineError(req, cause)
	req.RecordEvent(models.StatusFlagged, fmt.Sprintf("stage %s failed: %s", failedStage, cause))
	return req.Complete()
}

// finish issues the verdict and freezes the request in the given terminal
// status.
func (o *Orchestrator) finish(ctx context.Context, req *models.VerificationRequest, status models.RequestStatus, earlyExit string) error {
	req.Status = status
	req.FinalVerdict = o.issuer.Issue(req, earlyExit)

	detail := fmt.Sprintf("verdict %s, confidence %d", req.FinalVerdict.Status, req.FinalVerdict.Confidence)
	if earlyExit != "" {
		detail += ", early exit: " + strings.ReplaceAll(earlyExit, "_", " ")
	}
	req.RecordEvent(status, detail)

	if err := req.Complete(); err != nil {
		return err
	}

	o.logger.InfoContext(ctx, "verification pipeline completed",
		"request_id", req.ID,
		"status", req.Status,
		"verdict", req.FinalVerdict.Status,
		"confidence", req.FinalVerdict.Confidence)
	return nil
}

func terminalFor(rec models.Recommendation) models.RequestStatus {
	switch rec {
	case models.RecommendApprove:
		return models.StatusVerified
	case models.RecommendReject:
		return models.StatusRejected
	default:
		return models.StatusFlagged
	}
}
