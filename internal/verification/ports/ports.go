// Package ports defines the adapter interfaces the pipeline orchestrator is
// wired against. Each is a pure function from typed input to typed result so
// stub implementations can be substituted in tests without network access.
package ports

import (
	"context"

	"verigate/internal/verification/models"
)

// DocumentExtractor reads structured identity fields off a document image.
//
// Implementations must not return an error for degraded-service conditions;
// a failed extraction is encoded as a zero-confidence result with explanatory
// flags and flows forward into risk scoring.
type DocumentExtractor interface {
	Extract(ctx context.Context, doc models.Image, category models.DocumentCategory) (*models.ExtractionResult, error)
}

// FaceComparer compares the document photo against a live photo.
//
// Only invoked when a live photo was supplied. A missing face in either image
// yields an inconclusive result, not an error.
type FaceComparer interface {
	Compare(ctx context.Context, doc, live models.Image) (*models.FaceMatchResult, error)
}

// CredentialChecker assesses the plausibility of professional claims.
// extractedName may be empty when document extraction produced no name.
type CredentialChecker interface {
	Check(ctx context.Context, claims []models.ProfessionalClaim, extractedName string) (*models.CredentialCheckResult, error)
}

// RiskInput carries whichever stage results are available; absent stages are
// nil and must be treated as "not applicable", never as evidence of risk
// (except missing extraction, which is itself a risk signal).
type RiskInput struct {
	Extraction  *models.ExtractionResult
	FaceMatch   *models.FaceMatchResult
	Credentials *models.CredentialCheckResult
}

// RiskScorer combines the available stage results into a single risk score,
// level, and recommendation.
type RiskScorer interface {
	Score(ctx context.Context, in RiskInput) (*models.MLRiskScore, error)
}

// VerdictIssuer converts the collected signals into the final verdict.
// earlyExit is empty unless a disqualifying signal terminated the pipeline
// before risk scoring ran.
type VerdictIssuer interface {
	Issue(req *models.VerificationRequest, earlyExit string) *models.VerificationVerdict
}
