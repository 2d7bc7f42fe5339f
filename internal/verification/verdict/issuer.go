// Package verdict converts the collected pipeline signals into the final
// verdict: a status, a blended confidence score, review notes, and a
// tamper-evident integrity hash computed once at issuance.
package verdict

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"verigate/internal/platform/config"
	"verigate/internal/verification/models"
	pstrings "verigate/pkg/platform/strings"
)

// Early-exit reasons the orchestrator hands in when a disqualifying signal
// terminated the pipeline before risk scoring.
const (
	EarlyExitFraudulentDocument = "fraudulent_document"
	EarlyExitFaceNoMatch        = "face_no_match"
)

// restrictions attached to conditionally verified outcomes.
var conditionalRestrictions = []string{
	"read_only_access",
	"no_instructor_role_eligibility",
}

// Issuer produces immutable verdicts.
type Issuer struct {
	cfg config.Scoring
	now func() time.Time
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock sets the issuance clock for testability.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

func NewIssuer(cfg config.Scoring, opts ...Option) *Issuer {
	i := &Issuer{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue builds the verdict for a completed or early-exited request.
// earlyExit is empty unless a disqualifying signal fired, in which case the
// status is rejected regardless of any risk recommendation.
func (i *Issuer) Issue(req *models.VerificationRequest, earlyExit string) *models.VerificationVerdict {
	status := i.status(req, earlyExit)
	confidence := i.confidence(req)
	issuedAt := i.now().UTC()

	v := &models.VerificationVerdict{
		Status:      status,
		Confidence:  confidence,
		Summary:     i.summary(req, status, earlyExit),
		ReviewNotes: i.reviewNotes(req, earlyExit),
		IssuedAt:    issuedAt,
	}
	if status == models.VerdictConditionallyVerified {
		v.Restrictions = append([]string(nil), conditionalRestrictions...)
	}

	v.IntegrityHash = integrityHash(req, v)
	return v
}

// IssuePipelineError builds the flagged-fallback verdict for requests that
// hit an infrastructure failure. The request still completes; a human picks
// it up from the review queue.
func (i *Issuer) IssuePipelineError(req *models.VerificationRequest, cause string) *models.VerificationVerdict {
	issuedAt := i.now().UTC()
	v := &models.VerificationVerdict{
		Status:     models.VerdictConditionallyVerified,
		Confidence: 0,
		Summary:    "Verification could not be completed automatically due to a pipeline error. The request is held for manual review.",
		ReviewNotes: []string{
			"pipeline error - manual review required",
			cause,
		},
		Restrictions: append([]string(nil), conditionalRestrictions...),
		IssuedAt:     issuedAt,
	}
	v.IntegrityHash = integrityHash(req, v)
	return v
}

func (i *Issuer) status(req *models.VerificationRequest, earlyExit string) models.VerdictStatus {
	if earlyExit != "" {
		return models.VerdictRejected
	}
	if req.RiskScore == nil {
		// No risk assessment means a human decides.
		return models.VerdictConditionallyVerified
	}
	switch req.RiskScore.Recommendation {
	case models.RecommendApprove:
		return models.VerdictVerified
	case models.RecommendReject:
		return models.VerdictRejected
	default:
		return models.VerdictConditionallyVerified
	}
}

// confidence blends the stage signals with the configured weights,
// renormalized over whichever stages actually ran so a request without a
// live photo is not penalized for a structurally absent signal.
func (i *Issuer) confidence(req *models.VerificationRequest) int {
	var earned, available float64

	if req.Extraction != nil {
		w := i.cfg.ConfidenceWeightExtraction
		earned += w * (0.7*clamp01(req.Extraction.Confidence) + 0.3*authenticityFactor(req.Extraction.Authenticity))
		available += w
	}
	if req.FaceMatch != nil {
		w := i.cfg.ConfidenceWeightFace
		earned += w * (0.7*clamp01(req.FaceMatch.MatchConfidence) + 0.3*clamp01(req.FaceMatch.LivenessScore))
		available += w
	}
	if req.Credentials != nil && len(req.Credentials.Outcomes) > 0 {
		w := i.cfg.ConfidenceWeightCredential
		earned += w * float64(req.Credentials.Credibility) / 100.0
		available += w
	}

	if available == 0 {
		return 0
	}
	score := int(math.Round(earned / available * 100.0))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func authenticityFactor(a models.AuthenticityClass) float64 {
	switch a {
	case models.AuthenticityLikelyAuthentic:
		return 1.0
	case models.AuthenticitySuspicious:
		return 0.4
	default:
		return 0
	}
}

func (i *Issuer) summary(req *models.VerificationRequest, status models.VerdictStatus, earlyExit string) string {
	var b strings.Builder

	switch earlyExit {
	case EarlyExitFraudulentDocument:
		fmt.Fprintf(&b, "The submitted %s was classified as likely fraudulent; verification was terminated before further checks ran.", req.Category)
		return b.String()
	case EarlyExitFaceNoMatch:
		fmt.Fprintf(&b, "The live photo does not match the photo on the submitted %s; verification was terminated before credential checks ran.", req.Category)
		return b.String()
	}

	fmt.Fprintf(&b, "Verification of %s completed with status %s.", req.Category, status)
	if req.Extraction != nil {
		fmt.Fprintf(&b, " Document extraction by %s returned confidence %.2f (%s).",
			req.Extraction.Provider, req.Extraction.Confidence, req.Extraction.Authenticity)
	}
	if req.FaceMatch != nil {
		fmt.Fprintf(&b, " Face comparison verdict: %s (confidence %.2f, liveness %.2f).",
			req.FaceMatch.Verdict, req.FaceMatch.MatchConfidence, req.FaceMatch.LivenessScore)
	}
	if req.Credentials != nil && len(req.Credentials.Outcomes) > 0 {
		fmt.Fprintf(&b, " %d professional claim(s) assessed with credibility %d/100.",
			len(req.Credentials.Outcomes), req.Credentials.Credibility)
	}
	if req.RiskScore != nil {
		fmt.Fprintf(&b, " Risk score %d (%s), recommendation %s.",
			req.RiskScore.Score, req.RiskScore.Level, req.RiskScore.Recommendation)
	}
	return b.String()
}

func (i *Issuer) reviewNotes(req *models.VerificationRequest, earlyExit string) []string {
	var notes []string
	if earlyExit != "" {
		notes = append(notes, "early exit: "+earlyExit)
	}
	if req.Extraction != nil {
		for _, flag := range req.Extraction.Flags {
			notes = append(notes, "extraction: "+flag)
		}
	}
	if req.FaceMatch != nil {
		for _, flag := range req.FaceMatch.Flags {
			notes = append(notes, "face: "+flag)
		}
	}
	if req.RiskScore != nil {
		for _, factor := range req.RiskScore.Factors {
			notes = append(notes, "risk: "+factor.Contribution)
		}
	}
	return pstrings.DedupeAndTrim(notes)
}

// integrityHash digests the verdict's defining fields plus the issuance
// timestamp. Re-running the same request yields a different hash because
// IssuedAt differs; the hash certifies one issuance, not the inputs.
func integrityHash(req *models.VerificationRequest, v *models.VerificationVerdict) string {
	payload := fmt.Sprintf("%s|%s|%s|%d|%s",
		req.ID, req.Subject.ID, v.Status, v.Confidence, v.IssuedAt.Format(time.RFC3339Nano))
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
