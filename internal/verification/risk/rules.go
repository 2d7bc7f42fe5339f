// Package risk combines the available stage results into a single risk
// score, level, and recommendation. The heuristic baseline is a declarative
// list of weighted rules so the rule set is independently testable and
// auditable; an optional external ML score is blended on top.
package risk

import (
	"fmt"

	"verigate/internal/platform/config"
	"verigate/internal/verification/models"
	"verigate/internal/verification/ports"
)

// Rule is a single weighted heuristic. Applies is pure; Describe renders the
// human-readable contribution recorded on the factor list.
type Rule struct {
	Name     string
	Points   int
	Applies  func(in ports.RiskInput) bool
	Describe func(in ports.RiskInput) string
}

// buildRules materializes the documented rule set from the scoring config.
func buildRules(cfg config.Scoring) []Rule {
	return []Rule{
		{
			Name:   "missing_extraction",
			Points: cfg.PenaltyMissingExtraction,
			Applies: func(in ports.RiskInput) bool {
				return in.Extraction == nil
			},
			Describe: func(ports.RiskInput) string {
				return "no document extraction available"
			},
		},
		{
			Name:   "low_extraction_confidence",
			Points: cfg.PenaltyLowExtractionConf,
			Applies: func(in ports.RiskInput) bool {
				return in.Extraction != nil && in.Extraction.Confidence < cfg.LowExtractionConfidence
			},
			Describe: func(in ports.RiskInput) string {
				return fmt.Sprintf("extraction confidence %.2f below %.2f", in.Extraction.Confidence, cfg.LowExtractionConfidence)
			},
		},
		{
			Name:   "fraudulent_document",
			Points: cfg.PenaltyFraudulentDocument,
			Applies: func(in ports.RiskInput) bool {
				return in.Extraction != nil && in.Extraction.Authenticity == models.AuthenticityLikelyFraudulent
			},
			Describe: func(ports.RiskInput) string {
				return "document classified likely fraudulent"
			},
		},
		{
			Name:   "suspicious_document",
			Points: cfg.PenaltySuspiciousDocument,
			Applies: func(in ports.RiskInput) bool {
				return in.Extraction != nil && in.Extraction.Authenticity == models.AuthenticitySuspicious
			},
			Describe: func(ports.RiskInput) string {
				return "document classified suspicious"
			},
		},
		{
			Name:   "face_no_match",
			Points: cfg.PenaltyFaceNoMatch,
			Applies: func(in ports.RiskInput) bool {
				return in.FaceMatch != nil && in.FaceMatch.Verdict == models.FaceNoMatch
			},
			Describe: func(ports.RiskInput) string {
				return "live photo does not match document photo"
			},
		},
		{
			Name:   "face_inconclusive",
			Points: cfg.PenaltyFaceInconclusive,
			Applies: func(in ports.RiskInput) bool {
				return in.FaceMatch != nil && in.FaceMatch.Verdict == models.FaceInconclusive
			},
			Describe: func(ports.RiskInput) string {
				return "face comparison inconclusive"
			},
		},
		{
			Name:   "low_liveness",
			Points: cfg.PenaltyLowLiveness,
			Applies: func(in ports.RiskInput) bool {
				return in.FaceMatch != nil && in.FaceMatch.LivenessScore < cfg.LowLivenessScore
			},
			Describe: func(in ports.RiskInput) string {
				return fmt.Sprintf("liveness %.2f below %.2f", in.FaceMatch.LivenessScore, cfg.LowLivenessScore)
			},
		},
		{
			Name:   "disputed_credential",
			Points: cfg.PenaltyDisputedCredential,
			Applies: func(in ports.RiskInput) bool {
				return in.Credentials != nil && in.Credentials.HasDisputed()
			},
			Describe: func(ports.RiskInput) string {
				return "one or more claimed credentials disputed"
			},
		},
		{
			Name:   "low_credibility",
			Points: cfg.PenaltyLowCredibility,
			Applies: func(in ports.RiskInput) bool {
				// Credibility only means anything when claims were actually
				// assessed; an empty result is neutral, not risky.
				return in.Credentials != nil && len(in.Credentials.Outcomes) > 0 &&
					float64(in.Credentials.Credibility) < cfg.LowCredibilityScore
			},
			Describe: func(in ports.RiskInput) string {
				return fmt.Sprintf("credential credibility %d below %.0f", in.Credentials.Credibility, cfg.LowCredibilityScore)
			},
		},
	}
}

// levelFor buckets a 0-100 score into a risk level using the configured
// inclusive lower bounds.
func levelFor(score int, cfg config.Scoring) models.RiskLevel {
	switch {
	case score >= cfg.LevelCritical:
		return models.RiskCritical
	case score >= cfg.LevelHigh:
		return models.RiskHigh
	case score >= cfg.LevelMedium:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// recommendationFor follows directly from the level.
func recommendationFor(level models.RiskLevel) models.Recommendation {
	switch level {
	case models.RiskCritical, models.RiskHigh:
		return models.RecommendReject
	case models.RiskMedium:
		return models.RecommendManualReview
	default:
		return models.RecommendApprove
	}
}
