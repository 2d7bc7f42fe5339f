package risk

import (
	"context"
	"log/slog"
	"math"

	"verigate/internal/platform/config"
	"verigate/internal/verification/models"
	"verigate/internal/verification/ports"
)

// FeatureVector is the fixed input shape for the external ML scoring
// service.
type FeatureVector struct {
	ExtractionConfidence float64                  `json:"extraction_confidence"`
	FaceMatchConfidence  float64                  `json:"face_match_confidence"`
	LivenessScore        float64                  `json:"liveness_score"`
	CredentialScore      float64                  `json:"credential_score"`
	Authenticity         models.AuthenticityClass `json:"authenticity"`
	FlagCount            int                      `json:"flag_count"`
	DocumentFaceFound    bool                     `json:"document_face_found"`
	LivePhotoFaceFound   bool                     `json:"live_photo_face_found"`
}

// MLClient is the external ML risk-scoring service boundary. Score returns a
// value on the 0-100 scale.
type MLClient interface {
	Score(ctx context.Context, fv FeatureVector) (float64, error)
}

// Scorer produces the blended risk assessment.
type Scorer struct {
	rules  []Rule
	ml     MLClient // nil when no ML service is configured
	cfg    config.Scoring
	logger *slog.Logger
}

// NewScorer builds a scorer from the configured rule weights. ml may be nil.
func NewScorer(cfg config.Scoring, ml MLClient, logger *slog.Logger) *Scorer {
	return &Scorer{
		rules:  buildRules(cfg),
		ml:     ml,
		cfg:    cfg,
		logger: logger,
	}
}

// Score evaluates the heuristic rule list, then blends in the external ML
// score when the service is reachable. ML unavailability is silent to the
// caller but recorded on the factor list.
func (s *Scorer) Score(ctx context.Context, in ports.RiskInput) (*models.MLRiskScore, error) {
	heuristic := 0
	var factors []models.RiskFactor

	for _, rule := range s.rules {
		if !rule.Applies(in) {
			continue
		}
		heuristic += rule.Points
		factors = append(factors, models.RiskFactor{
			Name:         rule.Name,
			Weight:       float64(rule.Points),
			Contribution: rule.Describe(in),
		})
	}
	if heuristic > 100 {
		heuristic = 100
	}

	provider := "heuristic"
	score := float64(heuristic)

	if s.ml != nil {
		mlScore, err := s.ml.Score(ctx, featureVector(in))
		if err == nil {
			score = s.cfg.MLBlendWeight*clamp(mlScore) + (1-s.cfg.MLBlendWeight)*float64(heuristic)
			provider = "ml_blend"
			factors = append(factors, models.RiskFactor{
				Name:         "ml_model",
				Weight:       s.cfg.MLBlendWeight,
				Contribution: "external ML score blended with heuristic baseline",
			})
		} else {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "ml scoring unavailable, using heuristic only", "error", err)
			}
			factors = append(factors, models.RiskFactor{
				Name:         "ml_unavailable",
				Weight:       0,
				Contribution: "ML unavailable, heuristic only",
			})
		}
	}

	final := int(math.Round(clamp(score)))
	level := levelFor(final, s.cfg)

	return &models.MLRiskScore{
		Provider:       provider,
		Score:          final,
		Level:          level,
		Factors:        factors,
		Recommendation: recommendationFor(level),
	}, nil
}

// featureVector flattens whichever results exist into the fixed ML input
// shape. Absent stages leave their features zeroed.
func featureVector(in ports.RiskInput) FeatureVector {
	var fv FeatureVector
	flagCount := 0

	if in.Extraction != nil {
		fv.ExtractionConfidence = in.Extraction.Confidence
		fv.Authenticity = in.Extraction.Authenticity
		flagCount += len(in.Extraction.Flags)
	}
	if in.FaceMatch != nil {
		fv.FaceMatchConfidence = in.FaceMatch.MatchConfidence
		fv.LivenessScore = in.FaceMatch.LivenessScore
		fv.DocumentFaceFound = in.FaceMatch.DocumentFaceFound
		fv.LivePhotoFaceFound = in.FaceMatch.LivePhotoFaceFound
		flagCount += len(in.FaceMatch.Flags)
	}
	if in.Credentials != nil {
		fv.CredentialScore = float64(in.Credentials.Credibility)
	}
	fv.FlagCount = flagCount
	return fv
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
