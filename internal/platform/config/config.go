// Package config loads service configuration from the environment so main
// stays lean. Scoring constants live here because they are tunable policy,
// not law; the defaults match the documented weighting scheme but should be
// recalibrated against labeled outcomes.
package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string

	// PostgresDSN enables the durable request store when set; the in-memory
	// store is used otherwise.
	PostgresDSN string

	// RedisURL enables the verdict cache when set.
	RedisURL string

	// AnthropicAPIKey enables the LLM text-structuring fallback in the
	// extraction chain when set.
	AnthropicAPIKey string
	AnthropicModel  string

	Scoring Scoring
}

// RedisConfig carries tuning for the shared redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// VerdictCacheTTL bounds how long issued verdicts stay in the read cache.
var VerdictCacheTTL = 15 * time.Minute

// Scoring holds every weighting constant used by the risk scorer and the
// verdict issuer. Named fields rather than inline literals so the rule set is
// auditable and overridable per deployment.
type Scoring struct {
	// Heuristic risk penalties (points on a 0-100 scale).
	PenaltyMissingExtraction  int
	PenaltyLowExtractionConf  int
	PenaltyFraudulentDocument int
	PenaltySuspiciousDocument int
	PenaltyFaceNoMatch        int
	PenaltyFaceInconclusive   int
	PenaltyLowLiveness        int
	PenaltyDisputedCredential int
	PenaltyLowCredibility     int

	// Thresholds the penalties key off.
	LowExtractionConfidence float64
	LowLivenessScore        float64
	LowCredibilityScore     float64

	// ML blend: final = MLBlendWeight*ml + (1-MLBlendWeight)*heuristic.
	MLBlendWeight float64

	// Risk level cutoffs (inclusive lower bounds).
	LevelMedium   int
	LevelHigh     int
	LevelCritical int

	// Face verdict cutoffs.
	FaceMatchThreshold   float64
	FaceNoMatchThreshold float64

	// Confidence blend weights, renormalized over the stages that ran.
	ConfidenceWeightExtraction float64
	ConfidenceWeightFace       float64
	ConfidenceWeightCredential float64
}

// DefaultScoring returns the documented weighting scheme.
func DefaultScoring() Scoring {
	return Scoring{
		PenaltyMissingExtraction:  25,
		PenaltyLowExtractionConf:  20,
		PenaltyFraudulentDocument: 40,
		PenaltySuspiciousDocument: 15,
		PenaltyFaceNoMatch:        35,
		PenaltyFaceInconclusive:   15,
		PenaltyLowLiveness:        20,
		PenaltyDisputedCredential: 25,
		PenaltyLowCredibility:     15,

		LowExtractionConfidence: 0.5,
		LowLivenessScore:        0.5,
		LowCredibilityScore:     30,

		MLBlendWeight: 0.6,

		LevelMedium:   20,
		LevelHigh:     45,
		LevelCritical: 70,

		FaceMatchThreshold:   0.7,
		FaceNoMatchThreshold: 0.4,

		ConfidenceWeightExtraction: 50,
		ConfidenceWeightFace:       35,
		ConfidenceWeightCredential: 15,
	}
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:            envOr("VERIGATE_ADDR", ":8080"),
		JWTSigningKey:   envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:       envOr("JWT_ISSUER", "verigate"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		RedisURL:        os.Getenv("REDIS_URL"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		Scoring:         scoringFromEnv(),
	}
}

// scoringFromEnv starts from the defaults and applies any overrides present
// in the environment.
func scoringFromEnv() Scoring {
	s := DefaultScoring()
	overrideInt(&s.PenaltyMissingExtraction, "SCORE_PENALTY_MISSING_EXTRACTION")
	overrideInt(&s.PenaltyLowExtractionConf, "SCORE_PENALTY_LOW_EXTRACTION_CONF")
	overrideInt(&s.PenaltyFraudulentDocument, "SCORE_PENALTY_FRAUDULENT_DOCUMENT")
	overrideInt(&s.PenaltySuspiciousDocument, "SCORE_PENALTY_SUSPICIOUS_DOCUMENT")
	overrideInt(&s.PenaltyFaceNoMatch, "SCORE_PENALTY_FACE_NO_MATCH")
	overrideInt(&s.PenaltyFaceInconclusive, "SCORE_PENALTY_FACE_INCONCLUSIVE")
	overrideInt(&s.PenaltyLowLiveness, "SCORE_PENALTY_LOW_LIVENESS")
	overrideInt(&s.PenaltyDisputedCredential, "SCORE_PENALTY_DISPUTED_CREDENTIAL")
	overrideInt(&s.PenaltyLowCredibility, "SCORE_PENALTY_LOW_CREDIBILITY")
	overrideFloat(&s.MLBlendWeight, "SCORE_ML_BLEND_WEIGHT")
	overrideInt(&s.LevelMedium, "SCORE_LEVEL_MEDIUM")
	overrideInt(&s.LevelHigh, "SCORE_LEVEL_HIGH")
	overrideInt(&s.LevelCritical, "SCORE_LEVEL_CRITICAL")
	overrideFloat(&s.FaceMatchThreshold, "SCORE_FACE_MATCH_THRESHOLD")
	overrideFloat(&s.FaceNoMatchThreshold, "SCORE_FACE_NO_MATCH_THRESHOLD")
	return s
}

// Redis builds the redis client config for the configured URL.
func (s Server) Redis() RedisConfig {
	return RedisConfig{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func overrideFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
