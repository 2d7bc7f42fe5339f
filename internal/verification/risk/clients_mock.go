package risk

import (
	"context"
	"time"
)

// MockMLClient is a deterministic stand-in for the external ML risk-scoring
// service. When Result is unset it scores from the feature vector with a
// simple linear model so local wiring produces sensible output.
type MockMLClient struct {
	Latency time.Duration

	Result *float64
	Err    error
}

func (c MockMLClient) Score(_ context.Context, fv FeatureVector) (float64, error) {
	time.Sleep(c.Latency)
	if c.Err != nil {
		return 0, c.Err
	}
	if c.Result != nil {
		return *c.Result, nil
	}

	score := 50.0
	score -= 30.0 * fv.ExtractionConfidence
	score -= 15.0 * fv.FaceMatchConfidence
	score -= 5.0 * fv.LivenessScore
	score -= 0.1 * fv.CredentialScore
	score += 5.0 * float64(fv.FlagCount)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}
