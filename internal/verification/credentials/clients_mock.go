package credentials

import (
	"context"
	"strings"
	"time"

	"verigate/internal/verification/models"
)

// MockPlausibilityClient is a deterministic stand-in for the external
// plausibility service. Issuers containing "unknown" come back unverifiable
// and issuers containing "diploma mill" come back disputed, so scripted
// scenarios stay readable in tests.
type MockPlausibilityClient struct {
	Latency time.Duration
	Err     error
}

func (c MockPlausibilityClient) Assess(_ context.Context, claim models.ProfessionalClaim) (models.ClaimStatus, string, error) {
	time.Sleep(c.Latency)
	if c.Err != nil {
		return "", "", c.Err
	}

	issuer := strings.ToLower(claim.Issuer)
	switch {
	case strings.Contains(issuer, "diploma mill"):
		return models.ClaimDisputed, "issuer flagged by registry", nil
	case strings.Contains(issuer, "unknown"):
		return models.ClaimUnverifiable, "issuer not in registry", nil
	case claim.Year != 0 && claim.Year < time.Now().Year()-40 && claim.Type == models.ClaimTypeCertification:
		return models.ClaimExpired, "certification past renewal window", nil
	default:
		return models.ClaimVerified, "issuer recognized", nil
	}
}
