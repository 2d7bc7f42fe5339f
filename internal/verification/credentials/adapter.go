// Package credentials implements the professional claim assessment adapter.
// Claims are assessed independently and sequentially; issuers differ per
// claim so there is no shared state worth parallelizing against.
package credentials

import (
	"context"
	"log/slog"
	"time"

	"verigate/internal/verification/models"
	"verigate/pkg/platform/circuit"
)

// PlausibilityClient is the external claim-plausibility service boundary.
// Implementations assess a single claim at a time.
type PlausibilityClient interface {
	Assess(ctx context.Context, claim models.ProfessionalClaim) (models.ClaimStatus, string, error)
}

// Adapter assesses each claim in order and aggregates a credibility score.
type Adapter struct {
	client  PlausibilityClient
	breaker *circuit.Breaker
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock sets the clock function for testability.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		if now != nil {
			a.now = now
		}
	}
}

func NewAdapter(client PlausibilityClient, logger *slog.Logger, opts ...Option) *Adapter {
	a := &Adapter{
		client:  client,
		breaker: circuit.New("plausibility", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Check assesses the claim list against the plausibility service, layering
// internal timeline checks and name corroboration on top. An empty claim
// list returns an empty result with credibility 0, which downstream scoring
// treats as "feature not applicable", never as risk.
func (a *Adapter) Check(ctx context.Context, claims []models.ProfessionalClaim, extractedName string) (*models.CredentialCheckResult, error) {
	result := &models.CredentialCheckResult{Outcomes: []models.ClaimOutcome{}}
	if len(claims) == 0 {
		return result, nil
	}

	verified := 0
	for _, claim := range claims {
		outcome := a.assess(ctx, claim, extractedName)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Status == models.ClaimVerified {
			verified++
		}
	}

	result.Credibility = verified * 100 / len(claims)
	return result, nil
}

func (a *Adapter) assess(ctx context.Context, claim models.ProfessionalClaim, extractedName string) models.ClaimOutcome {
	// Internal plausibility first: a nonsensical timeline or unknown claim
	// shape disqualifies without an external call.
	if status, note, implausible := a.implausible(claim); implausible {
		return models.ClaimOutcome{Claim: claim, Status: status, Source: "internal_plausibility", Notes: note}
	}

	if a.breaker.IsOpen() {
		return models.ClaimOutcome{
			Claim:  claim,
			Status: models.ClaimUnverifiable,
			Source: "internal_plausibility",
			Notes:  "plausibility service unreachable",
		}
	}

	status, note, err := a.client.Assess(ctx, claim)
	if err != nil {
		// Degraded signal: an unreachable assessor makes the claim
		// unverifiable, it does not fail the pipeline.
		if _, change := a.breaker.RecordFailure(); change.Opened && a.logger != nil {
			a.logger.WarnContext(ctx, "plausibility circuit opened", "issuer", claim.Issuer)
		}
		if a.logger != nil {
			a.logger.WarnContext(ctx, "credential plausibility call failed",
				"issuer", claim.Issuer,
				"error", err,
			)
		}
		return models.ClaimOutcome{
			Claim:  claim,
			Status: models.ClaimUnverifiable,
			Source: "internal_plausibility",
			Notes:  "plausibility service unreachable",
		}
	}
	if _, change := a.breaker.RecordSuccess(); change.Closed && a.logger != nil {
		a.logger.InfoContext(ctx, "plausibility circuit closed")
	}

	outcome := models.ClaimOutcome{Claim: claim, Status: status, Source: "plausibility_service", Notes: note}

	// Corroborate the extracted document name when we have one. Failure to
	// corroborate downgrades a verified claim rather than disputing it: the
	// extraction may simply have misread the name.
	if status == models.ClaimVerified && extractedName == "" {
		outcome.Status = models.ClaimUnverifiable
		outcome.Notes = appendNote(note, "no extracted name to corroborate against")
	}

	return outcome
}

// implausible applies the internal timeline and shape checks.
func (a *Adapter) implausible(claim models.ProfessionalClaim) (models.ClaimStatus, string, bool) {
	currentYear := a.now().Year()
	switch {
	case !claim.Type.IsValid():
		return models.ClaimUnverifiable, "unrecognized claim type", true
	case claim.Issuer == "":
		return models.ClaimUnverifiable, "no issuing body named", true
	case claim.Year > currentYear:
		return models.ClaimDisputed, "claim dated in the future", true
	case claim.Year != 0 && claim.Year < 1950:
		return models.ClaimDisputed, "claim predates recognizable records", true
	}
	return "", "", false
}

func appendNote(existing, extra string) string {
	if existing == "" {
		return extra
	}
	return existing + "; " + extra
}
