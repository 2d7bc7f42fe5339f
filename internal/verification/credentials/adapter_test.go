package credentials

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verigate/internal/verification/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
}

func TestCheckEmptyClaimsIsNeutral(t *testing.T) {
	adapter := NewAdapter(MockPlausibilityClient{}, testLogger(), WithClock(fixedClock()))

	result, err := adapter.Check(context.Background(), nil, "Alex Doe")
	require.NoError(t, err)
	assert.Empty(t, result.Outcomes)
	assert.Zero(t, result.Credibility)
}

func TestCheckProportionalCredibility(t *testing.T) {
	adapter := NewAdapter(MockPlausibilityClient{}, testLogger(), WithClock(fixedClock()))

	claims := []models.ProfessionalClaim{
		{Type: models.ClaimTypeLicense, Title: "RN License", Issuer: "State Nursing Board", Year: 2020},
		{Type: models.ClaimTypeDegree, Title: "BSc", Issuer: "Unknown Institute", Year: 2015},
		{Type: models.ClaimTypeCertification, Title: "First Aid", Issuer: "Red Cross", Year: 2022},
		{Type: models.ClaimTypeDegree, Title: "PhD", Issuer: "Diploma Mill University", Year: 2018},
	}

	result, err := adapter.Check(context.Background(), claims, "Alex Doe")
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 4)

	assert.Equal(t, models.ClaimVerified, result.Outcomes[0].Status)
	assert.Equal(t, models.ClaimUnverifiable, result.Outcomes[1].Status)
	assert.Equal(t, models.ClaimVerified, result.Outcomes[2].Status)
	assert.Equal(t, models.ClaimDisputed, result.Outcomes[3].Status)

	// 2 of 4 verified, scaled to 0-100.
	assert.Equal(t, 50, result.Credibility)
	assert.True(t, result.HasDisputed())
}

func TestCheckInternalPlausibility(t *testing.T) {
	adapter := NewAdapter(MockPlausibilityClient{}, testLogger(), WithClock(fixedClock()))

	t.Run("future-dated claim is disputed without external call", func(t *testing.T) {
		result, err := adapter.Check(context.Background(), []models.ProfessionalClaim{
			{Type: models.ClaimTypeLicense, Title: "License", Issuer: "Board", Year: 2030},
		}, "Alex Doe")
		require.NoError(t, err)
		assert.Equal(t, models.ClaimDisputed, result.Outcomes[0].Status)
		assert.Equal(t, "internal_plausibility", result.Outcomes[0].Source)
	})

	t.Run("missing issuer is unverifiable", func(t *testing.T) {
		result, err := adapter.Check(context.Background(), []models.ProfessionalClaim{
			{Type: models.ClaimTypeDegree, Title: "BSc", Year: 2010},
		}, "Alex Doe")
		require.NoError(t, err)
		assert.Equal(t, models.ClaimUnverifiable, result.Outcomes[0].Status)
	})

	t.Run("ancient claim is disputed", func(t *testing.T) {
		result, err := adapter.Check(context.Background(), []models.ProfessionalClaim{
			{Type: models.ClaimTypeDegree, Title: "BSc", Issuer: "Old College", Year: 1900},
		}, "Alex Doe")
		require.NoError(t, err)
		assert.Equal(t, models.ClaimDisputed, result.Outcomes[0].Status)
	})
}

func TestCheckServiceOutageDegrades(t *testing.T) {
	adapter := NewAdapter(MockPlausibilityClient{Err: errors.New("timeout")}, testLogger(), WithClock(fixedClock()))

	result, err := adapter.Check(context.Background(), []models.ProfessionalClaim{
		{Type: models.ClaimTypeLicense, Title: "License", Issuer: "Board", Year: 2020},
	}, "Alex Doe")
	require.NoError(t, err, "assessor outage must not fail the pipeline")
	assert.Equal(t, models.ClaimUnverifiable, result.Outcomes[0].Status)
	assert.Zero(t, result.Credibility)
}

type countingFailClient struct{ calls *int }

func (c countingFailClient) Assess(context.Context, models.ProfessionalClaim) (models.ClaimStatus, string, error) {
	*c.calls++
	return "", "", errors.New("timeout")
}

func TestCheckBreakerShortCircuitsAfterRepeatedOutages(t *testing.T) {
	calls := 0
	adapter := NewAdapter(countingFailClient{calls: &calls}, testLogger(), WithClock(fixedClock()))

	claims := make([]models.ProfessionalClaim, 8)
	for i := range claims {
		claims[i] = models.ProfessionalClaim{Type: models.ClaimTypeLicense, Title: "License", Issuer: "Board", Year: 2020}
	}

	result, err := adapter.Check(context.Background(), claims, "Alex Doe")
	require.NoError(t, err)

	// The circuit opens after five consecutive failures; the remaining claims
	// degrade without hitting the client.
	assert.Equal(t, 5, calls)
	for _, outcome := range result.Outcomes {
		assert.Equal(t, models.ClaimUnverifiable, outcome.Status)
	}
}

func TestCheckMissingExtractedNameDowngrades(t *testing.T) {
	adapter := NewAdapter(MockPlausibilityClient{}, testLogger(), WithClock(fixedClock()))

	result, err := adapter.Check(context.Background(), []models.ProfessionalClaim{
		{Type: models.ClaimTypeLicense, Title: "License", Issuer: "Board", Year: 2020},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimUnverifiable, result.Outcomes[0].Status)
	assert.Contains(t, result.Outcomes[0].Notes, "no extracted name")
}
