package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verigate/internal/platform/config"
	"verigate/internal/verification/models"
	"verigate/internal/verification/ports"
	"verigate/internal/verification/verdict"
	dErrors "verigate/pkg/domain-errors"
)

type stubExtractor struct {
	res   *models.ExtractionResult
	err   error
	calls int
}

func (s *stubExtractor) Extract(_ context.Context, _ models.Image, _ models.DocumentCategory) (*models.ExtractionResult, error) {
	s.calls++
	return s.res, s.err
}

type stubComparer struct {
	res   *models.FaceMatchResult
	err   error
	calls int
}

func (s *stubComparer) Compare(_ context.Context, _, _ models.Image) (*models.FaceMatchResult, error) {
	s.calls++
	return s.res, s.err
}

type stubChecker struct {
	res   *models.CredentialCheckResult
	err   error
	calls int
}

func (s *stubChecker) Check(_ context.Context, _ []models.ProfessionalClaim, _ string) (*models.CredentialCheckResult, error) {
	s.calls++
	return s.res, s.err
}

type stubScorer struct {
	res   *models.MLRiskScore
	err   error
	panic bool
	calls int
}

func (s *stubScorer) Score(_ context.Context, _ ports.RiskInput) (*models.MLRiskScore, error) {
	s.calls++
	if s.panic {
		panic("scorer exploded")
	}
	return s.res, s.err
}

func cleanExtraction() *models.ExtractionResult {
	return &models.ExtractionResult{
		Provider:     "documentai",
		Fields:       models.ExtractedFields{FullName: "Dana Cruz", DocumentNumber: "AB-1234567"},
		Confidence:   0.93,
		Authenticity: models.AuthenticityLikelyAuthentic,
	}
}

func matchingFaces() *models.FaceMatchResult {
	return &models.FaceMatchResult{
		Provider:           "facedetect",
		MatchConfidence:    0.91,
		LivenessScore:      0.84,
		DocumentFaceFound:  true,
		LivePhotoFaceFound: true,
		Verdict:            models.FaceMatch,
	}
}

func solidCredentials() *models.CredentialCheckResult {
	return &models.CredentialCheckResult{
		Outcomes: []models.ClaimOutcome{
			{Claim: models.ProfessionalClaim{Type: models.ClaimTypeLicense}, Status: models.ClaimVerified, Source: "registry"},
		},
		Credibility: 100,
	}
}

func lowRisk() *models.MLRiskScore {
	return &models.MLRiskScore{
		Provider:       "heuristic",
		Score:          5,
		Level:          models.RiskLow,
		Recommendation: models.RecommendApprove,
	}
}

func newTestOrchestrator(ex ports.DocumentExtractor, fc ports.FaceComparer, cc ports.CredentialChecker, rs ports.RiskScorer) *Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer := verdict.NewIssuer(config.DefaultScoring())
	return NewOrchestrator(ex, fc, cc, rs, issuer, logger, nil)
}

func fullRequest() *models.VerificationRequest {
	live := models.Image{Filename: "selfie.jpg", MIME: "image/jpeg", Data: []byte("live")}
	return models.NewVerificationRequest(
		models.Subject{ID: "sub_1", DisplayName: "Dana Cruz"},
		models.CategoryProfessionalLicense,
		models.Image{Filename: "license.png", MIME: "image/png", Data: []byte("doc")},
		&live,
		[]models.ProfessionalClaim{{Type: models.ClaimTypeLicense, Title: "Registered Nurse", Issuer: "State Board"}},
	)
}

func documentOnlyRequest() *models.VerificationRequest {
	return models.NewVerificationRequest(
		models.Subject{ID: "sub_2", DisplayName: "Iris Vale"},
		models.CategoryPassport,
		models.Image{Filename: "passport.png", MIME: "image/png", Data: []byte("doc")},
		nil,
		nil,
	)
}

func eventCount(req *models.VerificationRequest, stage models.RequestStatus) int {
	n := 0
	for _, e := range req.Events {
		if e.Stage == stage {
			n++
		}
	}
	return n
}

func TestRunFullPipelineVerified(t *testing.T) {
	ex := &stubExtractor{res: cleanExtraction()}
	fc := &stubComparer{res: matchingFaces()}
	cc := &stubChecker{res: solidCredentials()}
	rs := &stubScorer{res: lowRisk()}

	req := fullRequest()
	err := newTestOrchestrator(ex, fc, cc, rs).Run(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, req.Status)
	assert.True(t, req.IsCompleted())
	require.NotNil(t, req.FinalVerdict)
	assert.Equal(t, models.VerdictVerified, req.FinalVerdict.Status)
	assert.Len(t, req.FinalVerdict.IntegrityHash, 64)

	assert.Equal(t, 1, ex.calls)
	assert.Equal(t, 1, fc.calls)
	assert.Equal(t, 1, cc.calls)
	assert.Equal(t, 1, rs.calls)

	// One event per stage plus the terminal verdict event.
	require.Len(t, req.Events, 5)
	assert.Equal(t, 1, eventCount(req, models.StatusOCRScanning))
	assert.Equal(t, 1, eventCount(req, models.StatusFaceMatching))
	assert.Equal(t, 1, eventCount(req, models.StatusCredentialChecking))
	assert.Equal(t, 1, eventCount(req, models.StatusMLScoring))
	assert.Equal(t, 1, eventCount(req, models.StatusVerified))
}

func TestRunFraudulentDocumentShortCircuits(t *testing.T) {
	fraud := cleanExtraction()
	fraud.Authenticity = models.AuthenticityLikelyFraudulent
	fraud.Confidence = 0.88

	ex := &stubExtractor{res: fraud}
	fc := &stubComparer{res: matchingFaces()}
	cc := &stubChecker{res: solidCredentials()}
	rs := &stubScorer{res: lowRisk()}

	req := fullRequest()
	err := newTestOrchestrator(ex, fc, cc, rs).Run(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, req.Status)
	assert.True(t, req.IsCompleted())
	assert.Equal(t, models.VerdictRejected, req.FinalVerdict.Status)

	// No stage after extraction may run.
	assert.Equal(t, 0, fc.calls)
	assert.Equal(t, 0, cc.calls)
	assert.Equal(t, 0, rs.calls)
	assert.Nil(t, req.FaceMatch)
	assert.Nil(t, req.Credentials)
	assert.Nil(t, req.RiskScore)

	require.Len(t, req.Events, 2)
	assert.Equal(t, models.StatusOCRScanning, req.Events[0].Stage)
	assert.Equal(t, models.StatusRejected, req.Events[1].Stage)
}

func TestRunFaceNoMatchShortCircuits(t *testing.T) {
	noMatch := matchingFaces()
	noMatch.MatchConfidence = 0.12
	noMatch.Verdict = models.FaceNoMatch

	ex := &stubExtractor{res: cleanExtraction()}
	fc := &stubComparer{res: noMatch}
	cc := &stubChecker{res: solidCredentials()}
	rs := &stubScorer{res: lowRisk()}

	req := fullRequest()
	err := newTestOrchestrator(ex, fc, cc, rs).Run(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, req.Status)
	assert.Equal(t, models.VerdictRejected, req.FinalVerdict.Status)

	assert.Equal(t, 0, cc.calls)
	assert.Equal(t, 0, rs.calls)
	assert.Nil(t, req.Credentials)
	assert.Nil(t, req.RiskScore)
	assert.Equal(t, 0, eventCount(req, models.StatusCredentialChecking))
	assert.Equal(t, 0, eventCount(req, models.StatusMLScoring))
}

func TestRunSkipsOptionalStages(t *testing.T) {
	ex := &stubExtractor{res: cleanExtraction()}
	fc := &stubComparer{res: matchingFaces()}
	cc := &stubChecker{res: solidCredentials()}
	rs := &stubScorer{res: lowRisk()}

	req := documentOnlyRequest()
	err := newTestOrchestrator(ex, fc, cc, rs).Run(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, req.Status)

	assert.Equal(t, 0, fc.calls)
	assert.Equal(t, 0, cc.calls)
	assert.Equal(t, 1, rs.calls)
	assert.Nil(t, req.FaceMatch)
	assert.Nil(t, req.Credentials)
	require.NotNil(t, req.RiskScore)

	// Extraction, scoring, terminal.
	require.Len(t, req.Events, 3)
}

func TestRunRecommendationMapping(t *testing.T) {
	tests := []struct {
		name           string
		recommendation models.Recommendation
		want           models.RequestStatus
		wantVerdict    models.VerdictStatus
	}{
		{"approve verifies", models.RecommendApprove, models.StatusVerified, models.VerdictVerified},
		{"manual review flags", models.RecommendManualReview, models.StatusFlagged, models.VerdictConditionallyVerified},
		{"reject rejects", models.RecommendReject, models.StatusRejected, models.VerdictRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := lowRisk()
			score.Recommendation = tt.recommendation

			ex := &stubExtractor{res: cleanExtraction()}
			rs := &stubScorer{res: score}

			req := documentOnlyRequest()
			err := newTestOrchestrator(ex, &stubComparer{}, &stubChecker{}, rs).Run(context.Background(), req)

			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Status)
			assert.Equal(t, tt.wantVerdict, req.FinalVerdict.Status)
		})
	}
}

func TestRunStageErrorFlagsRequest(t *testing.T) {
	ex := &stubExtractor{res: cleanExtraction()}
	rs := &stubScorer{err: errors.New("model endpoint unreachable")}

	req := documentOnlyRequest()
	err := newTestOrchestrator(ex, &stubComparer{}, &stubChecker{}, rs).Run(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.StatusFlagged, req.Status)
	assert.True(t, req.IsCompleted())
	require.NotNil(t, req.FinalVerdict)
	assert.Equal(t, models.VerdictConditionallyVerified, req.FinalVerdict.Status)
	assert.Equal(t, 0, req.FinalVerdict.Confidence)
	assert.Equal(t, 1, eventCount(req, models.StatusFlagged))
}

func TestRunPanicFlagsRequest(t *testing.T) {
	ex := &stubExtractor{res: cleanExtraction()}
	rs := &stubScorer{panic: true}

	req := documentOnlyRequest()
	err := newTestOrchestrator(ex, &stubComparer{}, &stubChecker{}, rs).Run(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.StatusFlagged, req.Status)
	assert.True(t, req.IsCompleted())
	require.NotNil(t, req.FinalVerdict)
	assert.Equal(t, models.VerdictConditionallyVerified, req.FinalVerdict.Status)
}

func TestRunIdenticalInputsYieldIdenticalVerdicts(t *testing.T) {
	o := newTestOrchestrator(
		&stubExtractor{res: cleanExtraction()},
		&stubComparer{res: matchingFaces()},
		&stubChecker{res: solidCredentials()},
		&stubScorer{res: lowRisk()})

	first := fullRequest()
	second := fullRequest()
	require.NoError(t, o.Run(context.Background(), first))
	require.NoError(t, o.Run(context.Background(), second))

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.FinalVerdict.Status, second.FinalVerdict.Status)
	assert.Equal(t, first.FinalVerdict.Confidence, second.FinalVerdict.Confidence)

	require.Len(t, second.Events, len(first.Events))
	for i := range first.Events {
		assert.Equal(t, first.Events[i].Stage, second.Events[i].Stage)
	}

	// The hash incorporates issuance time, so it must differ across runs.
	assert.NotEqual(t, first.FinalVerdict.IntegrityHash, second.FinalVerdict.IntegrityHash)
}

func TestRunRejectsFinalizedRequest(t *testing.T) {
	ex := &stubExtractor{res: cleanExtraction()}
	rs := &stubScorer{res: lowRisk()}
	o := newTestOrchestrator(ex, &stubComparer{}, &stubChecker{}, rs)

	req := documentOnlyRequest()
	require.NoError(t, o.Run(context.Background(), req))

	err := o.Run(context.Background(), req)
	require.Error(t, err)
	assert.True(t, dErrors.IsCode(err, dErrors.CodeConflict))
	assert.Equal(t, 1, ex.calls)
}
