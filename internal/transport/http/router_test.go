package httptransport

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verigate/internal/audit"
	jwttoken "verigate/internal/jwt_token"
	"verigate/internal/platform/config"
	"verigate/internal/verification/credentials"
	"verigate/internal/verification/extraction"
	"verigate/internal/verification/facematch"
	"verigate/internal/verification/handler"
	"verigate/internal/verification/pipeline"
	"verigate/internal/verification/risk"
	"verigate/internal/verification/service"
	"verigate/internal/verification/store"
	"verigate/internal/verification/verdict"
	"verigate/pkg/testutil"
)

// newTestRouter assembles the full stack with in-memory stores and mock
// provider clients, the same wiring main uses without external services.
func newTestRouter(t *testing.T) (http.Handler, *jwttoken.JWTService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scoring := config.DefaultScoring()

	orch := pipeline.NewOrchestrator(
		extraction.NewAdapter(logger,
			extraction.NewDocumentAIStrategy(&extraction.MockDocumentAIClient{}),
			extraction.NewVisionStrategy(&extraction.MockVisionClient{}, extraction.NewHeuristicStructurer()),
		),
		facematch.NewAdapter(&facematch.MockDetectionClient{}, facematch.Thresholds{
			Match:   scoring.FaceMatchThreshold,
			NoMatch: scoring.FaceNoMatchThreshold,
		}, logger),
		credentials.NewAdapter(&credentials.MockPlausibilityClient{}, logger),
		risk.NewScorer(scoring, &risk.MockMLClient{}, logger),
		verdict.NewIssuer(scoring),
		logger, nil)

	publisher := audit.NewPublisher(audit.NewInMemoryStore(), 64, logger)
	svc := service.New(store.NewInMemoryRequestStore(), store.NewInMemoryVerdictCache(), orch, publisher, logger)

	jwtService := jwttoken.NewJWTService("router-test-key", "verigate")
	verifications := handler.New(svc, logger, jwttoken.NewMiddlewareAdapter(jwtService))
	return NewRouter(verifications, nil), jwtService
}

func bearerToken(t *testing.T, jwtService *jwttoken.JWTService) string {
	t.Helper()
	token, err := jwtService.GenerateAccessToken("caller_1", "portal", time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func submitBody() map[string]any {
	return map[string]any{
		"subject_id":        "sub_1",
		"subject_name":      "Dana Cruz",
		"document_category": "passport",
		"document": map[string]any{
			"filename":  "passport.png",
			"mime_type": "image/png",
			"data":      base64.StdEncoding.EncodeToString([]byte("document-bytes")),
		},
	}
}

func TestRouterHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestRouterMetricsExposed(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouterRejectsMissingToken(t *testing.T) {
	router, _ := newTestRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/verifications", submitBody())
	rr := testutil.DoRequest(router, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouterRejectsForgedToken(t *testing.T) {
	router, _ := newTestRouter(t)
	other := jwttoken.NewJWTService("some-other-key", "verigate")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/verifications", submitBody())
	req.Header.Set("Authorization", bearerToken(t, other))
	rr := testutil.DoRequest(router, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouterSubmitAndFetchFlow(t *testing.T) {
	router, jwtService := newTestRouter(t)
	auth := bearerToken(t, jwtService)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/verifications", submitBody())
	req.Header.Set("Authorization", auth)
	rr := testutil.DoRequest(router, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	id := created["id"].(string)
	assert.NotEmpty(t, id)
	assert.Contains(t, []string{"verified", "flagged", "rejected"}, created["status"])

	get := testutil.NewRequest(t, http.MethodGet, "/api/v1/verifications/"+id)
	get.Header.Set("Authorization", auth)
	rr = testutil.DoRequest(router, get)
	require.Equal(t, http.StatusOK, rr.Code)

	verdictReq := testutil.NewRequest(t, http.MethodGet, "/api/v1/verifications/"+id+"/verdict")
	verdictReq.Header.Set("Authorization", auth)
	rr = testutil.DoRequest(router, verdictReq)
	require.Equal(t, http.StatusOK, rr.Code)
	var v map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	assert.Len(t, v["integrity_hash"], 64)

	eventsReq := testutil.NewRequest(t, http.MethodGet, "/api/v1/verifications/"+id+"/events")
	eventsReq.Header.Set("Authorization", auth)
	rr = testutil.DoRequest(router, eventsReq)
	require.Equal(t, http.StatusOK, rr.Code)
	var events map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &events))
	assert.NotEmpty(t, events["events"])
}

func TestRouterRejectsNonJSONContentType(t *testing.T) {
	router, jwtService := newTestRouter(t)

	req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/v1/verifications", "{}")
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", bearerToken(t, jwtService))
	rr := testutil.DoRequest(router, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouterUnknownRouteIs404(t *testing.T) {
	router, jwtService := newTestRouter(t)

	req := testutil.NewRequest(t, http.MethodGet, "/api/v1/nope")
	req.Header.Set("Authorization", bearerToken(t, jwtService))
	rr := testutil.DoRequest(router, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
