package extraction

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"verigate/internal/verification/models"
)

// MockDocumentAIClient is a deterministic stand-in for the primary structured
// extraction service, used for local wiring and tests. Responses derive from
// a hash of the image bytes so byte-identical inputs give identical output.
type MockDocumentAIClient struct {
	Latency time.Duration

	// Scripted overrides; when nil the deterministic default applies.
	Result *models.ExtractionResult
	Err    error
}

func (c MockDocumentAIClient) Analyze(_ context.Context, doc models.Image, category models.DocumentCategory) (*models.ExtractionResult, error) {
	time.Sleep(c.Latency)
	if c.Err != nil {
		return nil, c.Err
	}
	if c.Result != nil {
		return c.Result, nil
	}

	seed := imageSeed(doc)
	return &models.ExtractionResult{
		Provider: "document_ai",
		Fields: models.ExtractedFields{
			FullName:         "Sample Holder",
			DateOfBirth:      "1988-06-14",
			DocumentNumber:   fmt.Sprintf("D-%08d", seed%100000000),
			ExpirationDate:   "2030-01-01",
			IssuingAuthority: "Department of Licensing",
			RawText:          fmt.Sprintf("category=%s seed=%d", category, seed),
		},
		Confidence:   0.80 + float64(seed%20)/100.0,
		Authenticity: models.AuthenticityLikelyAuthentic,
	}, nil
}

// MockVisionClient is a deterministic stand-in for the vision-only OCR
// service.
type MockVisionClient struct {
	Latency time.Duration

	RawText string
	Err     error
}

func (c MockVisionClient) DetectText(_ context.Context, img models.Image) (string, error) {
	time.Sleep(c.Latency)
	if c.Err != nil {
		return "", c.Err
	}
	if c.RawText != "" {
		return c.RawText, nil
	}
	seed := imageSeed(img)
	return fmt.Sprintf("Name: Sample Holder\nDocument No: V-%07d\nDOB: 1988-06-14", seed%10000000), nil
}

func imageSeed(img models.Image) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(img.Data)
	return h.Sum64()
}
