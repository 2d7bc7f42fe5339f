package extraction

import (
	"context"
	"strings"

	"verigate/internal/verification/models"
)

// DocumentAIClient is the primary structured extraction service boundary: it
// accepts an image plus a category hint and returns fields, confidence, and
// an authenticity classification in one call.
type DocumentAIClient interface {
	Analyze(ctx context.Context, doc models.Image, category models.DocumentCategory) (*models.ExtractionResult, error)
}

// VisionClient is the secondary vision-only service boundary: raw text, no
// structure, no authenticity opinion.
type VisionClient interface {
	DetectText(ctx context.Context, img models.Image) (string, error)
}

// TextStructurer parses raw document text into the structured field set.
type TextStructurer interface {
	Structure(ctx context.Context, rawText string, category models.DocumentCategory) (models.ExtractedFields, float64, error)
}

// DocumentAIStrategy wraps the primary structured extraction provider.
type DocumentAIStrategy struct {
	client DocumentAIClient
}

func NewDocumentAIStrategy(client DocumentAIClient) *DocumentAIStrategy {
	return &DocumentAIStrategy{client: client}
}

func (s *DocumentAIStrategy) Name() string { return "document_ai" }

func (s *DocumentAIStrategy) Extract(ctx context.Context, doc models.Image, category models.DocumentCategory) (*models.ExtractionResult, error) {
	result, err := s.client.Analyze(ctx, doc, category)
	if err != nil {
		return nil, err
	}
	if result != nil && result.Provider == "" {
		result.Provider = s.Name()
	}
	return result, nil
}

// VisionStrategy chains the vision-only provider with a generic text
// structuring step so the output matches the primary provider's field set.
type VisionStrategy struct {
	client     VisionClient
	structurer TextStructurer
}

func NewVisionStrategy(client VisionClient, structurer TextStructurer) *VisionStrategy {
	return &VisionStrategy{client: client, structurer: structurer}
}

func (s *VisionStrategy) Name() string { return "vision_ocr" }

func (s *VisionStrategy) Extract(ctx context.Context, doc models.Image, category models.DocumentCategory) (*models.ExtractionResult, error) {
	rawText, err := s.client.DetectText(ctx, doc)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rawText) == "" {
		// Nothing to structure; let the chain fall through.
		return nil, nil
	}

	fields, confidence, err := s.structurer.Structure(ctx, rawText, category)
	if err != nil {
		return nil, err
	}
	fields.RawText = rawText

	// The vision path carries no authenticity signal of its own, so the
	// classification is conservative: a thin read is treated as suspicious.
	authenticity := models.AuthenticityLikelyAuthentic
	flags := []string{"secondary_provider_used"}
	if confidence < 0.5 {
		authenticity = models.AuthenticitySuspicious
		flags = append(flags, "low_structuring_confidence")
	}

	return &models.ExtractionResult{
		Provider:     s.Name() + "+structurer",
		Fields:       fields,
		Confidence:   confidence,
		Authenticity: authenticity,
		Flags:        flags,
	}, nil
}
