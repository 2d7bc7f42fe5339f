package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"verigate/internal/verification/models"
)

const structuringSystemPrompt = `You convert raw OCR text from identity documents into structured JSON.
Respond with a single JSON object and nothing else, using these keys (omit keys you cannot determine):
full_name, date_of_birth, document_number, expiration_date, issuing_authority, address.
Dates must be formatted YYYY-MM-DD. Do not invent values that are not present in the text.`

// LLMStructurer uses a language model to parse raw OCR text into the
// structured field set. It sits behind the heuristic structurer only when an
// API key is configured.
type LLMStructurer struct {
	client anthropic.Client
	model  string

	// fallback handles responses the model mangles beyond JSON repair.
	fallback TextStructurer
}

// NewLLMStructurer builds the structurer. fallback may be nil, in which case
// unparseable model output is an error.
func NewLLMStructurer(apiKey, model string, fallback TextStructurer) *LLMStructurer {
	return &LLMStructurer{
		client:   anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:    model,
		fallback: fallback,
	}
}

func (s *LLMStructurer) Structure(ctx context.Context, rawText string, category models.DocumentCategory) (models.ExtractedFields, float64, error) {
	userPrompt := fmt.Sprintf("Document category hint: %s\n\nOCR text:\n%s", category, rawText)

	message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: structuringSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return models.ExtractedFields{}, 0, fmt.Errorf("anthropic structuring call: %w", err)
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		return models.ExtractedFields{}, 0, fmt.Errorf("no text content in structuring response")
	}

	fields, ok := parseStructuredResponse(responseText)
	if !ok {
		if s.fallback != nil {
			return s.fallback.Structure(ctx, rawText, category)
		}
		return models.ExtractedFields{}, 0, fmt.Errorf("unparseable structuring response")
	}

	filled := 0
	for _, v := range []string{
		fields.FullName, fields.DateOfBirth, fields.DocumentNumber,
		fields.ExpirationDate, fields.IssuingAuthority, fields.Address,
	} {
		if v != "" {
			filled++
		}
	}
	return fields, float64(filled) / 6.0, nil
}

// parseStructuredResponse pulls the first JSON object out of the model
// response, tolerating surrounding prose or code fences.
func parseStructuredResponse(text string) (models.ExtractedFields, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return models.ExtractedFields{}, false
	}

	var fields models.ExtractedFields
	if err := json.Unmarshal([]byte(text[start:end+1]), &fields); err != nil {
		return models.ExtractedFields{}, false
	}
	return fields, true
}
