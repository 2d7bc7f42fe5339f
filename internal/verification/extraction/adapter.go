// Package extraction implements the document text extraction adapter as an
// ordered chain of provider strategies. The first strategy returning a usable
// result wins; when every strategy fails the adapter degrades to a
// zero-confidence suspicious result instead of failing the pipeline.
package extraction

import (
	"context"
	"log/slog"
	"strings"

	"verigate/internal/verification/models"
)

// FlagNoExtraction marks results where no provider could read the document.
const FlagNoExtraction = "no_extraction_possible"

// Strategy is one extraction provider in the fallback chain.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, doc models.Image, category models.DocumentCategory) (*models.ExtractionResult, error)
}

// Adapter tries strategies in order and returns the first usable result.
type Adapter struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewAdapter builds the adapter. Strategy order is the fallback order.
func NewAdapter(logger *slog.Logger, strategies ...Strategy) *Adapter {
	return &Adapter{strategies: strategies, logger: logger}
}

// Extract walks the provider chain. It never returns an error for degraded
// providers; a double failure is encoded as a suspicious zero-confidence
// result that feeds forward into risk scoring.
func (a *Adapter) Extract(ctx context.Context, doc models.Image, category models.DocumentCategory) (*models.ExtractionResult, error) {
	var attempted []string
	for _, s := range a.strategies {
		attempted = append(attempted, s.Name())

		result, err := s.Extract(ctx, doc, category)
		if err != nil {
			if a.logger != nil {
				a.logger.WarnContext(ctx, "extraction provider failed, trying next",
					"provider", s.Name(),
					"error", err,
				)
			}
			continue
		}
		if usable(result) {
			return result, nil
		}
		if a.logger != nil {
			a.logger.DebugContext(ctx, "extraction provider returned no usable text",
				"provider", s.Name(),
			)
		}
	}

	return &models.ExtractionResult{
		Provider:     strings.Join(attempted, "+"),
		Confidence:   0,
		Authenticity: models.AuthenticitySuspicious,
		Flags:        []string{FlagNoExtraction},
	}, nil
}

// usable reports whether a strategy produced anything worth keeping: any
// structured field or raw text counts, an empty shell does not.
func usable(r *models.ExtractionResult) bool {
	if r == nil {
		return false
	}
	f := r.Fields
	return f.FullName != "" || f.DocumentNumber != "" || f.DateOfBirth != "" ||
		f.ExpirationDate != "" || f.IssuingAuthority != "" || f.Address != "" ||
		strings.TrimSpace(f.RawText) != ""
}
