package extraction

import (
	"context"
	"regexp"
	"strings"

	"verigate/internal/verification/models"
)

// HeuristicStructurer parses labeled document text with pattern rules. It is
// the offline default behind the LLM structurer and good enough for the
// label:value layouts most ID documents OCR into.
type HeuristicStructurer struct{}

func NewHeuristicStructurer() *HeuristicStructurer {
	return &HeuristicStructurer{}
}

var (
	datePattern   = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4})\b`)
	docNumPattern = regexp.MustCompile(`\b[A-Z]{1,3}[- ]?\d{5,12}\b`)
)

// fieldLabels maps normalized label prefixes to extracted field setters.
var fieldLabels = map[string]func(*models.ExtractedFields, string){
	"name":              func(f *models.ExtractedFields, v string) { f.FullName = v },
	"full name":         func(f *models.ExtractedFields, v string) { f.FullName = v },
	"surname":           func(f *models.ExtractedFields, v string) { f.FullName = strings.TrimSpace(f.FullName + " " + v) },
	"dob":               func(f *models.ExtractedFields, v string) { f.DateOfBirth = v },
	"date of birth":     func(f *models.ExtractedFields, v string) { f.DateOfBirth = v },
	"birth date":        func(f *models.ExtractedFields, v string) { f.DateOfBirth = v },
	"document no":       func(f *models.ExtractedFields, v string) { f.DocumentNumber = v },
	"document number":   func(f *models.ExtractedFields, v string) { f.DocumentNumber = v },
	"license no":        func(f *models.ExtractedFields, v string) { f.DocumentNumber = v },
	"id number":         func(f *models.ExtractedFields, v string) { f.DocumentNumber = v },
	"expires":           func(f *models.ExtractedFields, v string) { f.ExpirationDate = v },
	"expiry":            func(f *models.ExtractedFields, v string) { f.ExpirationDate = v },
	"expiration date":   func(f *models.ExtractedFields, v string) { f.ExpirationDate = v },
	"issued by":         func(f *models.ExtractedFields, v string) { f.IssuingAuthority = v },
	"issuing authority": func(f *models.ExtractedFields, v string) { f.IssuingAuthority = v },
	"authority":         func(f *models.ExtractedFields, v string) { f.IssuingAuthority = v },
	"address":           func(f *models.ExtractedFields, v string) { f.Address = v },
}

// Structure parses label:value lines, then falls back to pattern sweeps for
// dates and document numbers the labels missed. Confidence is the filled
// proportion of the six structured fields.
func (h *HeuristicStructurer) Structure(_ context.Context, rawText string, _ models.DocumentCategory) (models.ExtractedFields, float64, error) {
	var fields models.ExtractedFields

	for _, line := range strings.Split(rawText, "\n") {
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		label = strings.ToLower(strings.TrimSpace(label))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if set, known := fieldLabels[label]; known {
			set(&fields, value)
		}
	}

	if fields.DateOfBirth == "" {
		if m := datePattern.FindString(rawText); m != "" {
			fields.DateOfBirth = m
		}
	}
	if fields.DocumentNumber == "" {
		if m := docNumPattern.FindString(rawText); m != "" {
			fields.DocumentNumber = m
		}
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
