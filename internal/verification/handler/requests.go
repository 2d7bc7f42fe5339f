package handler

import (
	"encoding/base64"

	"verigate/internal/verification/models"
	"verigate/internal/verification/service"
	id "verigate/pkg/domain"
	dErrors "verigate/pkg/domain-errors"
)

// ImagePayload carries an image as base64 so the whole submission travels as
// one JSON document.
type ImagePayload struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

func (p ImagePayload) decode() (models.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return models.Image{}, dErrors.New(dErrors.CodeInvalidInput, "image data is not valid base64")
	}
	return models.Image{Filename: p.Filename, MIME: p.MIMEType, Data: raw}, nil
}

// ClaimPayload mirrors models.ProfessionalClaim on the wire.
type ClaimPayload struct {
	Type         string `json:"type"`
	Title        string `json:"title"`
	Issuer       string `json:"issuer"`
	Year         int    `json:"year"`
	ReferenceURL string `json:"reference_url,omitempty"`
}

// SubmitRequest is the intake payload for a new verification.
type SubmitRequest struct {
	SubjectID      string         `json:"subject_id"`
	SubjectName    string         `json:"subject_name"`
	SubjectContact string         `json:"subject_contact,omitempty"`
	Category       string         `json:"document_category"`
	Document       ImagePayload   `json:"document"`
	LivePhoto      *ImagePayload  `json:"live_photo,omitempty"`
	Claims         []ClaimPayload `json:"claims,omitempty"`
}

// Validate checks the payload before any decoding work happens. Deep
// invariants live on service.SubmitInput; this catches what the wire format
// can get wrong.
func (r SubmitRequest) Validate() error {
	if r.SubjectID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "subject_id is required")
	}
	if _, err := models.ParseDocumentCategory(r.Category); err != nil {
		return err
	}
	if r.Document.Data == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "document image is required")
	}
	if r.LivePhoto != nil && r.LivePhoto.Data == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "live_photo must carry image data when present")
	}
	for _, claim := range r.Claims {
		if !models.ClaimType(claim.Type).IsValid() {
			return dErrors.New(dErrors.CodeInvalidInput, "unknown claim type: "+claim.Type)
		}
	}
	return nil
}

// ToInput converts the validated payload into the service input.
func (r SubmitRequest) ToInput() (service.SubmitInput, error) {
	doc, err := r.Document.decode()
	if err != nil {
		return service.SubmitInput{}, err
	}

	in := service.SubmitInput{
		Subject: models.Subject{
			ID:          id.SubjectID(r.SubjectID),
			DisplayName: r.SubjectName,
			Contact:     r.SubjectContact,
		},
		Category: models.DocumentCategory(r.Category),
		Document: doc,
	}

	if r.LivePhoto != nil {
		live, err := r.LivePhoto.decode()
		if err != nil {
			return service.SubmitInput{}, err
		}
		in.LivePhoto = &live
	}

	for _, claim := range r.Claims {
		in.Claims = append(in.Claims, models.ProfessionalClaim{
			Type:         models.ClaimType(claim.Type),
			Title:        claim.Title,
			Issuer:       claim.Issuer,
			Year:         claim.Year,
			ReferenceURL: claim.ReferenceURL,
		})
	}
	return in, nil
}
