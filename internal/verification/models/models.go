// Package models defines the verification request lifecycle types. A request
// is created at intake, mutated exclusively by the pipeline orchestrator, and
// frozen once it reaches a terminal status.
package models

import (
	"time"

	id "verigate/pkg/domain"
	dErrors "verigate/pkg/domain-errors"
)

// DocumentCategory is the closed set of document types the pipeline accepts.
type DocumentCategory string

const (
	CategoryPassport            DocumentCategory = "passport"
	CategoryNationalID          DocumentCategory = "national_id"
	CategoryDriversLicense      DocumentCategory = "drivers_license"
	CategoryResidencePermit     DocumentCategory = "residence_permit"
	CategoryProfessionalLicense DocumentCategory = "professional_license"
	CategoryCertification       DocumentCategory = "certification"
	CategoryDiploma             DocumentCategory = "diploma"
)

// IsValid checks whether the category is one of the supported enum values.
func (c DocumentCategory) IsValid() bool {
	switch c {
	case CategoryPassport, CategoryNationalID, CategoryDriversLicense,
		CategoryResidencePermit, CategoryProfessionalLicense,
		CategoryCertification, CategoryDiploma:
		return true
	}
	return false
}

// ParseDocumentCategory validates an externally supplied category string.
func ParseDocumentCategory(s string) (DocumentCategory, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "document category cannot be empty")
	}
	c := DocumentCategory(s)
	if !c.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown document category: "+s)
	}
	return c, nil
}

// RequestStatus tracks where a request is in the pipeline state machine.
type RequestStatus string

const (
	StatusPending            RequestStatus = "pending"
	StatusOCRScanning        RequestStatus = "ocr_scanning"
	StatusFaceMatching       RequestStatus = "face_matching"
	StatusCredentialChecking RequestStatus = "credential_checking"
	StatusMLScoring          RequestStatus = "ml_scoring"
	StatusVerified           RequestStatus = "verified"
	StatusFlagged            RequestStatus = "flagged"
	StatusRejected           RequestStatus = "rejected"
)

// IsTerminal reports whether the status ends the pipeline.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusVerified, StatusFlagged, StatusRejected:
		return true
	}
	return false
}

// Image is an opaque image payload handed to the provider adapters.
type Image struct {
	Filename string
	MIME     string
	Data     []byte
}

// IsZero reports whether no image was supplied.
func (i Image) IsZero() bool { return len(i.Data) == 0 }

// Subject identifies who is being verified.
type Subject struct {
	ID          id.SubjectID
	DisplayName string
	Contact     string
}

// Event is a single append-only audit record on the request. Every stage
// transition, early exit, and fallback produces one.
type Event struct {
	ID        id.EventID    `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Stage     RequestStatus `json:"stage"`
	Detail    string        `json:"detail"`
}

// VerificationRequest is the unit of work moving through the pipeline.
type VerificationRequest struct {
	ID       id.RequestID
	Subject  Subject
	Category DocumentCategory

	Document  Image
	LivePhoto *Image
	Claims    []ProfessionalClaim

	Status      RequestStatus
	CreatedAt   time.Time
	CompletedAt *time.Time

	Extraction  *ExtractionResult
	FaceMatch   *FaceMatchResult
	Credentials *CredentialCheckResult
	RiskScore   *MLRiskScore

	FinalVerdict *VerificationVerdict

	Events []Event
}

// NewVerificationRequest builds a pending request at intake time.
func NewVerificationRequest(subject Subject, category DocumentCategory, document Image, livePhoto *Image, claims []ProfessionalClaim) *VerificationRequest {
	return &VerificationRequest{
		ID:        id.NewRequestID(),
		Subject:   subject,
		Category:  category,
		Document:  document,
		LivePhoto: livePhoto,
		Claims:    claims,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// RecordEvent appends a timestamped event for the given stage.
func (r *VerificationRequest) RecordEvent(stage RequestStatus, detail string) {
	r.Events = append(r.Events, Event{
		ID:        id.NewEventID(),
		Timestamp: time.Now().UTC(),
		Stage:     stage,
		Detail:    detail,
	})
}

// HasLivePhoto reports whether the optional live photo was supplied.
func (r *VerificationRequest) HasLivePhoto() bool {
	return r.LivePhoto != nil && !r.LivePhoto.IsZero()
}

// HasClaims reports whether professional claims were attached.
func (r *VerificationRequest) HasClaims() bool {
	return len(r.Claims) > 0
}

// Complete marks the request terminal. It is the only place CompletedAt is
// set; callers must have set a terminal status and a final verdict first.
func (r *VerificationRequest) Complete() error {
	if !r.Status.IsTerminal() {
		return dErrors.New(dErrors.CodeInternal, "cannot complete request in non-terminal status "+string(r.Status))
	}
	if r.FinalVerdict == nil {
		return dErrors.New(dErrors.CodeInternal, "cannot complete request without a final verdict")
	}
	now := time.Now().UTC()
	r.CompletedAt = &now
	return nil
}

// IsCompleted reports whether the request has been finalized.
func (r *VerificationRequest) IsCompleted() bool { return r.CompletedAt != nil }
