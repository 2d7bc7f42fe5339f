package handler

import (
	"time"

	"verigate/internal/verification/models"
)

// VerdictResponse is the wire form of an issued verdict.
type VerdictResponse struct {
	Status        string    `json:"status"`
	Confidence    int       `json:"confidence"`
	Summary       string    `json:"summary"`
	Restrictions  []string  `json:"restrictions,omitempty"`
	ReviewNotes   []string  `json:"review_notes,omitempty"`
	IssuedAt      time.Time `json:"issued_at"`
	IntegrityHash string    `json:"integrity_hash"`
}

func newVerdictResponse(v *models.VerificationVerdict) VerdictResponse {
	return VerdictResponse{
		Status:        string(v.Status),
		Confidence:    v.Confidence,
		Summary:       v.Summary,
		Restrictions:  v.Restrictions,
		ReviewNotes:   v.ReviewNotes,
		IssuedAt:      v.IssuedAt,
		IntegrityHash: v.IntegrityHash,
	}
}

// RiskResponse summarizes the risk assessment without the raw feature vector.
type RiskResponse struct {
	Provider       string `json:"provider"`
	Score          int    `json:"score"`
	Level          string `json:"level"`
	Recommendation string `json:"recommendation"`
}

// VerificationResponse is the wire form of a request's current state.
type VerificationResponse struct {
	ID               string           `json:"id"`
	SubjectID        string           `json:"subject_id"`
	DocumentCategory string           `json:"document_category"`
	Status           string           `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	Risk             *RiskResponse    `json:"risk,omitempty"`
	Verdict          *VerdictResponse `json:"verdict,omitempty"`
}

func newVerificationResponse(req *models.VerificationRequest) VerificationResponse {
	resp := VerificationResponse{
		ID:               req.ID.String(),
		SubjectID:        req.Subject.ID.String(),
		DocumentCategory: string(req.Category),
		Status:           string(req.Status),
		CreatedAt:        req.CreatedAt,
		CompletedAt:      req.CompletedAt,
	}
	if req.RiskScore != nil {
		resp.Risk = &RiskResponse{
			Provider:       req.RiskScore.Provider,
			Score:          req.RiskScore.Score,
			Level:          string(req.RiskScore.Level),
			Recommendation: string(req.RiskScore.Recommendation),
		}
	}
	if req.FinalVerdict != nil {
		v := newVerdictResponse(req.FinalVerdict)
		resp.Verdict = &v
	}
	return resp
}

// EventsResponse is the wire form of a request's event log.
type EventsResponse struct {
	RequestID string         `json:"request_id"`
	Events    []models.Event `json:"events"`
}

// ListResponse is the wire form of a subject's verification history.
type ListResponse struct {
	SubjectID     string                 `json:"subject_id"`
	Verifications []VerificationResponse `json:"verifications"`
}

func newListResponse(subjectID string, reqs []*models.VerificationRequest) ListResponse {
	resp := ListResponse{SubjectID: subjectID, Verifications: []VerificationResponse{}}
	for _, req := range reqs {
		resp.Verifications = append(resp.Verifications, newVerificationResponse(req))
	}
	return resp
}
