package models

import "time"

// ClaimType classifies a professional claim.
type ClaimType string

const (
	ClaimTypeCertification ClaimType = "certification"
	ClaimTypeLicense       ClaimType = "license"
	ClaimTypeDegree        ClaimType = "degree"
	ClaimTypeMembership    ClaimType = "membership"
)

// IsValid checks whether the claim type is one of the supported enum values.
func (t ClaimType) IsValid() bool {
	switch t {
	case ClaimTypeCertification, ClaimTypeLicense, ClaimTypeDegree, ClaimTypeMembership:
		return true
	}
	return false
}

// ProfessionalClaim is a single credential assertion. Immutable once attached
// to a request.
type ProfessionalClaim struct {
	Type         ClaimType `json:"type"`
	Title        string    `json:"title"`
	Issuer       string    `json:"issuer"`
	Year         int       `json:"year"`
	ReferenceURL string    `json:"reference_url,omitempty"`
}

// AuthenticityClass is the extraction adapter's document authenticity call.
type AuthenticityClass string

const (
	AuthenticityLikelyAuthentic  AuthenticityClass = "likely_authentic"
	AuthenticitySuspicious       AuthenticityClass = "suspicious"
	AuthenticityLikelyFraudulent AuthenticityClass = "likely_fraudulent"
)

// ExtractedFields is the structured field set read off a document. Every
// field is independently optional; empty means the provider could not read it.
type ExtractedFields struct {
	FullName         string `json:"full_name,omitempty"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	DocumentNumber   string `json:"document_number,omitempty"`
	ExpirationDate   string `json:"expiration_date,omitempty"`
	IssuingAuthority string `json:"issuing_authority,omitempty"`
	Address          string `json:"address,omitempty"`
	RawText          string `json:"raw_text,omitempty"`
}

// ExtractionResult is produced once per request by the extraction adapter.
type ExtractionResult struct {
	Provider     string            `json:"provider"`
	Fields       ExtractedFields   `json:"fields"`
	Confidence   float64           `json:"confidence"`
	Authenticity AuthenticityClass `json:"authenticity"`
	Flags        []string          `json:"flags,omitempty"`
}

// FaceVerdict is the face comparison adapter's conclusion.
type FaceVerdict string

const (
	FaceMatch        FaceVerdict = "match"
	FaceNoMatch      FaceVerdict = "no_match"
	FaceInconclusive FaceVerdict = "inconclusive"
)

// FaceMatchResult is produced at most once per request, only when a live
// photo was supplied.
type FaceMatchResult struct {
	Provider           string      `json:"provider"`
	MatchConfidence    float64     `json:"match_confidence"`
	LivenessScore      float64     `json:"liveness_score"`
	DocumentFaceFound  bool        `json:"document_face_found"`
	LivePhotoFaceFound bool        `json:"live_photo_face_found"`
	Verdict            FaceVerdict `json:"verdict"`
	Flags              []string    `json:"flags,omitempty"`
}

// ClaimStatus is the per-claim assessment outcome.
type ClaimStatus string

const (
	ClaimVerified     ClaimStatus = "verified"
	ClaimUnverifiable ClaimStatus = "unverifiable"
	ClaimDisputed     ClaimStatus = "disputed"
	ClaimExpired      ClaimStatus = "expired"
)

// ClaimOutcome records the assessment of one professional claim.
type ClaimOutcome struct {
	Claim  ProfessionalClaim `json:"claim"`
	Status ClaimStatus       `json:"status"`
	Source string            `json:"source"`
	Notes  string            `json:"notes,omitempty"`
}

// CredentialCheckResult aggregates per-claim outcomes. An empty Outcomes list
// with zero credibility means "no claims supplied" and is a neutral signal.
type CredentialCheckResult struct {
	Outcomes    []ClaimOutcome `json:"outcomes"`
	Credibility int            `json:"credibility"`
}

// HasDisputed reports whether any claim came back disputed.
func (r *CredentialCheckResult) HasDisputed() bool {
	for _, o := range r.Outcomes {
		if o.Status == ClaimDisputed {
			return true
		}
	}
	return false
}

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Recommendation is the risk scorer's suggested disposition.
type Recommendation string

const (
	RecommendApprove      Recommendation = "approve"
	RecommendManualReview Recommendation = "manual_review"
	RecommendReject       Recommendation = "reject"
)

// RiskFactor is one weighted contributor to the final risk score.
type RiskFactor struct {
	Name         string  `json:"name"`
	Weight       float64 `json:"weight"`
	Contribution string  `json:"contribution"`
}

// MLRiskScore is the blended risk assessment for a request.
type MLRiskScore struct {
	Provider       string         `json:"provider"`
	Score          int            `json:"score"`
	Level          RiskLevel      `json:"level"`
	Factors        []RiskFactor   `json:"factors"`
	Recommendation Recommendation `json:"recommendation"`
}

// VerdictStatus is the terminal disposition of a request.
type VerdictStatus string

const (
	VerdictVerified              VerdictStatus = "verified"
	VerdictConditionallyVerified VerdictStatus = "conditionally_verified"
	VerdictRejected              VerdictStatus = "rejected"
)

// VerificationVerdict is the terminal output of the pipeline. Immutable once
// issued; the integrity hash is computed exactly once at issuance.
type VerificationVerdict struct {
	Status        VerdictStatus `json:"status"`
	Confidence    int           `json:"confidence"`
	Summary       string        `json:"summary"`
	Restrictions  []string      `json:"restrictions,omitempty"`
	ReviewNotes   []string      `json:"review_notes,omitempty"`
	IssuedAt      time.Time     `json:"issued_at"`
	IntegrityHash string        `json:"integrity_hash"`
}
