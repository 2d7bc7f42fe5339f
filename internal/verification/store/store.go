// Package store persists verification requests and caches issued verdicts.
// Stores are interface-driven so the in-memory implementation used in tests
// and the Postgres implementation used in production stay interchangeable.
package store

import (
	"context"

	"verigate/internal/verification/models"
	id "verigate/pkg/domain"
	dErrors "verigate/pkg/domain-errors"
)

// ErrNotFound keeps store-specific 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "verification request not found")

// RequestStore persists verification requests across their whole lifecycle.
// Save is an upsert: the pipeline saves the same request before and after it
// runs.
type RequestStore interface {
	Save(ctx context.Context, req *models.VerificationRequest) error
	FindByID(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, error)
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]*models.VerificationRequest, error)
}

// VerdictCache is a read-through cache for issued verdicts. A miss returns
// ErrNotFound; implementations must never fabricate a verdict.
type VerdictCache interface {
	Put(ctx context.Context, requestID id.RequestID, v *models.VerificationVerdict) error
	Get(ctx context.Context, requestID id.RequestID) (*models.VerificationVerdict, error)
}
