package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"verigate/internal/verification/models"
	id "verigate/pkg/domain"
	"verigate/pkg/platform/tx"
)

// PostgresRequestStore persists requests as a JSONB document alongside the
// columns queries filter on. The document is the source of truth; the columns
// exist for indexing only.
type PostgresRequestStore struct {
	db *sql.DB
}

func NewPostgresRequestStore(db *sql.DB) *PostgresRequestStore {
	return &PostgresRequestStore{db: db}
}

// querier abstracts *sql.DB and *sql.Tx so writes join a caller-scoped
// transaction when one is present in the context.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresRequestStore) conn(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

const requestSchema = `
CREATE TABLE IF NOT EXISTS verification_requests (
	id           TEXT PRIMARY KEY,
	subject_id   TEXT NOT NULL,
	status       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ,
	payload      JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_verification_requests_subject
	ON verification_requests (subject_id, created_at);
`

// EnsureSchema creates the requests table when it does not exist yet. Called
// once at startup.
func (s *PostgresRequestStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, requestSchema); err != nil {
		return fmt.Errorf("ensure verification_requests schema: %w", err)
	}
	return nil
}

func (s *PostgresRequestStore) Save(ctx context.Context, req *models.VerificationRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request %s: %w", req.ID, err)
	}

	_, err = s.conn(ctx).ExecContext(ctx, `
		INSERT INTO verification_requests (id, subject_id, status, created_at, completed_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    completed_at = EXCLUDED.completed_at,
		    payload = EXCLUDED.payload`,
		req.ID.String(), req.Subject.ID.String(), string(req.Status),
		req.CreatedAt, req.CompletedAt, payload)
	if err != nil {
		return fmt.Errorf("save request %s: %w", req.ID, err)
	}
	return nil
}

func (s *PostgresRequestStore) FindByID(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, error) {
	var payload []byte
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT payload FROM verification_requests WHERE id = $1`,
		requestID.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find request %s: %w", requestID, err)
	}
	return unmarshalRequest(payload)
}

func (s *PostgresRequestStore) ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]*models.VerificationRequest, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT payload FROM verification_requests
		WHERE subject_id = $1
		ORDER BY created_at`,
		subjectID.String())
	if err != nil {
		return nil, fmt.Errorf("list requests for subject %s: %w", subjectID, err)
	}
	defer rows.Close()

	var out []*models.VerificationRequest
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan request payload: %w", err)
		}
		req, err := unmarshalRequest(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate request rows: %w", err)
	}
	return out, nil
}

func unmarshalRequest(payload []byte) (*models.VerificationRequest, error) {
	var req models.VerificationRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("unmarshal request payload: %w", err)
	}
	return &req, nil
}
