package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
	"github.com/resumeflow/resumeflow-backend/pkg/database"
)

const maxListLimit = 500

// AuditRepository handles resume_parse_audit persistence.
// Only run metadata is stored, never document text or parsed records.
type AuditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts an audit entry
func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO resume_parse_audit (
			id, job_id, file_name, strategy, final_stage, error_kind, error_message,
			text_length, warnings, duration_ms, requested_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		entry.ID, entry.JobID, entry.FileName, entry.Strategy, entry.FinalStage,
		entry.ErrorKind, entry.ErrorMessage, entry.TextLength, entry.Warnings,
		entry.DurationMS, entry.RequestedBy,
	).Scan(&entry.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// ListRecent returns the newest entries first, optionally filtered by error kind
func (r *AuditRepository) ListRecent(ctx context.Context, errorKind string, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	entries := []*domain.AuditEntry{}
	var err error
	if errorKind != "" {
		err = r.db.SelectContext(ctx, &entries, `
			SELECT * FROM resume_parse_audit
			WHERE error_kind = $1
			ORDER BY created_at DESC
			LIMIT $2`, errorKind, limit)
	} else {
		err = r.db.SelectContext(ctx, &entries, `
			SELECT * FROM resume_parse_audit
			ORDER BY created_at DESC
			LIMIT $1`, limit)
	}
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return nil, appErr
		}
		return nil, err
	}
	return entries, nil
}
