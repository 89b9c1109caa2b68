package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vayhout/notesphere/internal/models"
)

// AuditRepository is the append-only audit trail. Entries are never updated
// or deleted by the application.
type AuditRepository interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Record(ctx context.Context, entry *models.AuditLog) error {
	q := `INSERT INTO audit_logs (id, user_id, note_id, action, ip, user_agent, metadata_json, created_at)
          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		entry.ID, entry.UserID, entry.NoteID, entry.Action,
		entry.IP, entry.UserAgent, entry.MetadataJSON, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}
