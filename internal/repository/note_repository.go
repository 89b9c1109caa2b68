package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/vayhout/notesphere/internal/metrics"
	"github.com/vayhout/notesphere/internal/models"
	"github.com/vayhout/notesphere/internal/query"
)

// MySQL error numbers signaling that full-text search is unavailable for
// the queried columns (index missing or not supported by the table engine).
const (
	mysqlErrNoFullTextIndex      = 1191
	mysqlErrFullTextNotSupported = 1214
)

// NoteRepository is the persistent note store. Every operation is scoped by
// userID; a note belonging to another user is indistinguishable from an
// absent one. Mutations are single conditional statements, so concurrent
// transitions on the same note resolve to last-committed-wins with losers
// observing zero affected rows.
type NoteRepository interface {
	Insert(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, userID int, id string) (*models.Note, error)
	Update(ctx context.Context, note *models.Note) (bool, error)
	SoftDelete(ctx context.Context, userID int, id string, at time.Time) (bool, error)
	Restore(ctx context.Context, userID int, id string, at time.Time) (bool, error)
	Purge(ctx context.Context, userID int, id string) (bool, error)
	PurgeExpired(ctx context.Context, retentionDays int) (int64, error)
	Search(ctx context.Context, userID int, q *models.NoteQuery) (*models.NoteList, error)
	Stats(ctx context.Context, userID int) (*models.NoteStats, error)
}

type noteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) NoteRepository {
	return &noteRepository{db: db}
}

const noteColumns = `id, user_id, title, content, tags_json, is_pinned, is_archived, is_deleted, deleted_at, created_at, updated_at`

func (r *noteRepository) Insert(ctx context.Context, note *models.Note) error {
	q := `INSERT INTO notes (` + noteColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		note.ID, note.UserID, note.Title, note.Content, note.TagsJSON,
		note.IsPinned, note.IsArchived, note.IsDeleted, note.DeletedAt,
		note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// GetByID returns only active notes. Absent, soft-deleted and foreign notes
// all come back as nil, nil.
func (r *noteRepository) GetByID(ctx context.Context, userID int, id string) (*models.Note, error) {
	q := `SELECT ` + noteColumns + ` FROM notes WHERE id = ? AND user_id = ? AND is_deleted = 0`
	note, err := r.scanNote(r.db.QueryRowContext(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// Update persists the mutable fields of an active note. Returns false when
// the note is absent, soft-deleted or owned by someone else.
func (r *noteRepository) Update(ctx context.Context, note *models.Note) (bool, error) {
	q := `UPDATE notes
          SET title = ?, content = ?, tags_json = ?, is_pinned = ?, is_archived = ?, updated_at = ?
          WHERE id = ? AND user_id = ? AND is_deleted = 0`
	result, err := r.db.ExecContext(ctx, q,
		note.Title, note.Content, note.TagsJSON, note.IsPinned, note.IsArchived,
		note.UpdatedAt, note.ID, note.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update note: %w", err)
	}
	return rowChanged(result)
}

func (r *noteRepository) SoftDelete(ctx context.Context, userID int, id string, at time.Time) (bool, error) {
	q := `UPDATE notes
          SET is_deleted = 1, deleted_at = ?, updated_at = ?
          WHERE id = ? AND user_id = ? AND is_deleted = 0`
	result, err := r.db.ExecContext(ctx, q, at, at, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to soft-delete note: %w", err)
	}
	return rowChanged(result)
}

func (r *noteRepository) Restore(ctx context.Context, userID int, id string, at time.Time) (bool, error) {
	q := `UPDATE notes
          SET is_deleted = 0, deleted_at = NULL, updated_at = ?
          WHERE id = ? AND user_id = ? AND is_deleted = 1`
	result, err := r.db.ExecContext(ctx, q, at, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to restore note: %w", err)
	}
	return rowChanged(result)
}

// Purge hard-deletes a note, but only out of the soft-deleted state. An
// active note survives a purge attempt.
func (r *noteRepository) Purge(ctx context.Context, userID int, id string) (bool, error) {
	q := `DELETE FROM notes WHERE id = ? AND user_id = ? AND is_deleted = 1`
	result, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to purge note: %w", err)
	}
	return rowChanged(result)
}

// PurgeExpired hard-deletes notes across all users that have sat in the
// trash past the retention window. Returns the number of rows removed.
func (r *noteRepository) PurgeExpired(ctx context.Context, retentionDays int) (int64, error) {
	q := `DELETE FROM notes
          WHERE is_deleted = 1 AND deleted_at IS NOT NULL
            AND deleted_at < UTC_TIMESTAMP() - INTERVAL ? DAY`
	result, err := r.db.ExecContext(ctx, q, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired notes: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return count, nil
}

// Search executes the plan built from the query: total count plus one
// ordered page, both under the same predicate. When search text is present
// the indexed full-text tier runs first; if the backend reports the
// full-text index as unavailable the substring tier runs instead. The
// degradation is invisible to callers and only logged for operators.
func (r *noteRepository) Search(ctx context.Context, userID int, q *models.NoteQuery) (*models.NoteList, error) {
	plan := query.Build(userID, q)

	if !plan.HasSearch() {
		return r.runSearch(ctx, plan, nil)
	}

	list, err := r.runSearch(ctx, plan, plan.FullText)
	if err != nil && isFullTextUnavailable(err) {
		log.Printf("Full-text index unavailable, falling back to substring search: %v", err)
		metrics.SearchFallbackTotal.Inc()
		return r.runSearch(ctx, plan, plan.Fallback)
	}
	return list, err
}

func (r *noteRepository) runSearch(ctx context.Context, plan *query.Plan, search *query.SearchClause) (*models.NoteList, error) {
	where := plan.Where
	args := plan.Args
	if search != nil {
		where += " AND " + search.Cond
		args = append(append([]interface{}{}, args...), search.Args...)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM notes ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}

	pageQuery := `SELECT ` + noteColumns + ` FROM notes ` + where +
		` ORDER BY ` + plan.OrderBy + ` LIMIT ? OFFSET ?`
	pageArgs := append(append([]interface{}{}, args...), plan.PageSize, plan.Offset)

	rows, err := r.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*models.Note, 0, plan.PageSize)
	for rows.Next() {
		note, err := r.scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notes: %w", err)
	}

	return &models.NoteList{
		Items:    notes,
		Total:    total,
		Page:     plan.Page,
		PageSize: plan.PageSize,
	}, nil
}

// Stats computes the per-user dashboard aggregates at call time.
func (r *noteRepository) Stats(ctx context.Context, userID int) (*models.NoteStats, error) {
	q := `SELECT
            COALESCE(SUM(is_deleted = 0), 0),
            COALESCE(SUM(is_deleted = 0 AND is_archived = 0), 0),
            COALESCE(SUM(is_deleted = 0 AND is_pinned = 1 AND is_archived = 0), 0),
            COALESCE(SUM(is_deleted = 0 AND is_archived = 1), 0),
            COALESCE(SUM(is_deleted = 1), 0),
            COALESCE(SUM(is_deleted = 0 AND updated_at >= UTC_TIMESTAMP() - INTERVAL 7 DAY), 0)
          FROM notes WHERE user_id = ?`

	stats := &models.NoteStats{}
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&stats.TotalNotes, &stats.ActiveNotes, &stats.PinnedNotes,
		&stats.ArchivedNotes, &stats.DeletedNotes, &stats.UpdatedLast7Days,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get note stats: %w", err)
	}

	tagQuery := `SELECT COUNT(DISTINCT LOWER(jt.tag))
                 FROM notes n,
                      JSON_TABLE(n.tags_json, '$[*]' COLUMNS (tag VARCHAR(200) PATH '$')) jt
                 WHERE n.user_id = ? AND n.is_deleted = 0`
	if err := r.db.QueryRowContext(ctx, tagQuery, userID).Scan(&stats.DistinctTags); err != nil {
		return nil, fmt.Errorf("failed to count distinct tags: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *noteRepository) scanNote(row rowScanner) (*models.Note, error) {
	note := &models.Note{}
	var deletedAt sql.NullTime
	err := row.Scan(
		&note.ID, &note.UserID, &note.Title, &note.Content, &note.TagsJSON,
		&note.IsPinned, &note.IsArchived, &note.IsDeleted, &deletedAt,
		&note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		note.DeletedAt = &t
	}
	note.Tags = models.DecodeTags(note.TagsJSON)
	return note, nil
}

func rowChanged(result sql.Result) (bool, error) {
	count, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return count > 0, nil
}

// isFullTextUnavailable recognizes the specific backend signal for a
// missing full-text capability. Other persistence errors pass through
// untouched so the fallback never masks real failures.
func isFullTextUnavailable(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == mysqlErrNoFullTextIndex ||
		mysqlErr.Number == mysqlErrFullTextNotSupported
}
