package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"

	"github.com/vayhout/notesphere/internal/models"
	"github.com/vayhout/notesphere/internal/repository"
)

const maxTitleLength = 200

// NoteService orchestrates the note store, the lifecycle state machine and
// the audit trail. All timestamps come from the injected clock and are UTC.
type NoteService struct {
	notes repository.NoteRepository
	audit repository.AuditRepository
	now   func() time.Time
}

func NewNoteService(notes repository.NoteRepository, audit repository.AuditRepository) *NoteService {
	return &NoteService{
		notes: notes,
		audit: audit,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *NoteService) Search(ctx context.Context, userID int, q *models.NoteQuery) (*models.NoteList, error) {
	return s.notes.Search(ctx, userID, q)
}

func (s *NoteService) Get(ctx context.Context, userID int, id string) (*models.Note, error) {
	note, err := s.notes.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

func (s *NoteService) Create(ctx context.Context, userID int, req *models.CreateNoteRequest, audit models.AuditContext) (*models.Note, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}

	tags := models.NormalizeTags(req.Tags)
	tagsJSON, err := models.EncodeTags(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	now := s.now()
	note := &models.Note{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      title,
		Content:    req.Content,
		Tags:       tags,
		TagsJSON:   tagsJSON,
		IsPinned:   req.IsPinned != nil && *req.IsPinned,
		IsArchived: req.IsArchived != nil && *req.IsArchived,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.notes.Insert(ctx, note); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, userID, &note.ID, models.AuditNoteCreated, audit, noteMetadata(note))
	return note, nil
}

func (s *NoteService) Update(ctx context.Context, userID int, id string, req *models.UpdateNoteRequest, audit models.AuditContext) (*models.Note, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}

	note, err := s.notes.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}

	tags := models.NormalizeTags(req.Tags)
	tagsJSON, err := models.EncodeTags(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	note.Title = title
	note.Content = req.Content
	note.Tags = tags
	note.TagsJSON = tagsJSON
	if req.IsPinned != nil {
		note.IsPinned = *req.IsPinned
	}
	if req.IsArchived != nil {
		note.IsArchived = *req.IsArchived
	}
	note.UpdatedAt = s.now()

	changed, err := s.notes.Update(ctx, note)
	if err != nil {
		return nil, err
	}
	if !changed {
		// The note was deleted between the read and the write.
		return nil, ErrNoteNotFound
	}

	s.recordAudit(ctx, userID, &note.ID, models.AuditNoteUpdated, audit, noteMetadata(note))
	return note, nil
}

// SoftDelete moves an active note to the trash. Deleting a note that is
// already deleted, absent, or foreign is a silent no-op and leaves no
// audit entry.
func (s *NoteService) SoftDelete(ctx context.Context, userID int, id string, audit models.AuditContext) error {
	changed, err := s.notes.SoftDelete(ctx, userID, id, s.now())
	if err != nil {
		return err
	}
	if changed {
		s.recordAudit(ctx, userID, &id, models.AuditNoteSoftDeleted, audit, nil)
	}
	return nil
}

// Restore moves a trashed note back to the active state. A no-op unless the
// note is currently deleted.
func (s *NoteService) Restore(ctx context.Context, userID int, id string, audit models.AuditContext) error {
	changed, err := s.notes.Restore(ctx, userID, id, s.now())
	if err != nil {
		return err
	}
	if changed {
		s.recordAudit(ctx, userID, &id, models.AuditNoteRestored, audit, nil)
	}
	return nil
}

// Purge permanently removes a trashed note. Purge is only reachable from
// the deleted state; an active note survives.
func (s *NoteService) Purge(ctx context.Context, userID int, id string, audit models.AuditContext) error {
	changed, err := s.notes.Purge(ctx, userID, id)
	if err != nil {
		return err
	}
	if changed {
		s.recordAudit(ctx, userID, &id, models.AuditNotePurged, audit, nil)
	}
	return nil
}

func (s *NoteService) Stats(ctx context.Context, userID int) (*models.NoteStats, error) {
	return s.notes.Stats(ctx, userID)
}

// recordAudit appends one audit entry. The primary mutation has already
// committed, so a failed audit write is logged and swallowed rather than
// failing the caller.
func (s *NoteService) recordAudit(ctx context.Context, userID int, noteID *string, action string, auditCtx models.AuditContext, extra map[string]interface{}) {
	metadata := map[string]interface{}{}
	for k, v := range extra {
		metadata[k] = v
	}
	if auditCtx.UserAgent != "" {
		ua := useragent.Parse(auditCtx.UserAgent)
		metadata["client"] = map[string]interface{}{
			"browser": ua.Name,
			"os":      ua.OS,
			"mobile":  ua.Mobile,
		}
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		metadataJSON = []byte("{}")
	}

	entry := &models.AuditLog{
		ID:           uuid.NewString(),
		UserID:       userID,
		NoteID:       noteID,
		Action:       action,
		IP:           auditCtx.IP,
		UserAgent:    auditCtx.UserAgent,
		MetadataJSON: string(metadataJSON),
		CreatedAt:    s.now(),
	}

	if err := s.audit.Record(ctx, entry); err != nil {
		log.Printf("Failed to record audit entry %s for user %d: %v", action, userID, err)
	}
}

func noteMetadata(note *models.Note) map[string]interface{} {
	return map[string]interface{}{
		"title":       note.Title,
		"tags":        note.Tags,
		"is_pinned":   note.IsPinned,
		"is_archived": note.IsArchived,
	}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", validationErrorf("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", validationErrorf(fmt.Sprintf("Title must be at most %d characters", maxTitleLength))
	}
	return title, nil
}
