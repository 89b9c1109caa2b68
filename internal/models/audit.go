package models

import "time"

// Audit actions recorded for note mutations.
const (
	AuditNoteCreated     = "NoteCreated"
	AuditNoteUpdated     = "NoteUpdated"
	AuditNoteSoftDeleted = "NoteSoftDeleted"
	AuditNoteRestored    = "NoteRestored"
	AuditNotePurged      = "NotePurged"
)

// AuditLog is an append-only record of a mutating action. NoteID is a weak
// reference: the note may be purged later while the entry survives.
type AuditLog struct {
	ID           string    `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	NoteID       *string   `json:"note_id,omitempty" db:"note_id"`
	Action       string    `json:"action" db:"action"`
	IP           string    `json:"ip" db:"ip"`
	UserAgent    string    `json:"user_agent" db:"user_agent"`
	MetadataJSON string    `json:"metadata" db:"metadata_json"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// AuditContext is the request metadata the HTTP layer supplies for every
// mutating call.
type AuditContext struct {
	IP        string
	UserAgent string
}
