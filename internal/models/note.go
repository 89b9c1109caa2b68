package models

import (
	"encoding/json"
	"strings"
	"time"
)

type Note struct {
	ID       string   `json:"id" db:"id"`
	UserID   int      `json:"-" db:"user_id"`
	Title    string   `json:"title" db:"title"`
	Content  string   `json:"content" db:"content"`
	Tags     []string `json:"tags"`
	TagsJSON string   `json:"-" db:"tags_json"`

	IsPinned   bool `json:"is_pinned" db:"is_pinned"`
	IsArchived bool `json:"is_archived" db:"is_archived"`

	// Soft delete: DeletedAt is set iff IsDeleted is true.
	IsDeleted bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CreateNoteRequest struct {
	Title      string   `json:"title" binding:"required,max=200"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	IsPinned   *bool    `json:"is_pinned"`
	IsArchived *bool    `json:"is_archived"`
}

type UpdateNoteRequest struct {
	Title      string   `json:"title" binding:"required,max=200"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	IsPinned   *bool    `json:"is_pinned"`
	IsArchived *bool    `json:"is_archived"`
}

// NoteQuery carries all search, filter and pagination parameters for a
// single request. Zero values mean "unset".
type NoteQuery struct {
	Search  string `form:"search"`
	SortBy  string `form:"sort_by"`  // title | createdAt | updatedAt
	SortDir string `form:"sort_dir"` // asc | desc

	Pinned   *bool  `form:"pinned"`
	Archived *bool  `form:"archived"`
	Tag      string `form:"tag"`

	Page     int `form:"page"`
	PageSize int `form:"page_size"`

	// Trash support: IncludeDeleted widens the result set to soft-deleted
	// notes, OnlyDeleted restricts it to them.
	IncludeDeleted bool `form:"include_deleted"`
	OnlyDeleted    bool `form:"only_deleted"`
}

type NoteList struct {
	Items    []*Note `json:"items"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

type NoteStats struct {
	TotalNotes       int `json:"total_notes"`
	ActiveNotes      int `json:"active_notes"`
	PinnedNotes      int `json:"pinned_notes"`
	ArchivedNotes    int `json:"archived_notes"`
	DeletedNotes     int `json:"deleted_notes"`
	DistinctTags     int `json:"distinct_tags"`
	UpdatedLast7Days int `json:"updated_last_7_days"`
}

// NormalizeTags trims tags, drops empty ones and removes case-insensitive
// duplicates while keeping first-seen casing and order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// EncodeTags serializes a tag list into the JSON array stored in tags_json.
func EncodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeTags parses tags_json back into a tag list. Malformed data yields
// an empty list; the column is always written by EncodeTags so this only
// guards hand-edited rows.
func DecodeTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}
