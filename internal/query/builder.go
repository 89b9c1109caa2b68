// Package query translates a NoteQuery into an executable search plan:
// a parameterized predicate, an ordering and a pagination window. Plans are
// built without touching the database so the repository can run the same
// predicate for both the page fetch and the total count.
package query

import (
	"strings"

	"github.com/vayhout/notesphere/internal/models"
)

const (
	DefaultPageSize = 20
	MinPageSize     = 5
	MaxPageSize     = 100

	// Full-text input is capped to this many terms; anything beyond is
	// ignored rather than rejected.
	maxSearchTerms = 8
)

// sortColumns whitelists the sortable fields. Unknown values silently fall
// back to updated_at so callers cannot inject arbitrary SQL into ORDER BY.
var sortColumns = map[string]string{
	"title":     "title",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// SearchClause is one tier of the two-tier search strategy: a predicate
// fragment ANDed onto the base plan.
type SearchClause struct {
	Cond string
	Args []interface{}
}

// Plan is the executable form of a NoteQuery. Where/Args cover everything
// except the search text; FullText and Fallback carry the indexed and the
// substring variant of the search clause, both nil when there is no usable
// search text.
type Plan struct {
	Where   string
	Args    []interface{}
	OrderBy string

	Page     int
	PageSize int
	Offset   int

	FullText *SearchClause
	Fallback *SearchClause
}

// HasSearch reports whether the plan carries a search clause.
func (p *Plan) HasSearch() bool {
	return p.FullText != nil
}

// Build produces the search plan for one owner's NoteQuery.
func Build(userID int, q *models.NoteQuery) *Plan {
	conds := []string{"user_id = ?"}
	args := []interface{}{userID}

	// Deletion filter is tri-state: trash view, default active view, or no
	// filter at all when the caller explicitly asks for both.
	if q.OnlyDeleted {
		conds = append(conds, "is_deleted = 1")
	} else if !q.IncludeDeleted {
		conds = append(conds, "is_deleted = 0")
	}

	if q.Pinned != nil {
		conds = append(conds, "is_pinned = ?")
		args = append(args, *q.Pinned)
	}
	if q.Archived != nil {
		conds = append(conds, "is_archived = ?")
		args = append(args, *q.Archived)
	}

	if tag := strings.TrimSpace(q.Tag); tag != "" {
		// Exact element containment in the serialized tag list,
		// case-insensitive. JSON_QUOTE keeps user input out of the JSON
		// path machinery.
		conds = append(conds, "JSON_CONTAINS(LOWER(tags_json), LOWER(JSON_QUOTE(?)))")
		args = append(args, tag)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < MinPageSize {
		pageSize = MinPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	plan := &Plan{
		Where:    "WHERE " + strings.Join(conds, " AND "),
		Args:     args,
		OrderBy:  orderBy(q.SortBy, q.SortDir),
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		if boolean := BooleanQuery(search); boolean != "" {
			plan.FullText = &SearchClause{
				Cond: "MATCH(title, content) AGAINST (? IN BOOLEAN MODE)",
				Args: []interface{}{boolean},
			}
			like := "%" + search + "%"
			plan.Fallback = &SearchClause{
				Cond: "(title LIKE ? OR content LIKE ?)",
				Args: []interface{}{like, like},
			}
		}
	}

	return plan
}

func orderBy(sortBy, sortDir string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "updated_at"
	}
	direction := "DESC"
	if strings.EqualFold(sortDir, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// BooleanQuery turns free-form search input into a MySQL boolean-mode
// expression: whitespace tokens become required prefix terms ("+tok*"),
// capped at maxSearchTerms. Boolean-mode operator characters inside tokens
// are stripped so user input cannot change the expression structure.
// Returns "" when no usable term remains.
func BooleanQuery(input string) string {
	var terms []string
	for _, token := range strings.Fields(input) {
		token = stripOperators(token)
		if token == "" {
			continue
		}
		terms = append(terms, "+"+token+"*")
		if len(terms) == maxSearchTerms {
			break
		}
	}
	return strings.Join(terms, " ")
}

func stripOperators(token string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '+', '-', '<', '>', '(', ')', '~', '*', '"', '@':
			return -1
		}
		return r
	}, token)
}
