package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vayhout/notesphere/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func TestBuildDefaults(t *testing.T) {
	plan := Build(42, &models.NoteQuery{})

	assert.Equal(t, "WHERE user_id = ? AND is_deleted = 0", plan.Where)
	assert.Equal(t, []interface{}{42}, plan.Args)
	assert.Equal(t, "updated_at DESC", plan.OrderBy)
	assert.Equal(t, 1, plan.Page)
	assert.Equal(t, DefaultPageSize, plan.PageSize)
	assert.Equal(t, 0, plan.Offset)
	assert.False(t, plan.HasSearch())
}

func TestBuildDeletionFilter(t *testing.T) {
	t.Run("only deleted forces trash view", func(t *testing.T) {
		plan := Build(1, &models.NoteQuery{OnlyDeleted: true, IncludeDeleted: true})
		assert.Equal(t, "WHERE user_id = ? AND is_deleted = 1", plan.Where)
	})

	t.Run("include deleted drops the filter", func(t *testing.T) {
		plan := Build(1, &models.NoteQuery{IncludeDeleted: true})
		assert.Equal(t, "WHERE user_id = ?", plan.Where)
	})

	t.Run("default is active only", func(t *testing.T) {
		plan := Build(1, &models.NoteQuery{})
		assert.Contains(t, plan.Where, "is_deleted = 0")
	})
}

func TestBuildPinArchiveFilters(t *testing.T) {
	plan := Build(1, &models.NoteQuery{
		Pinned:   boolPtr(true),
		Archived: boolPtr(false),
	})

	assert.Equal(t, "WHERE user_id = ? AND is_deleted = 0 AND is_pinned = ? AND is_archived = ?", plan.Where)
	assert.Equal(t, []interface{}{1, true, false}, plan.Args)
}

func TestBuildTagFilter(t *testing.T) {
	plan := Build(1, &models.NoteQuery{Tag: "  Work  "})

	assert.Contains(t, plan.Where, "JSON_CONTAINS(LOWER(tags_json), LOWER(JSON_QUOTE(?)))")
	assert.Equal(t, []interface{}{1, "Work"}, plan.Args)

	empty := Build(1, &models.NoteQuery{Tag: "   "})
	assert.NotContains(t, empty.Where, "JSON_CONTAINS")
}

func TestBuildSortWhitelist(t *testing.T) {
	tests := []struct {
		sortBy  string
		sortDir string
		want    string
	}{
		{"updatedAt", "desc", "updated_at DESC"},
		{"createdAt", "asc", "created_at ASC"},
		{"title", "ASC", "title ASC"},
		{"", "", "updated_at DESC"},
		{"title; DROP TABLE notes", "asc", "updated_at ASC"},
		{"updatedAt", "sideways", "updated_at DESC"},
	}

	for _, tt := range tests {
		plan := Build(1, &models.NoteQuery{SortBy: tt.sortBy, SortDir: tt.sortDir})
		assert.Equal(t, tt.want, plan.OrderBy, "sortBy=%q sortDir=%q", tt.sortBy, tt.sortDir)
	}
}

func TestBuildPagination(t *testing.T) {
	tests := []struct {
		page, pageSize             int
		wantPage, wantSize, offset int
	}{
		{0, 0, 1, 20, 0},
		{-3, 0, 1, 20, 0},
		{1, 3, 1, 5, 0},
		{1, 500, 1, 100, 0},
		{2, 5, 2, 5, 5},
		{4, 25, 4, 25, 75},
	}

	for _, tt := range tests {
		plan := Build(1, &models.NoteQuery{Page: tt.page, PageSize: tt.pageSize})
		assert.Equal(t, tt.wantPage, plan.Page)
		assert.Equal(t, tt.wantSize, plan.PageSize)
		assert.Equal(t, tt.offset, plan.Offset)
	}
}

func TestBuildSearchClauses(t *testing.T) {
	plan := Build(7, &models.NoteQuery{Search: "Q1 goals"})

	require.True(t, plan.HasSearch())
	assert.Equal(t, "MATCH(title, content) AGAINST (? IN BOOLEAN MODE)", plan.FullText.Cond)
	assert.Equal(t, []interface{}{"+Q1* +goals*"}, plan.FullText.Args)

	require.NotNil(t, plan.Fallback)
	assert.Equal(t, "(title LIKE ? OR content LIKE ?)", plan.Fallback.Cond)
	assert.Equal(t, []interface{}{"%Q1 goals%", "%Q1 goals%"}, plan.Fallback.Args)

	// The search clause never leaks into the base predicate.
	assert.Equal(t, "WHERE user_id = ? AND is_deleted = 0", plan.Where)
	assert.Equal(t, []interface{}{7}, plan.Args)
}

func TestBuildSearchOnlyOperators(t *testing.T) {
	plan := Build(1, &models.NoteQuery{Search: `*** "" --`})
	assert.False(t, plan.HasSearch())
	assert.Nil(t, plan.Fallback)
}

func TestBooleanQuery(t *testing.T) {
	t.Run("prefix terms joined as required", func(t *testing.T) {
		assert.Equal(t, "+hello* +world*", BooleanQuery("hello world"))
	})

	t.Run("caps at eight terms", func(t *testing.T) {
		got := BooleanQuery("a b c d e f g h i j")
		assert.Equal(t, "+a* +b* +c* +d* +e* +f* +g* +h*", got)
	})

	t.Run("strips boolean mode operators", func(t *testing.T) {
		assert.Equal(t, "+evil* +foo*", BooleanQuery(`+evil" -foo*`))
		assert.Equal(t, "+ab* +cd*", BooleanQuery("a(b c>d"))
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		assert.Equal(t, "+one* +two*", BooleanQuery("  one \t two  "))
	})

	t.Run("empty when nothing usable", func(t *testing.T) {
		assert.Equal(t, "", BooleanQuery(`" * + - ~`))
		assert.Equal(t, "", BooleanQuery("   "))
	})
}
