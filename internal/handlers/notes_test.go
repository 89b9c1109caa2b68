package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vayhout/notesphere/internal/handlers"
	"github.com/vayhout/notesphere/internal/middleware"
	"github.com/vayhout/notesphere/internal/models"
	"github.com/vayhout/notesphere/internal/service"
)

type fakeNoteService struct {
	lastQuery *models.NoteQuery
	lastAudit models.AuditContext

	note    *models.Note
	list    *models.NoteList
	stats   *models.NoteStats
	err     error
	deleted []string
}

func (f *fakeNoteService) Search(_ context.Context, _ int, q *models.NoteQuery) (*models.NoteList, error) {
	f.lastQuery = q
	return f.list, f.err
}

func (f *fakeNoteService) Get(_ context.Context, _ int, _ string) (*models.Note, error) {
	return f.note, f.err
}

func (f *fakeNoteService) Create(_ context.Context, _ int, _ *models.CreateNoteRequest, audit models.AuditContext) (*models.Note, error) {
	f.lastAudit = audit
	return f.note, f.err
}

func (f *fakeNoteService) Update(_ context.Context, _ int, _ string, _ *models.UpdateNoteRequest, audit models.AuditContext) (*models.Note, error) {
	f.lastAudit = audit
	return f.note, f.err
}

func (f *fakeNoteService) SoftDelete(_ context.Context, _ int, id string, audit models.AuditContext) error {
	f.lastAudit = audit
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeNoteService) Restore(_ context.Context, _ int, _ string, _ models.AuditContext) error {
	return f.err
}

func (f *fakeNoteService) Purge(_ context.Context, _ int, _ string, _ models.AuditContext) error {
	return f.err
}

func (f *fakeNoteService) Stats(_ context.Context, _ int) (*models.NoteStats, error) {
	return f.stats, f.err
}

const testNoteID = "4e9c6f36-65ad-4f9e-9c1e-2a8f4d2b7c11"

func setupRouter(fake *fakeNoteService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// Stand-in for the JWT middleware: a fixed authenticated user.
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, 1)
		c.Next()
	})

	h := handlers.NewNoteHandler(fake)
	r.GET("/notes", h.Search)
	r.GET("/notes/trash", h.Trash)
	r.GET("/notes/stats", h.Stats)
	r.POST("/notes", h.Create)
	r.GET("/notes/:id", h.Get)
	r.PUT("/notes/:id", h.Update)
	r.DELETE("/notes/:id", h.Delete)
	r.POST("/notes/:id/restore", h.Restore)
	r.DELETE("/notes/:id/purge", h.Purge)
	return r
}

func TestSearchReturnsPaginationMeta(t *testing.T) {
	fake := &fakeNoteService{
		list: &models.NoteList{
			Items:    []*models.Note{{ID: testNoteID, Title: "Plan"}},
			Total:    12,
			Page:     2,
			PageSize: 5,
		},
	}
	r := setupRouter(fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notes?page=2&page_size=5&search=plan", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    []struct {
			ID string `json:"id"`
		} `json:"data"`
		Meta struct {
			Page      int `json:"page"`
			PageSize  int `json:"page_size"`
			Total     int `json:"total"`
			TotalPage int `json:"total_page"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)
	assert.Equal(t, testNoteID, body.Data[0].ID)
	assert.Equal(t, 2, body.Meta.Page)
	assert.Equal(t, 12, body.Meta.Total)
	assert.Equal(t, 3, body.Meta.TotalPage)

	require.NotNil(t, fake.lastQuery)
	assert.Equal(t, "plan", fake.lastQuery.Search)
}

func TestTrashForcesDeletedView(t *testing.T) {
	fake := &fakeNoteService{list: &models.NoteList{Items: []*models.Note{}, Page: 1, PageSize: 20}}
	r := setupRouter(fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notes/trash", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, fake.lastQuery)
	assert.True(t, fake.lastQuery.OnlyDeleted)
	assert.True(t, fake.lastQuery.IncludeDeleted)
}

func TestGetNotFound(t *testing.T) {
	fake := &fakeNoteService{err: service.ErrNoteNotFound}
	r := setupRouter(fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notes/"+testNoteID, nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRejectsMalformedID(t *testing.T) {
	fake := &fakeNoteService{}
	r := setupRouter(fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notes/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateValidationError(t *testing.T) {
	fake := &fakeNoteService{err: &service.ValidationError{Message: "Title is required"}}
	r := setupRouter(fake)

	payload, _ := json.Marshal(map[string]interface{}{"title": "   ", "content": "c"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Title is required")
}

func TestCreateReturnsNote(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := &fakeNoteService{note: &models.Note{
		ID:        testNoteID,
		Title:     "Plan",
		Content:   "Q1 goals",
		Tags:      []string{"work", "2024"},
		CreatedAt: now,
		UpdatedAt: now,
	}}
	r := setupRouter(fake)

	payload, _ := json.Marshal(map[string]interface{}{
		"title":   "Plan",
		"content": "Q1 goals",
		"tags":    []string{"work", "2024"},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), testNoteID)
	assert.Equal(t, "test-agent", fake.lastAudit.UserAgent)
}

func TestLifecycleEndpointsReturnNoContent(t *testing.T) {
	fake := &fakeNoteService{}
	r := setupRouter(fake)

	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodDelete, "/notes/" + testNoteID},
		{http.MethodPost, "/notes/" + testNoteID + "/restore"},
		{http.MethodDelete, "/notes/" + testNoteID + "/purge"},
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tt.method, tt.path, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code, "%s %s", tt.method, tt.path)
	}

	assert.Equal(t, []string{testNoteID}, fake.deleted)
}

func TestStats(t *testing.T) {
	fake := &fakeNoteService{stats: &models.NoteStats{TotalNotes: 3, PinnedNotes: 1}}
	r := setupRouter(fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notes/stats", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_notes":3`)
	assert.Contains(t, w.Body.String(), `"pinned_notes":1`)
}
