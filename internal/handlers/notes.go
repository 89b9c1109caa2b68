package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vayhout/notesphere/internal/middleware"
	"github.com/vayhout/notesphere/internal/models"
	"github.com/vayhout/notesphere/internal/service"
	"github.com/vayhout/notesphere/pkg/response"
)

// NoteService is the slice of the service layer the note handlers consume.
type NoteService interface {
	Search(ctx context.Context, userID int, q *models.NoteQuery) (*models.NoteList, error)
	Get(ctx context.Context, userID int, id string) (*models.Note, error)
	Create(ctx context.Context, userID int, req *models.CreateNoteRequest, audit models.AuditContext) (*models.Note, error)
	Update(ctx context.Context, userID int, id string, req *models.UpdateNoteRequest, audit models.AuditContext) (*models.Note, error)
	SoftDelete(ctx context.Context, userID int, id string, audit models.AuditContext) error
	Restore(ctx context.Context, userID int, id string, audit models.AuditContext) error
	Purge(ctx context.Context, userID int, id string, audit models.AuditContext) error
	Stats(ctx context.Context, userID int) (*models.NoteStats, error)
}

type NoteHandler struct {
	notes NoteService
}

func NewNoteHandler(notes NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

func (h *NoteHandler) Search(c *gin.Context) {
	userID, exists := middleware.GetCurrentUserID(c)
	if !exists {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var q models.NoteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	list, err := h.notes.Search(c.Request.Context(), userID, &q)
	if err != nil {
		response.InternalServerError(c, "Failed to search notes")
		return
	}

	meta := response.CalculatePagination(list.Page, list.PageSize, list.Total)
	response.SuccessWithMeta(c, list.Items, meta)
}

// Trash lists only soft-deleted notes, for restore and purge.
func (h *NoteHandler) Trash(c *gin.Context) {
	userID, exists := middleware.GetCurrentUserID(c)
	if !exists {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var q models.NoteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	q.OnlyDeleted = true
	q.IncludeDeleted = true

	list, err := h.notes.Search(c.Request.Context(), userID, &q)
	if err != nil {
		response.InternalServerError(c, "Failed to list trash")
		return
	}

	meta := response.CalculatePagination(list.Page, list.PageSize, list.Total)
	response.SuccessWithMeta(c, list.Items, meta)
}

func (h *NoteHandler) Get(c *gin.Context) {
	userID, exists := middleware.GetCurrentUserID(c)
	if !exists {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, ok := noteID(c)
	if !ok {
		return
	}

	note, err := h.notes.Get(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			response.NotFound(c, "Note not found")
			return
		}
		response.InternalServerError(c, "Failed to get note")
		return
	}

	response.Success(c, note)
}

func (h *NoteHandler) Create(c *gin.Context) {
	userID, exists := middleware.GetCurrentUserID(c)
	if !exists {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req models.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	note, err := h.notes.Create(c.Request.Context(), userID, &req, auditContext(c))
	if err != nil {
		if service.IsValidation(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalServerError(c, "Failed to create note")
		return
	}

	response.Created(c, note)
}

func (h *NoteHandler) Update(c *gin.Context) {
	userID, exists := middleware.GetCurrentUserID(c)
	if !exists {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, ok := noteID(c)
	if !ok {
		return
	}

	var req models.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	note, err := h.notes.Update(c.Request.Context(), userID, id, &req, auditContext(c))
	if err != nil {
		switch {
		case service.IsValidation(err):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrNoteNotFound):
			response.NotFound(c, "Note not found")
		default:
			response.InternalServerError(c, "Failed to update note")
		}
		return
	}

	response.Success(c, note)
}

func (h *NoteHandler) Delete(c *gin.Context) {
	h.lifecycle(c, h.notes.SoftDelete, "Failed to delete note")
}

func (h *NoteHandler) Restore(c *gin.Context) {
	h.lifecycle(c, h.notes.Restore, "Failed to restore note")
}

func (h *NoteHandler) Purge(c *gin.Context) {
	h.lifecycle(c, h.notes.Purge, "Failed to purge note")
}

func (h *NoteHandler) lifecycle(c *gin.Context, op func(context.Context, int, string, models.AuditContext) error, failMessage string) {
	userID, exists := middleware.GetCurrentUserID(c)
	if !exists {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, ok := noteID(c)
	if !ok {
		return
	}

	if err := op(c.Request.Context(), userID, id, auditContext(c)); err != nil {
		response.InternalServerError(c, failMessage)
		return
	}

	response.NoContent(c)
}

func (h *NoteHandler) Stats(c *gin.Context) {
	userID, exists := middleware.GetCurrentUserID(c)
	if !exists {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	stats, err := h.notes.Stats(c.Request.Context(), userID)
	if err != nil {
		response.InternalServerError(c, "Failed to get stats")
		return
	}

	response.Success(c, stats)
}

func noteID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.BadRequest(c, "Invalid note ID")
		return "", false
	}
	return id, true
}

func auditContext(c *gin.Context) models.AuditContext {
	return models.AuditContext{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
