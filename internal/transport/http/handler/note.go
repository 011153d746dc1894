package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/notekeeper/internal/domain"
	"github.com/ErlanBelekov/notekeeper/internal/transport/http/middleware"
	"github.com/ErlanBelekov/notekeeper/internal/usecase"
	"github.com/gin-gonic/gin"
)

type noteUsecaser interface {
	Create(ctx context.Context, userID, content string) (*domain.Note, error)
	Get(ctx context.Context, userID string, noteID int64) (*domain.Note, error)
	List(ctx context.Context, input usecase.ListNotesInput) (usecase.ListNotesResult, error)
	Update(ctx context.Context, userID string, noteID int64, content string) (*domain.Note, error)
	Delete(ctx context.Context, userID string, noteID int64) error
}

type NoteHandler struct {
	uc     noteUsecaser
	logger *slog.Logger
}

func NewNoteHandler(uc noteUsecaser, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{uc: uc, logger: logger.With("component", "note_handler")}
}

type noteRequest struct {
	Content string `json:"content"`
}

type noteResponse struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toNoteResponse(n *domain.Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// noteID parses the :id path segment. A malformed id cannot name a note the
// caller owns, so callers answer it exactly like a missing note.
func noteID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *NoteHandler) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	result, err := h.uc.List(ctx.Request.Context(), usecase.ListNotesInput{
		UserID: ctx.GetString(middleware.UserIDKey),
		Cursor: ctx.Query("cursor"),
		Limit:  limit,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			ctx.JSON(http.StatusBadRequest, validationBody(err))
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "list notes", "error", err)
		ctx.JSON(http.StatusInternalServerError, errorBody(errInternalServer))
		return
	}

	items := make([]noteResponse, len(result.Notes))
	for i, n := range result.Notes {
		items[i] = toNoteResponse(n)
	}
	ctx.JSON(http.StatusOK, gin.H{
		"notes":       items,
		"next_cursor": result.NextCursor,
	})
}

func (h *NoteHandler) Create(ctx *gin.Context) {
	var req noteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorBody(errInvalidBody))
		return
	}

	note, err := h.uc.Create(ctx.Request.Context(), ctx.GetString(middleware.UserIDKey), req.Content)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			ctx.JSON(http.StatusBadRequest, validationBody(err))
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "create note", "error", err)
		ctx.JSON(http.StatusInternalServerError, errorBody(errInternalServer))
		return
	}

	h.logger.InfoContext(ctx.Request.Context(), "note created", "note_id", note.ID)
	ctx.JSON(http.StatusCreated, toNoteResponse(note))
}

func (h *NoteHandler) GetByID(ctx *gin.Context) {
	id, ok := noteID(ctx)
	if !ok {
		ctx.JSON(http.StatusNotFound, errorBody(errNoteNotFound))
		return
	}

	note, err := h.uc.Get(ctx.Request.Context(), ctx.GetString(middleware.UserIDKey), id)
	if err != nil {
		h.ownedNoteError(ctx, "get note", id, err)
		return
	}

	ctx.JSON(http.StatusOK, toNoteResponse(note))
}

func (h *NoteHandler) Update(ctx *gin.Context) {
	id, ok := noteID(ctx)
	if !ok {
		ctx.JSON(http.StatusNotFound, errorBody(errNoteNotFound))
		return
	}

	var req noteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorBody(errInvalidBody))
		return
	}

	note, err := h.uc.Update(ctx.Request.Context(), ctx.GetString(middleware.UserIDKey), id, req.Content)
	if err != nil {
		h.ownedNoteError(ctx, "update note", id, err)
		return
	}

	h.logger.InfoContext(ctx.Request.Context(), "note updated", "note_id", id)
	ctx.JSON(http.StatusOK, toNoteResponse(note))
}

func (h *NoteHandler) Delete(ctx *gin.Context) {
	id, ok := noteID(ctx)
	if !ok {
		ctx.JSON(http.StatusNotFound, errorBody(errNoteNotFound))
		return
	}

	if err := h.uc.Delete(ctx.Request.Context(), ctx.GetString(middleware.UserIDKey), id); err != nil {
		h.ownedNoteError(ctx, "delete note", id, err)
		return
	}

	h.logger.InfoContext(ctx.Request.Context(), "note deleted", "note_id", id)
	ctx.Status(http.StatusNoContent)
}

// ownedNoteError answers a missing note and someone else's note identically.
func (h *NoteHandler) ownedNoteError(ctx *gin.Context, op string, id int64, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		ctx.JSON(http.StatusBadRequest, validationBody(err))
	case errors.Is(err, domain.ErrNoteNotFound):
		h.logger.WarnContext(ctx.Request.Context(), "note not found or forbidden", "op", op, "note_id", id)
		ctx.JSON(http.StatusNotFound, errorBody(errNoteNotFound))
	default:
		h.logger.ErrorContext(ctx.Request.Context(), op, "note_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, errorBody(errInternalServer))
	}
}
