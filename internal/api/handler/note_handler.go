package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/core/ports"
)

// NoteHandler serves session notes and the psychologist's therapy notes.
type NoteHandler struct {
	service ports.NoteService
}

func NewNoteHandler(service ports.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

type createSessionNoteRequest struct {
	Content   string `json:"content" validate:"required"`
	IsPrivate bool   `json:"is_private"`
}

type updateSessionNoteRequest struct {
	Content   *string `json:"content"`
	IsPrivate *bool   `json:"is_private"`
}

type createTherapyNoteRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type updateTherapyNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// ListSessionNotes handles GET /sessions/:id/notes.
//
// @Summary      List session notes visible to the caller
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session id"
// @Success      200  {object}  envelope{data=[]domain.SessionNote}
// @Router       /sessions/{id}/notes [get]
func (h *NoteHandler) ListSessionNotes(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	notes, err := h.service.ListSessionNotes(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, notes)
}

// AddSessionNote handles POST /sessions/:id/notes.
//
// @Summary      Add a session note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Session id"
// @Param        body  body      createSessionNoteRequest  true  "Note"
// @Success      201   {object}  envelope{data=domain.SessionNote}
// @Router       /sessions/{id}/notes [post]
func (h *NoteHandler) AddSessionNote(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createSessionNoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	note, err := h.service.AddSessionNote(c.Request().Context(), actor, c.Param("id"), req.Content, req.IsPrivate)
	if err != nil {
		return err
	}
	return created(c, note)
}

// UpdateSessionNote handles PATCH /sessions/:id/notes/:noteId.
//
// @Summary      Update own session note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string                    true  "Session id"
// @Param        noteId  path      string                    true  "Note id"
// @Param        body    body      updateSessionNoteRequest  true  "Fields to change"
// @Success      200     {object}  envelope{data=domain.SessionNote}
// @Failure      403     {object}  map[string]any
// @Router       /sessions/{id}/notes/{noteId} [patch]
func (h *NoteHandler) UpdateSessionNote(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updateSessionNoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	note, err := h.service.UpdateSessionNote(c.Request().Context(), actor, c.Param("id"), c.Param("noteId"), req.Content, req.IsPrivate)
	if err != nil {
		return err
	}
	return ok(c, note)
}

// DeleteSessionNote handles DELETE /sessions/:id/notes/:noteId.
//
// @Summary      Delete own session note
// @Tags         notes
// @Security     BearerAuth
// @Param        id      path  string  true  "Session id"
// @Param        noteId  path  string  true  "Note id"
// @Success      204
// @Failure      403     {object}  map[string]any
// @Router       /sessions/{id}/notes/{noteId} [delete]
func (h *NoteHandler) DeleteSessionNote(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteSessionNote(c.Request().Context(), actor, c.Param("id"), c.Param("noteId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTherapyNotes handles GET /therapies/:id/notes.
//
// @Summary      List therapy notes
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Therapy id"
// @Success      200  {object}  envelope{data=[]domain.TherapyNote}
// @Router       /therapies/{id}/notes [get]
func (h *NoteHandler) ListTherapyNotes(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	notes, err := h.service.ListTherapyNotes(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, notes)
}

// AddTherapyNote handles POST /therapies/:id/notes.
//
// @Summary      Add a therapy note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Therapy id"
// @Param        body  body      createTherapyNoteRequest  true  "Note"
// @Success      201   {object}  envelope{data=domain.TherapyNote}
// @Router       /therapies/{id}/notes [post]
func (h *NoteHandler) AddTherapyNote(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createTherapyNoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	note, err := h.service.AddTherapyNote(c.Request().Context(), actor, c.Param("id"), req.Title, req.Content)
	if err != nil {
		return err
	}
	return created(c, note)
}

// UpdateTherapyNote handles PATCH /therapies/:id/notes/:noteId.
//
// @Summary      Update a therapy note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string                    true  "Therapy id"
// @Param        noteId  path      string                    true  "Note id"
// @Param        body    body      updateTherapyNoteRequest  true  "Fields to change"
// @Success      200     {object}  envelope{data=domain.TherapyNote}
// @Router       /therapies/{id}/notes/{noteId} [patch]
func (h *NoteHandler) UpdateTherapyNote(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updateTherapyNoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	note, err := h.service.UpdateTherapyNote(c.Request().Context(), actor, c.Param("id"), c.Param("noteId"), req.Title, req.Content)
	if err != nil {
		return err
	}
	return ok(c, note)
}

// DeleteTherapyNote handles DELETE /therapies/:id/notes/:noteId.
//
// @Summary      Delete a therapy note
// @Tags         notes
// @Security     BearerAuth
// @Param        id      path  string  true  "Therapy id"
// @Param        noteId  path  string  true  "Note id"
// @Success      204
// @Router       /therapies/{id}/notes/{noteId} [delete]
func (h *NoteHandler) DeleteTherapyNote(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTherapyNote(c.Request().Context(), actor, c.Param("id"), c.Param("noteId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
