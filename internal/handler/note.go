package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sajal/inkpad/internal/apperror"
	"github.com/sajal/inkpad/internal/auth"
	"github.com/sajal/inkpad/internal/model"
	"github.com/sajal/inkpad/internal/service"
)

// NoteHandler exposes the note CRUD and reordering endpoints. All of
// them sit behind auth.RequireAuth; the owner is always the
// authenticated user from the request context, never a request field.
type NoteHandler struct {
	notes  *service.NoteService
	logger *slog.Logger
}

// NewNoteHandler creates a NoteHandler.
func NewNoteHandler(notes *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, logger: logger}
}

// ownerFromContext reads the authenticated user set by the middleware.
// Reaching this with no user means the route was wired without
// RequireAuth — a server bug, reported as a 401 all the same.
func ownerFromContext(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Auth("missing token"))
		return "", false
	}
	return owner, true
}

type createNoteRequest struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Image   string `json:"image"`
	Drawing string `json:"drawing"`
}

type updateNoteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// repositionEntry uses *int for the position so "field missing" and
// "position 0" are distinguishable, and a non-integer position fails
// JSON decoding instead of being coerced.
type repositionEntry struct {
	ID       string `json:"id"`
	Position *int   `json:"position"`
}

type repositionResponse struct {
	Updated int `json:"updated"`
}

// HandleList returns the caller's notes in display order.
//
// HTTP: GET /api/notes
func (h *NoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	notes, err := h.notes.List(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if notes == nil {
		notes = []model.Note{} // JSON [] rather than null
	}

	writeJSON(w, http.StatusOK, notes)
}

// HandleCreate saves a new note at the end of the caller's list.
//
// HTTP: POST /api/notes
// Body: {"title": "...", "body": "...", "image": "...", "drawing": "..."}
func (h *NoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	note, err := h.notes.Create(r.Context(), owner, req.Title, req.Body, req.Image, req.Drawing)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

// HandleUpdate edits the title and body of one note.
//
// HTTP: PUT /api/notes/{id}
// Body: {"title": "...", "body": "..."}
func (h *NoteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	var req updateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	note, err := h.notes.Update(r.Context(), owner, chi.URLParam(r, "id"), req.Title, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// HandleDelete removes one note; the service renumbers the survivors.
//
// HTTP: DELETE /api/notes/{id}
func (h *NoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	if err := h.notes.Delete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleReposition applies a drag-and-drop reorder.
//
// HTTP: PUT /api/notes/positions
// Body: [{"id": "...", "position": 0}, ...]
func (h *NoteHandler) HandleReposition(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	var entries []repositionEntry
	if err := decodeJSON(r, &entries); err != nil {
		writeError(w, err)
		return
	}

	positions := make([]model.NotePosition, 0, len(entries))
	for _, e := range entries {
		if e.Position == nil {
			writeError(w, apperror.ValidationFailed("positions", "every entry needs an integer position"))
			return
		}
		positions = append(positions, model.NotePosition{ID: e.ID, Position: *e.Position})
	}

	updated, err := h.notes.Reposition(r.Context(), owner, positions)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, repositionResponse{Updated: updated})
}
