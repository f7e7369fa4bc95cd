package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sajal/inkpad/internal/apperror"
	"github.com/sajal/inkpad/internal/model"
	"github.com/sajal/inkpad/internal/repository"
)

// Validation limits for note content.
const (
	DefaultTitle   = "Untitled"
	MaxTitleLength = 200
	MaxBodyLength  = 100_000 // ~100KB of text
	MaxMediaBytes  = 1 << 20 // 1MiB per encoded image/drawing payload
)

// NoteService owns the note lifecycle and the manual ordering scheme.
//
// Every note carries an integer position unique-in-practice per owner:
// Create appends at the end, Delete renumbers the survivors densely,
// and Reposition writes client-supplied positions verbatim. Concurrent
// Creates by the same user can race to the same position and a
// Reposition batch that fails midway stays partially applied — both are
// accepted windows of this design (List self-heals only the
// missing-position case), consistent with keeping the store free of
// cross-request locks.
type NoteService struct {
	repo   repository.NoteRepository
	logger *slog.Logger
}

// NewNoteService creates a NoteService.
func NewNoteService(repo repository.NoteRepository, logger *slog.Logger) *NoteService {
	return &NoteService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and saves a new note for owner, appending it at the
// end of the owner's list (position = current note count).
//
// A completely empty note — no title, body, image, or drawing — is
// rejected. A blank title becomes DefaultTitle after that check, so
// "only a title" and "only a drawing" are both creatable but "nothing"
// is not. A whitespace-only body stores as the empty string.
func (s *NoteService) Create(ctx context.Context, owner, title, body, image, drawing string) (*model.Note, error) {
	title = strings.TrimSpace(title)
	body = normalizeBody(body)

	if title == "" && body == "" && image == "" && drawing == "" {
		return nil, apperror.ValidationFailed("note", "note must have a title, body, image, or drawing")
	}
	if err := validateContent(title, body, image, drawing); err != nil {
		return nil, err
	}
	if title == "" {
		title = DefaultTitle
	}

	count, err := s.repo.CountByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("counting notes for position: %w", err)
	}

	note := &model.Note{
		Title:    title,
		Body:     body,
		Image:    image,
		Drawing:  drawing,
		Position: count,
		Owner:    owner,
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		s.logger.Error("failed to create note",
			slog.String("owner", owner),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating note: %w", err)
	}

	s.logger.Info("note created",
		slog.String("id", note.ID),
		slog.String("owner", owner),
		slog.Int("position", note.Position),
	)

	return note, nil
}

// List returns all of owner's notes sorted by position ascending,
// creation time breaking ties.
//
// Read repair: any note without a stored position (legacy data from
// before the ordering feature) gets one assigned here, contiguously
// after the positioned notes in creation order, and persisted before
// the result is returned. The repair is deterministic, so a second List
// with no intervening writes returns the identical order and performs
// no further writes.
func (s *NoteService) List(ctx context.Context, owner string) ([]model.Note, error) {
	notes, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}

	missing := 0
	for _, n := range notes {
		if n.Position == model.NoPosition {
			missing++
		}
	}

	if missing > 0 {
		// The repository orders position-less notes after the
		// positioned ones, by creation time, so the tail of the slice
		// is exactly the backfill set in assignment order.
		start := len(notes) - missing
		for i := start; i < len(notes); i++ {
			pos := i // contiguous from (total - missing)
			if err := s.repo.SetPosition(ctx, owner, notes[i].ID, pos); err != nil {
				return nil, fmt.Errorf("backfilling position of note %s: %w", notes[i].ID, err)
			}
			notes[i].Position = pos
		}
		s.logger.Info("backfilled note positions",
			slog.String("owner", owner),
			slog.Int("count", missing),
		)
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Position != notes[j].Position {
			return notes[i].Position < notes[j].Position
		}
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})

	return notes, nil
}

// Update mutates title and body of an owned note. Position and media
// are untouched; the blank-title defaulting matches Create so no write
// path can leave a note untitled.
func (s *NoteService) Update(ctx context.Context, owner, id, newTitle, newBody string) (*model.Note, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "note ID is required")
	}

	newTitle = strings.TrimSpace(newTitle)
	newBody = normalizeBody(newBody)
	if err := validateContent(newTitle, newBody, "", ""); err != nil {
		return nil, err
	}
	if newTitle == "" {
		newTitle = DefaultTitle
	}

	note, err := s.repo.GetNoteByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	note.Title = newTitle
	note.Body = newBody
	if err := s.repo.UpdateNote(ctx, note); err != nil {
		s.logger.Error("failed to update note",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("note updated", slog.String("id", id), slog.String("owner", owner))

	return note, nil
}

// Delete removes an owned note and renumbers the remaining notes
// densely as 0..n-1 in their current display order, closing the gap the
// deletion left. The rewrite is O(n) per delete, which is fine at
// personal-notes scale.
func (s *NoteService) Delete(ctx context.Context, owner, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "note ID is required")
	}

	if err := s.repo.DeleteNote(ctx, owner, id); err != nil {
		return err
	}

	remaining, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return fmt.Errorf("listing notes after delete: %w", err)
	}
	for i, n := range remaining {
		if n.Position == i {
			continue
		}
		if err := s.repo.SetPosition(ctx, owner, n.ID, i); err != nil {
			return fmt.Errorf("renumbering note %s after delete: %w", n.ID, err)
		}
	}

	s.logger.Info("note deleted",
		slog.String("id", id),
		slog.String("owner", owner),
		slog.Int("remaining", len(remaining)),
	)

	return nil
}

// Reposition applies a bulk position update, returning how many notes
// were written.
//
// Ownership of the entire batch is validated before any write; a batch
// naming any note the caller does not own is rejected whole. The writes
// themselves are applied per note — not atomically — so a failure
// midway leaves the earlier updates in place (accepted limitation; the
// client retries with a fresh list). Positions are stored verbatim:
// the drag-and-drop client supplies a dense sequence, and unlike
// Delete, this path does not enforce density.
func (s *NoteService) Reposition(ctx context.Context, owner string, positions []model.NotePosition) (int, error) {
	if len(positions) == 0 {
		return 0, apperror.ValidationFailed("positions", "position list is empty")
	}

	ids := make([]string, 0, len(positions))
	seen := make(map[string]bool, len(positions))
	for _, p := range positions {
		if strings.TrimSpace(p.ID) == "" {
			return 0, apperror.ValidationFailed("positions", "every entry needs a note id")
		}
		if seen[p.ID] {
			return 0, apperror.ValidationFailed("positions", fmt.Sprintf("note %s appears more than once", p.ID))
		}
		seen[p.ID] = true
		ids = append(ids, p.ID)
	}

	owned, err := s.repo.CountOwned(ctx, owner, ids)
	if err != nil {
		return 0, fmt.Errorf("validating note ownership: %w", err)
	}
	if owned != len(ids) {
		return 0, apperror.Forbidden("one or more notes do not belong to you")
	}

	updated := 0
	for _, p := range positions {
		if err := s.repo.SetPosition(ctx, owner, p.ID, p.Position); err != nil {
			s.logger.Error("reposition batch failed partway",
				slog.String("owner", owner),
				slog.String("id", p.ID),
				slog.Int("updated", updated),
				slog.String("error", err.Error()),
			)
			return updated, fmt.Errorf("setting position of note %s: %w", p.ID, err)
		}
		updated++
	}

	s.logger.Info("notes repositioned",
		slog.String("owner", owner),
		slog.Int("count", updated),
	)

	return updated, nil
}

// normalizeBody collapses a whitespace-only body to the empty string so
// the stored value agrees with the emptiness check. Bodies with real
// content keep their surrounding whitespace untouched.
func normalizeBody(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return body
}

// validateContent applies the shared size limits.
func validateContent(title, body, image, drawing string) error {
	if len(title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if len(body) > MaxBodyLength {
		return apperror.ValidationFailed("body",
			fmt.Sprintf("body must be %d characters or less", MaxBodyLength))
	}
	if len(image) > MaxMediaBytes {
		return apperror.ValidationFailed("image", "image payload is too large")
	}
	if len(drawing) > MaxMediaBytes {
		return apperror.ValidationFailed("drawing", "drawing payload is too large")
	}
	return nil
}
