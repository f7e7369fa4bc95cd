package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sajal/inkpad/internal/apperror"
	"github.com/sajal/inkpad/internal/model"
	"github.com/sajal/inkpad/internal/repository"
)

// compile-time check that *DB implements repository.NoteRepository
var _ repository.NoteRepository = (*DB)(nil)

const noteColumns = `id, title, body, image, drawing, position, owner, created_at, updated_at`

// CreateNote inserts a new note, assigning an xid and timestamps.
// The caller (the service) has already computed the position.
func (db *DB) CreateNote(ctx context.Context, note *model.Note) error {
	now := time.Now()
	note.ID = xid.New().String()
	note.CreatedAt = now
	note.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO notes (`+noteColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID,
		note.Title,
		note.Body,
		note.Image,
		note.Drawing,
		note.Position,
		note.Owner,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating note: %w", err)
	}

	return nil
}

// GetNoteByID retrieves a single note scoped by owner. A note owned by
// someone else is indistinguishable from a missing one.
func (db *DB) GetNoteByID(ctx context.Context, owner, id string) (*model.Note, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE owner = ? AND id = ?`,
		owner, id,
	)

	note, err := scanNote(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("note", id)
		}
		return nil, fmt.Errorf("sqlite: getting note %s: %w", id, err)
	}

	return note, nil
}

// ListByOwner returns all of owner's notes in display order.
//
// `position IS NULL` sorts false (0) before true (1), so positioned
// notes come first in position order and legacy position-less rows
// trail in creation order — exactly the shape the service's backfill
// walks.
func (db *DB) ListByOwner(ctx context.Context, owner string) ([]model.Note, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+noteColumns+`
		 FROM notes
		 WHERE owner = ?
		 ORDER BY position IS NULL, position, created_at`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		note, err := scanNote(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning note row: %w", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notes: %w", err)
	}

	return notes, nil
}

// scanNote reads one row of noteColumns. position is NULLable in the
// schema; a NULL surfaces as model.NoPosition so callers never see a
// silently-coerced zero.
func scanNote(scan func(...any) error) (*model.Note, error) {
	var (
		n        model.Note
		position sql.NullInt64
	)
	if err := scan(
		&n.ID,
		&n.Title,
		&n.Body,
		&n.Image,
		&n.Drawing,
		&position,
		&n.Owner,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if position.Valid {
		n.Position = int(position.Int64)
	} else {
		n.Position = model.NoPosition
	}

	return &n, nil
}

// UpdateNote persists title and body for an owned note. Position and
// media columns are deliberately not touched by this statement.
func (db *DB) UpdateNote(ctx context.Context, note *model.Note) error {
	note.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE notes SET title = ?, body = ?, updated_at = ?
		 WHERE owner = ? AND id = ?`,
		note.Title,
		note.Body,
		note.UpdatedAt,
		note.Owner,
		note.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating note %s: %w", note.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("note", note.ID)
	}

	return nil
}

// DeleteNote removes an owned note. The dense renumbering of the
// remaining notes is the service's job, not this statement's.
func (db *DB) DeleteNote(ctx context.Context, owner, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM notes WHERE owner = ? AND id = ?`,
		owner, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting note %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("note", id)
	}

	return nil
}

// CountByOwner returns how many notes the owner has. Create uses this
// as the next append position.
func (db *DB) CountByOwner(ctx context.Context, owner string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE owner = ?`, owner,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting notes for owner %s: %w", owner, err)
	}
	return count, nil
}

// SetPosition sets one owned note's position verbatim.
func (db *DB) SetPosition(ctx context.Context, owner, id string, position int) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE notes SET position = ?, updated_at = ? WHERE owner = ? AND id = ?`,
		position, time.Now(), owner, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting position of note %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("note", id)
	}

	return nil
}

// CountOwned reports how many of the given ids belong to owner. The
// service compares the result against len(ids) to validate a whole
// reposition batch before writing anything.
func (db *DB) CountOwned(ctx context.Context, owner string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids)+1)
	args = append(args, owner)
	for _, id := range ids {
		args = append(args, id)
	}

	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE owner = ? AND id IN (`+placeholders+`)`,
		args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting owned notes: %w", err)
	}

	return count, nil
}
