// Package repository declares the persistence interfaces the services
// program against. The sqlite subpackage provides the implementation;
// tests substitute in-memory mocks.
//
// Every note operation takes the owner explicitly. Isolation between
// users is enforced purely by these owner filters — there are no
// store-level transactions spanning users and no shared mutable state
// outside the store.
package repository

import (
	"context"

	"github.com/sajal/inkpad/internal/model"
)

// UserRepository persists user accounts. Implementations assign the ID
// and timestamps on insert and must enforce username/email uniqueness,
// surfacing violations as apperror.ErrConflict.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserByUsername matches exactly and case-sensitively.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	SetDarkMode(ctx context.Context, id string, darkMode bool) error
}

// NoteRepository persists notes. Implementations assign the ID and
// timestamps on insert. Lookups/mutations taking (owner, id) must match
// both, so a note that exists but belongs to someone else reads as
// not found.
type NoteRepository interface {
	CreateNote(ctx context.Context, note *model.Note) error
	GetNoteByID(ctx context.Context, owner, id string) (*model.Note, error)
	// ListByOwner returns all of owner's notes ordered by position
	// ascending with creation time breaking ties; notes without a
	// stored position come last (Position == model.NoPosition),
	// ordered among themselves by creation time.
	ListByOwner(ctx context.Context, owner string) ([]model.Note, error)
	// UpdateNote persists title and body only.
	UpdateNote(ctx context.Context, note *model.Note) error
	DeleteNote(ctx context.Context, owner, id string) error
	CountByOwner(ctx context.Context, owner string) (int, error)
	SetPosition(ctx context.Context, owner, id string, position int) error
	// CountOwned reports how many of the given ids belong to owner.
	CountOwned(ctx context.Context, owner string, ids []string) (int, error)
}
