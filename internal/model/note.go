package model

import "time"

// NoPosition marks a note whose stored record predates the position
// column. Such notes only exist as legacy data; the service backfills a
// real position on the first List that sees one, so NoPosition never
// reaches a client.
const NoPosition = -1

// Note represents a single note owned by exactly one user.
//
// Image and Drawing are opaque encoded blobs (the client sends data
// URLs). Absent is the empty string rather than a *string — same
// convention the rest of the model uses for optional text, and
// `omitempty` keeps absent media out of the JSON entirely. The service
// layer enforces the size ceiling; the store treats them as opaque.
//
// Position defines the manual display order among one owner's notes,
// ascending, with CreatedAt breaking ties.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Image     string    `json:"image,omitempty"`
	Drawing   string    `json:"drawing,omitempty"`
	Position  int       `json:"position"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NotePosition is one entry of a bulk reorder request: set the note
// with ID to exactly Position.
type NotePosition struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}
