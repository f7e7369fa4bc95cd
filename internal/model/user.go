// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// PasswordHash carries the bcrypt digest and is tagged `json:"-"` so it
// can never leak into a response body, no matter which layer serializes
// the struct. That single tag is what enforces the "password digest is
// excluded from every payload" rule — handlers don't have to remember
// to strip it.
//
// DarkMode is a plain bool (not *bool): an account that never touched
// the preference simply reads as light mode.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"` // unique, case-sensitive
	Email        string    `json:"email"`    // unique
	PasswordHash string    `json:"-"`        // bcrypt digest, never serialized
	DarkMode     bool      `json:"darkMode"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
