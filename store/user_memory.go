package store

import "time"

// UserMemory holds the assistant's long-lived memory about a user.
// The JSON fields are opaque to analytics; only their presence matters.
type UserMemory struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time

	TaskPreferences    *string // JSON
	WorkPatterns       *string // JSON
	InteractionHistory *string // JSON
	UserPersona        *string // JSON
	MemoryText         *string
}

// FindUserMemory specifies the conditions for finding a user memory.
type FindUserMemory struct {
	UserID *string
}
