package store

import "time"

// Todo is a user-owned task as written by the todo backend.
type Todo struct {
	ID     string
	UserID string
	Title  string
	// Completed is false when the column is NULL.
	Completed bool
	CreatedAt time.Time
	DueDate   *time.Time
	// Priority is a free-form label; nil when the column is NULL.
	Priority      *string
	IsAIGenerated bool
}

// FindTodo specifies the conditions for finding todos.
// CreatedAfter and CreatedBefore are both inclusive.
type FindTodo struct {
	ID            *string
	UserID        *string
	Completed     *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// TodoCompletionCount is one row of the per-user completion aggregate.
type TodoCompletionCount struct {
	UserID         string
	CompletedCount int64
	TotalCount     int64
}
