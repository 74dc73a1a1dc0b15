package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	CountUsers(ctx context.Context, find *FindUser) (int64, error)

	// Todo model related methods.
	CreateTodo(ctx context.Context, create *Todo) (*Todo, error)
	ListTodos(ctx context.Context, find *FindTodo) ([]*Todo, error)
	CountTodos(ctx context.Context, find *FindTodo) (int64, error)
	ListTodoCompletionCounts(ctx context.Context) ([]*TodoCompletionCount, error)

	// UserMemory model related methods.
	UpsertUserMemory(ctx context.Context, upsert *UserMemory) (*UserMemory, error)
	GetUserMemory(ctx context.Context, find *FindUserMemory) (*UserMemory, error)
}
