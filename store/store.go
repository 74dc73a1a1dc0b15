package store

import (
	"context"

	"github.com/tapqyr/analytics/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	return s.driver.CreateUser(ctx, create)
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

// GetUser returns the first matching user, or nil without error when none matches.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) CountUsers(ctx context.Context, find *FindUser) (int64, error) {
	return s.driver.CountUsers(ctx, find)
}

func (s *Store) CreateTodo(ctx context.Context, create *Todo) (*Todo, error) {
	return s.driver.CreateTodo(ctx, create)
}

func (s *Store) ListTodos(ctx context.Context, find *FindTodo) ([]*Todo, error) {
	return s.driver.ListTodos(ctx, find)
}

func (s *Store) CountTodos(ctx context.Context, find *FindTodo) (int64, error) {
	return s.driver.CountTodos(ctx, find)
}

func (s *Store) ListTodoCompletionCounts(ctx context.Context) ([]*TodoCompletionCount, error) {
	return s.driver.ListTodoCompletionCounts(ctx)
}

func (s *Store) UpsertUserMemory(ctx context.Context, upsert *UserMemory) (*UserMemory, error) {
	return s.driver.UpsertUserMemory(ctx, upsert)
}

// GetUserMemory returns nil without error when the user has no memory record.
func (s *Store) GetUserMemory(ctx context.Context, find *FindUserMemory) (*UserMemory, error) {
	return s.driver.GetUserMemory(ctx, find)
}
