package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tapqyr/analytics/store"
)

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	initialized, err := ts.GetDriver().IsInitialized(ctx)
	require.NoError(t, err)
	require.True(t, initialized)

	require.NoError(t, ts.Migrate(ctx))
}

func TestMigrateSeedsDemoData(t *testing.T) {
	if getDriverFromEnv() != "sqlite" {
		t.Skip("demo seed only ships for SQLite")
	}

	t.Parallel()
	ctx := context.Background()
	ts := NewDemoTestingStore(ctx, t)

	users, err := ts.ListUsers(ctx, &store.FindUser{})
	require.NoError(t, err)
	require.NotEmpty(t, users)

	todos, err := ts.ListTodos(ctx, &store.FindTodo{})
	require.NoError(t, err)
	require.NotEmpty(t, todos)
}
