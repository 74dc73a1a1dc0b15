package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tapqyr/analytics/store"
)

func TestTodoStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	base := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	due := base.Add(72 * time.Hour)
	high := "high"

	todos := []*store.Todo{
		{UserID: "u1", Title: "write report", Completed: true, CreatedAt: base, DueDate: &due, Priority: &high},
		{UserID: "u1", Title: "review", CreatedAt: base.Add(24 * time.Hour), IsAIGenerated: true},
		{UserID: "u2", Title: "plan", Completed: true, CreatedAt: base.Add(-24 * time.Hour)},
	}
	for _, todo := range todos {
		_, err := ts.CreateTodo(ctx, todo)
		require.NoError(t, err)
	}

	userID := "u1"
	list, err := ts.ListTodos(ctx, &store.FindTodo{UserID: &userID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "write report", list[0].Title)
	require.True(t, list[0].Completed)
	require.NotNil(t, list[0].DueDate)
	require.True(t, list[0].DueDate.Equal(due))
	require.Equal(t, "high", *list[0].Priority)
	require.False(t, list[0].IsAIGenerated)
	require.Nil(t, list[1].Priority)
	require.Nil(t, list[1].DueDate)
	require.True(t, list[1].IsAIGenerated)

	count, err := ts.CountTodos(ctx, &store.FindTodo{UserID: &userID})
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	start, end := base, base
	list, err = ts.ListTodos(ctx, &store.FindTodo{CreatedAfter: &start, CreatedBefore: &end})
	require.NoError(t, err)
	require.Len(t, list, 1)

	start, end = base.Add(-48*time.Hour), base
	list, err = ts.ListTodos(ctx, &store.FindTodo{UserID: &userID, CreatedAfter: &start, CreatedBefore: &end})
	require.NoError(t, err)
	require.Len(t, list, 1)

	completed := false
	list, err = ts.ListTodos(ctx, &store.FindTodo{Completed: &completed})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "review", list[0].Title)
}

func TestTodoCompletionCounts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	now := time.Now()
	for _, todo := range []*store.Todo{
		{UserID: "b", Completed: true, CreatedAt: now},
		{UserID: "b", CreatedAt: now},
		{UserID: "a", Completed: true, CreatedAt: now},
	} {
		_, err := ts.CreateTodo(ctx, todo)
		require.NoError(t, err)
	}

	rows, err := ts.ListTodoCompletionCounts(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, &store.TodoCompletionCount{UserID: "a", CompletedCount: 1, TotalCount: 1}, rows[0])
	require.Equal(t, &store.TodoCompletionCount{UserID: "b", CompletedCount: 1, TotalCount: 2}, rows[1])
}
