package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tapqyr/analytics/store"
)

func (d *DB) CreateTodo(ctx context.Context, create *store.Todo) (*store.Todo, error) {
	if create.ID == "" {
		create.ID = uuid.NewString()
	}
	if create.CreatedAt.IsZero() {
		create.CreatedAt = time.Now()
	}

	fields := []string{`"id"`, `"userId"`, `"title"`, `"completed"`, `"createdAt"`, `"dueDate"`, `"priority"`, `"isAIGenerated"`}
	args := []any{
		create.ID, create.UserID, create.Title, create.Completed, toMillis(create.CreatedAt),
		toNullMillis(create.DueDate), create.Priority, create.IsAIGenerated,
	}

	stmt := `INSERT INTO todos (` + strings.Join(fields, ", ") + `) VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return create, nil
}

func todoWhere(find *store.FindTodo) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, `"id" = `+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, `"userId" = `+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Completed; v != nil {
		if *v {
			where = append(where, `"completed" = 1`)
		} else {
			where = append(where, `("completed" = 0 OR "completed" IS NULL)`)
		}
	}
	if v := find.CreatedAfter; v != nil {
		where, args = append(where, `"createdAt" >= `+placeholder(len(args)+1)), append(args, toMillis(*v))
	}
	if v := find.CreatedBefore; v != nil {
		where, args = append(where, `"createdAt" <= `+placeholder(len(args)+1)), append(args, toMillis(*v))
	}
	return where, args
}

func (d *DB) ListTodos(ctx context.Context, find *store.FindTodo) ([]*store.Todo, error) {
	if find == nil {
		return nil, fmt.Errorf("find parameter cannot be nil")
	}
	where, args := todoWhere(find)

	query := `SELECT "id", "userId", "title", "completed", "createdAt", "dueDate", "priority", "isAIGenerated"
		FROM todos WHERE ` + strings.Join(where, " AND ") + ` ORDER BY "createdAt" ASC, "id" ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Todo, 0)
	for rows.Next() {
		var (
			todo                   store.Todo
			createdAt              int64
			completed, ai, dueDate sql.NullInt64
			priority               sql.NullString
		)
		if err := rows.Scan(
			&todo.ID,
			&todo.UserID,
			&todo.Title,
			&completed,
			&createdAt,
			&dueDate,
			&priority,
			&ai,
		); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todo.Completed = completed.Valid && completed.Int64 != 0
		todo.IsAIGenerated = ai.Valid && ai.Int64 != 0
		todo.CreatedAt = time.UnixMilli(createdAt)
		todo.DueDate = fromNullMillis(dueDate)
		todo.Priority = nullStringPtr(priority)
		list = append(list, &todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return list, nil
}

func (d *DB) CountTodos(ctx context.Context, find *store.FindTodo) (int64, error) {
	if find == nil {
		return 0, fmt.Errorf("find parameter cannot be nil")
	}
	where, args := todoWhere(find)

	var count int64
	query := `SELECT COUNT(*) FROM todos WHERE ` + strings.Join(where, " AND ")
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return count, nil
}

func (d *DB) ListTodoCompletionCounts(ctx context.Context) ([]*store.TodoCompletionCount, error) {
	query := `SELECT "userId",
			COUNT(CASE WHEN "completed" = 1 THEN 1 END) AS completed_count,
			COUNT("id") AS total_count
		FROM todos GROUP BY "userId" ORDER BY "userId" ASC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list todo completion counts: %w", err)
	}
	defer rows.Close()

	list := make([]*store.TodoCompletionCount, 0)
	for rows.Next() {
		row := &store.TodoCompletionCount{}
		if err := rows.Scan(&row.UserID, &row.CompletedCount, &row.TotalCount); err != nil {
			return nil, fmt.Errorf("failed to scan todo completion count: %w", err)
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todo completion counts: %w", err)
	}
	return list, nil
}
