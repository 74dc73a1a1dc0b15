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

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	if create.ID == "" {
		create.ID = uuid.NewString()
	}
	if create.CreatedAt.IsZero() {
		create.CreatedAt = time.Now()
	}

	fields := []string{`"id"`, `"email"`, `"name"`, `"createdAt"`, `"lastLogin"`, `"onboardingComplete"`,
		`"workDescription"`, `"shortTermGoals"`, `"longTermGoals"`, `"otherContext"`}
	args := []any{
		create.ID, create.Email, create.Name, toMillis(create.CreatedAt), toNullMillis(create.LastLogin), toNullBool(create.OnboardingComplete),
		create.WorkDescription, create.ShortTermGoals, create.LongTermGoals, create.OtherContext,
	}

	stmt := `INSERT INTO users (` + strings.Join(fields, ", ") + `) VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return create, nil
}

func userWhere(find *store.FindUser) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, `"id" = `+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatedAfter; v != nil {
		where, args = append(where, `"createdAt" >= `+placeholder(len(args)+1)), append(args, toMillis(*v))
	}
	if v := find.CreatedBefore; v != nil {
		where, args = append(where, `"createdAt" <= `+placeholder(len(args)+1)), append(args, toMillis(*v))
	}
	return where, args
}

func (d *DB) ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error) {
	if find == nil {
		return nil, fmt.Errorf("find parameter cannot be nil")
	}
	where, args := userWhere(find)

	query := `SELECT "id", "email", "name", "createdAt", "lastLogin", "onboardingComplete",
			"workDescription", "shortTermGoals", "longTermGoals", "otherContext"
		FROM users WHERE ` + strings.Join(where, " AND ") + ` ORDER BY "createdAt" ASC, "id" ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	list := make([]*store.User, 0)
	for rows.Next() {
		var (
			user                                  store.User
			createdAt                             int64
			lastLogin, onboarding                 sql.NullInt64
			name, work, shortGoals, longGoals, oc sql.NullString
		)
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&name,
			&createdAt,
			&lastLogin,
			&onboarding,
			&work,
			&shortGoals,
			&longGoals,
			&oc,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.CreatedAt = time.UnixMilli(createdAt)
		user.Name = nullStringPtr(name)
		user.LastLogin = fromNullMillis(lastLogin)
		user.OnboardingComplete = nullBoolPtr(onboarding)
		user.WorkDescription = nullStringPtr(work)
		user.ShortTermGoals = nullStringPtr(shortGoals)
		user.LongTermGoals = nullStringPtr(longGoals)
		user.OtherContext = nullStringPtr(oc)
		list = append(list, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return list, nil
}

func (d *DB) CountUsers(ctx context.Context, find *store.FindUser) (int64, error) {
	if find == nil {
		return 0, fmt.Errorf("find parameter cannot be nil")
	}
	where, args := userWhere(find)

	var count int64
	query := `SELECT COUNT(*) FROM users WHERE ` + strings.Join(where, " AND ")
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
