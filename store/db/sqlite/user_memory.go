package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tapqyr/analytics/store"
)

func (d *DB) UpsertUserMemory(ctx context.Context, upsert *store.UserMemory) (*store.UserMemory, error) {
	if upsert.ID == "" {
		upsert.ID = uuid.NewString()
	}
	now := time.Now().UnixMilli()

	stmt := `INSERT INTO user_memories ("id", "userId", "createdAt", "updatedAt",
			"taskPreferences", "workPatterns", "interactionHistory", "userPersona", "memoryText")
		VALUES (` + placeholders(9) + `)
		ON CONFLICT ("userId") DO UPDATE SET
			"updatedAt" = excluded."updatedAt",
			"taskPreferences" = excluded."taskPreferences",
			"workPatterns" = excluded."workPatterns",
			"interactionHistory" = excluded."interactionHistory",
			"userPersona" = excluded."userPersona",
			"memoryText" = excluded."memoryText"
		RETURNING "id", "createdAt", "updatedAt"`

	var createdAt, updatedAt int64
	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.ID, upsert.UserID, now, now,
		upsert.TaskPreferences, upsert.WorkPatterns, upsert.InteractionHistory, upsert.UserPersona, upsert.MemoryText,
	).Scan(&upsert.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to upsert user_memories: %w", err)
	}
	upsert.CreatedAt = time.UnixMilli(createdAt)
	upsert.UpdatedAt = time.UnixMilli(updatedAt)
	return upsert, nil
}

func (d *DB) GetUserMemory(ctx context.Context, find *store.FindUserMemory) (*store.UserMemory, error) {
	if find == nil || find.UserID == nil {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `SELECT "id", "userId", "createdAt", "updatedAt",
			"taskPreferences", "workPatterns", "interactionHistory", "userPersona", "memoryText"
		FROM user_memories WHERE "userId" = ` + placeholder(1)

	var (
		result                                  store.UserMemory
		createdAt, updatedAt                    int64
		prefs, patterns, history, persona, text sql.NullString
	)
	err := d.db.QueryRowContext(ctx, query, *find.UserID).Scan(
		&result.ID,
		&result.UserID,
		&createdAt,
		&updatedAt,
		&prefs,
		&patterns,
		&history,
		&persona,
		&text,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get user_memories: %w", err)
	}
	result.CreatedAt = time.UnixMilli(createdAt)
	result.UpdatedAt = time.UnixMilli(updatedAt)
	result.TaskPreferences = nullStringPtr(prefs)
	result.WorkPatterns = nullStringPtr(patterns)
	result.InteractionHistory = nullStringPtr(history)
	result.UserPersona = nullStringPtr(persona)
	result.MemoryText = nullStringPtr(text)
	return &result, nil
}
