package postgres

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
	now := time.Now()

	stmt := `INSERT INTO user_memories ("id", "userId", "createdAt", "updatedAt",
			"taskPreferences", "workPatterns", "interactionHistory", "userPersona", "memoryText")
		VALUES (` + placeholders(9) + `)
		ON CONFLICT ("userId") DO UPDATE SET
			"updatedAt" = EXCLUDED."updatedAt",
			"taskPreferences" = EXCLUDED."taskPreferences",
			"workPatterns" = EXCLUDED."workPatterns",
			"interactionHistory" = EXCLUDED."interactionHistory",
			"userPersona" = EXCLUDED."userPersona",
			"memoryText" = EXCLUDED."memoryText"
		RETURNING "id", "createdAt", "updatedAt"`

	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.ID, upsert.UserID, now, now,
		upsert.TaskPreferences, upsert.WorkPatterns, upsert.InteractionHistory, upsert.UserPersona, upsert.MemoryText,
	).Scan(&upsert.ID, &upsert.CreatedAt, &upsert.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to upsert user_memories: %w", err)
	}
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
		prefs, patterns, history, persona, text sql.NullString
	)
	err := d.db.QueryRowContext(ctx, query, *find.UserID).Scan(
		&result.ID,
		&result.UserID,
		&result.CreatedAt,
		&result.UpdatedAt,
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
	result.TaskPreferences = nullStringPtr(prefs)
	result.WorkPatterns = nullStringPtr(patterns)
	result.InteractionHistory = nullStringPtr(history)
	result.UserPersona = nullStringPtr(persona)
	result.MemoryText = nullStringPtr(text)
	return &result, nil
}
