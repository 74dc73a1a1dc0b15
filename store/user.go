package store

import "time"

// User is an account of the todo backend. Only the fields read by analytics are mapped.
type User struct {
	ID        string
	Email     string
	Name      *string
	CreatedAt time.Time
	LastLogin *time.Time

	OnboardingComplete *bool

	// Optional profile context.
	WorkDescription *string
	ShortTermGoals  *string
	LongTermGoals   *string
	OtherContext    *string
}

// FindUser specifies the conditions for finding users.
// CreatedAfter and CreatedBefore are both inclusive.
type FindUser struct {
	ID            *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
