package db

import (
	"github.com/pkg/errors"

	"github.com/tapqyr/analytics/internal/profile"
	"github.com/tapqyr/analytics/store"
	"github.com/tapqyr/analytics/store/db/postgres"
	"github.com/tapqyr/analytics/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
// PostgreSQL is the production backend; SQLite serves development, demo and tests.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
