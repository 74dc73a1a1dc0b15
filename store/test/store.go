package test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/tapqyr/analytics/internal/profile"
	"github.com/tapqyr/analytics/store"
	"github.com/tapqyr/analytics/store/db"
)

// NewTestingStore returns a migrated store for tests.
// SQLite is used unless DRIVER=postgres and POSTGRES_TEST_DSN are set.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	return newTestingStoreWithMode(ctx, t, "dev")
}

// NewDemoTestingStore returns a migrated store seeded with demo data.
func NewDemoTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	return newTestingStoreWithMode(ctx, t, "demo")
}

func newTestingStoreWithMode(ctx context.Context, t *testing.T, mode string) *store.Store {
	profile := getTestingProfile(t, mode)
	dbDriver, err := db.NewDBDriver(profile)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	ts := store.New(dbDriver, profile)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		if err := ts.Close(); err != nil {
			t.Logf("failed to close store: %v", err)
		}
	})
	return ts
}

func getTestingProfile(t *testing.T, mode string) *profile.Profile {
	driver := getDriverFromEnv()
	dir := t.TempDir()

	p := &profile.Profile{
		Mode:     mode,
		Data:     dir,
		Driver:   driver,
		Version:  "test",
		Timezone: "UTC",
	}
	switch driver {
	case "postgres":
		p.DSN = os.Getenv("POSTGRES_TEST_DSN")
		if p.DSN == "" {
			t.Skip("POSTGRES_TEST_DSN is not set")
		}
	default:
		p.DSN = filepath.Join(dir, fmt.Sprintf("analytics_%s.db", mode))
	}
	return p
}

func getDriverFromEnv() string {
	driver := os.Getenv("DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	return driver
}
