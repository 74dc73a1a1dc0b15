package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"

	"github.com/tapqyr/analytics/server/timezone"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to the database holding users and todos
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// Timezone is the IANA location used for calendar computations
	// (day of week, week bounds, days since registration).
	Timezone string // ANALYTICS_TIMEZONE (default: UTC)

	// Rate limiting per client IP
	RateLimitRPS   float64 // ANALYTICS_RATE_LIMIT_RPS (default: 10)
	RateLimitBurst int     // ANALYTICS_RATE_LIMIT_BURST (default: 20)

	// SimilarUsersConcurrency bounds the candidate fan-out of the similar users query.
	SimilarUsersConcurrency int // ANALYTICS_SIMILAR_USERS_CONCURRENCY (default: 8)

	// RequestTimeout bounds a single analytics request including store queries.
	RequestTimeout time.Duration // ANALYTICS_REQUEST_TIMEOUT (default: 30s)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Location returns the configured calendar location, falling back to UTC.
func (p *Profile) Location() *time.Location {
	loc, _ := timezone.ParseTimezone(p.Timezone)
	return loc
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// LoadDotEnv loads .env.local and .env from the working directory.
// Variables already present in the environment are left untouched.
func LoadDotEnv() error {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("ANALYTICS_DOTENV"))); v == "0" || v == "false" || v == "off" {
		return nil
	}

	for _, p := range []string{".env.local", ".env"} {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return pkgerrors.Wrapf(err, "failed to load %s", p)
		}
		slog.Debug("loaded env file", slog.String("path", p))
	}
	return nil
}

// FromEnv loads tuning configuration from ANALYTICS_* environment variables.
// Unparsable numbers keep their defaults.
func (p *Profile) FromEnv() {
	p.Timezone = getEnvOrDefault("ANALYTICS_TIMEZONE", "UTC")

	p.RateLimitRPS = 10
	if v, err := strconv.ParseFloat(os.Getenv("ANALYTICS_RATE_LIMIT_RPS"), 64); err == nil && v > 0 {
		p.RateLimitRPS = v
	}
	p.RateLimitBurst = 20
	if v, err := strconv.Atoi(os.Getenv("ANALYTICS_RATE_LIMIT_BURST")); err == nil && v > 0 {
		p.RateLimitBurst = v
	}
	p.SimilarUsersConcurrency = 8
	if v, err := strconv.Atoi(os.Getenv("ANALYTICS_SIMILAR_USERS_CONCURRENCY")); err == nil && v > 0 {
		p.SimilarUsersConcurrency = v
	}
	p.RequestTimeout = 30 * time.Second
	if v, err := time.ParseDuration(os.Getenv("ANALYTICS_REQUEST_TIMEOUT")); err == nil && v > 0 {
		p.RequestTimeout = v
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", pkgerrors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return pkgerrors.Errorf("unsupported driver %q", p.Driver)
	}

	if _, err := timezone.ParseTimezone(p.Timezone); err != nil {
		return err
	}

	if p.Driver == "postgres" {
		if p.DSN == "" {
			return pkgerrors.New("dsn required for postgres driver")
		}
		return nil
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "analytics")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/analytics"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.DSN == "" {
		dbFile := fmt.Sprintf("analytics_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
