package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // APP_TIMEZONE must resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env             string         // application environment (e.g. "dev", "prod")
	Port            string         // HTTP port to listen on
	DBUser          string         // database username
	DBPass          string         // database password (optional)
	DBHost          string         // database host address
	DBPort          string         // database port number
	DBName          string         // database name
	JWTSecret       string         // secret used to sign session tokens
	SessionTTLMin   int            // session lifetime in minutes
	BcryptCost      int            // bcrypt cost for password hashing
	RecoveryKeyHash string         // bcrypt hash of the emergency recovery key; empty disables reset
	CookieSecure    bool           // mark the session cookie Secure
	Location        *time.Location // time zone used for calendar ranges
}

// LoadDotEnv seeds the process environment from a .env file when one
// exists.  Variables already set in the environment win.  It reports
// whether a file was loaded.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// Load reads configuration values from environment variables.  Every
// missing or malformed required variable is reported in a single error.
func Load() (Config, error) {
	var errs []error
	req := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("missing required env var: %s", key))
		}
		return v
	}
	reqInt := func(key string) int {
		s := req(key)
		if s == "" {
			return 0
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid int for %s: %q", key, s))
		}
		return n
	}

	cfg := Config{
		Env:             req("APP_ENV"),
		Port:            req("APP_PORT"),
		DBUser:          req("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"),
		DBHost:          req("DB_HOST"),
		DBPort:          req("DB_PORT"),
		DBName:          req("DB_NAME"),
		JWTSecret:       req("JWT_SECRET"),
		SessionTTLMin:   reqInt("SESSION_TTL_MIN"),
		BcryptCost:      reqInt("BCRYPT_COST"),
		RecoveryKeyHash: os.Getenv("RECOVERY_KEY_HASH"),
		CookieSecure:    envBool("COOKIE_SECURE", false),
	}

	tz := envStr("APP_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tz, err))
		loc = time.UTC
	}
	cfg.Location = loc

	if cfg.SessionTTLMin < 0 {
		errs = append(errs, errors.New("SESSION_TTL_MIN must not be negative"))
	}
	return cfg, errors.Join(errs...)
}

// DSN builds the MySQL data source name.  parseTime=true maps DATETIME to
// time.Time and loc=UTC keeps stored times consistent.
func (c Config) DSN() string {
	auth := c.DBUser
	if c.DBPass != "" {
		auth = fmt.Sprintf("%s:%s", c.DBUser, c.DBPass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, c.DBHost, c.DBPort, c.DBName)
}

// SessionTTL returns the session lifetime as a duration.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

// IsDev reports whether the application runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local":
		return true
	}
	return false
}
