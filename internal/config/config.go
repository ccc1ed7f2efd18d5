// Package config loads the server configuration from the environment.
//
// A .env file in the working directory is read first if present (via
// godotenv), so local development does not need exported variables. Values
// already set in the process environment win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port      int
	LogLevel  string // debug, info, warn, error
	LogFormat string // text or json

	// DatabaseURL selects the PostgreSQL store. When empty the embedded
	// SQLite store at DBPath is used.
	DatabaseURL string
	DBPath      string

	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	GoogleMapsAPIKey   string

	CORSOrigins  []string
	MaxBodyBytes int64

	// FrontendURL is where the browser lands after sign-in. Defaults to the
	// first CORS origin.
	FrontendURL string
}

// AuthEnabled reports whether enough is configured to run the Google login
// flow and to issue session tokens.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != "" && c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Load reads .env (if any) and the environment into a Config.
// Malformed numeric values are reported together in one error.
func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an
// error.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Config{
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBPath:             getEnv("DB_PATH", "data/pawpoll.db"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleMapsAPIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var problems []string

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT=%q is not a valid port", os.Getenv("PORT")))
	}
	cfg.Port = port

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || maxBody <= 0 {
		problems = append(problems, fmt.Sprintf("MAX_BODY_BYTES=%q is not a positive integer", os.Getenv("MAX_BODY_BYTES")))
	}
	cfg.MaxBodyBytes = maxBody

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("LOG_FORMAT=%q must be text or json", cfg.LogFormat))
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}

	cfg.GoogleCallbackURL = getEnv("GOOGLE_CALLBACK_URL",
		fmt.Sprintf("http://localhost:%d/auth/google/callback", cfg.Port))

	frontend := "/"
	if len(cfg.CORSOrigins) > 0 {
		frontend = cfg.CORSOrigins[0]
	}
	cfg.FrontendURL = strings.TrimRight(getEnv("FRONTEND_URL", frontend), "/")
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "/"
	}

	return cfg, nil
}

// getEnv returns the value of key, or fallback if it is unset or empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
