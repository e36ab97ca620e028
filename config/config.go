// Package config assembles runtime configuration from the environment.
// Everything the application needs is carried in an explicit Config value;
// nothing else reads ambient environment state after startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv returns the environment value for key, or fallback when unset/empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Config is the full runtime configuration of the server.
type Config struct {
	Port           string
	AllowedOrigins []string

	// Auth
	JWTSecret       string
	TokenTTL        time.Duration
	CredentialsFile string

	// Storage: "postgres", "file" or "memory"
	StorageDriver string
	DatabaseDSN   string
	StateDir      string

	LLM LLM
}

// LLM configures the external generative-AI nutrition lookup.
type LLM struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Load reads the configuration from the environment.
func Load() Config {
	cfg := Config{
		Port:            GetEnv("PORT", "8080"),
		AllowedOrigins:  splitCSV(GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		JWTSecret:       GetEnv("JWT_SECRET", ""),
		TokenTTL:        durationEnv("TOKEN_TTL_HOURS", 24),
		CredentialsFile: GetEnv("CREDENTIALS_FILE", "credentials.json"),
		StorageDriver:   GetEnv("STORAGE_DRIVER", "postgres"),
		StateDir:        GetEnv("STATE_DIR", "data/state"),
		LLM: LLM{
			APIKey:  GetEnv("LLM_API_KEY", ""),
			BaseURL: GetEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:   GetEnv("LLM_MODEL", "gpt-4o-mini"),
			Timeout: 60 * time.Second,
		},
	}
	cfg.DatabaseDSN = databaseDSN()
	return cfg
}

func databaseDSN() string {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		return dsn
	}
	host := GetEnv("DB_HOST", "localhost")
	user := GetEnv("DB_USER", "postgres")
	password := GetEnv("DB_PASSWORD", "password")
	dbname := GetEnv("DB_NAME", "nutricalc")
	port := GetEnv("DB_PORT", "5432")
	sslmode := GetEnv("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationEnv(key string, fallbackHours int) time.Duration {
	hours, err := strconv.Atoi(GetEnv(key, strconv.Itoa(fallbackHours)))
	if err != nil || hours <= 0 {
		hours = fallbackHours
	}
	return time.Duration(hours) * time.Hour
}
