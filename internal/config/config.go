// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup. It is read once in
// main and never mutated afterwards.
type Config struct {
	Port        int
	DBPath      string // SQLite file path, used when DatabaseURL is empty
	DatabaseURL string // Postgres connection string; selects the pgx backend when set
	JWTSecret   string
	BcryptCost  int // 0 means the hasher's default
}

// Load reads environment variables, optionally from a .env file if one is
// present in the working directory.
//
// JWT_SECRET is the only required variable — tokens can't be signed
// without it, so a missing secret is a startup error rather than a
// per-request surprise.
func Load() (Config, error) {
	// Best effort: a missing .env file is fine, real env vars still apply.
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnvInt("PORT", 8080),
		DBPath:      getEnv("DB_PATH", "data/accounts.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		BcryptCost:  getEnvInt("BCRYPT_COST", 0),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: JWT_SECRET must be set")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
