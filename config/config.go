package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything main needs to wire the portal. Values come from
// the environment, optionally seeded from a .env file.
type Config struct {
	ListenAddr     string
	FrontendOrigin string

	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration

	JWTSecret []byte
	JWTTTL    time.Duration
}

func Load() Config {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	return Config{
		ListenAddr:      getenv("LISTEN_ADDR", ":5000"),
		FrontendOrigin:  getenv("FRONTEND_ORIGIN", "http://localhost:3000"),
		DSN:             getenv("DB_DSN", "root:@tcp(localhost:3306)/payment_system?parseTime=true"),
		MaxOpenConns:    getint("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getint("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getduration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		QueryTimeout:    getduration("QUERY_TIMEOUT", 5*time.Second),
		JWTSecret:       []byte(getenv("JWT_SECRET", "dev-only-secret")),
		JWTTTL:          getduration("JWT_TTL", 24*time.Hour),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
