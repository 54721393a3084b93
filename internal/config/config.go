package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string
	SiteID   string

	DBDriver string // sqlite|postgres|pq
	DBDSN    string

	HMACSecret      string
	EnableLocalAuth bool

	// bootstrap admin, created on boot when the users table has no such user
	AdminUser     string
	AdminPassword string

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	RedisAddr     string // empty disables the quiz cache
	RedisPassword string
	RedisDB       int
	QuizCacheTTL  time.Duration

	RabbitMQURL string // empty disables queue publishing
	EventQueue  string

	RequestTimeout time.Duration
}

// FromEnv reads configuration from the environment, loading ./.env first
// when it exists. Values already set in the environment win over .env.
func FromEnv() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: .env ignored: %v", err)
	}

	mode := Mode(envOr("MODE", string(ModeOffline)))
	return Config{
		Mode:               mode,
		HTTPAddr:           envOr("HTTP_ADDR", ":8080"),
		SiteID:             envOr("SITE_ID", "local"),
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		HMACSecret:         envOr("AUTH_HMAC_SECRET", "dev-secret-change-me"),
		EnableLocalAuth:    envBool("ENABLE_LOCAL_AUTH", true),
		AdminUser:          envOr("ADMIN_USER", "admin"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://quiz.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:3010"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		QuizCacheTTL:  envDuration("QUIZ_CACHE_TTL", 10*time.Minute),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
		EventQueue:  envOr("EVENT_QUEUE", "quiz.attempt.submitted"),

		RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

// CORSOrigins returns the allow-list for the configured mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
