package config

import (
	"reflect"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "DB_DRIVER", "REDIS_ADDR", "REDIS_DB", "QUIZ_CACHE_TTL", "RABBITMQ_URL", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.Mode != ModeOffline || c.HTTPAddr != ":8080" || c.DBDriver != "sqlite" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.RedisAddr != "" || c.RabbitMQURL != "" {
		t.Fatalf("cache and queue must be off by default")
	}
	if c.QuizCacheTTL != 10*time.Minute || c.EventQueue != "quiz.attempt.submitted" {
		t.Fatalf("unexpected ttl/queue: %v %q", c.QuizCacheTTL, c.EventQueue)
	}
	if want := []string{"http://localhost:3000", "http://localhost:3010"}; !reflect.DeepEqual(c.CORSOrigins(), want) {
		t.Fatalf("cors = %v; want %v", c.CORSOrigins(), want)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("QUIZ_CACHE_TTL", "90s")
	t.Setenv("ENABLE_LOCAL_AUTH", "no")
	t.Setenv("CORS_ORIGINS_ONLINE", " https://a.example , ,https://b.example")

	c := FromEnv()
	if c.RedisDB != 3 || c.QuizCacheTTL != 90*time.Second || c.EnableLocalAuth {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(c.CORSOrigins(), want) {
		t.Fatalf("cors = %v; want %v", c.CORSOrigins(), want)
	}
}

func TestEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_DUR", "-5s")
	t.Setenv("X_BOOL", "maybe")
	if envInt("X_INT", 7) != 7 || envDuration("X_DUR", time.Second) != time.Second || !envBool("X_BOOL", true) {
		t.Fatalf("helpers must fall back to defaults")
	}
}
