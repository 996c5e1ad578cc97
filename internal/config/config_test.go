package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("CONTEXT_WINDOW", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected default llm provider openai, got %s", cfg.LLMProvider)
	}
	if cfg.ContextWindow != 5 {
		t.Fatalf("expected default context window 5, got %d", cfg.ContextWindow)
	}
	if cfg.LLMTimeout != 30*time.Second {
		t.Fatalf("expected default llm timeout, got %s", cfg.LLMTimeout)
	}
	if cfg.SalonName != "Gloss & Glow Hair Salon" {
		t.Fatalf("expected default salon name, got %s", cfg.SalonName)
	}
	if cfg.EmailProvider != "stub" {
		t.Fatalf("expected default email provider stub, got %s", cfg.EmailProvider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LLM_PROVIDER", "Bedrock")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("CONTEXT_WINDOW", "8")
	t.Setenv("LLM_TIMEOUT", "45s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.LLMProvider != "bedrock" {
		t.Fatalf("expected normalized llm provider, got %s", cfg.LLMProvider)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.ContextWindow != 8 {
		t.Fatalf("expected context window override, got %d", cfg.ContextWindow)
	}
	if cfg.LLMTimeout != 45*time.Second {
		t.Fatalf("expected llm timeout override, got %s", cfg.LLMTimeout)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("expected parsed cors origins, got %v", cfg.CORSAllowedOrigins)
	}
}
