package config

import (
	"testing"
	"time"
)

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("MEDICART_APP_ENV", "production")
	t.Setenv("MEDICART_APP_PORT", "8081")
	t.Setenv("MEDICART_FULFILLMENT_API_KEY", "test-key")
}

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if !cfg.App.IsProd() || cfg.App.IsDev() {
		t.Fatal("environment predicates inconsistent with production")
	}
	if cfg.Fulfillment.DefaultZipcode != "380013" {
		t.Fatalf("unexpected default zipcode %q", cfg.Fulfillment.DefaultZipcode)
	}
	if cfg.Fulfillment.DeliveryType != "delivery" {
		t.Fatalf("unexpected delivery type %q", cfg.Fulfillment.DeliveryType)
	}
	if got := cfg.Search.DebounceInterval; got != 300*time.Millisecond {
		t.Fatalf("expected 300ms debounce default, got %v", got)
	}
	if cfg.Redis.Enabled() {
		t.Fatal("redis should be disabled with no endpoint configured")
	}
}

func TestEnvironmentPredicates(t *testing.T) {
	cases := []struct {
		env    string
		isDev  bool
		isProd bool
	}{
		{"development", true, false},
		{"production", false, true},
		{"Production", false, true},
		{"staging", false, false},
		{"", false, false},
	}

	for _, tc := range cases {
		app := AppConfig{Env: tc.env}
		if app.IsDev() != tc.isDev || app.IsProd() != tc.isProd {
			t.Fatalf("env %q: IsDev=%v IsProd=%v", tc.env, app.IsDev(), app.IsProd())
		}
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("MEDICART_FULFILLMENT_API_KEY", "   ")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing fulfillment api key to return an error")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("MEDICART_APP_PORT", "8081")
	t.Setenv("MEDICART_FULFILLMENT_API_KEY", "test-key")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestRedisEnabled(t *testing.T) {
	if (RedisConfig{}).Enabled() {
		t.Fatal("empty config must be disabled")
	}
	if !(RedisConfig{URL: "redis://localhost:6379"}).Enabled() {
		t.Fatal("url alone enables redis")
	}
	if !(RedisConfig{Address: "localhost:6379"}).Enabled() {
		t.Fatal("address alone enables redis")
	}
}
