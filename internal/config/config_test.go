package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("PORT", "3001")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("API_BASE_PATH", "api/") // no leading slash + trailing slash -> "/api"

	t.Setenv("DB_PATH", "db.sqlite")
	t.Setenv("UPLOAD_DIR", "files")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")

	t.Setenv("SMTP_USER", "intake@bahithi.com")
	t.Setenv("SMTP_PASS", "app-pass")
	t.Setenv("MAIL_FROM", "") // should fall back to SMTP_USER

	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("HSTS_MAX_AGE", "24h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "3001" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.ReadTimeout != 2*time.Second || cfg.WriteTimeout != 3*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, want normalized release", cfg.GinMode)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if !cfg.LogPretty {
		t.Errorf("LogPretty should parse truthy 'yes'")
	}
	if cfg.APIBasePath != "/api" {
		t.Errorf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.MaxUploadBytes != 1<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.Mail.From != "intake@bahithi.com" {
		t.Errorf("Mail.From = %q, want SMTP_USER fallback", cfg.Mail.From)
	}
	if !cfg.MailEnabled() {
		t.Errorf("MailEnabled should be true with user+pass set")
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Errorf("rate defaults = %v / %d", cfg.RateRPS, cfg.RateBurst)
	}
	if want := []string{"https://a.com", "http://b"}; !reflect.DeepEqual(cfg.CORS.AllowedOrigins, want) {
		t.Errorf("CORS origins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Errorf("HSTSMaxAge = %v", cfg.Security.HSTSMaxAge)
	}
}

func TestLoad_MailDisabledByDefault(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MailEnabled() {
		t.Fatalf("MailEnabled should be false without SMTP credentials")
	}
	if cfg.Mail.OperatorEmail == "" {
		t.Fatalf("OperatorEmail default missing")
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
		frag  string
	}{
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"bad sample ratio", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
		{"zero rate burst", "RATE_BURST", "0", "RATE_BURST"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.frag) {
				t.Fatalf("expected error mentioning %q, got %v", tc.frag, err)
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":      "/",
		"/":     "/",
		"api":   "/api",
		"/api/": "/api",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
