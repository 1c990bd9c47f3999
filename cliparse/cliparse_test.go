// cliparse/cliparse_test.go
package cliparse

import (
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "DATABASE_URL", "DATABASE_TYPE", "SESSION_SECRET", "ADMIN_KEY", "SESSION_TTL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("ADMIN_KEY", "test-admin")
	t.Setenv("SESSION_TTL", "30m")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %q", cfg.DatabaseType)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected 30m session ttl, got %v", cfg.SessionTTL)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-session-secret", "s1", "-admin-key", "k1"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite default, got %q", cfg.DatabaseType)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := ParseFlags([]string{"-session-secret", "s1", "-admin-key", "k1"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "file:polls.db" {
		t.Errorf("expected default sqlite file, got %q", cfg.DatabaseURL)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("expected 12h session ttl, got %v", cfg.SessionTTL)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "missing session secret", args: []string{"-admin-key", "k1"}},
		{name: "missing admin key", args: []string{"-session-secret", "s1"}},
		{name: "postgres without url", args: []string{"-t", "postgres", "-session-secret", "s1", "-admin-key", "k1"}},
		{name: "unknown database type", args: []string{"-t", "mysql", "-session-secret", "s1", "-admin-key", "k1"}},
		{name: "bad port env", args: []string{"-session-secret", "s1", "-admin-key", "k1"}, env: map[string]string{"PORT": "eighty"}},
		{name: "bad ttl env", args: []string{"-session-secret", "s1", "-admin-key", "k1"}, env: map[string]string{"SESSION_TTL": "forever"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
