package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes YAML content to a temp file and returns the path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "environment: development\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Database.Path == "" {
		t.Error("Database.Path should have a default")
	}
	if !cfg.Database.WALMode {
		t.Error("WALMode should default to true")
	}
	if cfg.Events.Enabled {
		t.Error("events should default to disabled")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: development
api:
  port: 9090
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
environment: development
database:
  path: ./from-file.db
`)

	t.Setenv("LOANLEDGER_DATABASE_PATH", "/from-env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/from-env.db" {
		t.Errorf("Database.Path = %q, want /from-env.db", cfg.Database.Path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestValidate_DevelopmentInjectsDevSecret(t *testing.T) {
	path := writeConfig(t, "environment: development\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Security.JWT.Secret == "" {
		t.Error("development should substitute the built-in dev secret")
	}
	if !cfg.UsingDevSecret() {
		t.Error("UsingDevSecret() should report the dev secret")
	}
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	path := writeConfig(t, "environment: production\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("production without a JWT secret should fail validation")
	}
	if !strings.Contains(err.Error(), "security.jwt.secret") {
		t.Errorf("error = %v, want mention of security.jwt.secret", err)
	}
}

func TestValidate_ProductionRejectsShortSecret(t *testing.T) {
	path := writeConfig(t, `
environment: production
security:
  jwt:
    secret: too-short
`)

	if _, err := Load(path); err == nil {
		t.Error("short production secret should fail validation")
	}
}

func TestValidate_ProductionAcceptsLongSecret(t *testing.T) {
	path := writeConfig(t, `
environment: production
security:
  jwt:
    secret: this-is-a-proper-secret-of-32-plus-characters
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() should be true")
	}
	if cfg.UsingDevSecret() {
		t.Error("UsingDevSecret() should be false with a real secret")
	}
}

func TestValidate_RejectsUnknownEnvironment(t *testing.T) {
	path := writeConfig(t, "environment: staging\n")

	if _, err := Load(path); err == nil {
		t.Error("unknown environment should fail validation")
	}
}

func TestValidate_RejectsBadQoS(t *testing.T) {
	path := writeConfig(t, `
environment: development
events:
  qos: 3
`)

	if _, err := Load(path); err == nil {
		t.Error("qos above 2 should fail validation")
	}
}
