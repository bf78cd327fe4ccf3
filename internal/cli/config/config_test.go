package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func inTempDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	t.Cleanup(func() { os.Chdir(oldWd) })
	return tmpDir
}

func TestLoad(t *testing.T) {
	// Test loading with no config file (should use defaults)
	inTempDir(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("expected default port 9001, got %d", cfg.Server.Port)
	}
	if cfg.Server.Address() != "0.0.0.0:9001" {
		t.Errorf("unexpected address %s", cfg.Server.Address())
	}
	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("expected request timeout 30s, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Database.Driver != "mysql" || cfg.Database.Name != "mongoose" || cfg.Database.Port != 3306 {
		t.Errorf("unexpected database defaults %+v", cfg.Database)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("expected development profile, got %s", cfg.Env)
	}
	if !cfg.Log.Development || cfg.Log.Level != "debug" {
		t.Errorf("expected development logging, got %+v", cfg.Log)
	}
	if !cfg.Database.ProbeTables {
		t.Error("expected development profile to probe tables")
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	inTempDir(t)

	configContent := `
server:
  port: 8080
  host: 127.0.0.1
  request_timeout: 5s
database:
  driver: pgx
  url: postgres://localhost/kitchen
log:
  level: error
`
	os.WriteFile("mongoose.yaml", []byte(configContent), 0644)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.Server.Port != 8080 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Server.RequestTimeout != 5*time.Second {
		t.Errorf("expected request timeout 5s, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Database.Driver != "pgx" || cfg.Database.URL != "postgres://localhost/kitchen" {
		t.Errorf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("file log level should win over the profile, got %s", cfg.Log.Level)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "custom.yaml")
	os.WriteFile(path, []byte("server:\n  port: 7000\n"), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("expected port 7000, got %d", cfg.Server.Port)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestLoadLegacyEnvironment(t *testing.T) {
	inTempDir(t)

	t.Setenv("MYSQL_USER_NAME", "chef")
	t.Setenv("MYSQL_PASSWORD", "secret")
	t.Setenv("MYSQL_DB_HOST", "db.kitchen")
	t.Setenv("MYSQL_DB_PORT", "3307")
	t.Setenv("MYSQL_DB_NAME", "pantry")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dsn, err := cfg.Database.DSN()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dsn != "chef:secret@tcp(db.kitchen:3307)/pantry" {
		t.Errorf("unexpected DSN %s", dsn)
	}
}

func TestLoadDatabaseURL(t *testing.T) {
	inTempDir(t)
	t.Setenv("DATABASE_URL", "file:kitchen.db")
	t.Setenv("MONGOOSE_DATABASE_DRIVER", "sqlite3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.URL != "file:kitchen.db" || cfg.Database.Driver != "sqlite3" {
		t.Errorf("unexpected database config %+v", cfg.Database)
	}
}

func TestLoadProductionProfile(t *testing.T) {
	inTempDir(t)
	t.Setenv("MONGOOSE_SERVER_ENV", "Production")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Env != EnvProduction {
		t.Errorf("expected production, got %s", cfg.Env)
	}
	if cfg.Log.Development || cfg.Log.Level != "info" {
		t.Errorf("expected production logging, got %+v", cfg.Log)
	}
	if cfg.Database.ProbeTables {
		t.Error("production should not probe tables per request")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := map[string]string{
		"bad env":    "env: staging\n",
		"bad port":   "server:\n  port: 70000\n",
		"bad driver": "database:\n  driver: oracle\n",
		"alias":      "database:\n  driver: postgresql\n  url: postgres://localhost/kitchen\n",
		"no url":     "database:\n  driver: postgres\n",
		"bad level":  "log:\n  level: loud\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			inTempDir(t)
			os.WriteFile("mongoose.yaml", []byte(content), 0644)

			if _, err := Load(""); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}
