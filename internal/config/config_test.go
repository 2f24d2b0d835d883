package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "no-existe.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.SQLServer.Host != "sql01" || cfg.Database.SQLServer.Database != "Gestion" {
		t.Fatalf("unexpected defaults: %+v", cfg.Database.SQLServer)
	}
	if got := cfg.Refresh.GetInterval(); got != 60*time.Second {
		t.Fatalf("expected 60s refresh, got %v", got)
	}
	if len(cfg.Database.Drivers) != 2 || cfg.Database.Drivers[0] != "sqlserver" {
		t.Fatalf("unexpected drivers: %v", cfg.Database.Drivers)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
database:
  drivers: [pgx, sqlserver]
  sqlserver:
    host: db01
    port: 1444
  postgres:
    url: postgres://u:p@localhost:5432/gestion
http:
  port: 9090
refresh:
  interval: 30s
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.Drivers[0] != "pgx" || cfg.Database.SQLServer.Host != "db01" || cfg.Database.SQLServer.Port != 1444 {
		t.Fatalf("yaml values not applied: %+v", cfg.Database)
	}
	// Los campos no presentes conservan el valor por defecto
	if cfg.Database.SQLServer.Database != "Gestion" {
		t.Fatalf("expected default database, got %q", cfg.Database.SQLServer.Database)
	}
	if cfg.HTTP.Port != 9090 || cfg.Refresh.GetInterval() != 30*time.Second {
		t.Fatalf("unexpected http/refresh: %+v %+v", cfg.HTTP, cfg.Refresh)
	}
}

func TestLoadConfigTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := []byte(`
[database]
drivers = ["mssql"]

[database.sqlserver]
host = "sql02"

[charts]
width = 800
height = 600
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.Drivers[0] != "mssql" || cfg.Database.SQLServer.Host != "sql02" {
		t.Fatalf("toml values not applied: %+v", cfg.Database)
	}
	if cfg.Charts.Width != 800 || cfg.Charts.Height != 600 {
		t.Fatalf("unexpected charts: %+v", cfg.Charts)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("INFORMES_SQL_HOST", "sql99")
	t.Setenv("INFORMES_DRIVERS", "sqlite, pgx")
	t.Setenv("INFORMES_HTTP_PORT", "no-es-numero")

	cfg := Default()
	ApplyEnv(cfg)

	if cfg.Database.SQLServer.Host != "sql99" {
		t.Fatalf("expected host override, got %q", cfg.Database.SQLServer.Host)
	}
	if len(cfg.Database.Drivers) != 2 || cfg.Database.Drivers[0] != "sqlite" || cfg.Database.Drivers[1] != "pgx" {
		t.Fatalf("unexpected drivers: %v", cfg.Database.Drivers)
	}
	if cfg.HTTP.Port != 8080 {
		t.Fatalf("invalid port should keep default, got %d", cfg.HTTP.Port)
	}
}

func TestRefreshIntervalFallback(t *testing.T) {
	r := RefreshConfig{Interval: "cada minuto"}
	if got := r.GetInterval(); got != 60*time.Second {
		t.Fatalf("expected fallback 60s, got %v", got)
	}
}

func TestMonitorInterval(t *testing.T) {
	cases := map[string]time.Duration{
		"":     5 * time.Minute,
		"30s":  30 * time.Second,
		"OFF":  0,
		"nada": 5 * time.Minute,
	}
	for raw, want := range cases {
		d := DatabaseConfig{MonitorInterval: raw}
		if got := d.GetMonitorInterval(); got != want {
			t.Errorf("%q: expected %v, got %v", raw, want, got)
		}
	}
}
