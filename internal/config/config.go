package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DEFAULT_CONFIG_PATH se usa cuando CONFIG_FILE no está definido
const DEFAULT_CONFIG_PATH = "config/config.yaml"

type Config struct {
	Database DatabaseConfig `yaml:"database" toml:"database"`
	HTTP     HTTPConfig     `yaml:"http" toml:"http"`
	Refresh  RefreshConfig  `yaml:"refresh" toml:"refresh"`
	Charts   ChartsConfig   `yaml:"charts" toml:"charts"`
	Export   ExportConfig   `yaml:"export" toml:"export"`
}

type DatabaseConfig struct {
	// Drivers es la lista ordenada de controladores a intentar (fallback)
	Drivers   []string        `yaml:"drivers" toml:"drivers"`
	SQLServer SQLServerConfig `yaml:"sqlserver" toml:"sqlserver"`
	Postgres  PostgresConfig  `yaml:"postgres" toml:"postgres"`
	SQLite    SQLiteConfig    `yaml:"sqlite" toml:"sqlite"`

	// MonitorInterval es la frecuencia del chequeo de controladores ("off" lo desactiva)
	MonitorInterval string `yaml:"monitor_interval" toml:"monitor_interval"`
}

type SQLServerConfig struct {
	Host           string `yaml:"host" toml:"host"`
	Port           int    `yaml:"port" toml:"port"`
	User           string `yaml:"user" toml:"user"` // vacío = autenticación integrada (Trusted_Connection)
	Password       string `yaml:"password" toml:"password"`
	Database       string `yaml:"database" toml:"database"`
	Encrypt        string `yaml:"encrypt" toml:"encrypt"`
	TrustCert      bool   `yaml:"trust_cert" toml:"trust_cert"`
	AppName        string `yaml:"app_name" toml:"app_name"`
	ConnectTimeout int    `yaml:"connect_timeout" toml:"connect_timeout"` // segundos
}

type PostgresConfig struct {
	URL            string `yaml:"url" toml:"url"`
	ConnectTimeout string `yaml:"connect_timeout" toml:"connect_timeout"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type HTTPConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

type RefreshConfig struct {
	Interval string `yaml:"interval" toml:"interval"` // ej: "60s"
}

type ChartsConfig struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
}

type ExportConfig struct {
	Dir string `yaml:"dir" toml:"dir"` // directorio por defecto para exportaciones
}

// GetInterval retorna el intervalo de actualización automática
func (r RefreshConfig) GetInterval() time.Duration {
	duration, err := time.ParseDuration(r.Interval)
	if err != nil || duration <= 0 {
		return 60 * time.Second // default
	}
	return duration
}

// GetMonitorInterval retorna 0 cuando el monitoreo está desactivado
func (d DatabaseConfig) GetMonitorInterval() time.Duration {
	if strings.EqualFold(strings.TrimSpace(d.MonitorInterval), "off") {
		return 0
	}
	duration, err := time.ParseDuration(d.MonitorInterval)
	if err != nil || duration <= 0 {
		return 5 * time.Minute
	}
	return duration
}

// GetConnectTimeoutDuration retorna el timeout de conexión a PostgreSQL
func (p PostgresConfig) GetConnectTimeoutDuration() time.Duration {
	duration, err := time.ParseDuration(p.ConnectTimeout)
	if err != nil || duration <= 0 {
		return 15 * time.Second // default
	}
	return duration
}

// GetConnectTimeoutDuration retorna el timeout de conexión a SQL Server
func (s SQLServerConfig) GetConnectTimeoutDuration() time.Duration {
	if s.ConnectTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.ConnectTimeout) * time.Second
}

// Addr retorna host:port para el servidor HTTP
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// Default retorna la configuración de producción:
// servidor sql01, base Gestion, autenticación integrada.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Drivers: []string{"sqlserver", "mssql"},
			SQLServer: SQLServerConfig{
				Host:           "sql01",
				Port:           1433,
				Database:       "Gestion",
				Encrypt:        "disable",
				TrustCert:      true,
				AppName:        "Informes-JUB",
				ConnectTimeout: 15,
			},
			Postgres: PostgresConfig{
				ConnectTimeout: "15s",
			},
			MonitorInterval: "5m",
		},
		HTTP: HTTPConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Refresh: RefreshConfig{
			Interval: "60s",
		},
		Charts: ChartsConfig{
			Width:  1200,
			Height: 700,
		},
	}
}

// LoadConfig carga la configuración desde un archivo YAML o TOML (según la extensión).
// Si el archivo no existe se usan los valores por defecto.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("⚠️  Archivo de configuración %s no encontrado, usando valores por defecto", configPath)
			return cfg, nil
		}
		return nil, fmt.Errorf("error leyendo archivo de configuración: %w", err)
	}

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("error parseando TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parseando YAML: %w", err)
		}
	}

	return cfg, nil
}

// Load carga .env, resuelve la ruta (flag > CONFIG_FILE > default), lee el
// archivo y aplica los overrides de entorno INFORMES_*.
func Load(configPath string) (*Config, string, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Archivo .env no encontrado, usando únicamente variables de entorno del sistema")
	}

	if configPath == "" {
		configPath = os.Getenv("CONFIG_FILE")
	}
	if configPath == "" {
		configPath = DEFAULT_CONFIG_PATH
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, configPath, err
	}
	ApplyEnv(cfg)
	return cfg, configPath, nil
}

// ApplyEnv sobreescribe valores con variables de entorno INFORMES_*
func ApplyEnv(cfg *Config) {
	s := &cfg.Database.SQLServer
	s.Host = getEnv("INFORMES_SQL_HOST", s.Host)
	s.Port = getIntEnv("INFORMES_SQL_PORT", s.Port)
	s.User = getEnv("INFORMES_SQL_USER", s.User)
	s.Password = getEnv("INFORMES_SQL_PASSWORD", s.Password)
	s.Database = getEnv("INFORMES_SQL_DATABASE", s.Database)
	s.Encrypt = getEnv("INFORMES_SQL_ENCRYPT", s.Encrypt)

	cfg.Database.Postgres.URL = getEnv("INFORMES_PG_URL", cfg.Database.Postgres.URL)
	cfg.Database.SQLite.Path = getEnv("INFORMES_SQLITE_PATH", cfg.Database.SQLite.Path)

	if raw := os.Getenv("INFORMES_DRIVERS"); raw != "" {
		var drivers []string
		for _, d := range strings.Split(raw, ",") {
			if d = strings.TrimSpace(d); d != "" {
				drivers = append(drivers, d)
			}
		}
		cfg.Database.Drivers = drivers
	}

	cfg.HTTP.Port = getIntEnv("INFORMES_HTTP_PORT", cfg.HTTP.Port)
	cfg.Refresh.Interval = getEnv("INFORMES_REFRESH_INTERVAL", cfg.Refresh.Interval)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: valor inválido para %s='%s', usando %d", key, raw, fallback)
		return fallback
	}
	return value
}
