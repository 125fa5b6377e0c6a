package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Llorsque/monitor-dashboard-CO/internal/kpi"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Upload  UploadConfig  `yaml:"upload"`
	Audit   AuditConfig   `yaml:"audit"`
	Export  ExportConfig  `yaml:"export"`
	CORS    CORSConfig    `yaml:"cors"`
	Log     LogConfig     `yaml:"log"`
	KPIs    []kpi.Spec    `yaml:"kpis"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// SessionConfig selects where per-browser dataset pairs are kept.
type SessionConfig struct {
	Store      string `yaml:"store"` // "memory" or "redis"
	RedisURL   string `yaml:"redis_url"`
	TTLMinutes int    `yaml:"ttl_minutes"`
	CookieName string `yaml:"cookie_name"`
}

// TTL returns the idle lifetime of a session.
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// UploadConfig limits dataset uploads.
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

// AuditConfig enables the Postgres upload audit log when DatabaseURL is set.
type AuditConfig struct {
	DatabaseURL string `yaml:"database_url"`
}

// Enabled reports whether uploads are audited.
func (c AuditConfig) Enabled() bool { return c.DatabaseURL != "" }

// ExportConfig holds publication storage configuration
type ExportConfig struct {
	Type          string `yaml:"type"` // "local" or "aws"
	LocalPath     string `yaml:"local_path"`
	S3Bucket      string `yaml:"s3_bucket"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	AWSRegion     string `yaml:"aws_region"`
	AWSProfile    string `yaml:"aws_profile"` // Empty string uses default credential chain
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c ExportConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	// On ECS/Lambda, use the task role
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Redact reports whether PII redaction is on. It defaults to true.
func (c LogConfig) Redact() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Session.Store == "" {
		cfg.Session.Store = "memory"
	}
	if cfg.Session.TTLMinutes == 0 {
		cfg.Session.TTLMinutes = 12 * 60
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "monitor_session"
	}
	if cfg.Upload.MaxBytes == 0 {
		cfg.Upload.MaxBytes = 32 << 20
	}
	if cfg.Export.Type == "" {
		cfg.Export.Type = "local"
	}
	if cfg.Export.LocalPath == "" {
		cfg.Export.LocalPath = "./exports"
	}
	if cfg.Export.AWSRegion == "" {
		cfg.Export.AWSRegion = "eu-west-1"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Session.RedisURL = v
		cfg.Session.Store = "redis"
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Audit.DatabaseURL = v
	}

	// Export overrides
	if v := os.Getenv("EXPORT_S3_BUCKET"); v != "" {
		cfg.Export.S3Bucket = v
		cfg.Export.Type = "aws"
	}
	if v := os.Getenv("EXPORT_DYNAMODB_TABLE"); v != "" {
		cfg.Export.DynamoDBTable = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Export.AWSRegion = v
	}
	if v := os.Getenv("EXPORT_AWS_ACCESS_KEY"); v != "" {
		cfg.Export.AccessKey = v
	}
	if v := os.Getenv("EXPORT_AWS_SECRET_KEY"); v != "" {
		cfg.Export.SecretKey = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}

	return cfg, nil
}
