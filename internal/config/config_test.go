package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Llorsque/monitor-dashboard-CO/internal/kpi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
server:
  port: 9090
  host: "0.0.0.0"

session:
  store: "redis"
  redis_url: "redis://localhost:6379/2"
  ttl_minutes: 30

upload:
  max_bytes: 1048576

export:
  type: "aws"
  s3_bucket: "monitor-exports"
  dynamodb_table: "monitor-kpis"

cors:
  allowed_origins: ["https://monitor.example.nl"]

log:
  level: "debug"
  redact_pii: false

kpis:
  - key: members_total
    label: "Totaal leden"
    type: sum
    column: members_count
  - key: canteen_pct
    label: "% met kantine"
    type: pct_true
    column: has_canteen
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, "redis://localhost:6379/2", cfg.Session.RedisURL)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL())
	assert.Equal(t, "monitor_session", cfg.Session.CookieName)

	assert.Equal(t, int64(1048576), cfg.Upload.MaxBytes)

	assert.Equal(t, "aws", cfg.Export.Type)
	assert.Equal(t, "monitor-exports", cfg.Export.S3Bucket)
	assert.Equal(t, "monitor-kpis", cfg.Export.DynamoDBTable)
	assert.Equal(t, "eu-west-1", cfg.Export.AWSRegion)

	assert.Equal(t, []string{"https://monitor.example.nl"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Redact())

	require.Len(t, cfg.KPIs, 2)
	assert.Equal(t, kpi.Spec{Key: "members_total", Label: "Totaal leden", Type: kpi.TypeSum, Column: "members_count"}, cfg.KPIs[0])
	assert.True(t, cfg.KPIs[1].IsPercentage())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server: {}\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL())
	assert.Equal(t, int64(32<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, "local", cfg.Export.Type)
	assert.Equal(t, "./exports", cfg.Export.LocalPath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.Redact())
	assert.False(t, cfg.Audit.Enabled())
	assert.Empty(t, cfg.KPIs)

	assert.Equal(t, cfg, Default())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("DATABASE_URL", "postgres://monitor@db/monitor?sslmode=disable")
	t.Setenv("EXPORT_S3_BUCKET", "exports-bucket")
	t.Setenv("EXPORT_DYNAMODB_TABLE", "kpi-history")
	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("LOG_LEVEL", "WARN")

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, "redis://cache:6379/0", cfg.Session.RedisURL)
	assert.True(t, cfg.Audit.Enabled())
	assert.Equal(t, "aws", cfg.Export.Type)
	assert.Equal(t, "exports-bucket", cfg.Export.S3Bucket)
	assert.Equal(t, "kpi-history", cfg.Export.DynamoDBTable)
	assert.Equal(t, "eu-central-1", cfg.Export.AWSRegion)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestServerGetHost(t *testing.T) {
	t.Setenv("ECS_CONTAINER_METADATA_URI", "")
	t.Setenv("AWS_EXECUTION_ENV", "")
	t.Setenv("SERVER_HOST", "")
	c := ServerConfig{Host: "localhost"}
	assert.Equal(t, "localhost", c.GetHost())

	t.Setenv("SERVER_HOST", "127.0.0.1")
	assert.Equal(t, "127.0.0.1", c.GetHost())

	t.Setenv("AWS_EXECUTION_ENV", "AWS_ECS_FARGATE")
	assert.Equal(t, "0.0.0.0", c.GetHost())
}

func TestExportGetAWSProfile(t *testing.T) {
	t.Setenv("ECS_CONTAINER_METADATA_URI", "")
	t.Setenv("AWS_EXECUTION_ENV", "")
	t.Setenv("AWS_PROFILE_OVERRIDE", "")
	c := ExportConfig{AWSProfile: "monitor"}
	assert.Equal(t, "monitor", c.GetAWSProfile())

	t.Setenv("AWS_PROFILE_OVERRIDE", "iam")
	assert.Equal(t, "", c.GetAWSProfile())
}
