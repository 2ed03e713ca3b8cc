package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEDGER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(33554432), cfg.Server.MaxUploadBytes)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Engine.AutoDetect)
	assert.True(t, cfg.Engine.Dedupe)
	assert.Equal(t, "data/reports", cfg.Paths.ReportsDir)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))
	t.Setenv("LEDGER_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{
				Port:           8080,
				MaxUploadBytes: 1024,
			},
			Logging: LoggingConfig{Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "zero upload limit", mutate: func(c *Config) { c.Server.MaxUploadBytes = 0 }, wantErr: true},
		{name: "unknown log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
		{name: "text log format", mutate: func(c *Config) { c.Logging.Format = "text" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	paths := NewPaths(PathsConfig{DataDir: "data", ReportsDir: filepath.Join("data", "reports")})

	assert.Equal(t, filepath.Join("data", "reports", "ledger.csv"), paths.GetReportPath("ledger.csv"))
	assert.Equal(t, filepath.Join("data", "upload.xlsx"), paths.GetDataPath("upload.xlsx"))
}
