package smsc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-smsc/emi-smsc/lib/session"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, DefaultListenAddr)
	}
	if !cfg.HidePingAck || !cfg.RequireSession || !cfg.StatusReport.Enabled {
		t.Error("hide_ping_ack, require_session and status reports should default to on")
	}

	sc := cfg.SessionConfig()
	if err := sc.Validate(); err != nil {
		t.Errorf("SessionConfig().Validate() = %v", err)
	}
	if sc.MTBehavior != session.BehaviorAck || sc.NackCode != 99 {
		t.Errorf("SessionConfig() = %+v", sc)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"listen", func(c *Config) { c.ListenAddr = "" }, "ListenAddr"},
		{"behavior", func(c *Config) { c.MTBehavior = "drop" }, "MTBehavior"},
		{"nack code", func(c *Config) { c.NackCode = 120 }, "NackCode"},
		{"delay", func(c *Config) { c.StatusReport.Delay = -time.Second }, "StatusReport.Delay"},
		{"dst", func(c *Config) { c.StatusReport.Dst = 9 }, "StatusReport.Dst"},
		{"rsn", func(c *Config) { c.StatusReport.Rsn = "x" }, "StatusReport.Rsn"},
		{"tls", func(c *Config) { c.TLS.CertFile = "cert.pem" }, "TLS"},
		{"idle", func(c *Config) { c.Timeouts.Idle = -1 }, "Timeouts.Idle"},
		{"buffer", func(c *Config) { c.Limits.BufferSize = 0 }, "Limits.BufferSize"},
		{"read buffer", func(c *Config) { c.Limits.ReadBufferSize = 0 }, "Limits.ReadBufferSize"},
		{"max connections", func(c *Config) { c.Limits.MaxConnections = -1 }, "Limits.MaxConnections"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			var cerr *ConfigError
			if err := cfg.Validate(); !errors.As(err, &cerr) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("ConfigError.Field = %q, want %q", cerr.Field, tt.field)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smsc.yaml")
	yaml := `
listen: ":6000"
mt_behavior: nack
nack_code: 4
status_report:
  enabled: true
  delay: 5s
  dst: 2
  rsn: "107"
accounts:
  "07656765": PASSWORD
hide_ping_ack: false
limits:
  buffer_size: 2048
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.ListenAddr)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, "nack", cfg.MTBehavior)
	assert.Equal(t, 4, cfg.NackCode)
	assert.Equal(t, 5*time.Second, cfg.StatusReport.Delay)
	assert.Equal(t, 2, cfg.StatusReport.Dst)
	assert.Equal(t, "107", cfg.StatusReport.Rsn)
	assert.Equal(t, map[string]string{"07656765": "PASSWORD"}, cfg.Accounts)
	assert.False(t, cfg.HidePingAck)
	assert.True(t, cfg.RequireSession)
	assert.Equal(t, 2048, cfg.Limits.BufferSize)
	assert.Equal(t, DefaultReadBufferSize, cfg.Limits.ReadBufferSize)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mt_behavior: sometimes\n"), 0o600))
	_, err = LoadConfig(path)
	var cerr *ConfigError
	assert.True(t, errors.As(err, &cerr))
}

func TestConfig_ApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvListen: ":7000",
		EnvHTTP:   "",
		EnvDebug:  "true",
		EnvSQLDSN: "user:pw@tcp(db:3306)/smsc",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "", cfg.HTTPAddr)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "user:pw@tcp(db:3306)/smsc", cfg.SQL.DSN)

	env[EnvDebug] = "maybe"
	assert.Error(t, cfg.ApplyEnv(lookup))
}

func TestConfig_With(t *testing.T) {
	cfg := DefaultConfig()

	other := cfg.WithListenAddr(":1").WithMTBehavior(session.BehaviorNoReply).WithAccounts(map[string]string{"a": "b"})
	if cfg.ListenAddr != DefaultListenAddr || cfg.MTBehavior != "ack" || len(cfg.Accounts) != 0 {
		t.Error("With* should not modify the receiver")
	}
	if other.ListenAddr != ":1" || other.MTBehavior != "noreply" || other.Accounts["a"] != "b" {
		t.Errorf("With* result = %+v", other)
	}
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(LogConfig{Level: "warn"}, true, os.Stderr)
	require.NoError(t, err)
	assert.Equal(t, "debug", log.GetLevel().String())

	_, err = NewLogger(LogConfig{Level: "loud"}, false, os.Stderr)
	assert.Error(t, err)

	dir := t.TempDir()
	log, err = NewLogger(LogConfig{
		File:       filepath.Join(dir, "smsc.log"),
		LevelFiles: map[string]string{"error": filepath.Join(dir, "error.log")},
	}, false, os.Stderr)
	require.NoError(t, err)
	log.Error("boom")
	_, err = os.Stat(filepath.Join(dir, "error.log"))
	assert.NoError(t, err)
}
