// Package smsc implements the EMI/UCP SMSC simulator server. The server
// accepts TCP connections from large account clients and hands every
// connection to a session that frames, parses and answers its traffic.
package smsc

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-smsc/emi-smsc/lib/protocol"
	"github.com/go-smsc/emi-smsc/lib/session"
)

// Default configuration values.
const (
	// DefaultListenAddr is the default EMI/UCP TCP listen address.
	DefaultListenAddr = ":5000"

	// DefaultHTTPAddr is the default control API listen address.
	DefaultHTTPAddr = ":8080"

	// DefaultNackCode is the NACK code used when MT behaviour is nack.
	DefaultNackCode = 99

	// DefaultReadBufferSize is the size of a single socket read.
	DefaultReadBufferSize = 4096
)

// Environment variables overriding the configuration.
const (
	EnvListen = "SMSC_LISTEN"
	EnvHTTP   = "SMSC_HTTP"
	EnvDebug  = "SMSC_DEBUG"
	EnvSQLDSN = "SMSC_SQL_DSN"
)

// Config holds the simulator configuration.
// All fields have sensible defaults that can be overridden by a YAML file,
// the environment and flags, in that order.
type Config struct {
	// ListenAddr is the EMI/UCP TCP address to listen on.
	ListenAddr string `yaml:"listen"`

	// HTTPAddr is the control API address (empty disables it).
	HTTPAddr string `yaml:"http_listen"`

	// MTBehavior is how submits are answered: ack, nack or noreply.
	MTBehavior string `yaml:"mt_behavior"`

	// NackCode is sent when MTBehavior is nack.
	NackCode int `yaml:"nack_code"`

	// StatusReport controls UCP53 reports after an ACK.
	StatusReport StatusReportConfig `yaml:"status_report"`

	// Accounts maps large accounts to passwords. An empty map accepts
	// every session open; an empty password accepts any password.
	Accounts map[string]string `yaml:"accounts"`

	// RequireSession rejects submits before a successful session open.
	RequireSession bool `yaml:"require_session"`

	// HidePingAck keeps pings and acknowledgements out of the message log.
	HidePingAck bool `yaml:"hide_ping_ack"`

	// LegacyLatin enables the ISO 8859-16 remapping of UCS-2 payloads.
	LegacyLatin bool `yaml:"legacy_latin"`

	// Debug lowers the log level to debug.
	Debug bool `yaml:"debug"`

	// TLS enables TLS on the EMI/UCP socket when a certificate is set.
	TLS TLSFiles `yaml:"tls"`

	// TLSConfig overrides TLS when non-nil.
	TLSConfig *tls.Config `yaml:"-"`

	// Timeouts holds connection timeout settings.
	Timeouts TimeoutConfig `yaml:"timeouts"`

	// Limits holds connection limits and buffer sizes.
	Limits LimitConfig `yaml:"limits"`

	// Log holds log output settings.
	Log LogConfig `yaml:"log"`

	// SQL holds the message log database settings.
	SQL SQLConfig `yaml:"sql"`
}

// StatusReportConfig controls the reports sent after an acknowledged submit.
type StatusReportConfig struct {
	Enabled bool          `yaml:"enabled"`
	Delay   time.Duration `yaml:"delay"`
	Dst     int           `yaml:"dst"`
	Rsn     string        `yaml:"rsn"`
}

// TLSFiles names a certificate and key pair.
type TLSFiles struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// TimeoutConfig holds timeout settings for connections.
type TimeoutConfig struct {
	// Idle is the maximum time a connection can be silent (0 = no limit).
	Idle time.Duration `yaml:"idle"`
}

// LimitConfig holds buffer and connection limits.
type LimitConfig struct {
	// BufferSize is the capacity of each session frame buffer.
	BufferSize int `yaml:"buffer_size"`

	// ReadBufferSize is the size of a single socket read.
	ReadBufferSize int `yaml:"read_buffer_size"`

	// MaxConnections is the maximum number of concurrent connections (0 = no limit).
	MaxConnections int `yaml:"max_connections"`
}

// LogConfig holds log output settings.
type LogConfig struct {
	Level      string            `yaml:"level"`
	File       string            `yaml:"file"`
	MaxSizeMB  int               `yaml:"max_size_mb"`
	MaxBackups int               `yaml:"max_backups"`
	MaxAgeDays int               `yaml:"max_age_days"`
	LevelFiles map[string]string `yaml:"level_files"`
}

// SQLConfig holds the message log database settings.
type SQLConfig struct {
	// DSN is a go-sql-driver/mysql data source name (empty disables it).
	DSN string `yaml:"dsn"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr: DefaultListenAddr,
		HTTPAddr:   DefaultHTTPAddr,
		MTBehavior: string(session.BehaviorAck),
		NackCode:   DefaultNackCode,
		StatusReport: StatusReportConfig{
			Enabled: true,
			Dst:     protocol.DstDelivered,
			Rsn:     "000",
		},
		Accounts:       make(map[string]string),
		RequireSession: true,
		HidePingAck:    true,
		Limits: LimitConfig{
			BufferSize:     protocol.DefaultBufferSize,
			ReadBufferSize: DefaultReadBufferSize,
			MaxConnections: 0, // No limit
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.Accounts == nil {
		cfg.Accounts = make(map[string]string)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from the environment through lookup,
// typically os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvListen); ok && v != "" {
		c.ListenAddr = v
	}
	if v, ok := lookup(EnvHTTP); ok {
		c.HTTPAddr = v
	}
	if v, ok := lookup(EnvSQLDSN); ok {
		c.SQL.DSN = v
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return &ConfigError{Field: EnvDebug, Message: "must be a boolean"}
		}
		c.Debug = debug
	}
	return nil
}

// Validate checks the configuration for errors and returns an error if invalid.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return &ConfigError{Field: "ListenAddr", Message: "cannot be empty"}
	}
	if _, err := session.ParseMTBehavior(c.MTBehavior); err != nil {
		return &ConfigError{Field: "MTBehavior", Message: "must be ack, nack or noreply"}
	}
	if c.NackCode < 0 || c.NackCode > 99 {
		return &ConfigError{Field: "NackCode", Message: "must be 0-99"}
	}
	if c.StatusReport.Delay < 0 {
		return &ConfigError{Field: "StatusReport.Delay", Message: "cannot be negative"}
	}
	if protocol.ValidateDst(c.StatusReport.Dst) != nil {
		return &ConfigError{Field: "StatusReport.Dst", Message: "must be 0-2"}
	}
	if protocol.ValidateRsn(c.StatusReport.Rsn) != nil {
		return &ConfigError{Field: "StatusReport.Rsn", Message: "must be three digits"}
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return &ConfigError{Field: "TLS", Message: "needs both cert_file and key_file"}
	}
	if c.Timeouts.Idle < 0 {
		return &ConfigError{Field: "Timeouts.Idle", Message: "cannot be negative"}
	}
	if c.Limits.BufferSize <= 0 {
		return &ConfigError{Field: "Limits.BufferSize", Message: "must be positive"}
	}
	if c.Limits.ReadBufferSize <= 0 {
		return &ConfigError{Field: "Limits.ReadBufferSize", Message: "must be positive"}
	}
	if c.Limits.MaxConnections < 0 {
		return &ConfigError{Field: "Limits.MaxConnections", Message: "cannot be negative"}
	}
	return nil
}

// SessionConfig returns the behaviour shared by sessions.
func (c *Config) SessionConfig() session.Config {
	behavior, _ := session.ParseMTBehavior(c.MTBehavior)
	return session.Config{
		MTBehavior: behavior,
		NackCode:   c.NackCode,
		StatusReport: session.StatusReportConfig{
			Enabled: c.StatusReport.Enabled,
			Delay:   c.StatusReport.Delay,
			Dst:     c.StatusReport.Dst,
			Rsn:     c.StatusReport.Rsn,
		},
		RequireSession: c.RequireSession,
		LegacyLatin:    c.LegacyLatin,
		BufferSize:     c.Limits.BufferSize,
	}
}

// LoadTLS builds TLSConfig from the certificate files when set.
func (c *Config) LoadTLS() error {
	if c.TLSConfig != nil || c.TLS.CertFile == "" {
		return nil
	}
	cert, err := tls.LoadX509KeyPair(c.TLS.CertFile, c.TLS.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS key pair: %w", err)
	}
	c.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	return nil
}

// WithListenAddr returns a copy of the config with the listen address set.
func (c *Config) WithListenAddr(addr string) *Config {
	newCfg := *c
	newCfg.ListenAddr = addr
	return &newCfg
}

// WithTLS returns a copy of the config with TLS enabled.
func (c *Config) WithTLS(tlsConfig *tls.Config) *Config {
	newCfg := *c
	newCfg.TLSConfig = tlsConfig
	return &newCfg
}

// WithAccounts returns a copy of the config with the large accounts set.
func (c *Config) WithAccounts(accounts map[string]string) *Config {
	newCfg := *c
	newCfg.Accounts = accounts
	return &newCfg
}

// WithMTBehavior returns a copy of the config with the MT behaviour set.
func (c *Config) WithMTBehavior(behavior session.MTBehavior) *Config {
	newCfg := *c
	newCfg.MTBehavior = string(behavior)
	return &newCfg
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}
