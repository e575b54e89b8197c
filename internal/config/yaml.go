package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// FolioConfig represents the top-level folio configuration file.
type FolioConfig struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Auth      AuthConfig      `yaml:"auth" mapstructure:"auth"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	SMTP      SMTPConfig      `yaml:"smtp" mapstructure:"smtp"`
	MCP       MCPConfig       `yaml:"mcp" mapstructure:"mcp"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig controls the HTTP server behavior.
type ServerConfig struct {
	Host            string          `yaml:"host" mapstructure:"host"`
	Port            int             `yaml:"port" mapstructure:"port"`
	MaxBodySize     string          `yaml:"max_body_size" mapstructure:"max_body_size"`
	ShutdownTimeout string          `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	RequestTimeout  string          `yaml:"request_timeout" mapstructure:"request_timeout"`
	CORS            CORSConfig      `yaml:"cors" mapstructure:"cors"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// CORSConfig lists the site origins allowed to call the API with cookies.
type CORSConfig struct {
	Origins []string `yaml:"origins" mapstructure:"origins"`
}

// RateLimitConfig caps requests per minute per client IP. Zero disables.
type RateLimitConfig struct {
	Login   int `yaml:"login" mapstructure:"login"`
	Contact int `yaml:"contact" mapstructure:"contact"`
}

// AuthConfig holds the single administrator's secrets.
type AuthConfig struct {
	AdminEmail    string `yaml:"admin_email" mapstructure:"admin_email"`
	AdminPassword string `yaml:"admin_password" mapstructure:"admin_password"`
	TokenSecret   string `yaml:"token_secret" mapstructure:"token_secret"`
}

// DashboardConfig controls the CLI dashboard client.
type DashboardConfig struct {
	Passkey  string `yaml:"passkey" mapstructure:"passkey"`
	URL      string `yaml:"url" mapstructure:"url"`
	FlagFile string `yaml:"flag_file" mapstructure:"flag_file"`
}

// StoreConfig selects the database behind the document store.
type StoreConfig struct {
	Driver  string `yaml:"driver" mapstructure:"driver"`
	DSN     string `yaml:"dsn" mapstructure:"dsn"`
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// SMTPConfig is the mail account contact messages are relayed through. An
// empty host disables the relay.
type SMTPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	From     string `yaml:"from" mapstructure:"from"`
	To       string `yaml:"to" mapstructure:"to"`
}

// MCPConfig controls the read-only MCP endpoint on the HTTP server.
type MCPConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LoadYAMLConfig reads and parses a YAML configuration file on top of the
// defaults. Environment variables referenced as ${VAR_NAME} in the file are
// expanded before parsing.
func LoadYAMLConfig(path string) (*FolioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	content := os.ExpandEnv(string(data))

	cfg := DefaultYAMLConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// DefaultYAMLConfig returns a FolioConfig pre-filled with sensible defaults.
// Secrets are left empty; they are never defaulted outside development mode.
func DefaultYAMLConfig() *FolioConfig {
	return &FolioConfig{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			MaxBodySize:     "1MB",
			ShutdownTimeout: "30s",
			RequestTimeout:  "30s",
			CORS: CORSConfig{
				Origins: []string{"http://localhost:3000"},
			},
			RateLimit: RateLimitConfig{
				Login:   10,
				Contact: 5,
			},
		},
		Dashboard: DashboardConfig{
			URL: "http://localhost:8080",
		},
		Store: StoreConfig{
			Driver: "sqlite",
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// WriteDefaultConfig writes the default configuration to a YAML file. The
// file will hold secrets once filled in, so it is created owner-only and an
// existing file is never overwritten.
func WriteDefaultConfig(path string) error {
	data, err := yaml.Marshal(DefaultYAMLConfig())
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("config file %s already exists", path)
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Dev secrets used by `folio serve --dev` when nothing is configured.
const (
	DevAdminEmail    = "admin@localhost"
	DevAdminPassword = "admin"
	DevTokenSecret   = "folio-dev-secret-change-me"
	DevPasskey       = "000000"
)

// ApplyDevDefaults fills any missing secret with its development value and
// returns the keys it filled.
func (c *FolioConfig) ApplyDevDefaults() []string {
	var filled []string
	set := func(key string, field *string, value string) {
		if *field == "" {
			*field = value
			filled = append(filled, key)
		}
	}
	set("auth.admin_email", &c.Auth.AdminEmail, DevAdminEmail)
	set("auth.admin_password", &c.Auth.AdminPassword, DevAdminPassword)
	set("auth.token_secret", &c.Auth.TokenSecret, DevTokenSecret)
	set("dashboard.passkey", &c.Dashboard.Passkey, DevPasskey)
	return filled
}

// MissingSecrets returns the auth keys that are still empty.
func (c *FolioConfig) MissingSecrets() []string {
	var missing []string
	for _, s := range []struct {
		key, value string
	}{
		{"auth.admin_email", c.Auth.AdminEmail},
		{"auth.admin_password", c.Auth.AdminPassword},
		{"auth.token_secret", c.Auth.TokenSecret},
	} {
		if s.value == "" {
			missing = append(missing, s.key)
		}
	}
	return missing
}

// BodyLimit parses max_body_size ("1MB", "512KiB", "0" for unlimited).
func (s ServerConfig) BodyLimit() (int64, error) {
	if s.MaxBodySize == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s.MaxBodySize)
	if err != nil {
		return 0, fmt.Errorf("server.max_body_size: %w", err)
	}
	return int64(n), nil
}

// Timeouts parses the shutdown and per-request timeouts.
func (s ServerConfig) Timeouts() (shutdown, request time.Duration, err error) {
	if shutdown, err = parseDuration("server.shutdown_timeout", s.ShutdownTimeout); err != nil {
		return 0, 0, err
	}
	if request, err = parseDuration("server.request_timeout", s.RequestTimeout); err != nil {
		return 0, 0, err
	}
	return shutdown, request, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
