package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/folio-cms/folio/internal/config"
	"github.com/folio-cms/folio/internal/dashboard"
	"github.com/folio-cms/folio/internal/relay"
	"github.com/folio-cms/folio/internal/service"
	"github.com/folio-cms/folio/internal/store"
)

// loadConfig resolves the config file and applies FOLIO_* overrides and
// any flags bound on the global viper instance.
func loadConfig() (*config.FolioConfig, string, error) {
	path := config.FindConfigFile(cfgFile)
	cfg, err := config.Load(viper.GetViper(), path)
	if err != nil {
		return nil, path, err
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, path, nil
}

// newLogger builds the process logger. Logs go to w so stdio MCP can keep
// stdout clean.
func newLogger(w io.Writer, cfg config.LoggingConfig, dev bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if dev {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStore opens the document store. In dev mode an unconfigured SQLite
// store lives in memory; otherwise it defaults to ~/.folio.
func openStore(cfg config.StoreConfig, dev bool) (*store.Store, error) {
	sc := store.Config{Driver: cfg.Driver, DSN: cfg.DSN, DataDir: cfg.DataDir}
	if sc.DataDir == "" && !dev {
		sc.DataDir = config.DefaultDir()
	}
	return store.Open(sc)
}

func secretsFrom(cfg config.AuthConfig) service.Secrets {
	return service.Secrets{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		TokenSecret:   cfg.TokenSecret,
	}
}

// newRelay picks the contact relay: SMTP when a host is configured, a
// logging no-op in dev mode, and a relay that always fails otherwise.
func newRelay(cfg config.SMTPConfig, dev bool, logger *slog.Logger) relay.Relay {
	switch {
	case cfg.Host != "":
		return relay.NewSMTPRelay(relay.SMTPConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			From:     cfg.From,
			To:       cfg.To,
		})
	case dev:
		return relay.Noop{Logger: logger}
	default:
		return relay.Disabled{}
	}
}

// dashboardSession wires the gate to the configured API and the session
// file so CLI commands share one login across runs.
type dashboardSession struct {
	gate   *dashboard.Gate
	client *dashboard.Client
	flags  *dashboard.FileFlagStore
}

func openDashboard(cfg *config.FolioConfig) (*dashboardSession, error) {
	path := cfg.Dashboard.FlagFile
	if path == "" {
		dir := config.DefaultDir()
		if dir == "" {
			return nil, fmt.Errorf("cannot locate home directory; set dashboard.flag_file")
		}
		path = filepath.Join(dir, "session.yaml")
	}
	flags := dashboard.NewFileFlagStore(path)

	token, err := flags.Token()
	if err != nil {
		return nil, err
	}
	client := dashboard.NewClient(cfg.Dashboard.URL, dashboard.WithToken(token))

	return &dashboardSession{
		gate:   dashboard.NewGate(client, flags, cfg.Dashboard.Passkey),
		client: client,
		flags:  flags,
	}, nil
}

// saveToken persists whatever cookie the client currently holds.
func (d *dashboardSession) saveToken() error {
	if token := d.client.Token(); token != "" {
		return d.flags.SaveToken(token)
	}
	return nil
}

// stdin is shared so buffered input survives across prompts.
var stdin = bufio.NewReader(os.Stdin)

// prompt reads one line from stdin.
func prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads a line without echo when stdin is a terminal.
func promptSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(label)
	}
	fmt.Print(label)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(b), nil
}
