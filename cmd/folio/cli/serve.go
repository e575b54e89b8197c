package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/folio-cms/folio/internal/server"
	"github.com/folio-cms/folio/internal/service"
)

const banner = `
  __       _ _
 / _| ___ | (_) ___
| |_ / _ \| | |/ _ \
|  _| (_) | | | (_) |
|_|  \___/|_|_|\___/
`

func newServeCmd() *cobra.Command {
	var dev bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the folio API server",
		Long: `Start the HTTP server that serves portfolio content and the admin session API.

Development mode (--dev) fills in missing secrets with well-known values, keeps
content in memory unless store.data_dir is set, logs contact messages instead
of mailing them, and drops the Secure flag from the session cookie so the
dashboard works over http://localhost.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(dev)
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "HTTP listen port")
	cmd.Flags().String("host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().Bool("mcp", false, "Mount the read-only MCP endpoint at /mcp")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	viper.BindPFlag("mcp.enabled", cmd.Flags().Lookup("mcp"))

	return cmd
}

func runServe(dev bool) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Print(banner)
	fmt.Println()

	logger := newLogger(os.Stderr, cfg.Logging, dev)
	if path != "" {
		logger.Info("config loaded", "path", path)
	}

	if dev {
		for _, key := range cfg.ApplyDevDefaults() {
			logger.Warn("using development default", "key", key)
		}
	} else if missing := cfg.MissingSecrets(); len(missing) > 0 {
		logger.Warn("admin secrets not configured; login will fail until they are set",
			"missing", strings.Join(missing, ","))
	}

	st, err := openStore(cfg.Store, dev)
	if err != nil {
		return fmt.Errorf("init document store: %w", err)
	}
	logger.Info("document store ready", "driver", st.Driver())

	bodyLimit, err := cfg.Server.BodyLimit()
	if err != nil {
		st.Close()
		return err
	}
	shutdown, request, err := cfg.Server.Timeouts()
	if err != nil {
		st.Close()
		return err
	}

	srvCfg := server.Config{
		Host:             cfg.Server.Host,
		Port:             cfg.Server.Port,
		ShutdownTimeout:  shutdown,
		RequestTimeout:   request,
		CORSOrigins:      cfg.Server.CORS.Origins,
		MaxBodySize:      bodyLimit,
		SecureCookies:    !dev,
		LoginRateLimit:   cfg.Server.RateLimit.Login,
		ContactRateLimit: cfg.Server.RateLimit.Contact,
		EnableMCP:        cfg.MCP.Enabled,
		Version:          appVersion,
	}

	authSvc := service.NewAuthService(secretsFrom(cfg.Auth))
	srv := server.New(srvCfg, st, authSvc, newRelay(cfg.SMTP, dev, logger), logger)

	host := cfg.Server.Host
	if host == "0.0.0.0" {
		host = "localhost"
	}
	fmt.Printf("→ folio %s\n", appVersion)
	fmt.Printf("→ Listening on http://%s:%d\n", host, cfg.Server.Port)
	fmt.Printf("→ OpenAPI:    http://%s:%d/openapi.json\n", host, cfg.Server.Port)
	fmt.Printf("→ Health:     http://%s:%d/healthz\n", host, cfg.Server.Port)
	if cfg.MCP.Enabled {
		fmt.Printf("→ MCP:        http://%s:%d/mcp\n", host, cfg.Server.Port)
	}
	fmt.Println()

	return srv.ListenAndServe()
}
