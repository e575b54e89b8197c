package cli

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	logFormat  string
	appVersion string // set in Execute, reported by serve, openapi and mcp
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	appVersion = version
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folio",
		Short: "Portfolio content API with a single-admin dashboard",
		Long: `Folio serves the content of a portfolio site (projects, skills, categories,
the hero section and the contact form) as a JSON API, and lets one administrator
edit it through a cookie session guarded by a passkey-protected dashboard.

Configuration comes from folio.yaml (./folio.yaml or ~/.folio/folio.yaml) with
FOLIO_* environment variables taking precedence, e.g. FOLIO_AUTH_TOKEN_SECRET.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./folio.yaml)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (overrides logging.format)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newRefreshCmd())
	cmd.AddCommand(newOpenAPICmd())
	cmd.AddCommand(newMCPCmd())

	return cmd
}
