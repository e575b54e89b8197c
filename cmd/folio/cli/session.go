package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/folio-cms/folio/internal/dashboard"
)

const passkeyAttempts = 3

// ---------- login ----------

func newLoginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the dashboard",
		Long: `Sign in with the administrator's email and password, then confirm the
dashboard passkey. The session is saved to ~/.folio/session.yaml and lasts ten
days unless refreshed. A session still waiting for its passkey resumes at the
passkey prompt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), email)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email (prompted if omitted)")

	return cmd
}

func runLogin(ctx context.Context, email string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	d, err := openDashboard(cfg)
	if err != nil {
		return err
	}

	state, err := d.gate.Check(ctx)
	if err != nil {
		return err
	}
	switch state {
	case dashboard.StateAuthorized:
		fmt.Printf("Already signed in as %s.\n", d.gate.Email())
		return nil
	case dashboard.StateUnauthenticated:
		if email == "" {
			if email, err = prompt("Email: "); err != nil {
				return err
			}
		}
		password, err := promptSecret("Password: ")
		if err != nil {
			return err
		}
		if err := d.gate.Login(ctx, email, password); err != nil {
			if errors.Is(err, dashboard.ErrUnauthorized) {
				return fmt.Errorf("login failed: invalid credentials")
			}
			return fmt.Errorf("login failed: %w", err)
		}
		if err := d.saveToken(); err != nil {
			return err
		}
	}

	for attempt := 1; ; attempt++ {
		code, err := promptSecret("Dashboard passkey: ")
		if err != nil {
			return err
		}
		err = d.gate.VerifyPasskey(code)
		if err == nil {
			break
		}
		if !errors.Is(err, dashboard.ErrPasskeyMismatch) || attempt == passkeyAttempts {
			return err
		}
		fmt.Println("Passkey does not match, try again.")
	}

	path, _ := d.gate.Enter()
	fmt.Printf("Signed in as %s. Dashboard: %s%s\n", d.gate.Email(), cfg.Dashboard.URL, path)
	return nil
}

// ---------- logout ----------

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			d, err := openDashboard(cfg)
			if err != nil {
				return err
			}
			if err := d.gate.Logout(cmd.Context()); err != nil {
				fmt.Printf("Signed out locally (%v).\n", err)
				return nil
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

// ---------- refresh ----------

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Extend the saved session by another ten days",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			d, err := openDashboard(cfg)
			if err != nil {
				return err
			}
			if err := d.gate.Refresh(cmd.Context()); err != nil {
				if errors.Is(err, dashboard.ErrUnauthorized) {
					return fmt.Errorf("session expired; run 'folio login'")
				}
				return err
			}
			if err := d.saveToken(); err != nil {
				return err
			}
			fmt.Println("Session refreshed.")
			return nil
		},
	}
}

// ---------- status ----------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server health and the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
}

func runStatus(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	healthAddr := cfg.Dashboard.URL + "/readyz"
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(healthAddr)
	if err != nil {
		fmt.Printf("Server at %s is not responding.\n", cfg.Dashboard.URL)
		return nil
	}
	resp.Body.Close()
	fmt.Printf("Server:   %s (%d)\n", healthAddr, resp.StatusCode)

	d, err := openDashboard(cfg)
	if err != nil {
		return err
	}
	state, err := d.gate.Check(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Session:  %s\n", state)
	if email := d.gate.Email(); email != "" {
		fmt.Printf("Admin:    %s\n", email)
	}
	if path, ok := d.gate.Enter(); !ok {
		fmt.Printf("Next:     %s (run 'folio login')\n", path)
	}
	return nil
}
