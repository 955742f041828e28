package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/example/lessonsched/internal/auth"
	"github.com/example/lessonsched/internal/config"
)

func newLoginCmd() *cobra.Command {
	var logout bool

	c := &cobra.Command{
		Use:   "login",
		Short: "Log in to the platform and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg config.Config
				mgr *auth.Manager
			)
			stop, err := startApp(cmd.Context(), fx.Populate(&cfg, &mgr))
			if err != nil {
				return err
			}
			defer stop()

			out := cmd.OutOrStdout()
			if logout {
				if err := mgr.Invalidate(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(out, "removed stored token %s\n", cfg.Store.TokenFile)
				return nil
			}

			if _, err := mgr.Login(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(out, "logged in as %q, token stored in %s\n", cfg.Sportivity.Username, cfg.Store.TokenFile)
			return nil
		},
	}

	c.Flags().BoolVar(&logout, "logout", false, "forget the stored token instead of logging in")
	return c
}
