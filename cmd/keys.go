package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/lessonsched/internal/auth"
	"github.com/example/lessonsched/internal/config"
)

func newKeysCmd() *cobra.Command {
	var (
		useKeyring bool
		remove     bool
	)

	c := &cobra.Command{
		Use:   "keys",
		Short: "Generate the secret that encrypts the stored session token",
		Long: "Prints a TOKEN_KEY value (base64). With --keyring the secret is written to the\n" +
			"OS keyring instead, which is where it is read from when TOKEN_KEY is unset.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !useKeyring {
				if remove {
					return fmt.Errorf("--delete requires --keyring")
				}
				key, err := auth.GenerateSecret()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "export TOKEN_KEY=%s\n", key)
				return nil
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			ks := auth.KeyringSecret{Service: cfg.Store.KeyringService}
			if remove {
				if err := ks.Delete(); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted token secret from keyring service %q\n", ks.Service)
				return nil
			}
			if _, err := ks.Generate(); err != nil {
				return err
			}
			fmt.Fprintf(out, "stored new token secret in keyring service %q\n", ks.Service)
			fmt.Fprintln(out, "the stored token can no longer be decrypted; run `lessonsched login`")
			return nil
		},
	}

	c.Flags().BoolVar(&useKeyring, "keyring", false, "store the secret in the OS keyring")
	c.Flags().BoolVar(&remove, "delete", false, "delete the keyring secret")
	return c
}
