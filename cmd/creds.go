package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/domain"
)

func newCredsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "creds",
		Short: "Print the credentials stored by the last reconcile run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.credentialStore()
			if err != nil {
				return err
			}

			credentials, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list stored credentials: %w", err)
			}
			if len(credentials) == 0 {
				return fmt.Errorf("%w: run `apr reconcile` first", domain.ErrCredentialNotFound)
			}

			out := cmd.OutOrStdout()
			for _, credential := range credentials {
				_, _ = fmt.Fprintf(out, "PAPER%d_API_KEY    = %q\n", credential.Slot, credential.KeyID)
				_, _ = fmt.Fprintf(out, "PAPER%d_API_SECRET = %q\n\n", credential.Slot, credential.Secret)
			}

			return nil
		},
	}
}
