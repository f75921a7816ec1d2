package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanupCmd(app *app) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Soft-delete active paper accounts, keeping the last few",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reconciler, err := app.buildReconciler(cmd.Context())
			if err != nil {
				return err
			}

			report, err := reconciler.Cleanup(cmd.Context(), keep)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "active before: %d\n", report.ActiveBefore)
			_, _ = fmt.Fprintf(out, "deleted: %d\n", len(report.Deleted))
			for _, id := range report.Deleted {
				_, _ = fmt.Fprintf(out, "  - %s\n", id)
			}

			if len(report.Failed) > 0 {
				for _, id := range report.Failed {
					_, _ = fmt.Fprintf(out, "failed to delete: %s\n", id)
				}
				return fmt.Errorf("%d account(s) could not be deleted", len(report.Failed))
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 1, "Number of active accounts to preserve")

	return cmd
}
