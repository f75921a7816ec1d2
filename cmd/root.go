package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "apr",
		Short:         "Alpaca paper-account refresher (apr): manage a pool of dummy paper accounts",
		Long:          "apr drives a fixed pool of DUMMY_PAPER_N paper accounts toward a clean state: one active account per slot with a freshly minted, validated API key pair. It consumes a previously captured browser session (auth_state.json) for dashboard auth.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newReconcileCmd(app),
		newCleanupCmd(app),
		newCredsCmd(app),
	)

	return rootCmd
}
