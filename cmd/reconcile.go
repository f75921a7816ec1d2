package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/adapters/render/summary"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/application"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/domain"
)

func newReconcileCmd(app *app) *cobra.Command {
	var slots int
	var cash int64
	var mode string
	var asJSON bool
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Converge the paper-account pool to one validated account per slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := application.Params{
				SlotCount:    slots,
				StartingCash: cash,
				Mode:         application.Mode(mode),
			}
			if err := params.Validate(); err != nil {
				return err
			}

			reconciler, err := app.buildReconciler(cmd.Context())
			if err != nil {
				return err
			}

			var results []application.SlotResult
			run := func(ctx context.Context) error {
				var runErr error
				results, runErr = reconciler.Reconcile(ctx, params)
				return runErr
			}

			if asJSON {
				if err := run(cmd.Context()); err != nil {
					return err
				}
			} else {
				if err := runReconcileSpinner(cmd.Context(), cmd.ErrOrStderr(), run); err != nil {
					return err
				}
			}

			if err := writeResultsOutput(cmd, results, asJSON, showSecrets); err != nil {
				return err
			}

			if application.AnyFailed(results) {
				return fmt.Errorf("%d of %d slots failed", countFailed(results), len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&slots, "slots", app.config.SlotCount, "Number of pool slots (DUMMY_PAPER_1..N)")
	cmd.Flags().Int64Var(&cash, "cash", app.config.StartingCash, "Starting cash per account, minor units")
	cmd.Flags().StringVar(&mode, "mode", string(application.ModeRefresh), "refresh or create-missing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Include secrets in the summary view")

	return cmd
}

type slotResultJSON struct {
	Slot        int              `json:"slot"`
	Name        string           `json:"name"`
	AccountID   domain.AccountID `json:"account_id,omitempty"`
	KeyID       string           `json:"key_id,omitempty"`
	Secret      string           `json:"secret,omitempty"`
	Cash        string           `json:"cash,omitempty"`
	BuyingPower string           `json:"buying_power,omitempty"`
	Validated   bool             `json:"validated"`
	Skipped     bool             `json:"skipped"`
	Error       string           `json:"error,omitempty"`
}

func writeResultsOutput(cmd *cobra.Command, results []application.SlotResult, asJSON, showSecrets bool) error {
	if asJSON {
		encoded := make([]slotResultJSON, 0, len(results))
		for _, result := range results {
			entry := slotResultJSON{
				Slot:      result.Slot,
				Name:      result.Name,
				AccountID: result.AccountID,
				Validated: result.Validated,
				Skipped:   result.Skipped,
			}
			if result.Credential != nil {
				entry.KeyID = result.Credential.KeyID
				entry.Secret = result.Credential.Secret
			}
			if result.Snapshot != nil {
				entry.Cash = result.Snapshot.Cash
				entry.BuyingPower = result.Snapshot.BuyingPower
			}
			if result.Err != nil {
				entry.Error = result.Err.Error()
			}
			encoded = append(encoded, entry)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(encoded)
	}

	rendered, err := summary.Render(results, summary.RenderOptions{ShowSecrets: showSecrets})
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
		return err
	}

	return writeConstantsBlock(cmd, results)
}

// writeConstantsBlock prints the minted pairs in the copy-pasteable form the
// downstream trading bots expect in their constants file.
func writeConstantsBlock(cmd *cobra.Command, results []application.SlotResult) error {
	minted := make([]application.SlotResult, 0, len(results))
	for _, result := range results {
		if result.Credential != nil {
			minted = append(minted, result)
		}
	}
	if len(minted) == 0 {
		return nil
	}

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, "# --- Copy these into your constants file ---"); err != nil {
		return err
	}
	for _, result := range minted {
		if _, err := fmt.Fprintf(out, "PAPER%d_API_KEY    = %q\n", result.Slot, result.Credential.KeyID); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "PAPER%d_API_SECRET = %q\n\n", result.Slot, result.Credential.Secret); err != nil {
			return err
		}
	}

	return nil
}

func countFailed(results []application.SlotResult) int {
	failed := 0
	for _, result := range results {
		if result.Failed() {
			failed++
		}
	}
	return failed
}
