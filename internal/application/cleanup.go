package application

import (
	"context"
	"fmt"

	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/domain"
)

// CleanupReport summarizes one cleanup pass over the remote directory.
type CleanupReport struct {
	ActiveBefore int
	Deleted      []domain.AccountID
	Failed       []domain.AccountID
}

// Cleanup soft-deletes active paper accounts until only keep survivors
// remain, preserving the tail of the directory's listing order. Individual
// delete failures are collected, not fatal; only a failed listing aborts.
func (r *Reconciler) Cleanup(ctx context.Context, keep int) (CleanupReport, error) {
	if keep < 0 {
		return CleanupReport{}, fmt.Errorf("keep must not be negative, got %d", keep)
	}

	accounts, err := r.directory.List(ctx)
	if err != nil {
		return CleanupReport{}, fmt.Errorf("discover accounts: %w", err)
	}

	active := make([]domain.Account, 0, len(accounts))
	for _, account := range accounts {
		if account.Active() {
			active = append(active, account)
		}
	}

	report := CleanupReport{ActiveBefore: len(active)}
	r.logger.Info("cleaning up paper accounts", "active", len(active), "keep", keep)

	if len(active) <= keep {
		r.logger.Info("nothing to delete")
		return report, nil
	}

	for _, account := range active[:len(active)-keep] {
		if err := r.directory.Delete(ctx, account.ID); err != nil {
			r.logger.Error("cleanup delete failed", "account_id", account.ID, "error", err)
			report.Failed = append(report.Failed, account.ID)
			continue
		}
		report.Deleted = append(report.Deleted, account.ID)
	}

	return report, nil
}
