package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/domain"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/ports"
)

type Mode string

const (
	// ModeRefresh deletes every current occupant of every slot and recreates
	// it, guaranteeing each slot ends up with a freshly minted credential.
	ModeRefresh Mode = "refresh"
	// ModeCreateMissing leaves slots with exactly one active occupant alone
	// and only fills empty or duplicated slots.
	ModeCreateMissing Mode = "create-missing"
)

func (m Mode) Valid() bool {
	return m == ModeRefresh || m == ModeCreateMissing
}

type Params struct {
	SlotCount    int
	StartingCash int64
	Mode         Mode
}

func (p Params) Validate() error {
	if p.SlotCount < 1 {
		return fmt.Errorf("slot count must be at least 1, got %d", p.SlotCount)
	}
	if p.StartingCash <= 0 {
		return fmt.Errorf("starting cash must be positive, got %d", p.StartingCash)
	}
	if !p.Mode.Valid() {
		return fmt.Errorf("unsupported mode %q", p.Mode)
	}

	return nil
}

// SlotResult is the per-slot outcome of one reconcile run. Exactly one
// result is produced per slot regardless of where that slot's pipeline
// stopped.
type SlotResult struct {
	Slot       int
	Name       string
	AccountID  domain.AccountID
	Credential *domain.Credential
	Snapshot   *domain.AccountSnapshot
	Validated  bool
	Skipped    bool
	Err        error
}

// Failed reports whether the slot ended short of a validated credential.
// A skipped slot kept a healthy occupant on purpose and does not count.
func (r SlotResult) Failed() bool {
	if r.Skipped {
		return r.Err != nil
	}
	return r.Err != nil || !r.Validated
}

func AnyFailed(results []SlotResult) bool {
	for _, result := range results {
		if result.Failed() {
			return true
		}
	}
	return false
}

// Reconciler drives the remote pool of slot-named paper accounts toward the
// desired state: one active account per slot with a validated key pair. It
// runs strictly sequentially; the directory API documents no concurrency
// semantics, so overlapping creates or deletes against the same name could
// race into duplicates.
type Reconciler struct {
	directory ports.AccountDirectory
	validator ports.CredentialValidator
	creds     ports.CredentialStore
	clock     ports.Clock
	logger    *slog.Logger
}

// NewReconciler wires a reconciler. creds may be nil when local credential
// persistence is not wanted.
func NewReconciler(directory ports.AccountDirectory, validator ports.CredentialValidator, creds ports.CredentialStore, clock ports.Clock, logger *slog.Logger) *Reconciler {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		directory: directory,
		validator: validator,
		creds:     creds,
		clock:     clock,
		logger:    logger,
	}
}

// Reconcile converges the pool and returns one result per slot. Only a
// failed discovery aborts the run; every per-slot failure is recorded in
// that slot's result and the remaining slots are still attempted. The run
// is re-entrant: after a partial failure, running again re-discovers the
// remote state and converges from there.
func (r *Reconciler) Reconcile(ctx context.Context, params Params) ([]SlotResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	r.logger.Info("reconciling paper-account pool",
		"slots", params.SlotCount, "cash", params.StartingCash, "mode", params.Mode)

	accounts, err := r.directory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover accounts: %w", err)
	}

	plans := buildPlan(accounts, params)

	results := make([]SlotResult, 0, len(plans))
	for _, plan := range plans {
		results = append(results, r.reconcileSlot(ctx, plan, params.StartingCash))
	}

	return results, nil
}

func (r *Reconciler) reconcileSlot(ctx context.Context, plan slotPlan, startingCash int64) SlotResult {
	result := SlotResult{Slot: plan.Slot, Name: plan.Name}

	// Stale occupants go first so the replacement never coexists with them
	// under the same name. A failed delete is logged and the create still
	// goes ahead; if the server then rejects the name collision, that
	// surfaces as this slot's create failure.
	for _, id := range plan.Deletions {
		if err := r.directory.Delete(ctx, id); err != nil {
			r.logger.Warn("delete of stale occupant failed", "slot", plan.Slot, "account_id", id, "error", err)
		}
	}

	if !plan.Create {
		result.Skipped = true
		result.AccountID = plan.Occupant
		r.logger.Info("slot already occupied, skipping", "slot", plan.Slot, "account_id", plan.Occupant)
		return result
	}

	account, err := r.directory.Create(ctx, plan.Name, startingCash)
	if err != nil {
		// A timeout here is ambiguous: the account may exist server-side
		// without us having its id. The next run's discovery phase picks
		// such an orphan up as a duplicate and removes it.
		result.Err = fmt.Errorf("create account: %w", err)
		r.logger.Error("account creation failed", "slot", plan.Slot, "name", plan.Name, "error", err)
		return result
	}
	result.AccountID = account.ID

	credential, err := r.directory.MintAccessKey(ctx, account.ID)
	if err != nil {
		result.Err = fmt.Errorf("mint access key: %w", err)
		r.logger.Error("access-key mint failed", "slot", plan.Slot, "account_id", account.ID, "error", err)
		return result
	}
	result.Credential = &credential

	if r.creds != nil {
		stored := domain.SlotCredential{
			Slot:      plan.Slot,
			AccountID: account.ID,
			KeyID:     credential.KeyID,
			Secret:    credential.Secret,
			MintedAt:  r.clock.Now(),
		}
		if err := r.creds.Put(ctx, stored); err != nil {
			r.logger.Warn("persisting credential failed", "slot", plan.Slot, "error", err)
		}
	}

	snapshot, err := r.validator.Validate(ctx, credential)
	if err != nil {
		// No rollback: the account and key stay, the slot is just degraded.
		result.Err = fmt.Errorf("validate credential: %w", err)
		r.logger.Error("credential validation failed", "slot", plan.Slot, "account_id", account.ID, "error", err)
		return result
	}
	result.Snapshot = &snapshot
	result.Validated = true

	r.logger.Info("slot reconciled", "slot", plan.Slot, "account_id", account.ID,
		"key_id", credential.KeyID, "cash", snapshot.Cash, "buying_power", snapshot.BuyingPower)

	return result
}
