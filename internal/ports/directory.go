package ports

import (
	"context"

	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/domain"
)

// AccountDirectory is the internal paper-account API. Each call maps to a
// single HTTP request with no retry; retry policy, if any, belongs to the
// caller.
type AccountDirectory interface {
	List(ctx context.Context) ([]domain.Account, error)
	Create(ctx context.Context, name string, cashBalance int64) (domain.Account, error)
	Delete(ctx context.Context, id domain.AccountID) error
	MintAccessKey(ctx context.Context, id domain.AccountID) (domain.Credential, error)
}
