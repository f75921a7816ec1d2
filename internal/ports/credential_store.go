package ports

import (
	"context"

	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/domain"
)

type CredentialStore interface {
	Put(ctx context.Context, credential domain.SlotCredential) error
	List(ctx context.Context) ([]domain.SlotCredential, error)
}
