package ports

import (
	"context"

	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/domain"
)

// CredentialValidator read-checks a minted key pair against the public
// trading API. It has no side effects on the account directory.
type CredentialValidator interface {
	Validate(ctx context.Context, credential domain.Credential) (domain.AccountSnapshot, error)
}
