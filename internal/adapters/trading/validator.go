package trading

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/domain"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/ports"
)

const accountInfoPath = "/v2/account"

// Validator exercises a freshly minted key pair against the public paper
// trading API. The check is a pure read; it never touches the account
// directory, and its failure does not undo the mint.
type Validator struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.CredentialValidator = (*Validator)(nil)

func NewValidator(baseURL string, httpClient *http.Client, logger *slog.Logger) *Validator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Validator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

type accountInfoPayload struct {
	Cash        string `json:"cash"`
	BuyingPower string `json:"buying_power"`
}

func (v *Validator) Validate(ctx context.Context, credential domain.Credential) (domain.AccountSnapshot, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+accountInfoPath, nil)
	if err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("create account-info request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("APCA-API-KEY-ID", credential.KeyID)
	request.Header.Set("APCA-API-SECRET-KEY", credential.Secret)

	response, err := v.httpClient.Do(request)
	if err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("%w: read response: %v", domain.ErrValidationFailed, err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return domain.AccountSnapshot{}, fmt.Errorf("%w: status %d: %s",
			domain.ErrValidationFailed, response.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload accountInfoPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("%w: decode account info: %v", domain.ErrValidationFailed, err)
	}

	v.logger.Debug("credential validated", "key_id", credential.KeyID,
		"cash", payload.Cash, "buying_power", payload.BuyingPower)

	return domain.AccountSnapshot{Cash: payload.Cash, BuyingPower: payload.BuyingPower}, nil
}
