package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/adapters/session"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/domain"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/ports"
	"golang.org/x/time/rate"
)

const (
	accountsPath   = "/internal/paper_accounts"
	accessKeysPath = "/internal/paper_accounts/%s/access_keys"

	maxBodyBytes = 1 << 20
)

// Client is a thin typed wrapper over the internal paper-account API. Every
// method is exactly one HTTP call carrying the session's cookies and, when
// available, its CSRF token. There is no retry or backoff here; that policy
// belongs to the reconciler.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Context
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var _ ports.AccountDirectory = (*Client)(nil)

func NewClient(baseURL string, httpClient *http.Client, sess *session.Context, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		session:    sess,
		// The dashboard backend has no published quota; two requests a
		// second keeps a sequential run well under anything it could mind.
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		logger:  logger,
	}
}

type accountPayload struct {
	PaperAccountID string `json:"paper_account_id"`
	Name           string `json:"name"`
	// The backend has been seen serving cash both as a number and as a
	// decimal string, so this stays raw until conversion.
	Cash      json.RawMessage `json:"cash"`
	DeletedAt *string         `json:"deleted_at"`
}

type accessKeyPayload struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
}

func (c *Client) List(ctx context.Context) ([]domain.Account, error) {
	body, err := c.do(ctx, http.MethodGet, accountsPath, nil)
	if err != nil {
		return nil, err
	}

	var payload []accountPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode account list: %w", err)
	}

	accounts := make([]domain.Account, 0, len(payload))
	for _, entry := range payload {
		accounts = append(accounts, fromPayload(entry))
	}

	c.logger.Debug("listed paper accounts", "count", len(accounts))
	return accounts, nil
}

func (c *Client) Create(ctx context.Context, name string, cashBalance int64) (domain.Account, error) {
	request := struct {
		Name string `json:"name"`
		Cash int64  `json:"cash"`
	}{Name: name, Cash: cashBalance}

	encoded, err := json.Marshal(request)
	if err != nil {
		return domain.Account{}, fmt.Errorf("encode create request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, accountsPath, encoded)
	if err != nil {
		return domain.Account{}, err
	}

	var payload accountPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.Account{}, fmt.Errorf("decode created account: %w", err)
	}

	account := fromPayload(payload)
	if account.Name == "" {
		account.Name = name
	}
	if account.CashBalance == 0 {
		account.CashBalance = cashBalance
	}

	c.logger.Info("created paper account", "name", name, "account_id", account.ID)
	return account, nil
}

func (c *Client) Delete(ctx context.Context, id domain.AccountID) error {
	if _, err := c.do(ctx, http.MethodDelete, accountsPath+"/"+string(id), nil); err != nil {
		return err
	}

	c.logger.Info("deleted paper account", "account_id", id)
	return nil
}

func (c *Client) MintAccessKey(ctx context.Context, id domain.AccountID) (domain.Credential, error) {
	body, err := c.do(ctx, http.MethodPost, fmt.Sprintf(accessKeysPath, id), nil)
	if err != nil {
		return domain.Credential{}, err
	}

	var payload accessKeyPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.Credential{}, fmt.Errorf("decode access key: %w", err)
	}

	c.logger.Info("minted access key", "account_id", id, "key_id", payload.ID)
	return domain.Credential{KeyID: payload.ID, Secret: payload.Secret}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.session.Apply(request)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrDirectoryUnavailable, method, path, err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: read response: %v", domain.ErrDirectoryUnavailable, method, path, err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s: status %d: %s",
			domain.ErrDirectoryUnavailable, method, path, response.StatusCode, truncate(data, 200))
	}

	return data, nil
}

func fromPayload(payload accountPayload) domain.Account {
	account := domain.Account{
		ID:          domain.AccountID(payload.PaperAccountID),
		Name:        payload.Name,
		CashBalance: cashToMinorUnits(payload.Cash),
	}
	if payload.DeletedAt != nil {
		deletedAt := parseTimestamp(*payload.DeletedAt)
		account.DeletedAt = &deletedAt
	}
	return account
}

// cashToMinorUnits tolerates both integer and decimal-string cash fields;
// the value is informational only, so a parse failure yields zero.
func cashToMinorUnits(raw json.RawMessage) int64 {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if text == "" || text == "null" {
		return 0
	}

	number := json.Number(text)
	if value, err := number.Int64(); err == nil {
		return value
	}
	if value, err := number.Float64(); err == nil {
		return int64(value)
	}
	return 0
}

func parseTimestamp(raw string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func truncate(data []byte, limit int) string {
	text := strings.TrimSpace(string(data))
	if len(text) > limit {
		return text[:limit]
	}
	return text
}
