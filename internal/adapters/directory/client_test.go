package directory

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/adapters/session"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T, csrfBody string) *session.Context {
	t.Helper()

	path := filepath.Join(t.TempDir(), "auth_state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cookies":[{"name":"sid","value":"s3cret"}]}`), 0o600))

	sess, err := session.Load(path)
	require.NoError(t, err)

	if csrfBody != "" {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(csrfBody))
		}))
		defer server.Close()
		require.NoError(t, sess.EstablishCSRF(context.Background(), server.Client(), server.URL))
	}

	return sess
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListFiltersNothingAndParsesSoftDeletes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/internal/paper_accounts", r.URL.Path)
		assert.Contains(t, r.Header.Get("Cookie"), "sid=s3cret")
		_, _ = w.Write([]byte(`[
			{"paper_account_id":"a1","name":"DUMMY_PAPER_1","cash":1000000,"deleted_at":null},
			{"paper_account_id":"a2","name":"DUMMY_PAPER_2","cash":"1000000","deleted_at":"2026-05-01T10:00:00Z"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testSession(t, ""), quietLogger())

	accounts, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, domain.AccountID("a1"), accounts[0].ID)
	assert.True(t, accounts[0].Active())
	assert.Equal(t, int64(1_000_000), accounts[0].CashBalance)

	assert.False(t, accounts[1].Active())
	assert.Equal(t, int64(1_000_000), accounts[1].CashBalance)
}

func TestListNon2xxWrapsDirectoryUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testSession(t, ""), quietLogger())

	_, err := client.List(context.Background())
	require.ErrorIs(t, err, domain.ErrDirectoryUnavailable)
	assert.Contains(t, err.Error(), "status 503")
}

func TestCreateSendsCSRFAndBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "tok-1", r.Header.Get("X-CSRF-Token"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Name string `json:"name"`
			Cash int64  `json:"cash"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "DUMMY_PAPER_1", body.Name)
		assert.Equal(t, int64(1_000_000), body.Cash)

		_, _ = w.Write([]byte(`{"paper_account_id":"new-1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(),
		testSession(t, `<meta name="csrf-token" content="tok-1">`), quietLogger())

	account, err := client.Create(context.Background(), "DUMMY_PAPER_1", 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID("new-1"), account.ID)
	assert.Equal(t, "DUMMY_PAPER_1", account.Name)
	assert.Equal(t, int64(1_000_000), account.CashBalance)
}

func TestCreateWithoutCSRFTokenStillSends(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("X-CSRF-Token"))
		_, _ = w.Write([]byte(`{"paper_account_id":"new-2","name":"DUMMY_PAPER_2"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testSession(t, ""), quietLogger())

	account, err := client.Create(context.Background(), "DUMMY_PAPER_2", 500)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID("new-2"), account.ID)
}

func TestDeleteTargetsAccountPath(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/internal/paper_accounts/acc-9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testSession(t, ""), quietLogger())
	require.NoError(t, client.Delete(context.Background(), "acc-9"))
}

func TestMintAccessKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/internal/paper_accounts/acc-3/access_keys", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"PKTEST","secret":"sk-test"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testSession(t, ""), quietLogger())

	credential, err := client.MintAccessKey(context.Background(), "acc-3")
	require.NoError(t, err)
	assert.Equal(t, domain.Credential{KeyID: "PKTEST", Secret: "sk-test"}, credential)
}

func TestMintAccessKeyNon2xx(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testSession(t, ""), quietLogger())

	_, err := client.MintAccessKey(context.Background(), "acc-3")
	require.ErrorIs(t, err, domain.ErrDirectoryUnavailable)
}
