package trading

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHappyPath(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/account", r.URL.Path)
		assert.Equal(t, "PKTEST", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "sk-test", r.Header.Get("APCA-API-SECRET-KEY"))
		_, _ = w.Write([]byte(`{"cash":"1000000","buying_power":"2000000","status":"ACTIVE"}`))
	}))
	defer server.Close()

	validator := NewValidator(server.URL, server.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	snapshot, err := validator.Validate(context.Background(), domain.Credential{KeyID: "PKTEST", Secret: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "1000000", snapshot.Cash)
	assert.Equal(t, "2000000", snapshot.BuyingPower)
}

func TestValidateUnauthorized(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"forbidden"}`, http.StatusForbidden)
	}))
	defer server.Close()

	validator := NewValidator(server.URL, server.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := validator.Validate(context.Background(), domain.Credential{KeyID: "bad", Secret: "bad"})
	require.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Contains(t, err.Error(), "status 403")
}

func TestValidateConnectionError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	validator := NewValidator(server.URL, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := validator.Validate(context.Background(), domain.Credential{KeyID: "k", Secret: "s"})
	require.ErrorIs(t, err, domain.ErrValidationFailed)
}
