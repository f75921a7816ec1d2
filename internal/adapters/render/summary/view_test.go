package summary

import (
	"fmt"
	"testing"

	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/application"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderValidatedSlot(t *testing.T) {
	output, err := Render([]application.SlotResult{
		{
			Slot:       1,
			Name:       "DUMMY_PAPER_1",
			AccountID:  "acc-1",
			Credential: &domain.Credential{KeyID: "PK1", Secret: "sk-1"},
			Snapshot:   &domain.AccountSnapshot{Cash: "1000000", BuyingPower: "2000000"},
			Validated:  true,
		},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "slots: 1, failed: 0")
	assert.Contains(t, output, "Slot 1 (DUMMY_PAPER_1)")
	assert.Contains(t, output, "validated")
	assert.Contains(t, output, "PK1")
	assert.Contains(t, output, "buying power: 2000000")
	assert.NotContains(t, output, "sk-1")
}

func TestRenderShowsSecretsWhenAsked(t *testing.T) {
	output, err := Render([]application.SlotResult{
		{
			Slot:       1,
			Name:       "DUMMY_PAPER_1",
			Credential: &domain.Credential{KeyID: "PK1", Secret: "sk-1"},
			Validated:  true,
		},
	}, RenderOptions{ShowSecrets: true})

	require.NoError(t, err)
	assert.Contains(t, output, "sk-1")
}

func TestRenderFailedAndSkippedSlots(t *testing.T) {
	output, err := Render([]application.SlotResult{
		{Slot: 1, Name: "DUMMY_PAPER_1", AccountID: "keep-1", Skipped: true},
		{Slot: 2, Name: "DUMMY_PAPER_2", Err: fmt.Errorf("mint access key: boom")},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "slots: 2, failed: 1")
	assert.Contains(t, output, "kept")
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "error: mint access key: boom")
}

func TestRenderEmptyResults(t *testing.T) {
	output, err := Render(nil, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "No slot results.")
}
