package summary

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/application"
)

type RenderOptions struct {
	ShowSecrets bool
}

func renderView(results []application.SlotResult, opts RenderOptions, s styles) string {
	failed := 0
	for _, result := range results {
		if result.Failed() {
			failed++
		}
	}

	lines := []string{
		s.title.Render("Paper Account Pool"),
		s.header.Render(fmt.Sprintf("slots: %d, failed: %d", len(results), failed)),
	}

	if len(results) == 0 {
		lines = append(lines, s.empty.Render("No slot results."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, result := range results {
		lines = append(lines, s.section.Render(renderSlot(result, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSlot(result application.SlotResult, opts RenderOptions, s styles) string {
	parts := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			s.slot.Render(fmt.Sprintf("Slot %d (%s)", result.Slot, result.Name)),
			" ",
			outcomeBadge(result, s),
		),
	}

	if result.AccountID != "" {
		parts = append(parts, s.detail.Render("account: "+string(result.AccountID)))
	}
	if result.Credential != nil {
		parts = append(parts, s.detail.Render("key id:  "+result.Credential.KeyID))
		if opts.ShowSecrets {
			parts = append(parts, s.detail.Render("secret:  "+result.Credential.Secret))
		}
	}
	if result.Snapshot != nil {
		parts = append(parts, s.detail.Render(
			fmt.Sprintf("cash: %s, buying power: %s", result.Snapshot.Cash, result.Snapshot.BuyingPower)))
	}
	if result.Err != nil {
		parts = append(parts, s.failure.Render("error: "+sanitize(result.Err.Error())))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func outcomeBadge(result application.SlotResult, s styles) string {
	switch {
	case result.Skipped:
		return s.skipped.Render("kept")
	case result.Validated:
		return s.ok.Render("validated")
	default:
		return s.failure.Render("failed")
	}
}

func sanitize(value string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, value)
}
