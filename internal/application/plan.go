package application

import (
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/domain"
)

// slotPlan is the computed action for one slot: which stale occupants to
// delete and whether a replacement gets created afterwards.
type slotPlan struct {
	Slot      int
	Name      string
	Deletions []domain.AccountID
	Create    bool
	Occupant  domain.AccountID
}

// buildPlan diffs the discovered accounts against the desired slot set.
// Collision handling is global and happens before any creation: every
// duplicate occupant of a slot name is stale once a refresh is requested,
// so all matches are deleted rather than tie-breaking a survivor. Only
// create-missing mode with exactly one occupant leaves a slot untouched.
func buildPlan(accounts []domain.Account, params Params) []slotPlan {
	byName := domain.ActiveByName(accounts)

	plans := make([]slotPlan, 0, params.SlotCount)
	for slot := 1; slot <= params.SlotCount; slot++ {
		name := domain.SlotName(slot)
		matches := byName[name]

		plan := slotPlan{Slot: slot, Name: name, Create: true}

		if len(matches) == 1 && params.Mode == ModeCreateMissing {
			plan.Create = false
			plan.Occupant = matches[0].ID
			plans = append(plans, plan)
			continue
		}

		for _, match := range matches {
			plan.Deletions = append(plan.Deletions, match.ID)
		}
		plans = append(plans, plan)
	}

	return plans
}
