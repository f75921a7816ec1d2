package domain

import "fmt"

const slotNameFormat = "DUMMY_PAPER_%d"

// SlotName returns the canonical account name for a pool slot.
func SlotName(index int) string {
	return fmt.Sprintf(slotNameFormat, index)
}

// SlotNames returns the canonical names for slots 1..count in order.
func SlotNames(count int) []string {
	names := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		names = append(names, SlotName(i))
	}
	return names
}

// ActiveByName groups the active subset of accounts by name. A name may map
// to several accounts: the directory does not enforce name uniqueness, and
// duplicate slot occupants are exactly what reconciliation has to clean up.
func ActiveByName(accounts []Account) map[string][]Account {
	byName := make(map[string][]Account)
	for _, account := range accounts {
		if !account.Active() {
			continue
		}
		byName[account.Name] = append(byName[account.Name], account)
	}
	return byName
}
