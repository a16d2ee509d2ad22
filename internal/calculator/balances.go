package calculator

import (
	"sort"

	"equi/internal/models"
)

// MemberBalance summarizes one external participant across an owner's
// splits.
type MemberBalance struct {
	// Name is the participant name as entered on the splits.
	Name string `json:"name"`

	// Outstanding is the sum of this participant's unpaid shares.
	Outstanding int64 `json:"outstanding"`

	// Settled is the sum of this participant's paid shares.
	Settled int64 `json:"settled"`

	// Splits counts how many splits the participant appears in.
	Splits int `json:"splits"`
}

// OutstandingByMember aggregates unpaid and settled share totals per
// external participant name across the given splits. The "Me" member is
// skipped: the owner's share is pre-settled by construction. Participants
// sharing a name across splits aggregate into one row; result order is
// descending outstanding amount, then name for stability.
func OutstandingByMember(splits []models.Split) []MemberBalance {
	byName := make(map[string]*MemberBalance)

	for _, split := range splits {
		seen := make(map[string]bool)
		for _, m := range split.Members {
			if m.Name == models.MeName {
				continue
			}
			bal, ok := byName[m.Name]
			if !ok {
				bal = &MemberBalance{Name: m.Name}
				byName[m.Name] = bal
			}
			if m.IsPaid {
				bal.Settled += m.Amount
			} else {
				bal.Outstanding += m.Amount
			}
			if !seen[m.Name] {
				bal.Splits++
				seen[m.Name] = true
			}
		}
	}

	balances := make([]MemberBalance, 0, len(byName))
	for _, bal := range byName {
		balances = append(balances, *bal)
	}
	sort.Slice(balances, func(i, j int) bool {
		if balances[i].Outstanding != balances[j].Outstanding {
			return balances[i].Outstanding > balances[j].Outstanding
		}
		return balances[i].Name < balances[j].Name
	})
	return balances
}
