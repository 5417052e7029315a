// Package catalog holds the pure decision logic over the loan product list:
// the user-facing filter predicate and the profile-based recommendation
// ranking. Everything here is side-effect free.
package catalog

import (
	"strings"

	"loanpicks.com/loan-picks/internal/store"
)

// DefaultMaxAPR is the filter ceiling when the user has not moved the APR
// slider. No catalog product exceeds it.
const DefaultMaxAPR = 20

// FilterCriteria is the transient, client-held filter state. Zero values
// disable the corresponding condition (except MaxAPR, which always applies).
type FilterCriteria struct {
	Search         string  // Bank name substring, case-insensitive
	MaxAPR         float64 // Products above this APR are excluded
	MinIncome      float64 // The user's own income; products requiring more are excluded
	MinCreditScore int     // Show only products requiring at least this score
}

func DefaultCriteria() FilterCriteria {
	return FilterCriteria{MaxAPR: DefaultMaxAPR}
}

// Filter returns the subset of products satisfying every criteria condition,
// preserving catalog order.
//
// Note the credit-score condition is a "minimum strictness" selector, not an
// eligibility check: it keeps products that DEMAND at least the selected
// score. That is the shipped dashboard behavior and clients depend on it;
// eligibility proper lives in Score.
func Filter(products []store.Product, criteria FilterCriteria) []store.Product {
	search := strings.ToLower(criteria.Search)

	filtered := make([]store.Product, 0, len(products))
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Bank), search) {
			continue
		}
		if p.RateAPR > criteria.MaxAPR {
			continue
		}
		if criteria.MinIncome > 0 && p.MinIncome > criteria.MinIncome {
			continue
		}
		if criteria.MinCreditScore > 0 && p.MinCreditScore < criteria.MinCreditScore {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}
