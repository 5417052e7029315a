package catalog

import (
	"sort"
	"strings"

	"loanpicks.com/loan-picks/internal/store"
)

// Profile is the slice of the user record the recommender needs.
type Profile struct {
	MonthlyIncome  float64
	CreditScore    int
	EmploymentType string
}

// Recommendations is what the dashboard renders.
type Recommendations struct {
	BestMatch *store.Product
	TopPicks  []store.Product
	Total     int
}

const topPickCount = 4

// Score rates how well a product fits a profile. Ineligible products (the
// user misses the income or credit-score bar) score zero; eligible products
// are rated on cost first (APR, processing fee), then convenience terms.
// Higher is better.
func Score(p store.Product, profile Profile) float64 {
	if profile.MonthlyIncome < p.MinIncome {
		return 0
	}
	if profile.CreditScore < p.MinCreditScore {
		return 0
	}

	score := 100.0
	score -= p.RateAPR * 4
	score -= p.ProcessingFeePct * 3
	if p.PrepaymentAllowed {
		score += 3
	}
	switch p.DocsLevel {
	case "minimal":
		score += 4
	case "standard":
		score += 2
	}
	switch {
	case p.DisbursalSpeed == "instant":
		score += 4
	case strings.Contains(p.DisbursalSpeed, "hour"):
		score += 2
	}

	if score < 1 {
		score = 1 // Eligible products always outrank ineligible ones
	}
	return score
}

// Recommend picks the best match and up to four runner-up products for the
// dashboard. With a profile, products are ranked by Score and ineligible
// ones are skipped. Without one (anonymous or pre-onboarding users), catalog
// order stands in: position 0 is the best match, positions 1-4 the picks.
// The fallback also applies when the profile qualifies for nothing, so the
// dashboard is never empty.
func Recommend(products []store.Product, profile *Profile) Recommendations {
	rec := Recommendations{Total: len(products)}
	if len(products) == 0 {
		return rec
	}

	if profile != nil {
		ranked := make([]store.Product, len(products))
		copy(ranked, products)
		sort.SliceStable(ranked, func(i, j int) bool {
			return Score(ranked[i], *profile) > Score(ranked[j], *profile)
		})
		if Score(ranked[0], *profile) > 0 {
			rec.BestMatch = &ranked[0]
			for i := 1; i < len(ranked) && len(rec.TopPicks) < topPickCount; i++ {
				if Score(ranked[i], *profile) > 0 {
					rec.TopPicks = append(rec.TopPicks, ranked[i])
				}
			}
			return rec
		}
	}

	rec.BestMatch = &products[0]
	end := 1 + topPickCount
	if end > len(products) {
		end = len(products)
	}
	rec.TopPicks = append(rec.TopPicks, products[1:end]...)
	return rec
}
