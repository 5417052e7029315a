package store

import "time"

type User struct {
	ID             string    `json:"id"` // UUID
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	PasswordHash   string    `json:"-"` // Do not expose this in JSON responses
	EmailConfirmed bool      `json:"email_confirmed"`
	MonthlyIncome  *float64  `json:"monthly_income"`  // Nullable until onboarding
	CreditScore    *int      `json:"credit_score"`    // Nullable until onboarding
	EmploymentType *string   `json:"employment_type"` // Nullable until onboarding
	CreatedAt      time.Time `json:"created_at"`
}

// HasProfile reports whether the user completed onboarding.
func (u *User) HasProfile() bool {
	return u != nil && u.MonthlyIncome != nil && u.CreditScore != nil
}

type Product struct {
	ID                string  `json:"id"` // UUID
	Name              string  `json:"name"`
	Bank              string  `json:"bank"`
	Type              string  `json:"type"` // personal, education, home, vehicle, credit_line, debt_consolidation
	RateAPR           float64 `json:"rate_apr"`
	MinIncome         float64 `json:"min_income"`
	MinCreditScore    int     `json:"min_credit_score"`
	TenureMinMonths   int     `json:"tenure_min_months"`
	TenureMaxMonths   int     `json:"tenure_max_months"`
	ProcessingFeePct  float64 `json:"processing_fee_pct"`
	PrepaymentAllowed bool    `json:"prepayment_allowed"`
	DisbursalSpeed    string  `json:"disbursal_speed"`
	DocsLevel         string  `json:"docs_level"` // minimal, standard, high
	Summary           string  `json:"summary,omitempty"`
	TermsJSON         string  `json:"terms,omitempty"` // Optional structured terms blob
	FAQJSON           string  `json:"faq,omitempty"`   // Optional structured FAQ blob
}

// Turn is one message within a chat session.
type Turn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatSession holds the full conversation between one user and the
// assistant about one product. At most one row exists per (user, product).
type ChatSession struct {
	ID        string    `json:"id"` // UUID
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Turns     []Turn    `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
