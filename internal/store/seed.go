package store

import (
	"fmt"
	"log"
)

// FixtureProducts is the launch catalog. Products are read-only at runtime;
// this is the only code path that writes to the products table.
var FixtureProducts = []Product{
	{
		Name:              "HDFC Personal Loan",
		Bank:              "HDFC Bank",
		Type:              "personal",
		RateAPR:           10.5,
		MinIncome:         25000,
		MinCreditScore:    750,
		TenureMinMonths:   12,
		TenureMaxMonths:   60,
		ProcessingFeePct:  1.5,
		PrepaymentAllowed: true,
		DisbursalSpeed:    "24 hours",
		DocsLevel:         "minimal",
		Summary:           "Quick personal loan for salaried individuals with low documentation.",
	},
	{
		Name:              "SBI Education Loan",
		Bank:              "SBI",
		Type:              "education",
		RateAPR:           8.5,
		MinIncome:         0,
		MinCreditScore:    0,
		TenureMinMonths:   12,
		TenureMaxMonths:   180,
		ProcessingFeePct:  0,
		PrepaymentAllowed: true,
		DisbursalSpeed:    "7 days",
		DocsLevel:         "high",
		Summary:           "Comprehensive education loan for studies in India and abroad.",
	},
	{
		Name:              "ICICI Home Loan",
		Bank:              "ICICI Bank",
		Type:              "home",
		RateAPR:           9.0,
		MinIncome:         40000,
		MinCreditScore:    700,
		TenureMinMonths:   60,
		TenureMaxMonths:   360,
		ProcessingFeePct:  0.5,
		PrepaymentAllowed: true,
		DisbursalSpeed:    "standard",
		DocsLevel:         "high",
		Summary:           "Affordable home loans with balance transfer facilities.",
	},
	{
		Name:              "Axis Vehicle Loan",
		Bank:              "Axis Bank",
		Type:              "vehicle",
		RateAPR:           9.5,
		MinIncome:         30000,
		MinCreditScore:    700,
		TenureMinMonths:   12,
		TenureMaxMonths:   84,
		ProcessingFeePct:  1.0,
		PrepaymentAllowed: false,
		DisbursalSpeed:    "48 hours",
		DocsLevel:         "standard",
		Summary:           "Get on the road quickly with flexible repayment options.",
	},
	{
		Name:              "Kotak Personal Loan",
		Bank:              "Kotak Mahindra",
		Type:              "personal",
		RateAPR:           11.0,
		MinIncome:         30000,
		MinCreditScore:    720,
		TenureMinMonths:   12,
		TenureMaxMonths:   48,
		ProcessingFeePct:  2.0,
		PrepaymentAllowed: true,
		DisbursalSpeed:    "instant",
		DocsLevel:         "minimal",
		Summary:           "Instant personal loan for existing customers.",
	},
	{
		Name:              "Bajaj Finserv PL",
		Bank:              "Bajaj Finserv",
		Type:              "personal",
		RateAPR:           13.0,
		MinIncome:         20000,
		MinCreditScore:    650,
		TenureMinMonths:   12,
		TenureMaxMonths:   60,
		ProcessingFeePct:  2.5,
		PrepaymentAllowed: true,
		DisbursalSpeed:    "2 hours",
		DocsLevel:         "minimal",
		Summary:           "Super fast disbursal for urgent cash needs.",
	},
	{
		Name:              "IDFC First Credit Line",
		Bank:              "IDFC First Bank",
		Type:              "credit_line",
		RateAPR:           14.0,
		MinIncome:         25000,
		MinCreditScore:    700,
		TenureMinMonths:   3,
		TenureMaxMonths:   36,
		ProcessingFeePct:  1.0,
		PrepaymentAllowed: true,
		DisbursalSpeed:    "instant",
		DocsLevel:         "minimal",
		Summary:           "Flexible credit line, pay interest only on what you use.",
	},
	{
		Name:              "Tata Capital Debt Consolidation",
		Bank:              "Tata Capital",
		Type:              "debt_consolidation",
		RateAPR:           11.5,
		MinIncome:         35000,
		MinCreditScore:    680,
		TenureMinMonths:   12,
		TenureMaxMonths:   60,
		ProcessingFeePct:  1.5,
		PrepaymentAllowed: true,
		DisbursalSpeed:    "72 hours",
		DocsLevel:         "standard",
		Summary:           "Consolidate your debts into one manageable EMI.",
	},
	{
		Name:              "Yes Bank Home Loan",
		Bank:              "Yes Bank",
		Type:              "home",
		RateAPR:           9.25,
		MinIncome:         50000,
		MinCreditScore:    750,
		TenureMinMonths:   60,
		TenureMaxMonths:   300,
		ProcessingFeePct:  0.5,
		PrepaymentAllowed: true,
		DisbursalSpeed:    "standard",
		DocsLevel:         "high",
		Summary:           "Home loans with special rates for women applicants.",
	},
	{
		Name:              "IndusInd Personal Loan",
		Bank:              "IndusInd Bank",
		Type:              "personal",
		RateAPR:           10.99,
		MinIncome:         25000,
		MinCreditScore:    700,
		TenureMinMonths:   12,
		TenureMaxMonths:   60,
		ProcessingFeePct:  2.0,
		PrepaymentAllowed: true,
		DisbursalSpeed:    "24 hours",
		DocsLevel:         "minimal",
		Summary:           "Hassle-free personal loans providing quick liquidity.",
	},
}

// SeedProducts populates the catalog with the fixture products. It is a
// no-op when the table already has rows, so it is safe to run at every boot.
func (s *SQLiteStore) SeedProducts() (int, error) {
	count, err := s.CountProducts()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Printf("Product catalog already seeded (%d products), skipping", count)
		return 0, nil
	}

	inserted := 0
	for i := range FixtureProducts {
		p := FixtureProducts[i] // Copy so generated IDs don't leak into the fixture slice
		if err := s.insertProduct(&p, i); err != nil {
			return inserted, fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
		inserted++
	}
	log.Printf("Seeded %d products into the catalog", inserted)
	return inserted, nil
}
