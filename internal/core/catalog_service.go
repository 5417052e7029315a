package core

import (
	"fmt"

	"loanpicks.com/loan-picks/internal/catalog"
	"loanpicks.com/loan-picks/internal/store"
)

// CatalogService serves the product list, the filter endpoint and the
// dashboard recommendations. The catalog is read-only at runtime, so this is
// a thin layer over the store plus the pure catalog functions.
type CatalogService struct {
	dbStore *store.SQLiteStore
}

func NewCatalogService(db *store.SQLiteStore) *CatalogService {
	return &CatalogService{dbStore: db}
}

func (s *CatalogService) ListProducts(criteria catalog.FilterCriteria) ([]store.Product, int, error) {
	products, err := s.dbStore.GetProducts()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load product catalog: %w", err)
	}
	filtered := catalog.Filter(products, criteria)
	return filtered, len(products), nil
}

func (s *CatalogService) GetProduct(productID string) (*store.Product, error) {
	product, err := s.dbStore.GetProductByID(productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Dashboard computes the best match and top picks for the given user (nil
// for anonymous visitors).
func (s *CatalogService) Dashboard(user *store.User) (catalog.Recommendations, error) {
	products, err := s.dbStore.GetProducts()
	if err != nil {
		return catalog.Recommendations{}, fmt.Errorf("failed to load product catalog: %w", err)
	}
	return catalog.Recommend(products, profileOf(user)), nil
}

// profileOf extracts the recommendation profile from a user record, or nil
// when the user is anonymous or has not finished onboarding.
func profileOf(user *store.User) *catalog.Profile {
	if !user.HasProfile() {
		return nil
	}
	profile := catalog.Profile{
		MonthlyIncome: *user.MonthlyIncome,
		CreditScore:   *user.CreditScore,
	}
	if user.EmploymentType != nil {
		profile.EmploymentType = *user.EmploymentType
	}
	return &profile
}
