package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/bbwallet/portal-bfa-go/internal/infra/kv"

	"go.uber.org/zap"
)

// Seed populates empty collections with the fixed sample records: two
// portfolio companies and one deal per company. Runs once per substrate;
// collections that already hold records are left untouched.
func Seed(ctx context.Context, store kv.Store, logger *zap.Logger) error {
	seeded := 0

	ok, err := seedCollection(ctx, store, KeyCompanies, sampleCompanies())
	if err != nil {
		return err
	}
	if ok {
		seeded++
	}

	ok, err = seedCollection(ctx, store, KeyDeals, sampleDeals())
	if err != nil {
		return err
	}
	if ok {
		seeded++
	}

	if seeded > 0 {
		logger.Info("seeded sample data", zap.Int("collections", seeded))
	}
	return nil
}

// seedCollection writes records under key when the collection is empty or
// absent. Returns whether a write happened.
func seedCollection[T any](ctx context.Context, store kv.Store, key string, records []T) (bool, error) {
	value, ok, err := store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("seed: read %s: %w", key, err)
	}
	if ok {
		var existing []json.RawMessage
		if err := json.Unmarshal(value, &existing); err == nil && len(existing) > 0 {
			return false, nil
		}
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return false, fmt.Errorf("seed: encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, payload); err != nil {
		return false, fmt.Errorf("seed: write %s: %w", key, err)
	}
	return true, nil
}

func sampleCompanies() []domain.Company {
	return []domain.Company{
		{
			ID:              "company-1",
			Name:            "Neural Dynamics",
			Sector:          "AI/ML",
			Stage:           "Series B",
			Description:     "Advanced AI research company",
			LongDescription: "Neural Dynamics is pioneering the next generation of artificial intelligence through breakthrough research in neural networks and machine learning.",
			Headquarters:    "San Francisco, CA",
			Website:         "https://example.com",
			FoundedYear:     2020,
			TeamSize:        150,
			TotalRaised:     45,
			Status:          domain.CompanyStatusActive,
			IsFeatured:      true,
			KeyInvestors:    []string{"Sequoia Capital", "Andreessen Horowitz", "Y Combinator"},
		},
		{
			ID:              "company-2",
			Name:            "Quantum Systems",
			Sector:          "Deep Tech",
			Stage:           "Series A",
			Description:     "Quantum computing solutions",
			LongDescription: "Quantum Systems is developing practical quantum computing applications for enterprise use.",
			Headquarters:    "Boston, MA",
			Website:         "https://example.com",
			FoundedYear:     2019,
			TeamSize:        80,
			TotalRaised:     25,
			Status:          domain.CompanyStatusActive,
			IsFeatured:      false,
			KeyInvestors:    []string{"Lightspeed Ventures"},
		},
	}
}

func sampleDeals() []domain.Deal {
	closingDate := func(days int) string {
		return time.Now().Add(time.Duration(days) * 24 * time.Hour).Format("2006-01-02")
	}

	return []domain.Deal{
		{
			ID:                  "deal-1",
			CompanyID:           "company-1",
			Title:               "Secondary Market Opportunity - Neural Dynamics",
			DealType:            "Secondary",
			Status:              domain.DealStatusOpen,
			AccessLevel:         domain.AccessLevelPublic,
			MinimumInvestment:   25000,
			ImpliedValuation:    500,
			SharePrice:          12.50,
			LastRoundPrice:      10.00,
			ClosingDate:         closingDate(30),
			AllocationRemaining: 5000000,
			Highlights: []string{
				"Strong revenue growth trajectory",
				"Experienced leadership team",
				"Large addressable market",
			},
		},
		{
			ID:                  "deal-2",
			CompanyID:           "company-2",
			Title:               "Primary Round - Quantum Systems",
			DealType:            "Primary",
			Status:              domain.DealStatusOpen,
			AccessLevel:         domain.AccessLevelPublic,
			MinimumInvestment:   50000,
			ImpliedValuation:    200,
			SharePrice:          8.00,
			ClosingDate:         closingDate(45),
			AllocationRemaining: 2000000,
			Highlights: []string{
				"Breakthrough technology",
				"Strategic partnerships",
			},
		},
	}
}
