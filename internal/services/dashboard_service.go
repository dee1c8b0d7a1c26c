package services

import "context"

// co2SavedPerItemKg is the average CO2 saved by one reused item versus
// buying it new.
const co2SavedPerItemKg = 2.3

// DashboardStats is the sustainability summary shown on the user's
// dashboard. ItemsReused counts both sides of the marketplace: items the
// user bought second-hand and items they listed for reuse.
type DashboardStats struct {
	ActiveListings int     `json:"active_listings"`
	TotalSales     float64 `json:"total_sales"`
	ItemsPurchased int     `json:"items_purchased"`
	ItemsReused    int     `json:"items_reused"`
	CO2SavedKg     float64 `json:"co2_saved_kg"`
}

// DashboardService aggregates the current user's listings, purchases and
// sales into DashboardStats.
type DashboardService struct {
	products  *ProductService
	purchases *PurchaseService
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(products *ProductService, purchases *PurchaseService) *DashboardService {
	return &DashboardService{
		products:  products,
		purchases: purchases,
	}
}

// Stats computes the dashboard numbers. Each underlying load applies its
// own fallback; the reported origin is local if any of them fell back.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, Origin, error) {
	listings, origin, err := s.products.ListMine(ctx)
	if err != nil {
		return nil, origin, err
	}
	bought, boughtOrigin, err := s.purchases.ListForUser(ctx)
	if err != nil {
		return nil, boughtOrigin, err
	}
	sold, soldOrigin, err := s.purchases.ListSales(ctx)
	if err != nil {
		return nil, soldOrigin, err
	}
	if boughtOrigin == OriginLocal || soldOrigin == OriginLocal {
		origin = OriginLocal
	}

	stats := &DashboardStats{
		ActiveListings: len(listings),
		ItemsPurchased: len(bought),
	}
	for i := range sold {
		stats.TotalSales += sold[i].Total()
	}
	stats.ItemsReused = stats.ItemsPurchased + stats.ActiveListings
	stats.CO2SavedKg = float64(stats.ItemsReused) * co2SavedPerItemKg
	return stats, origin, nil
}
