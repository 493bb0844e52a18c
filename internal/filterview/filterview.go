package filterview

import "fuelsales/internal/domain"

// Filter narrows sales to one fuel type. An empty fuelType returns sales
// itself. The input slice is never modified.
func Filter(sales []domain.SaleRecord, fuelType string) []domain.SaleRecord {
	if fuelType == "" {
		return sales
	}
	out := make([]domain.SaleRecord, 0, len(sales))
	for _, sale := range sales {
		if sale.FuelType == fuelType {
			out = append(out, sale)
		}
	}
	return out
}
