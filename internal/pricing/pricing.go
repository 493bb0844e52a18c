// Package pricing derives a sale's price per liter from the branch inventory.
package pricing

import (
	"github.com/shopspring/decimal"

	"fuelsales/internal/domain"
)

// ResolvePrice returns the unit price of the inventory item whose fuel type
// equals fuelType exactly. The bool is false when the fuel is not stocked or
// the inventory has not been loaded yet.
func ResolvePrice(fuelType string, inventory []domain.InventoryItem) (decimal.Decimal, bool) {
	for _, item := range inventory {
		if item.FuelType == fuelType {
			return item.UnitPrice, true
		}
	}
	return decimal.Decimal{}, false
}

// FuelTypes lists the fuel types offered for selection, in inventory order.
func FuelTypes(inventory []domain.InventoryItem) []string {
	out := make([]string, 0, len(inventory))
	for _, item := range inventory {
		out = append(out, item.FuelType)
	}
	return out
}
