package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"fuelsales/internal/domain"
)

func testInventory() []domain.InventoryItem {
	return []domain.InventoryItem{
		{ID: 1, FuelType: "Diesel", UnitPrice: decimal.NewFromInt(1500)},
		{ID: 2, FuelType: "Petrol", UnitPrice: decimal.NewFromInt(1600)},
		{ID: 3, FuelType: "Kerosene", UnitPrice: decimal.RequireFromString("1250.50")},
	}
}

func TestResolvePriceReturnsUnitPriceOfMatchingItem(t *testing.T) {
	inventory := testInventory()
	for _, item := range inventory {
		price, ok := ResolvePrice(item.FuelType, inventory)
		if !ok {
			t.Fatalf("expected %s to resolve", item.FuelType)
		}
		if !price.Equal(item.UnitPrice) {
			t.Fatalf("expected %s for %s, got %s", item.UnitPrice, item.FuelType, price)
		}
	}
}

func TestResolvePriceIsCaseSensitive(t *testing.T) {
	if _, ok := ResolvePrice("diesel", testInventory()); ok {
		t.Fatalf("expected lowercase diesel not to match")
	}
}

func TestResolvePriceAbsentFuelOrEmptyInventory(t *testing.T) {
	if _, ok := ResolvePrice("Jet A-1", testInventory()); ok {
		t.Fatalf("expected unstocked fuel to be absent")
	}
	if _, ok := ResolvePrice("Diesel", nil); ok {
		t.Fatalf("expected absent price before inventory is loaded")
	}
}

func TestFuelTypesKeepsInventoryOrder(t *testing.T) {
	got := FuelTypes(testInventory())
	want := []string{"Diesel", "Petrol", "Kerosene"}
	if len(got) != len(want) {
		t.Fatalf("expected %d fuel types, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
