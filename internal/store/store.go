package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fuelsales/internal/domain"
)

// Upper bounds of the NUMERIC(14,3) and NUMERIC(14,2) sale columns.
var (
	maxLiters = decimal.New(1, 14-domain.LitersPlaces)
	maxPrice  = decimal.New(1, 14-domain.PricePlaces)
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidSale = errors.New("invalid sale")
	ErrDuplicate   = errors.New("already exists")
)

// Repository is the persistence behind the remote sales API. Every read and
// write is scoped to a branch except user lookup.
type Repository interface {
	ListSales(ctx context.Context, branchID string) ([]domain.SaleRecord, error)
	ListInventory(ctx context.Context, branchID string) ([]domain.InventoryItem, error)
	GetSale(ctx context.Context, id int64) (*domain.SaleRecord, error)
	CreateSale(ctx context.Context, sale domain.SaleRecord) (*domain.SaleRecord, error)
	UpdateSale(ctx context.Context, sale domain.SaleRecord) (*domain.SaleRecord, error)
	DeleteSale(ctx context.Context, id int64) error
	FindUserByLogin(ctx context.Context, login string) (*domain.UserAccount, error)
}

// Provisioner sets up branches and staff accounts outside the sales API.
type Provisioner interface {
	StockFuel(ctx context.Context, branchID string, fuelType string, unitPrice decimal.Decimal) (*domain.InventoryItem, error)
	AddUser(ctx context.Context, user domain.UserAccount, password string) error
}

// CheckSale applies the rules every repository enforces on a write: all five
// user-facing fields present, positive liters, non-negative price and a
// branch to file the sale under. Liters and price must also fit the stored
// scale so no store rounds them.
func CheckSale(sale domain.SaleRecord) error {
	switch {
	case strings.TrimSpace(sale.FuelType) == "":
		return fmt.Errorf("%w: fuel_type is required", ErrInvalidSale)
	case strings.TrimSpace(sale.BranchID) == "":
		return fmt.Errorf("%w: branch_id is required", ErrInvalidSale)
	case !sale.Liters.IsPositive():
		return fmt.Errorf("%w: liters must be greater than zero", ErrInvalidSale)
	case !domain.FitsPlaces(sale.Liters, domain.LitersPlaces):
		return fmt.Errorf("%w: liters allows at most %d decimal places", ErrInvalidSale, domain.LitersPlaces)
	case sale.Liters.GreaterThanOrEqual(maxLiters):
		return fmt.Errorf("%w: liters is too large", ErrInvalidSale)
	case sale.SalePricePerLiter.IsNegative():
		return fmt.Errorf("%w: sale_price_per_liter must not be negative", ErrInvalidSale)
	case !domain.FitsPlaces(sale.SalePricePerLiter, domain.PricePlaces):
		return fmt.Errorf("%w: sale_price_per_liter allows at most %d decimal places", ErrInvalidSale, domain.PricePlaces)
	case sale.SalePricePerLiter.GreaterThanOrEqual(maxPrice):
		return fmt.Errorf("%w: sale_price_per_liter is too large", ErrInvalidSale)
	case sale.SaleDate.IsZero():
		return fmt.Errorf("%w: sale_date is required", ErrInvalidSale)
	case !sale.PaymentMode.Valid():
		return fmt.Errorf("%w: payment_mode must be Cash, Card or Mobile Money", ErrInvalidSale)
	}
	return nil
}
