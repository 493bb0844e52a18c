package store

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fuelsales/internal/domain"
)

func TestCheckSale(t *testing.T) {
	valid := domain.SaleRecord{
		FuelType:          "Diesel",
		Liters:            decimal.NewFromInt(10),
		SalePricePerLiter: decimal.NewFromInt(1500),
		SaleDate:          domain.NewDate(2024, time.January, 5),
		PaymentMode:       domain.PaymentCash,
		BranchID:          "1",
	}
	if err := CheckSale(valid); err != nil {
		t.Fatalf("expected valid sale, got %v", err)
	}

	broken := []func(s *domain.SaleRecord){
		func(s *domain.SaleRecord) { s.FuelType = "" },
		func(s *domain.SaleRecord) { s.BranchID = "" },
		func(s *domain.SaleRecord) { s.Liters = decimal.Zero },
		func(s *domain.SaleRecord) { s.SalePricePerLiter = decimal.NewFromInt(-1) },
		func(s *domain.SaleRecord) { s.SaleDate = domain.Date{} },
		func(s *domain.SaleRecord) { s.PaymentMode = "Cheque" },
		func(s *domain.SaleRecord) { s.Liters = decimal.RequireFromString("10.12345") },
		func(s *domain.SaleRecord) { s.Liters = decimal.RequireFromString("0.0004") },
		func(s *domain.SaleRecord) { s.Liters = decimal.New(1, 11) },
		func(s *domain.SaleRecord) { s.SalePricePerLiter = decimal.RequireFromString("1500.125") },
	}
	for i, mutate := range broken {
		sale := valid
		mutate(&sale)
		if err := CheckSale(sale); !errors.Is(err, ErrInvalidSale) {
			t.Fatalf("case %d: expected ErrInvalidSale, got %v", i, err)
		}
	}
}

func TestCheckSaleAcceptsStoredScale(t *testing.T) {
	sale := domain.SaleRecord{
		FuelType:          "Petrol",
		Liters:            decimal.RequireFromString("12.750"),
		SalePricePerLiter: decimal.RequireFromString("1599.50"),
		SaleDate:          domain.NewDate(2024, time.January, 5),
		PaymentMode:       domain.PaymentCard,
		BranchID:          "2",
	}
	if err := CheckSale(sale); err != nil {
		t.Fatalf("expected 3-place liters and 2-place price to pass, got %v", err)
	}

	sale.Liters = decimal.RequireFromString("12.7500")
	if err := CheckSale(sale); err != nil {
		t.Fatalf("expected trailing zeros past the scale to pass, got %v", err)
	}
}
