package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"fuelsales/internal/domain"
	"fuelsales/internal/store"
)

type demoStock struct {
	branch   string
	fuelType string
	price    int64
}

var demoInventory = []demoStock{
	{"1", "Diesel", 1500},
	{"1", "Kerosene", 1200},
	{"1", "Petrol", 1600},
	{"2", "Diesel", 1520},
	{"2", "Petrol", 1630},
}

// seedDemo stocks two branches and creates one admin and one attendant per
// branch. Accounts that already exist are left alone, so it can run on every
// start.
func seedDemo(ctx context.Context, p store.Provisioner) error {
	for _, s := range demoInventory {
		if _, err := p.StockFuel(ctx, s.branch, s.fuelType, decimal.NewFromInt(s.price)); err != nil {
			return fmt.Errorf("stock %s on branch %s: %w", s.fuelType, s.branch, err)
		}
	}

	adminPwd := os.Getenv("SEED_ADMIN_PASSWORD")
	attendantPwd := os.Getenv("SEED_ATTENDANT_PASSWORD")
	if adminPwd == "" || attendantPwd == "" {
		return errors.New("SEED_ADMIN_PASSWORD and SEED_ATTENDANT_PASSWORD are required to seed accounts")
	}

	for _, u := range []struct {
		user     domain.UserAccount
		password string
	}{
		{domain.UserAccount{Login: "admin", Role: "admin", BranchID: "1"}, adminPwd},
		{domain.UserAccount{Login: "kigali", Role: "attendant", BranchID: "1"}, attendantPwd},
		{domain.UserAccount{Login: "huye", Role: "attendant", BranchID: "2"}, attendantPwd},
	} {
		if err := p.AddUser(ctx, u.user, u.password); err != nil && !errors.Is(err, store.ErrDuplicate) {
			return fmt.Errorf("add user %s: %w", u.user.Login, err)
		}
	}
	return nil
}
