package main

import (
	"context"
	"testing"

	"fuelsales/internal/config"
	"fuelsales/internal/store/memory"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "short"})
	if err == nil {
		t.Fatalf("expected weak security config to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef"})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestSeedDemoIsRepeatable(t *testing.T) {
	t.Setenv("SEED_ADMIN_PASSWORD", "admin-pass")
	t.Setenv("SEED_ATTENDANT_PASSWORD", "attendant-pass")
	ctx := context.Background()
	repo := memory.New()

	for i := 0; i < 2; i++ {
		if err := seedDemo(ctx, repo); err != nil {
			t.Fatalf("seed run %d: %v", i+1, err)
		}
	}

	inventory, _ := repo.ListInventory(ctx, "2")
	if len(inventory) != 2 {
		t.Fatalf("expected two fuels on branch 2 after repeated seeding, got %+v", inventory)
	}
	user, err := repo.FindUserByLogin(ctx, "huye")
	if err != nil || user.BranchID != "2" {
		t.Fatalf("expected huye on branch 2, got %+v err=%v", user, err)
	}
}

func TestSeedDemoRequiresPasswords(t *testing.T) {
	t.Setenv("SEED_ADMIN_PASSWORD", "")
	t.Setenv("SEED_ATTENDANT_PASSWORD", "")

	if err := seedDemo(context.Background(), memory.New()); err == nil {
		t.Fatalf("expected missing seed passwords to be rejected")
	}
}
