// Package datastore keeps the in-memory working set of one branch: its
// inventory items and its sale records, mirrored from the remote store.
package datastore

import (
	"context"
	"log"
	"sync"

	"fuelsales/internal/domain"
)

// Fetcher is the read side of the remote store.
type Fetcher interface {
	ListSales(ctx context.Context, session domain.BranchSession) ([]domain.SaleRecord, error)
	ListInventory(ctx context.Context, session domain.BranchSession) ([]domain.InventoryItem, error)
}

// Store holds the cached collections. Both slices are only ever replaced as a
// whole, so readers see either the old or the new collection. Overlapping
// refreshes are not ordered: whichever response lands last is kept.
type Store struct {
	fetcher Fetcher

	mu              sync.RWMutex
	branchID        string
	inventory       []domain.InventoryItem
	sales           []domain.SaleRecord
	inventoryLoaded bool
	salesLoaded     bool
}

func New(fetcher Fetcher) *Store {
	return &Store{
		fetcher:   fetcher,
		inventory: []domain.InventoryItem{},
		sales:     []domain.SaleRecord{},
	}
}

// RefreshInventory replaces the cached inventory with the branch's current
// items. Without a branch id it does nothing. On error the previous list is
// kept and returned alongside the error.
func (s *Store) RefreshInventory(ctx context.Context, session domain.BranchSession) ([]domain.InventoryItem, error) {
	if !session.HasBranch() {
		return s.Inventory(), nil
	}

	items, err := s.fetcher.ListInventory(ctx, session)
	if err != nil {
		log.Printf("[datastore] inventory refresh failed branch=%s: %v", session.BranchID, err)
		return s.Inventory(), err
	}

	s.mu.Lock()
	s.switchBranchLocked(session.BranchID)
	s.inventory = items
	s.inventoryLoaded = true
	s.mu.Unlock()
	return items, nil
}

// RefreshSales is RefreshInventory for sale records.
func (s *Store) RefreshSales(ctx context.Context, session domain.BranchSession) ([]domain.SaleRecord, error) {
	if !session.HasBranch() {
		return s.Sales(), nil
	}

	sales, err := s.fetcher.ListSales(ctx, session)
	if err != nil {
		log.Printf("[datastore] sales refresh failed branch=%s: %v", session.BranchID, err)
		return s.Sales(), err
	}

	s.mu.Lock()
	s.switchBranchLocked(session.BranchID)
	s.sales = sales
	s.salesLoaded = true
	s.mu.Unlock()
	return sales, nil
}

// switchBranchLocked drops the other collection's loaded flag when a refresh
// lands for a different branch; its cached items belong to the old branch.
func (s *Store) switchBranchLocked(branchID string) {
	if s.branchID == branchID {
		return
	}
	s.branchID = branchID
	s.inventoryLoaded = false
	s.salesLoaded = false
}

// Inventory returns the cached items. Callers must not modify the slice.
func (s *Store) Inventory() []domain.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inventory
}

// Sales returns the cached records. Callers must not modify the slice.
func (s *Store) Sales() []domain.SaleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sales
}

// Ready reports whether both collections have been loaded for branchID.
func (s *Store) Ready(branchID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.branchID == branchID && s.inventoryLoaded && s.salesLoaded
}
