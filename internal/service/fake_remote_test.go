package service

import (
	"context"
	"sync"

	"fuelsales/internal/domain"
)

type remoteCall struct {
	op     string
	id     int64
	record domain.SaleRecord
}

// fakeRemote plays the remote store for both the gateway and the datastore.
type fakeRemote struct {
	mu        sync.Mutex
	calls     []remoteCall
	sales     []domain.SaleRecord
	inventory []domain.InventoryItem
	nextID    int64

	writeErr error
	listErr  error
	// block, when set, holds CreateSale/UpdateSale until it is closed.
	block chan struct{}
}

func (f *fakeRemote) record(call remoteCall) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeRemote) callsOf(op string) []remoteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []remoteCall
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeRemote) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRemote) ListSales(_ context.Context, _ domain.BranchSession) ([]domain.SaleRecord, error) {
	f.record(remoteCall{op: "list-sales"})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.SaleRecord{}, f.sales...), nil
}

func (f *fakeRemote) ListInventory(_ context.Context, _ domain.BranchSession) ([]domain.InventoryItem, error) {
	f.record(remoteCall{op: "list-inventory"})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.InventoryItem{}, f.inventory...), nil
}

func (f *fakeRemote) CreateSale(_ context.Context, _ domain.BranchSession, rec domain.SaleRecord) (domain.SaleRecord, error) {
	f.record(remoteCall{op: "create", record: rec})
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return domain.SaleRecord{}, f.writeErr
	}
	f.nextID++
	rec.ID = 100 + f.nextID
	f.sales = append(f.sales, rec)
	return rec, nil
}

func (f *fakeRemote) UpdateSale(_ context.Context, _ domain.BranchSession, id int64, rec domain.SaleRecord) (domain.SaleRecord, error) {
	f.record(remoteCall{op: "update", id: id, record: rec})
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return domain.SaleRecord{}, f.writeErr
	}
	for i := range f.sales {
		if f.sales[i].ID == id {
			f.sales[i] = rec
		}
	}
	return rec, nil
}

func (f *fakeRemote) DeleteSale(_ context.Context, _ domain.BranchSession, id int64) error {
	f.record(remoteCall{op: "delete", id: id})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	kept := f.sales[:0:0]
	for _, s := range f.sales {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	f.sales = kept
	return nil
}

type staticSessions struct {
	session domain.BranchSession
	err     error
}

func (s staticSessions) Current(context.Context) (domain.BranchSession, error) {
	return s.session, s.err
}
