package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"fuelsales/internal/domain"
	"fuelsales/internal/filterview"
	"fuelsales/internal/pricing"
)

type State int

const (
	StateIdle State = iota
	StateEditing
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrInvalidTransition = errors.New("invalid workflow transition")
	ErrNotReady          = errors.New("branch data not loaded")
)

// SessionSource supplies the credential and branch of the signed-in staff member.
type SessionSource interface {
	Current(ctx context.Context) (domain.BranchSession, error)
}

// Workflow is the sale entry screen: one draft at a time moving through
// Idle -> Editing -> Submitting -> Idle|Editing, plus the fuel type filter
// over the cached sales list.
type Workflow struct {
	svc      *Service
	data     WorkingSet
	sessions SessionSource
	notifier Notifier
	now      func() time.Time

	mu      sync.Mutex
	session domain.BranchSession
	state   State
	draft   domain.Draft
	filter  string
	// form counts opened and dismissed forms so a submission that finishes
	// after its form was dismissed does not reopen it.
	form int
}

func NewWorkflow(svc *Service, data WorkingSet, sessions SessionSource, notifier Notifier) *Workflow {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Workflow{
		svc:      svc,
		data:     data,
		sessions: sessions,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetClock replaces the clock used to date new drafts.
func (w *Workflow) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	w.mu.Lock()
	w.now = now
	w.mu.Unlock()
}

// Start loads the session and, once a branch is known, fetches both
// collections. Without a branch nothing is fetched.
func (w *Workflow) Start(ctx context.Context) error {
	session, err := w.sessions.Current(ctx)
	if err != nil {
		log.Printf("[workflow] session unavailable: %v", err)
		w.notifier.Notify(MsgBranchLookupFailed)
		return err
	}

	w.mu.Lock()
	w.session = session
	w.mu.Unlock()

	if !session.HasBranch() {
		w.notifier.Notify(MsgBranchNotFound)
		return domain.ErrMissingBranch
	}
	return w.svc.Refresh(ctx, session)
}

// Refresh re-reads both collections for the current session.
func (w *Workflow) Refresh(ctx context.Context) error {
	return w.svc.Refresh(ctx, w.Session())
}

func (w *Workflow) Session() domain.BranchSession {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Draft returns a copy of the form being edited.
func (w *Workflow) Draft() domain.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// StartNew opens an empty form dated today.
func (w *Workflow) StartNew() error {
	w.mu.Lock()
	now := w.now
	w.mu.Unlock()
	return w.open(domain.NewDraft(domain.DateOf(now())))
}

// StartEdit opens a form pre-filled from an existing record.
func (w *Workflow) StartEdit(rec domain.SaleRecord) error {
	if rec.IsNew() {
		return fmt.Errorf("%w: record has no id", ErrInvalidTransition)
	}
	return w.open(domain.DraftFromRecord(rec))
}

// Ready reports whether sales and inventory have both been loaded for the
// session's branch. Forms only open once it holds.
func (w *Workflow) Ready() bool {
	return w.data.Ready(w.Session().BranchID)
}

func (w *Workflow) open(draft domain.Draft) error {
	if !w.Ready() {
		return ErrNotReady
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateIdle {
		return fmt.Errorf("%w: cannot open a form while %s", ErrInvalidTransition, w.state)
	}
	w.form++
	w.draft = draft
	w.state = StateEditing
	return nil
}

// Cancel closes the form and drops the draft. It also dismisses a form whose
// submission is still in flight; that submission keeps running.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateIdle {
		return
	}
	w.form++
	w.draft = domain.Draft{}
	w.state = StateIdle
}

// SelectFuelType sets the fuel type and overwrites the price with the
// inventory's current unit price, clearing it when the fuel is not stocked.
// The name is trimmed first so the stored fuel type is the one priced.
func (w *Workflow) SelectFuelType(fuelType string) error {
	fuelType = strings.TrimSpace(fuelType)
	inventory := w.data.Inventory()
	return w.edit(func(d *domain.Draft) {
		d.FuelType = fuelType
		if price, ok := pricing.ResolvePrice(fuelType, inventory); ok {
			d.SalePricePerLiter = &price
		} else {
			d.SalePricePerLiter = nil
		}
	})
}

func (w *Workflow) SetLiters(liters string) error {
	return w.edit(func(d *domain.Draft) { d.Liters = liters })
}

func (w *Workflow) SetSaleDate(date domain.Date) error {
	return w.edit(func(d *domain.Draft) { d.SaleDate = date })
}

func (w *Workflow) SetPaymentMode(mode domain.PaymentMode) error {
	return w.edit(func(d *domain.Draft) { d.PaymentMode = mode })
}

func (w *Workflow) edit(apply func(d *domain.Draft)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateEditing {
		return fmt.Errorf("%w: no form is open", ErrInvalidTransition)
	}
	apply(&w.draft)
	return nil
}

// Save submits the open form. An invalid draft never leaves the device and
// the form stays open. On success the form closes; on failure it stays open
// with the draft intact unless it was dismissed in the meantime.
func (w *Workflow) Save(ctx context.Context) (domain.SaleRecord, error) {
	w.mu.Lock()
	if w.state != StateEditing {
		state := w.state
		w.mu.Unlock()
		return domain.SaleRecord{}, fmt.Errorf("%w: cannot save while %s", ErrInvalidTransition, state)
	}
	draft := w.draft
	session := w.session
	form := w.form
	if _, err := w.svc.Validate(draft); err != nil {
		w.mu.Unlock()
		w.notifier.Notify(MsgFillAllFields)
		return domain.SaleRecord{}, err
	}
	w.state = StateSubmitting
	w.mu.Unlock()

	saved, err := w.svc.Submit(ctx, draft, session)

	w.mu.Lock()
	stillOpen := w.form == form
	if stillOpen {
		if err != nil {
			w.state = StateEditing
		} else {
			w.state = StateIdle
			w.draft = domain.Draft{}
		}
	}
	w.mu.Unlock()

	if err != nil {
		w.notifier.Notify(Describe(MsgSaveFailed, err))
		return domain.SaleRecord{}, err
	}
	w.notifier.Notify(MsgSaleSaved)
	return saved, nil
}

// Delete removes a sale and refreshes the list. It does not touch the form.
func (w *Workflow) Delete(ctx context.Context, id int64) error {
	if err := w.svc.Delete(ctx, id, w.Session()); err != nil {
		w.notifier.Notify(Describe(MsgDeleteFailed, err))
		return err
	}
	w.notifier.Notify(MsgSaleDeleted)
	return nil
}

// SetFilter narrows Visible to one fuel type; empty shows every sale.
func (w *Workflow) SetFilter(fuelType string) {
	w.mu.Lock()
	w.filter = fuelType
	w.mu.Unlock()
}

func (w *Workflow) Filter() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filter
}

// Visible recomputes the filtered list from the current cache and filter.
func (w *Workflow) Visible() []domain.SaleRecord {
	return filterview.Filter(w.data.Sales(), w.Filter())
}

// Sale finds a cached sale by id.
func (w *Workflow) Sale(id int64) (domain.SaleRecord, bool) {
	for _, rec := range w.data.Sales() {
		if rec.ID == id {
			return rec, true
		}
	}
	return domain.SaleRecord{}, false
}

func (w *Workflow) Inventory() []domain.InventoryItem {
	return w.data.Inventory()
}

// FuelTypes lists the selectable fuel types for the current branch.
func (w *Workflow) FuelTypes() []string {
	return pricing.FuelTypes(w.data.Inventory())
}
