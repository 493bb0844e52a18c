package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fuelsales/internal/domain"
)

// Gateway is the write side of the remote store.
type Gateway interface {
	CreateSale(ctx context.Context, session domain.BranchSession, rec domain.SaleRecord) (domain.SaleRecord, error)
	UpdateSale(ctx context.Context, session domain.BranchSession, id int64, rec domain.SaleRecord) (domain.SaleRecord, error)
	DeleteSale(ctx context.Context, session domain.BranchSession, id int64) error
}

// WorkingSet is the branch-scoped cache the service refreshes after writes.
type WorkingSet interface {
	RefreshSales(ctx context.Context, session domain.BranchSession) ([]domain.SaleRecord, error)
	RefreshInventory(ctx context.Context, session domain.BranchSession) ([]domain.InventoryItem, error)
	Sales() []domain.SaleRecord
	Inventory() []domain.InventoryItem
	Ready(branchID string) bool
}

type Service struct {
	gateway  Gateway
	data     WorkingSet
	notifier Notifier
}

func New(gateway Gateway, data WorkingSet, notifier Notifier) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{gateway: gateway, data: data, notifier: notifier}
}

// Validate checks the five user-facing fields and turns the draft into the
// record that would be sent. Every failing field is reported at once.
func (s *Service) Validate(draft domain.Draft) (domain.SaleRecord, error) {
	var missing []string

	fuelType := strings.TrimSpace(draft.FuelType)
	if fuelType == "" {
		missing = append(missing, domain.FieldFuelType)
	}

	liters, err := decimal.NewFromString(strings.TrimSpace(draft.Liters))
	if err != nil || !liters.IsPositive() || !domain.FitsPlaces(liters, domain.LitersPlaces) {
		missing = append(missing, domain.FieldLiters)
	}

	var price decimal.Decimal
	if draft.SalePricePerLiter == nil || draft.SalePricePerLiter.IsNegative() ||
		!domain.FitsPlaces(*draft.SalePricePerLiter, domain.PricePlaces) {
		missing = append(missing, domain.FieldSalePricePerLiter)
	} else {
		price = *draft.SalePricePerLiter
	}

	if draft.SaleDate.IsZero() {
		missing = append(missing, domain.FieldSaleDate)
	}
	if !draft.PaymentMode.Valid() {
		missing = append(missing, domain.FieldPaymentMode)
	}

	if len(missing) > 0 {
		return domain.SaleRecord{}, &domain.ValidationError{MissingFields: missing}
	}

	return domain.SaleRecord{
		ID:                draft.ID,
		FuelType:          fuelType,
		Liters:            liters,
		SalePricePerLiter: price,
		SaleDate:          draft.SaleDate,
		PaymentMode:       draft.PaymentMode,
		BranchID:          draft.BranchID,
	}, nil
}

// Submit validates the draft, creates or updates it under the session's
// branch, then refreshes both cached collections. The returned record is the
// store's copy. A failed follow-up refresh is reported but does not fail the
// submission.
func (s *Service) Submit(ctx context.Context, draft domain.Draft, session domain.BranchSession) (domain.SaleRecord, error) {
	rec, err := s.Validate(draft)
	if err != nil {
		return domain.SaleRecord{}, err
	}
	if !session.HasBranch() {
		return domain.SaleRecord{}, domain.ErrMissingBranch
	}
	rec.BranchID = session.BranchID

	var saved domain.SaleRecord
	if rec.IsNew() {
		saved, err = s.gateway.CreateSale(ctx, session, rec)
	} else {
		saved, err = s.gateway.UpdateSale(ctx, session, rec.ID, rec)
	}
	if err != nil {
		log.Printf("[service] save sale failed branch=%s id=%d: %v", session.BranchID, rec.ID, err)
		return domain.SaleRecord{}, err
	}

	// Prices do not change on a sale, but inventory is re-read anyway so both
	// collections are fetched after every write.
	if err := s.refresh(ctx, session, true); err != nil {
		log.Printf("[service] WARN: refresh after save failed branch=%s: %v", session.BranchID, err)
	}
	return saved, nil
}

// Delete removes a sale remotely and re-reads the sales list. Nothing is
// removed locally; the list only changes through the refresh.
func (s *Service) Delete(ctx context.Context, id int64, session domain.BranchSession) error {
	if !session.HasBranch() {
		return domain.ErrMissingBranch
	}
	if id <= 0 {
		return fmt.Errorf("delete sale: invalid id %d", id)
	}
	if err := s.gateway.DeleteSale(ctx, session, id); err != nil {
		log.Printf("[service] delete sale failed branch=%s id=%d: %v", session.BranchID, id, err)
		return err
	}
	if err := s.refresh(ctx, session, false); err != nil {
		log.Printf("[service] WARN: refresh after delete failed branch=%s: %v", session.BranchID, err)
	}
	return nil
}

// Refresh re-reads sales and inventory for the session's branch.
func (s *Service) Refresh(ctx context.Context, session domain.BranchSession) error {
	return s.refresh(ctx, session, true)
}

func (s *Service) refresh(ctx context.Context, session domain.BranchSession, withInventory bool) error {
	var g errgroup.Group
	g.Go(func() error {
		if _, err := s.data.RefreshSales(ctx, session); err != nil {
			s.notifier.Notify(Describe(MsgFetchSalesFailed, err))
			return err
		}
		return nil
	})
	if withInventory {
		g.Go(func() error {
			if _, err := s.data.RefreshInventory(ctx, session); err != nil {
				s.notifier.Notify(Describe(MsgFetchInventoryFailed, err))
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// IsValidation reports whether err came from draft validation.
func IsValidation(err error) bool {
	var verr *domain.ValidationError
	return errors.As(err, &verr)
}
