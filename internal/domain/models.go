package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type PaymentMode string

const (
	PaymentCash        PaymentMode = "Cash"
	PaymentCard        PaymentMode = "Card"
	PaymentMobileMoney PaymentMode = "Mobile Money"
)

// PaymentModes lists the accepted modes in the order they are offered to staff.
var PaymentModes = []PaymentMode{PaymentCash, PaymentCard, PaymentMobileMoney}

func (m PaymentMode) Valid() bool {
	for _, known := range PaymentModes {
		if m == known {
			return true
		}
	}
	return false
}

// ParsePaymentMode matches case-insensitively and returns the canonical spelling.
func ParsePaymentMode(raw string) (PaymentMode, bool) {
	raw = strings.TrimSpace(raw)
	for _, known := range PaymentModes {
		if strings.EqualFold(raw, string(known)) {
			return known, true
		}
	}
	return "", false
}

// BranchSession is the credential and branch a working session runs under.
type BranchSession struct {
	Credential string
	BranchID   string
}

func (s BranchSession) HasBranch() bool {
	return strings.TrimSpace(s.BranchID) != ""
}

type InventoryItem struct {
	ID        int64           `json:"id"`
	FuelType  string          `json:"fuel_type"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	BranchID  string          `json:"branch_id,omitempty"`
}

type SaleRecord struct {
	ID                int64           `json:"id,omitempty"`
	FuelType          string          `json:"fuel_type"`
	Liters            decimal.Decimal `json:"liters"`
	SalePricePerLiter decimal.Decimal `json:"sale_price_per_liter"`
	SaleDate          Date            `json:"sale_date"`
	PaymentMode       PaymentMode     `json:"payment_mode"`
	BranchID          string          `json:"branch_id"`
}

func (r SaleRecord) IsNew() bool {
	return r.ID == 0
}

// Draft is the sale form while staff are filling it in. Liters stays as typed
// until validation; the price is only ever written by fuel type selection.
type Draft struct {
	ID                int64
	FuelType          string
	Liters            string
	SalePricePerLiter *decimal.Decimal
	SaleDate          Date
	PaymentMode       PaymentMode
	BranchID          string
}

func NewDraft(today Date) Draft {
	return Draft{SaleDate: today}
}

// DraftFromRecord copies a persisted record into an editable draft.
func DraftFromRecord(rec SaleRecord) Draft {
	price := rec.SalePricePerLiter
	return Draft{
		ID:                rec.ID,
		FuelType:          rec.FuelType,
		Liters:            rec.Liters.String(),
		SalePricePerLiter: &price,
		SaleDate:          rec.SaleDate,
		PaymentMode:       rec.PaymentMode,
		BranchID:          rec.BranchID,
	}
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	UserID int64  `json:"userId"`
	Branch string `json:"branch"`
}

type Actor struct {
	UserID   int64
	Login    string
	Role     string
	BranchID string
}

type UserAccount struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         string
	BranchID     string
	Active       bool
}

// Decimal places a sale keeps once stored.
const (
	LitersPlaces int32 = 3
	PricePlaces  int32 = 2
)

// FitsPlaces reports whether d has no significant digits past places.
func FitsPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}
