package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingBranch = errors.New("branch id not available")
	ErrNetwork       = errors.New("network error")
	ErrAuth          = errors.New("credential rejected")
)

// Field names reported by ValidationError, matching the wire names.
const (
	FieldFuelType          = "fuel_type"
	FieldLiters            = "liters"
	FieldSalePricePerLiter = "sale_price_per_liter"
	FieldSaleDate          = "sale_date"
	FieldPaymentMode       = "payment_mode"
)

type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.MissingFields, ", "))
}

func (e *ValidationError) Has(field string) bool {
	for _, f := range e.MissingFields {
		if f == field {
			return true
		}
	}
	return false
}

// ServerError is a well-formed request the remote store refused.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote store returned status %d", e.Status)
	}
	return fmt.Sprintf("remote store returned status %d: %s", e.Status, e.Message)
}
