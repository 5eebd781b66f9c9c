package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errors
var (
	ErrListingNotFound       = errors.New("listing does not exist")
	ErrOrderNotFound         = errors.New("order does not exist")
	ErrListingDeleted        = errors.New("listing is deleted")
	ErrNotListingCreator     = errors.New("user is not the listing creator")
	ErrListingHasOrders      = errors.New("listing has active orders")
	ErrCannotInteract        = errors.New("order cannot be interacted with now")
	ErrOrderNotInDispute     = errors.New("order is not in dispute")
	ErrMinPerOrderIsZero     = errors.New("listing min price per order is zero")
	ErrMinAboveMax           = errors.New("listing min price per order greater than max price per order")
	ErrMaxAboveTotal         = errors.New("listing max price per order greater than total price")
	ErrOrderBelowMin         = errors.New("order amount less than listing min price per order")
	ErrOrderAboveMax         = errors.New("order amount greater than listing max price per order")
	ErrInsufficientAvailable = errors.New("order amount greater than listing available amount")
)

// AmountError reports a violated amount bound together with the two values
// that were compared. It wraps one of the bound sentinel errors above so
// callers can match with errors.Is.
type AmountError struct {
	Err    error
	Amount decimal.Decimal
	Limit  decimal.Decimal
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("%v: %s (limit %s)", e.Err, e.Amount, e.Limit)
}

// Unwrap returns the bound sentinel
func (e *AmountError) Unwrap() error {
	return e.Err
}

func amountErr(sentinel error, amount, limit decimal.Decimal) error {
	return &AmountError{Err: sentinel, Amount: amount, Limit: limit}
}

// CustodyError reports a failed asset transfer. The operation that triggered
// it is aborted with no state change.
type CustodyError struct {
	Op  string
	Err error
}

func (e *CustodyError) Error() string {
	return fmt.Sprintf("custody %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transfer error
func (e *CustodyError) Unwrap() error {
	return e.Err
}
