package errs

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound covers missing rows and rows owned by another tenant alike, so
// existence never leaks across tenants.
var ErrNotFound = errors.New("not found")

// InvalidTransitionError reports a state transition that is not allowed from
// the entity's current state.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: invalid transition %s -> %s", e.Entity, e.From, e.To)
}

// OverFulfillmentError reports a reservation that would push an order line's
// fulfilled quantity over the ordered quantity.
type OverFulfillmentError struct {
	OrderLineID int64
	Quantity    int
	Requested   int
	Fulfilled   int
}

func (e *OverFulfillmentError) Error() string {
	return fmt.Sprintf(
		"order line %d: reserving %d would exceed ordered quantity %d (already fulfilled %d)",
		e.OrderLineID, e.Requested, e.Quantity, e.Fulfilled,
	)
}

// InvalidQuantityError reports a release that would push an order line's
// fulfilled quantity below zero, or a non-positive requested quantity.
type InvalidQuantityError struct {
	OrderLineID int64
	Requested   int
	Fulfilled   int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf(
		"order line %d: invalid quantity %d (fulfilled %d)",
		e.OrderLineID, e.Requested, e.Fulfilled,
	)
}

// InsufficientQuantityError reports a fulfillment request asking for more than
// a line has left to fulfill.
type InsufficientQuantityError struct {
	OrderLineID int64
	Requested   int
	Remaining   int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf(
		"order line %d: requested %d but only %d remain unfulfilled",
		e.OrderLineID, e.Requested, e.Remaining,
	)
}

// RefundExceedsBalanceError reports a refund larger than the order's net
// captured amount.
type RefundExceedsBalanceError struct {
	OrderID     int64
	Requested   decimal.Decimal
	NetCaptured decimal.Decimal
}

func (e *RefundExceedsBalanceError) Error() string {
	return fmt.Sprintf(
		"order %d: refund of %s exceeds net captured %s",
		e.OrderID, e.Requested.String(), e.NetCaptured.String(),
	)
}

// OrderNotCancellableError reports a cancel request on an order that is past
// the cancellable window.
type OrderNotCancellableError struct {
	OrderID int64
	Status  string
}

func (e *OrderNotCancellableError) Error() string {
	return fmt.Sprintf("order %d: not cancellable while %s", e.OrderID, e.Status)
}
