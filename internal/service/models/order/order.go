package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/commercekit/oms/internal/service/models/address"
	"github.com/commercekit/oms/internal/service/models/currency"
	"github.com/commercekit/oms/internal/service/models/errs"
	"github.com/commercekit/oms/internal/service/models/fulfillment"
	"github.com/commercekit/oms/internal/service/models/invoice"
	"github.com/commercekit/oms/internal/service/models/orderevent"
	"github.com/commercekit/oms/internal/service/models/orderline"
	"github.com/commercekit/oms/internal/service/models/transaction"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

var ErrInvalidStatus = errors.New("invalid order status")

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCompleted, StatusCancelled, StatusRefunded:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Cancellable reports whether the order is still inside the cancellation
// window. Shipped and later states are out.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusProcessing
}

// Order is the root aggregate. Totals are fixed at creation and read-only to
// every operation in this service.
type Order struct {
	ID               int64                     `json:"id"`
	TenantID         string                    `json:"tenantId"`
	Number           string                    `json:"number"`
	Status           Status                    `json:"status"`
	PaymentStatus    transaction.PaymentStatus `json:"paymentStatus"`
	FulfillmentState FulfillmentStatus         `json:"fulfillmentStatus"`
	Currency         currency.Currency         `json:"currency"`
	Subtotal         decimal.Decimal           `json:"subtotal"`
	ShippingTotal    decimal.Decimal           `json:"shippingTotal"`
	TaxTotal         decimal.Decimal           `json:"taxTotal"`
	DiscountTotal    decimal.Decimal           `json:"discountTotal"`
	Total            decimal.Decimal           `json:"total"`
	CustomerID       *int64                    `json:"customerId,omitempty"`
	ShippingAddress  *address.Address          `json:"shippingAddress,omitempty"`
	BillingAddress   *address.Address          `json:"billingAddress,omitempty"`
	CustomerNote     string                    `json:"customerNote,omitempty"`
	InternalNotes    []string                  `json:"internalNotes,omitempty"`
	Lines            []orderline.OrderLine     `json:"lines"`
	Fulfillments     []fulfillment.Fulfillment `json:"fulfillments,omitempty"`
	Transactions     []transaction.Transaction `json:"transactions,omitempty"`
	Invoices         []invoice.Invoice         `json:"invoices,omitempty"`
	Events           []orderevent.OrderEvent   `json:"events,omitempty"`
	CreatedAt        time.Time                 `json:"createdAt"`
	UpdatedAt        time.Time                 `json:"updatedAt"`
}

// CheckTotals verifies total == subtotal + shipping + tax - discount within
// the currency's rounding tolerance.
func (o *Order) CheckTotals() error {
	expected := o.Subtotal.Add(o.ShippingTotal).Add(o.TaxTotal).Sub(o.DiscountTotal)
	if o.Total.Sub(expected).Abs().GreaterThan(o.Currency.RoundingTolerance()) {
		return fmt.Errorf("order %s: total %s does not match components %s",
			o.Number, o.Total.String(), expected.String())
	}

	return nil
}

// Cancel moves the order to cancelled if it is still inside the window.
// Cascading fulfillment cancellation and reservation release are orchestrated
// by the service layer; refunds are a separate explicit action.
func (o *Order) Cancel() error {
	if !o.Status.Cancellable() {
		return &errs.OrderNotCancellableError{OrderID: o.ID, Status: string(o.Status)}
	}
	o.Status = StatusCancelled

	return nil
}

// NetCaptured folds the order's transaction ledger.
func (o *Order) NetCaptured() decimal.Decimal {
	return transaction.NetCaptured(o.Transactions)
}

// DerivePaymentStatus recomputes the payment status from the full ledger.
func (o *Order) DerivePaymentStatus() transaction.PaymentStatus {
	return transaction.DerivePaymentStatus(o.Transactions, o.Total)
}
