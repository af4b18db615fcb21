package orderline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/commercekit/oms/internal/service/models/errs"
)

// OrderLine is one ordered item. Product fields are snapshotted at order time
// and never follow later catalog changes.
type OrderLine struct {
	ID                int64           `json:"id"`
	TenantID          string          `json:"tenantId"`
	OrderID           int64           `json:"orderId"`
	ProductID         int64           `json:"productId"`
	ProductName       string          `json:"productName"`
	SKU               string          `json:"sku"`
	ImageURL          string          `json:"imageUrl,omitempty"`
	Quantity          int             `json:"quantity"`
	QuantityFulfilled int             `json:"quantityFulfilled"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
	TaxAmount         decimal.Decimal `json:"taxAmount"`
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// QuantityToFulfill returns how much of the line is still unshipped.
func (l *OrderLine) QuantityToFulfill() int {
	return l.Quantity - l.QuantityFulfilled
}

// Reserve increases the fulfilled quantity, keeping it within the ordered
// quantity.
func (l *OrderLine) Reserve(quantity int) error {
	if quantity <= 0 {
		return &errs.InvalidQuantityError{
			OrderLineID: l.ID,
			Requested:   quantity,
			Fulfilled:   l.QuantityFulfilled,
		}
	}
	if l.QuantityFulfilled+quantity > l.Quantity {
		return &errs.OverFulfillmentError{
			OrderLineID: l.ID,
			Quantity:    l.Quantity,
			Requested:   quantity,
			Fulfilled:   l.QuantityFulfilled,
		}
	}
	l.QuantityFulfilled += quantity

	return nil
}

// Release decreases the fulfilled quantity, keeping it non-negative. Used
// when a pending or approved fulfillment is cancelled.
func (l *OrderLine) Release(quantity int) error {
	if quantity <= 0 || l.QuantityFulfilled-quantity < 0 {
		return &errs.InvalidQuantityError{
			OrderLineID: l.ID,
			Requested:   quantity,
			Fulfilled:   l.QuantityFulfilled,
		}
	}
	l.QuantityFulfilled -= quantity

	return nil
}
