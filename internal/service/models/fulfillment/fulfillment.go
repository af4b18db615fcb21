package fulfillment

import (
	"errors"
	"time"

	"github.com/commercekit/oms/internal/service/models/errs"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var ErrInvalidStatus = errors.New("invalid fulfillment status")

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Line binds a fulfillment to a quantity of one order line.
type Line struct {
	ID            int64 `json:"id"`
	FulfillmentID int64 `json:"fulfillmentId"`
	OrderLineID   int64 `json:"orderLineId"`
	Quantity      int   `json:"quantity"`
}

// Fulfillment is one shipment batch covering a subset of an order's lines.
type Fulfillment struct {
	ID             int64     `json:"id"`
	TenantID       string    `json:"tenantId"`
	OrderID        int64     `json:"orderId"`
	Status         Status    `json:"status"`
	TrackingNumber string    `json:"trackingNumber,omitempty"`
	TrackingURL    string    `json:"trackingUrl,omitempty"`
	Carrier        string    `json:"carrier,omitempty"`
	Lines          []Line    `json:"lines"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (f *Fulfillment) transitionErr(to Status) error {
	return &errs.InvalidTransitionError{
		Entity: "fulfillment",
		From:   string(f.Status),
		To:     string(to),
	}
}

// Approve moves pending -> approved.
func (f *Fulfillment) Approve() error {
	if f.Status != StatusPending {
		return f.transitionErr(StatusApproved)
	}
	f.Status = StatusApproved

	return nil
}

// MarkShipped moves pending|approved -> shipped.
func (f *Fulfillment) MarkShipped() error {
	if f.Status != StatusPending && f.Status != StatusApproved {
		return f.transitionErr(StatusShipped)
	}
	f.Status = StatusShipped

	return nil
}

// MarkDelivered moves shipped -> delivered.
func (f *Fulfillment) MarkDelivered() error {
	if f.Status != StatusShipped {
		return f.transitionErr(StatusDelivered)
	}
	f.Status = StatusDelivered

	return nil
}

// Cancel moves pending|approved -> cancelled. Shipped and delivered batches
// cannot be cancelled.
func (f *Fulfillment) Cancel() error {
	if f.Status != StatusPending && f.Status != StatusApproved {
		return f.transitionErr(StatusCancelled)
	}
	f.Status = StatusCancelled

	return nil
}

// SetTracking updates carrier metadata. Valid in any non-terminal state.
func (f *Fulfillment) SetTracking(number, url, carrier string) error {
	if f.Status.Terminal() {
		return f.transitionErr(f.Status)
	}
	f.TrackingNumber = number
	f.TrackingURL = url
	f.Carrier = carrier

	return nil
}

// Active reports whether the fulfillment still holds reservations against its
// order lines.
func (f *Fulfillment) Active() bool {
	return f.Status != StatusCancelled
}
