package invoice

import (
	"errors"
	"fmt"
	"time"

	"github.com/commercekit/oms/internal/service/models/errs"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

var ErrInvalidStatus = errors.New("invalid invoice status")

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusPending, StatusSent, StatusPaid, StatusCancelled:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// Invoice is a billing document loosely coupled to an order.
type Invoice struct {
	ID          int64      `json:"id"`
	TenantID    string     `json:"tenantId"`
	OrderID     int64      `json:"orderId"`
	Number      string     `json:"number"`
	Status      Status     `json:"status"`
	DocumentURL string     `json:"documentUrl,omitempty"`
	SentAt      *time.Time `json:"sentAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FormatNumber renders a tenant-sequential invoice number.
func FormatNumber(seq int64) string {
	return fmt.Sprintf("INV-%06d", seq)
}

func (i *Invoice) transitionErr(to Status) error {
	return &errs.InvalidTransitionError{
		Entity: "invoice",
		From:   string(i.Status),
		To:     string(to),
	}
}

// Send moves draft|pending -> sent and stamps SentAt.
func (i *Invoice) Send(at time.Time) error {
	if i.Status != StatusDraft && i.Status != StatusPending {
		return i.transitionErr(StatusSent)
	}
	i.Status = StatusSent
	i.SentAt = &at

	return nil
}

// MarkPaid moves sent -> paid. Settlement is recorded externally on the
// transaction ledger; this only closes the document.
func (i *Invoice) MarkPaid() error {
	if i.Status != StatusSent {
		return i.transitionErr(StatusPaid)
	}
	i.Status = StatusPaid

	return nil
}

// Cancel is reachable from any non-terminal state.
func (i *Invoice) Cancel() error {
	if i.Status.Terminal() {
		return i.transitionErr(StatusCancelled)
	}
	i.Status = StatusCancelled

	return nil
}
