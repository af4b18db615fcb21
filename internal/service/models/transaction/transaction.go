package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/commercekit/oms/internal/service/models/currency"
)

type Type string

const (
	TypeAuthorization Type = "authorization"
	TypeCharge        Type = "charge"
	TypeCapture       Type = "capture"
	TypeRefund        Type = "refund"
	TypeVoid          Type = "void"
	TypeChargeback    Type = "chargeback"
)

var ErrInvalidType = errors.New("invalid transaction type")

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeAuthorization, TypeCharge, TypeCapture, TypeRefund, TypeVoid, TypeChargeback:
		return Type(s), nil
	default:
		return "", ErrInvalidType
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

var ErrInvalidStatus = errors.New("invalid transaction status")

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusSuccess, StatusFailed, StatusCancelled:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Transaction is one payment event on an order. Transactions are append-only:
// corrections are recorded as new transactions, never as edits.
type Transaction struct {
	ID               int64             `json:"id"`
	TenantID         string            `json:"tenantId"`
	OrderID          int64             `json:"orderId"`
	Type             Type              `json:"type"`
	Status           Status            `json:"status"`
	Amount           decimal.Decimal   `json:"amount"`
	Currency         currency.Currency `json:"currency"`
	PaymentMethod    string            `json:"paymentMethod,omitempty"`
	GatewayReference string            `json:"gatewayReference,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}
