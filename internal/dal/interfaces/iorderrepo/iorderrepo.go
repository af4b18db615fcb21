package iorderrepo

import (
	"context"

	"github.com/commercekit/oms/internal/service/models/order"
	"github.com/commercekit/oms/internal/service/models/transaction"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	BulkInsert(ctx context.Context, orders []order.Order) ([]order.Order, error)
	Get(ctx context.Context, tenantID string, orderID int64) (*order.Order, error)

	// GetForUpdate locks the order row for the duration of the enclosing
	// transaction.
	GetForUpdate(ctx context.Context, tenantID string, orderID int64) (*order.Order, error)

	Query(ctx context.Context, tenantID string, filter *order.QueryOrdersModel) ([]order.Order, error)

	SetStatus(ctx context.Context, tenantID string, orderID int64, status order.Status) error
	SetFulfillmentStatus(ctx context.Context, tenantID string, orderID int64, status order.FulfillmentStatus) error
	SetPaymentStatus(ctx context.Context, tenantID string, orderID int64, status transaction.PaymentStatus) error
	AppendInternalNote(ctx context.Context, tenantID string, orderID int64, note string) error
}
