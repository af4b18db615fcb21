package iorderlinerepo

import (
	"context"

	"github.com/commercekit/oms/internal/service/models/orderline"
)

// IOrderLineRepository is an interface for the order line postgres repository.
type IOrderLineRepository interface {
	BulkInsert(ctx context.Context, lines []orderline.OrderLine) ([]orderline.OrderLine, error)
	ListByOrder(ctx context.Context, tenantID string, orderID int64) ([]orderline.OrderLine, error)
	ListByOrders(ctx context.Context, tenantID string, orderIDs []int64) ([]orderline.OrderLine, error)

	// ListByOrderForUpdate locks the order's lines so concurrent reservations
	// serialize on the same rows.
	ListByOrderForUpdate(ctx context.Context, tenantID string, orderID int64) ([]orderline.OrderLine, error)

	SetQuantityFulfilled(ctx context.Context, tenantID string, lineID int64, quantity int) error
}
