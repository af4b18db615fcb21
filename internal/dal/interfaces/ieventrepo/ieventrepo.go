package ieventrepo

import (
	"context"

	"github.com/commercekit/oms/internal/service/models/orderevent"
)

// IOrderEventRepository is an interface for the append-only order event log.
type IOrderEventRepository interface {
	Append(ctx context.Context, events ...orderevent.OrderEvent) error
	ListByOrder(ctx context.Context, tenantID string, orderID int64) ([]orderevent.OrderEvent, error)
}
