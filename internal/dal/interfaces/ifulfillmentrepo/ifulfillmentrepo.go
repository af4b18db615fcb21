package ifulfillmentrepo

import (
	"context"

	"github.com/commercekit/oms/internal/service/models/fulfillment"
)

// IFulfillmentRepository is an interface for the fulfillment postgres repository.
type IFulfillmentRepository interface {
	Insert(ctx context.Context, f fulfillment.Fulfillment) (*fulfillment.Fulfillment, error)
	Get(ctx context.Context, tenantID string, fulfillmentID int64) (*fulfillment.Fulfillment, error)
	GetForUpdate(ctx context.Context, tenantID string, fulfillmentID int64) (*fulfillment.Fulfillment, error)
	ListByOrder(ctx context.Context, tenantID string, orderID int64) ([]fulfillment.Fulfillment, error)
	SetStatus(ctx context.Context, tenantID string, fulfillmentID int64, status fulfillment.Status) error
	SetTracking(ctx context.Context, tenantID string, fulfillmentID int64, number, url, carrier string) error
}
