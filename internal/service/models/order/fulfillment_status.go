package order

import (
	"github.com/commercekit/oms/internal/service/models/fulfillment"
	"github.com/commercekit/oms/internal/service/models/orderline"
)

// FulfillmentStatus is a pure function of the order's lines and fulfillments,
// recomputed after every change to either.
type FulfillmentStatus string

const (
	FulfillmentStatusUnfulfilled        FulfillmentStatus = "unfulfilled"
	FulfillmentStatusPartiallyFulfilled FulfillmentStatus = "partially_fulfilled"
	FulfillmentStatusFulfilled          FulfillmentStatus = "fulfilled"
	FulfillmentStatusAwaitingApproval   FulfillmentStatus = "awaiting_approval"
)

// DeriveFulfillmentStatus computes the order-level fulfillment status.
// A pending fulfillment surfaces as awaiting_approval ahead of the quantity
// based states, since it signals an operator action is needed; once every
// line is fully covered the quantity states win again.
func DeriveFulfillmentStatus(
	lines []orderline.OrderLine,
	fulfillments []fulfillment.Fulfillment,
) FulfillmentStatus {
	allFull := true
	anyFulfilled := false
	for i := range lines {
		if lines[i].QuantityFulfilled > 0 {
			anyFulfilled = true
		}
		if lines[i].QuantityFulfilled < lines[i].Quantity {
			allFull = false
		}
	}

	if allFull && len(lines) > 0 {
		return FulfillmentStatusFulfilled
	}

	for i := range fulfillments {
		if fulfillments[i].Status == fulfillment.StatusPending {
			return FulfillmentStatusAwaitingApproval
		}
	}

	if anyFulfilled {
		return FulfillmentStatusPartiallyFulfilled
	}

	return FulfillmentStatusUnfulfilled
}
