package createfulfillment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/commercekit/oms/internal/service/models/fulfillment"
	"github.com/commercekit/oms/internal/service/models/orderevent"
	"github.com/commercekit/oms/internal/service/services/fulfillmentsvc"
	"github.com/commercekit/oms/internal/transport/http/httpx"
	orderactions "github.com/commercekit/oms/internal/transport/http/order_actions"
)

// service is an interface for the service layer.
type service interface {
	Create(
		ctx context.Context,
		tenantID string,
		orderID int64,
		lines []fulfillmentsvc.LineRequest,
		tracking *fulfillmentsvc.TrackingInfo,
		actor orderevent.Actor,
	) (*fulfillment.Fulfillment, error)
}

// lineInCreateFulfillmentRequest represents a line in a create fulfillment request.
type lineInCreateFulfillmentRequest struct {
	OrderLineID int64 `json:"orderLineId" validate:"gt=0"`
	Quantity    int   `json:"quantity"    validate:"gt=0"`
}

// trackingInCreateFulfillmentRequest represents carrier metadata in a create
// fulfillment request.
type trackingInCreateFulfillmentRequest struct {
	Number  string `json:"number"`
	URL     string `json:"url"`
	Carrier string `json:"carrier"`
}

// createFulfillmentRequest represents a create fulfillment request.
type createFulfillmentRequest struct {
	Lines    []lineInCreateFulfillmentRequest    `json:"lines"    validate:"required,min=1,dive"`
	Tracking *trackingInCreateFulfillmentRequest `json:"tracking"`
}

// Validate validates the create fulfillment request.
func (r *createFulfillmentRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *createFulfillmentRequest) toModel() ([]fulfillmentsvc.LineRequest, *fulfillmentsvc.TrackingInfo) {
	lines := make([]fulfillmentsvc.LineRequest, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = fulfillmentsvc.LineRequest{
			OrderLineID: l.OrderLineID,
			Quantity:    l.Quantity,
		}
	}

	var tracking *fulfillmentsvc.TrackingInfo
	if r.Tracking != nil {
		tracking = &fulfillmentsvc.TrackingInfo{
			Number:  r.Tracking.Number,
			URL:     r.Tracking.URL,
			Carrier: r.Tracking.Carrier,
		}
	}

	return lines, tracking
}

// CreateFulfillment handles the create fulfillment request.
func CreateFulfillment(w http.ResponseWriter, r *http.Request, service service) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.WriteError(w, err)

		return
	}
	orderID, err := orderactions.OrderID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	req := createFulfillmentRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create fulfillment", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	lines, tracking := req.toModel()

	f, err := service.Create(r.Context(), tenantID, orderID, lines, tracking, httpx.Actor(r))
	if err != nil {
		httpx.WriteError(w, err)
		slog.Error("Error creating fulfillment", "order_id", orderID, "error", err)

		return
	}

	httpx.WriteJSON(w, http.StatusCreated, f)
}
