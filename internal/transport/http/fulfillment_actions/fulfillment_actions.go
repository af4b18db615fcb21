package fulfillmentactions

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/commercekit/oms/internal/service/models/fulfillment"
	"github.com/commercekit/oms/internal/service/models/orderevent"
	"github.com/commercekit/oms/internal/transport/http/httpx"
)

// service is an interface for the service layer.
type service interface {
	Approve(ctx context.Context, tenantID string, fulfillmentID int64, actor orderevent.Actor) (*fulfillment.Fulfillment, error)
	MarkShipped(ctx context.Context, tenantID string, fulfillmentID int64, actor orderevent.Actor) (*fulfillment.Fulfillment, error)
	MarkDelivered(ctx context.Context, tenantID string, fulfillmentID int64, actor orderevent.Actor) (*fulfillment.Fulfillment, error)
	Cancel(ctx context.Context, tenantID string, fulfillmentID int64, actor orderevent.Actor) (*fulfillment.Fulfillment, error)
	UpdateTracking(ctx context.Context, tenantID string, fulfillmentID int64, number, url, carrier string) (*fulfillment.Fulfillment, error)
}

// FulfillmentID extracts the fulfillment id path parameter.
func FulfillmentID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "fulfillmentID"), 10, 64)
}

type transitionFunc func(ctx context.Context, tenantID string, fulfillmentID int64, actor orderevent.Actor) (*fulfillment.Fulfillment, error)

func transition(w http.ResponseWriter, r *http.Request, op string, fn transitionFunc) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.WriteError(w, err)

		return
	}
	fulfillmentID, err := FulfillmentID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	f, err := fn(r.Context(), tenantID, fulfillmentID, httpx.Actor(r))
	if err != nil {
		httpx.WriteError(w, err)
		slog.Error("Error transitioning fulfillment", "op", op, "fulfillment_id", fulfillmentID, "error", err)

		return
	}

	httpx.WriteJSON(w, http.StatusOK, f)
}

// Approve handles the approve transition.
func Approve(w http.ResponseWriter, r *http.Request, service service) {
	transition(w, r, "approve", service.Approve)
}

// Ship handles the ship transition.
func Ship(w http.ResponseWriter, r *http.Request, service service) {
	transition(w, r, "ship", service.MarkShipped)
}

// Deliver handles the deliver transition.
func Deliver(w http.ResponseWriter, r *http.Request, service service) {
	transition(w, r, "deliver", service.MarkDelivered)
}

// Cancel handles the cancel transition.
func Cancel(w http.ResponseWriter, r *http.Request, service service) {
	transition(w, r, "cancel", service.Cancel)
}

// updateTrackingRequest represents an update tracking request.
type updateTrackingRequest struct {
	Number  string `json:"number" validate:"required"`
	URL     string `json:"url"`
	Carrier string `json:"carrier"`
}

// Validate validates the update tracking request.
func (r *updateTrackingRequest) Validate() error {
	return validator.New().Struct(r)
}

// UpdateTracking handles the tracking update request.
func UpdateTracking(w http.ResponseWriter, r *http.Request, service service) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.WriteError(w, err)

		return
	}
	fulfillmentID, err := FulfillmentID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	req := updateTrackingRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	f, err := service.UpdateTracking(r.Context(), tenantID, fulfillmentID, req.Number, req.URL, req.Carrier)
	if err != nil {
		httpx.WriteError(w, err)
		slog.Error("Error updating tracking", "fulfillment_id", fulfillmentID, "error", err)

		return
	}

	httpx.WriteJSON(w, http.StatusOK, f)
}
