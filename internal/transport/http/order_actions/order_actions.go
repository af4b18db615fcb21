package orderactions

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/commercekit/oms/internal/service/models/order"
	"github.com/commercekit/oms/internal/service/models/orderevent"
	"github.com/commercekit/oms/internal/transport/http/httpx"
)

// service is an interface for the service layer.
type service interface {
	GetOrder(ctx context.Context, tenantID string, orderID int64) (*order.Order, error)
	Cancel(ctx context.Context, tenantID string, orderID int64, reason string, actor orderevent.Actor) (*order.Order, error)
	AddNote(ctx context.Context, tenantID string, orderID int64, note string, actor orderevent.Actor) error
	ListEvents(ctx context.Context, tenantID string, orderID int64) ([]orderevent.OrderEvent, error)
}

// OrderID extracts the order id path parameter.
func OrderID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
}

// GetOrder handles the aggregate read.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.WriteError(w, err)

		return
	}
	orderID, err := OrderID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	ord, err := service.GetOrder(r.Context(), tenantID, orderID)
	if err != nil {
		httpx.WriteError(w, err)
		slog.Error("Error getting order", "order_id", orderID, "error", err)

		return
	}

	httpx.WriteJSON(w, http.StatusOK, ord)
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder handles the operator cancel.
func CancelOrder(w http.ResponseWriter, r *http.Request, service service) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.WriteError(w, err)

		return
	}
	orderID, err := OrderID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	req := cancelOrderRequest{}
	if r.Body != nil {
		// Body is optional, reason only.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	ord, err := service.Cancel(r.Context(), tenantID, orderID, req.Reason, httpx.Actor(r))
	if err != nil {
		httpx.WriteError(w, err)
		slog.Error("Error cancelling order", "order_id", orderID, "error", err)

		return
	}

	httpx.WriteJSON(w, http.StatusOK, ord)
}

type addNoteRequest struct {
	Note string `json:"note" validate:"required"`
}

// AddNote handles internal note creation.
func AddNote(w http.ResponseWriter, r *http.Request, service service) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.WriteError(w, err)

		return
	}
	orderID, err := OrderID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	req := addNoteRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}
	if err := validator.New().Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	if err := service.AddNote(r.Context(), tenantID, orderID, req.Note, httpx.Actor(r)); err != nil {
		httpx.WriteError(w, err)
		slog.Error("Error adding note", "order_id", orderID, "error", err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListEvents handles the audit narrative read.
func ListEvents(w http.ResponseWriter, r *http.Request, service service) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.WriteError(w, err)

		return
	}
	orderID, err := OrderID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	events, err := service.ListEvents(r.Context(), tenantID, orderID)
	if err != nil {
		httpx.WriteError(w, err)
		slog.Error("Error listing order events", "order_id", orderID, "error", err)

		return
	}

	httpx.WriteJSON(w, http.StatusOK, events)
}
