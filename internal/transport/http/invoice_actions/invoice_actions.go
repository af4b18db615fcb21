package invoiceactions

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/commercekit/oms/internal/service/models/invoice"
	"github.com/commercekit/oms/internal/service/models/orderevent"
	"github.com/commercekit/oms/internal/transport/http/httpx"
	orderactions "github.com/commercekit/oms/internal/transport/http/order_actions"
)

// service is an interface for the service layer.
type service interface {
	Generate(ctx context.Context, tenantID string, orderID int64, actor orderevent.Actor) (*invoice.Invoice, error)
	Send(ctx context.Context, tenantID string, invoiceID int64, actor orderevent.Actor) (*invoice.Invoice, error)
	MarkPaid(ctx context.Context, tenantID string, invoiceID int64, actor orderevent.Actor) (*invoice.Invoice, error)
	Cancel(ctx context.Context, tenantID string, invoiceID int64, actor orderevent.Actor) (*invoice.Invoice, error)
}

// InvoiceID extracts the invoice id path parameter.
func InvoiceID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "invoiceID"), 10, 64)
}

// Generate handles invoice generation for an order.
func Generate(w http.ResponseWriter, r *http.Request, service service) {
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

	inv, err := service.Generate(r.Context(), tenantID, orderID, httpx.Actor(r))
	if err != nil {
		httpx.WriteError(w, err)
		slog.Error("Error generating invoice", "order_id", orderID, "error", err)

		return
	}

	httpx.WriteJSON(w, http.StatusCreated, inv)
}

type transitionFunc func(ctx context.Context, tenantID string, invoiceID int64, actor orderevent.Actor) (*invoice.Invoice, error)

func transition(w http.ResponseWriter, r *http.Request, op string, fn transitionFunc) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.WriteError(w, err)

		return
	}
	invoiceID, err := InvoiceID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	inv, err := fn(r.Context(), tenantID, invoiceID, httpx.Actor(r))
	if err != nil {
		httpx.WriteError(w, err)
		slog.Error("Error transitioning invoice", "op", op, "invoice_id", invoiceID, "error", err)

		return
	}

	httpx.WriteJSON(w, http.StatusOK, inv)
}

// Send handles the send transition.
func Send(w http.ResponseWriter, r *http.Request, service service) {
	transition(w, r, "send", service.Send)
}

// MarkPaid handles the mark paid transition.
func MarkPaid(w http.ResponseWriter, r *http.Request, service service) {
	transition(w, r, "mark_paid", service.MarkPaid)
}

// Cancel handles the cancel transition.
func Cancel(w http.ResponseWriter, r *http.Request, service service) {
	transition(w, r, "cancel", service.Cancel)
}
