package recordrefund

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/commercekit/oms/internal/service/models/orderevent"
	"github.com/commercekit/oms/internal/service/models/transaction"
	"github.com/commercekit/oms/internal/transport/http/httpx"
	orderactions "github.com/commercekit/oms/internal/transport/http/order_actions"
)

// service is an interface for the service layer.
type service interface {
	RecordRefund(ctx context.Context, tenantID string, orderID int64, amount decimal.Decimal, reason string, actor orderevent.Actor) (*transaction.Transaction, error)
}

// recordRefundRequest represents a record refund request.
type recordRefundRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" validate:"required"`
}

// Validate validates the record refund request.
func (r *recordRefundRequest) Validate() error {
	return validator.New().Struct(r)
}

// RecordRefund handles the record refund request.
func RecordRefund(w http.ResponseWriter, r *http.Request, service service) {
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

	req := recordRefundRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for record refund", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	tx, err := service.RecordRefund(r.Context(), tenantID, orderID, req.Amount, req.Reason, httpx.Actor(r))
	if err != nil {
		httpx.WriteError(w, err)
		slog.Error("Error recording refund", "order_id", orderID, "error", err)

		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tx)
}
