package recordpayment

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
	RecordCharge(ctx context.Context, tenantID string, orderID int64, amount decimal.Decimal, method string, actor orderevent.Actor) (*transaction.Transaction, error)
	RecordCapture(ctx context.Context, tenantID string, orderID int64, amount decimal.Decimal, method string, actor orderevent.Actor) (*transaction.Transaction, error)
	RecordVoid(ctx context.Context, tenantID string, orderID int64, amount decimal.Decimal, actor orderevent.Actor) (*transaction.Transaction, error)
	RecordChargeback(ctx context.Context, tenantID string, orderID int64, amount decimal.Decimal, actor orderevent.Actor) (*transaction.Transaction, error)
	ListTransactions(ctx context.Context, tenantID string, orderID int64) ([]transaction.Transaction, error)
}

// recordPaymentRequest represents a record payment request. Refunds go
// through their own endpoint; the type here discriminates the rest.
type recordPaymentRequest struct {
	Type   string          `json:"type"   validate:"required,oneof=charge capture void chargeback"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

// Validate validates the record payment request.
func (r *recordPaymentRequest) Validate() error {
	return validator.New().Struct(r)
}

// RecordPayment handles the record payment request.
func RecordPayment(w http.ResponseWriter, r *http.Request, service service) {
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

	req := recordPaymentRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for record payment", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	actor := httpx.Actor(r)

	var tx *transaction.Transaction
	switch req.Type {
	case string(transaction.TypeCharge):
		tx, err = service.RecordCharge(r.Context(), tenantID, orderID, req.Amount, req.Method, actor)
	case string(transaction.TypeCapture):
		tx, err = service.RecordCapture(r.Context(), tenantID, orderID, req.Amount, req.Method, actor)
	case string(transaction.TypeVoid):
		tx, err = service.RecordVoid(r.Context(), tenantID, orderID, req.Amount, actor)
	case string(transaction.TypeChargeback):
		tx, err = service.RecordChargeback(r.Context(), tenantID, orderID, req.Amount, actor)
	}
	if err != nil {
		httpx.WriteError(w, err)
		slog.Error("Error recording payment", "order_id", orderID, "type", req.Type, "error", err)

		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tx)
}

// ListTransactions handles the transaction ledger read.
func ListTransactions(w http.ResponseWriter, r *http.Request, service service) {
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

	txs, err := service.ListTransactions(r.Context(), tenantID, orderID)
	if err != nil {
		httpx.WriteError(w, err)
		slog.Error("Error listing transactions", "order_id", orderID, "error", err)

		return
	}

	httpx.WriteJSON(w, http.StatusOK, txs)
}
