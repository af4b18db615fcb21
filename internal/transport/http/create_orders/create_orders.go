package createorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/commercekit/oms/internal/service/models/address"
	"github.com/commercekit/oms/internal/service/models/currency"
	"github.com/commercekit/oms/internal/service/models/order"
	"github.com/commercekit/oms/internal/service/models/orderevent"
	"github.com/commercekit/oms/internal/service/models/orderline"
	"github.com/commercekit/oms/internal/transport/http/httpx"
)

// service is an interface for the service layer.
type service interface {
	BatchInsert(ctx context.Context, tenantID string, orders []order.Order, actor orderevent.Actor) ([]order.Order, error)
}

// lineInCreateOrderRequest represents a line in a create order request.
type lineInCreateOrderRequest struct {
	ProductID      int64           `json:"productId"      validate:"gt=0"`
	ProductName    string          `json:"productName"    validate:"required"`
	SKU            string          `json:"sku"            validate:"required"`
	ImageURL       string          `json:"imageUrl"`
	Quantity       int             `json:"quantity"       validate:"gt=0"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

func (r *lineInCreateOrderRequest) toModel() orderline.OrderLine {
	return orderline.OrderLine{
		ProductID:      r.ProductID,
		ProductName:    r.ProductName,
		SKU:            r.SKU,
		ImageURL:       r.ImageURL,
		Quantity:       r.Quantity,
		UnitPrice:      r.UnitPrice,
		TotalPrice:     r.TotalPrice,
		TaxAmount:      r.TaxAmount,
		DiscountAmount: r.DiscountAmount,
	}
}

// orderInCreateOrderRequest represents an order in a create order request.
type orderInCreateOrderRequest struct {
	Currency        string                     `json:"currency"        validate:"required"`
	Subtotal        decimal.Decimal            `json:"subtotal"`
	ShippingTotal   decimal.Decimal            `json:"shippingTotal"`
	TaxTotal        decimal.Decimal            `json:"taxTotal"`
	DiscountTotal   decimal.Decimal            `json:"discountTotal"`
	Total           decimal.Decimal            `json:"total"`
	CustomerID      *int64                     `json:"customerId"`
	ShippingAddress *address.Address           `json:"shippingAddress"`
	BillingAddress  *address.Address           `json:"billingAddress"`
	CustomerNote    string                     `json:"customerNote"`
	Lines           []lineInCreateOrderRequest `json:"lines"           validate:"required,min=1,dive"`
}

func (r *orderInCreateOrderRequest) toModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(r.Currency)
	if err != nil {
		return nil, err
	}
	lines := make([]orderline.OrderLine, len(r.Lines))
	for i := range r.Lines {
		lines[i] = r.Lines[i].toModel()
	}

	return &order.Order{
		Currency:        cur,
		Subtotal:        r.Subtotal,
		ShippingTotal:   r.ShippingTotal,
		TaxTotal:        r.TaxTotal,
		DiscountTotal:   r.DiscountTotal,
		Total:           r.Total,
		CustomerID:      r.CustomerID,
		ShippingAddress: r.ShippingAddress,
		BillingAddress:  r.BillingAddress,
		CustomerNote:    r.CustomerNote,
		Lines:           lines,
	}, nil
}

// createOrdersRequest represents a create orders request.
type createOrdersRequest struct {
	Orders []orderInCreateOrderRequest `json:"orders" validate:"required,min=1,dive"`
}

// Validate validates the create orders request.
func (r *createOrdersRequest) Validate() error {
	return validator.New().Struct(r)
}

// CreateOrders handles the batch create request.
func CreateOrders(w http.ResponseWriter, r *http.Request, service service) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.WriteError(w, err)

		return
	}

	ordersReq := createOrdersRequest{}
	if err := json.NewDecoder(r.Body).Decode(&ordersReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create orders", "error", err)

		return
	}

	if err := ordersReq.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for create orders", "error", err)

		return
	}

	orders := make([]order.Order, len(ordersReq.Orders))
	for i, req := range ordersReq.Orders {
		model, err := req.toModel()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			slog.Error("Error converting request to model", "error", err)

			return
		}
		orders[i] = *model
	}

	inserted, err := service.BatchInsert(r.Context(), tenantID, orders, httpx.Actor(r))
	if err != nil {
		httpx.WriteError(w, err)
		slog.Error("Error creating orders", "error", err)

		return
	}

	httpx.WriteJSON(w, http.StatusCreated, inserted)
}
