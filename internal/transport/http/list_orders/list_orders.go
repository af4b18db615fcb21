package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/commercekit/oms/internal/service/models/order"
	"github.com/commercekit/oms/internal/transport/http/httpx"
)

type service interface {
	ListOrders(ctx context.Context, tenantID string, filter *order.QueryOrdersModel) ([]order.Order, error)
}

type queryOrdersRequest struct {
	Ids         []int64  `schema:"ids,omitempty"`
	CustomerIds []int64  `schema:"customerIds,omitempty"`
	Statuses    []string `schema:"statuses,omitempty"`
	Limit       int      `schema:"limit,omitempty"`
	Offset      int      `schema:"offset,omitempty"`
}

func (q *queryOrdersRequest) toModel() (*order.QueryOrdersModel, error) {
	statuses := make([]order.Status, 0, len(q.Statuses))
	for _, s := range q.Statuses {
		status, err := order.ParseStatus(s)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}

	return &order.QueryOrdersModel{
		Ids:         q.Ids,
		CustomerIds: q.CustomerIds,
		Statuses:    statuses,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}, nil
}

func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.WriteError(w, err)

		return
	}

	decoder := schema.NewDecoder()
	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	filter, err := query.toModel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	orders, err := service.ListOrders(r.Context(), tenantID, filter)
	if err != nil {
		httpx.WriteError(w, err)
		slog.Error("Error listing orders", "error", err)

		return
	}

	httpx.WriteJSON(w, http.StatusOK, orders)
}
