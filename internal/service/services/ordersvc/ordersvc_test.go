package ordersvc

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercekit/oms/internal/service/models/currency"
	"github.com/commercekit/oms/internal/service/models/errs"
	"github.com/commercekit/oms/internal/service/models/fulfillment"
	"github.com/commercekit/oms/internal/service/models/order"
	"github.com/commercekit/oms/internal/service/models/orderevent"
	"github.com/commercekit/oms/internal/service/models/orderline"
	"github.com/commercekit/oms/internal/service/services/servicetest"
)

const tenant = "acme"

var actor = orderevent.Actor{ID: "u1", Name: "Dana"}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newFixture() (*OrderService, *servicetest.Store) {
	store := servicetest.NewStore()
	svc := MustNewOrderService(
		WithUnitOfWorkFactory(func() unitOfWork { return servicetest.NewUnitOfWork(store) }),
		WithEventRepository(&servicetest.EventRepo{Store: store}),
	)

	return svc, store
}

func validOrder() order.Order {
	return order.Order{
		Currency:      currency.CurrencyUSD,
		Subtotal:      d("90.00"),
		ShippingTotal: d("10.00"),
		TaxTotal:      d("0"),
		DiscountTotal: d("0"),
		Total:         d("100.00"),
		Lines: []orderline.OrderLine{
			{ProductID: 1, ProductName: "Widget", SKU: "W-1", Quantity: 3, UnitPrice: d("30.00"), TotalPrice: d("90.00")},
		},
	}
}

func TestBatchInsert(t *testing.T) {
	svc, store := newFixture()

	inserted, err := svc.BatchInsert(context.Background(), tenant, []order.Order{validOrder(), validOrder()}, actor)
	require.NoError(t, err)
	require.Len(t, inserted, 2)

	for _, o := range inserted {
		assert.Equal(t, tenant, o.TenantID)
		assert.Equal(t, order.StatusPending, o.Status)
		assert.Equal(t, order.FulfillmentStatusUnfulfilled, o.FulfillmentState)
		assert.True(t, strings.HasPrefix(o.Number, "ORD-"))
		require.Len(t, o.Lines, 1)
		assert.Equal(t, o.ID, o.Lines[0].OrderID)
	}
	assert.NotEqual(t, inserted[0].Number, inserted[1].Number)

	require.Len(t, store.Events, 2)
	assert.Equal(t, orderevent.TypeOrderCreated, store.Events[0].Type)
}

func TestBatchInsertRejectsBrokenTotals(t *testing.T) {
	svc, store := newFixture()

	bad := validOrder()
	bad.Total = d("95.00")

	_, err := svc.BatchInsert(context.Background(), tenant, []order.Order{validOrder(), bad}, actor)
	require.Error(t, err)

	assert.Empty(t, store.Orders)
	assert.Empty(t, store.Lines)
	assert.Empty(t, store.Events)
}

func TestGetOrderAggregate(t *testing.T) {
	svc, _ := newFixture()

	inserted, err := svc.BatchInsert(context.Background(), tenant, []order.Order{validOrder()}, actor)
	require.NoError(t, err)
	orderID := inserted[0].ID

	got, err := svc.GetOrder(context.Background(), tenant, orderID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1)
	require.Len(t, got.Events, 1)
	assert.Equal(t, orderevent.TypeOrderCreated, got.Events[0].Type)

	_, err = svc.GetOrder(context.Background(), "globex", orderID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListOrdersFilters(t *testing.T) {
	svc, _ := newFixture()

	inserted, err := svc.BatchInsert(context.Background(), tenant, []order.Order{validOrder(), validOrder()}, actor)
	require.NoError(t, err)

	all, err := svc.ListOrders(context.Background(), tenant, &order.QueryOrdersModel{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Len(t, all[0].Lines, 1)

	byID, err := svc.ListOrders(context.Background(), tenant, &order.QueryOrdersModel{Ids: []int64{inserted[1].ID}})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, inserted[1].ID, byID[0].ID)

	none, err := svc.ListOrders(context.Background(), tenant, &order.QueryOrdersModel{
		Statuses: []order.Status{order.StatusCancelled},
	})
	require.NoError(t, err)
	assert.Empty(t, none)

	foreign, err := svc.ListOrders(context.Background(), "globex", &order.QueryOrdersModel{})
	require.NoError(t, err)
	assert.Empty(t, foreign)
}

func TestCancelCascadesToActiveFulfillments(t *testing.T) {
	svc, store := newFixture()

	inserted, err := svc.BatchInsert(context.Background(), tenant, []order.Order{validOrder()}, actor)
	require.NoError(t, err)
	orderID := inserted[0].ID
	line := store.OrderLines(orderID)[0]

	// One pending batch holding 2 units, one shipped batch holding 1.
	pending := fulfillment.Fulfillment{
		TenantID: tenant, OrderID: orderID, Status: fulfillment.StatusPending,
		Lines: []fulfillment.Line{{OrderLineID: line.ID, Quantity: 2}},
	}
	shipped := fulfillment.Fulfillment{
		TenantID: tenant, OrderID: orderID, Status: fulfillment.StatusShipped,
		Lines: []fulfillment.Line{{OrderLineID: line.ID, Quantity: 1}},
	}
	store.Fulfillments[store.NextFulfillmentID] = pending
	pendingID := store.NextFulfillmentID
	store.NextFulfillmentID++
	store.Fulfillments[store.NextFulfillmentID] = shipped
	shippedID := store.NextFulfillmentID
	store.NextFulfillmentID++

	line.QuantityFulfilled = 3
	store.Lines[line.ID] = line

	cancelled, err := svc.Cancel(context.Background(), tenant, orderID, "customer request", actor)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	assert.Equal(t, fulfillment.StatusCancelled, store.Fulfillments[pendingID].Status)
	assert.Equal(t, fulfillment.StatusShipped, store.Fulfillments[shippedID].Status)

	// Only the pending batch's 2 units come back.
	assert.Equal(t, 1, store.Lines[line.ID].QuantityFulfilled)
	assert.Equal(t, order.FulfillmentStatusPartiallyFulfilled, store.Orders[orderID].FulfillmentState)

	last := store.Events[len(store.Events)-1]
	assert.Equal(t, orderevent.TypeOrderCancelled, last.Type)
	assert.Contains(t, last.Message, "customer request")
	assert.NotEmpty(t, last.Metadata["cancelled_fulfillments"])
}

func TestCancelRejectsDanglingFulfillmentLine(t *testing.T) {
	svc, store := newFixture()

	inserted, err := svc.BatchInsert(context.Background(), tenant, []order.Order{validOrder()}, actor)
	require.NoError(t, err)
	orderID := inserted[0].ID
	statusBefore := store.Orders[orderID].Status

	// A pending batch referencing a line the order does not have.
	store.Fulfillments[store.NextFulfillmentID] = fulfillment.Fulfillment{
		TenantID: tenant, OrderID: orderID, Status: fulfillment.StatusPending,
		Lines: []fulfillment.Line{{OrderLineID: 9999, Quantity: 1}},
	}
	pendingID := store.NextFulfillmentID
	store.NextFulfillmentID++

	_, err = svc.Cancel(context.Background(), tenant, orderID, "", actor)
	require.ErrorIs(t, err, errs.ErrNotFound)

	assert.Equal(t, statusBefore, store.Orders[orderID].Status)
	assert.Equal(t, fulfillment.StatusPending, store.Fulfillments[pendingID].Status)
}

func TestCancelOutsideWindow(t *testing.T) {
	svc, store := newFixture()

	ord := store.AddOrder(order.Order{
		TenantID: tenant,
		Number:   "ORD-X",
		Status:   order.StatusShipped,
		Currency: currency.CurrencyUSD,
	})

	_, err := svc.Cancel(context.Background(), tenant, ord.ID, "", actor)
	var notCancellable *errs.OrderNotCancellableError
	require.ErrorAs(t, err, &notCancellable)
	assert.Equal(t, order.StatusShipped, store.Orders[ord.ID].Status)
}

func TestAddNote(t *testing.T) {
	svc, store := newFixture()

	inserted, err := svc.BatchInsert(context.Background(), tenant, []order.Order{validOrder()}, actor)
	require.NoError(t, err)
	orderID := inserted[0].ID

	require.NoError(t, svc.AddNote(context.Background(), tenant, orderID, "call the customer", actor))

	stored := store.Orders[orderID]
	require.Len(t, stored.InternalNotes, 1)
	assert.Equal(t, "call the customer", stored.InternalNotes[0])

	last := store.Events[len(store.Events)-1]
	assert.Equal(t, orderevent.TypeNoteAdded, last.Type)

	assert.ErrorIs(t, svc.AddNote(context.Background(), "globex", orderID, "x", actor), errs.ErrNotFound)
}

func TestListEvents(t *testing.T) {
	svc, _ := newFixture()

	inserted, err := svc.BatchInsert(context.Background(), tenant, []order.Order{validOrder()}, actor)
	require.NoError(t, err)
	orderID := inserted[0].ID

	require.NoError(t, svc.AddNote(context.Background(), tenant, orderID, "note", actor))

	events, err := svc.ListEvents(context.Background(), tenant, orderID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, orderevent.TypeOrderCreated, events[0].Type)
	assert.Equal(t, orderevent.TypeNoteAdded, events[1].Type)

	_, err = svc.ListEvents(context.Background(), "globex", orderID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
