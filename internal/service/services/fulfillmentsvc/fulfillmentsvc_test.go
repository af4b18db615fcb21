package fulfillmentsvc

import (
	"context"
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

func newFixture() (*FulfillmentService, *servicetest.Store, *servicetest.Notifier) {
	store := servicetest.NewStore()
	notifier := &servicetest.Notifier{}
	svc := MustNewFulfillmentService(
		WithUnitOfWorkFactory(func() unitOfWork { return servicetest.NewUnitOfWork(store) }),
		WithEventRepository(&servicetest.EventRepo{Store: store}),
		WithNotifier(notifier),
	)

	return svc, store, notifier
}

func seedOrder(store *servicetest.Store) order.Order {
	return store.AddOrder(
		order.Order{
			TenantID:         tenant,
			Number:           "ORD-20260828-TEST0001",
			Status:           order.StatusConfirmed,
			FulfillmentState: order.FulfillmentStatusUnfulfilled,
			Currency:         currency.CurrencyUSD,
			Total:            decimal.RequireFromString("100.00"),
		},
		orderline.OrderLine{ProductID: 1, ProductName: "Widget", SKU: "W-1", Quantity: 3},
		orderline.OrderLine{ProductID: 2, ProductName: "Gadget", SKU: "G-1", Quantity: 2},
	)
}

func TestCreatePartialFulfillment(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)
	lines := store.OrderLines(ord.ID)

	f, err := svc.Create(context.Background(), tenant, ord.ID, []LineRequest{
		{OrderLineID: lines[0].ID, Quantity: 2},
	}, &TrackingInfo{Number: "1Z999", Carrier: "ups"}, actor)
	require.NoError(t, err)

	assert.Equal(t, fulfillment.StatusPending, f.Status)
	assert.Equal(t, "1Z999", f.TrackingNumber)
	require.Len(t, f.Lines, 1)
	assert.Equal(t, 2, f.Lines[0].Quantity)

	lines = store.OrderLines(ord.ID)
	assert.Equal(t, 2, lines[0].QuantityFulfilled)
	assert.Equal(t, 0, lines[1].QuantityFulfilled)

	assert.Equal(t, order.FulfillmentStatusAwaitingApproval, store.Orders[ord.ID].FulfillmentState)

	require.Len(t, store.Events, 1)
	assert.Equal(t, orderevent.TypeFulfillmentCreated, store.Events[0].Type)
}

func TestCreateRejectsOverRequest(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)
	lines := store.OrderLines(ord.ID)

	_, err := svc.Create(context.Background(), tenant, ord.ID, []LineRequest{
		{OrderLineID: lines[0].ID, Quantity: 4},
	}, nil, actor)

	var insufficient *errs.InsufficientQuantityError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 4, insufficient.Requested)
	assert.Equal(t, 3, insufficient.Remaining)
}

func TestCreateIsAtomicAcrossLines(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)
	lines := store.OrderLines(ord.ID)

	// The first line would succeed on its own; the second fails, so nothing
	// may stick.
	_, err := svc.Create(context.Background(), tenant, ord.ID, []LineRequest{
		{OrderLineID: lines[0].ID, Quantity: 3},
		{OrderLineID: lines[1].ID, Quantity: 5},
	}, nil, actor)
	require.Error(t, err)

	for _, l := range store.OrderLines(ord.ID) {
		assert.Equal(t, 0, l.QuantityFulfilled)
	}
	assert.Empty(t, store.Fulfillments)
	assert.Equal(t, order.FulfillmentStatusUnfulfilled, store.Orders[ord.ID].FulfillmentState)
	assert.Empty(t, store.Events)
}

func TestCreateUnknownTenant(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)
	lines := store.OrderLines(ord.ID)

	_, err := svc.Create(context.Background(), "other", ord.ID, []LineRequest{
		{OrderLineID: lines[0].ID, Quantity: 1},
	}, nil, actor)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestApproveShipDeliver(t *testing.T) {
	svc, store, notifier := newFixture()
	ord := seedOrder(store)
	lines := store.OrderLines(ord.ID)

	created, err := svc.Create(context.Background(), tenant, ord.ID, []LineRequest{
		{OrderLineID: lines[0].ID, Quantity: 3},
	}, nil, actor)
	require.NoError(t, err)

	f, err := svc.Approve(context.Background(), tenant, created.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.StatusApproved, f.Status)

	f, err = svc.MarkShipped(context.Background(), tenant, created.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.StatusShipped, f.Status)

	// Shipping is the customer-visible moment: one event, one notification.
	require.Len(t, notifier.Sent, 1)
	assert.Equal(t, orderevent.TypeFulfillmentShipped, notifier.Sent[0].EventType)

	f, err = svc.MarkDelivered(context.Background(), tenant, created.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.StatusDelivered, f.Status)

	_, err = svc.MarkDelivered(context.Background(), tenant, created.ID, actor)
	var invalid *errs.InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)
}

func TestApproveClearsAwaitingApproval(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)
	lines := store.OrderLines(ord.ID)

	created, err := svc.Create(context.Background(), tenant, ord.ID, []LineRequest{
		{OrderLineID: lines[0].ID, Quantity: 2},
	}, nil, actor)
	require.NoError(t, err)
	require.Equal(t, order.FulfillmentStatusAwaitingApproval, store.Orders[ord.ID].FulfillmentState)

	// Once no batch is pending the quantity-based states take over again.
	_, err = svc.Approve(context.Background(), tenant, created.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, order.FulfillmentStatusPartiallyFulfilled, store.Orders[ord.ID].FulfillmentState)

	_, err = svc.MarkShipped(context.Background(), tenant, created.ID, actor)
	require.NoError(t, err)
	_, err = svc.MarkDelivered(context.Background(), tenant, created.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, order.FulfillmentStatusPartiallyFulfilled, store.Orders[ord.ID].FulfillmentState)
}

func TestCancelReleasesReservations(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)
	lines := store.OrderLines(ord.ID)

	created, err := svc.Create(context.Background(), tenant, ord.ID, []LineRequest{
		{OrderLineID: lines[0].ID, Quantity: 2},
		{OrderLineID: lines[1].ID, Quantity: 2},
	}, nil, actor)
	require.NoError(t, err)

	f, err := svc.Cancel(context.Background(), tenant, created.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.StatusCancelled, f.Status)

	for _, l := range store.OrderLines(ord.ID) {
		assert.Equal(t, 0, l.QuantityFulfilled)
	}
	assert.Equal(t, order.FulfillmentStatusUnfulfilled, store.Orders[ord.ID].FulfillmentState)

	require.Len(t, store.Events, 2)
	assert.Equal(t, orderevent.TypeFulfillmentCancelled, store.Events[1].Type)
}

func TestCancelShippedFulfillment(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)
	lines := store.OrderLines(ord.ID)

	created, err := svc.Create(context.Background(), tenant, ord.ID, []LineRequest{
		{OrderLineID: lines[0].ID, Quantity: 1},
	}, nil, actor)
	require.NoError(t, err)
	_, err = svc.MarkShipped(context.Background(), tenant, created.ID, actor)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), tenant, created.ID, actor)
	var invalid *errs.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	assert.Equal(t, 1, store.OrderLines(ord.ID)[0].QuantityFulfilled)
}

func TestUpdateTracking(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)
	lines := store.OrderLines(ord.ID)

	created, err := svc.Create(context.Background(), tenant, ord.ID, []LineRequest{
		{OrderLineID: lines[0].ID, Quantity: 1},
	}, nil, actor)
	require.NoError(t, err)

	f, err := svc.UpdateTracking(context.Background(), tenant, created.ID, "TRK-9", "https://t.example/TRK-9", "dhl")
	require.NoError(t, err)
	assert.Equal(t, "TRK-9", f.TrackingNumber)
	assert.Equal(t, "dhl", store.Fulfillments[created.ID].Carrier)

	_, err = svc.MarkShipped(context.Background(), tenant, created.ID, actor)
	require.NoError(t, err)
	_, err = svc.MarkDelivered(context.Background(), tenant, created.ID, actor)
	require.NoError(t, err)

	_, err = svc.UpdateTracking(context.Background(), tenant, created.ID, "TRK-10", "", "")
	assert.Error(t, err)
	assert.Equal(t, "TRK-9", store.Fulfillments[created.ID].TrackingNumber)
}

func TestFullCoverageMarksOrderFulfilled(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)
	lines := store.OrderLines(ord.ID)

	_, err := svc.Create(context.Background(), tenant, ord.ID, []LineRequest{
		{OrderLineID: lines[0].ID, Quantity: 3},
		{OrderLineID: lines[1].ID, Quantity: 2},
	}, nil, actor)
	require.NoError(t, err)

	assert.Equal(t, order.FulfillmentStatusFulfilled, store.Orders[ord.ID].FulfillmentState)
}
