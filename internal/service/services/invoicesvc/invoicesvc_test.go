package invoicesvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercekit/oms/internal/service/models/errs"
	"github.com/commercekit/oms/internal/service/models/invoice"
	"github.com/commercekit/oms/internal/service/models/order"
	"github.com/commercekit/oms/internal/service/models/orderevent"
	"github.com/commercekit/oms/internal/service/services/servicetest"
)

const tenant = "acme"

var actor = orderevent.Actor{ID: "u1", Name: "Dana"}

func newFixture() (*InvoiceService, *servicetest.Store, *servicetest.Notifier) {
	store := servicetest.NewStore()
	notifier := &servicetest.Notifier{}
	svc := MustNewInvoiceService(
		WithUnitOfWorkFactory(func() unitOfWork { return servicetest.NewUnitOfWork(store) }),
		WithEventRepository(&servicetest.EventRepo{Store: store}),
		WithNotifier(notifier),
	)

	return svc, store, notifier
}

func TestGenerateSequentialNumbers(t *testing.T) {
	svc, store, _ := newFixture()
	ord := store.AddOrder(order.Order{TenantID: tenant, Number: "ORD-A"})
	other := store.AddOrder(order.Order{TenantID: "globex", Number: "ORD-B"})

	first, err := svc.Generate(context.Background(), tenant, ord.ID, actor)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), tenant, ord.ID, actor)
	require.NoError(t, err)

	assert.Equal(t, "INV-000001", first.Number)
	assert.Equal(t, "INV-000002", second.Number)
	assert.Equal(t, invoice.StatusPending, first.Status)

	// Each tenant runs its own sequence.
	foreign, err := svc.Generate(context.Background(), "globex", other.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", foreign.Number)

	require.Len(t, store.Events, 3)
	assert.Equal(t, orderevent.TypeInvoiceGenerated, store.Events[0].Type)
}

func TestGenerateUnknownOrder(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.Generate(context.Background(), tenant, 42, actor)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSend(t *testing.T) {
	svc, store, notifier := newFixture()
	ord := store.AddOrder(order.Order{TenantID: tenant, Number: "ORD-A"})

	inv, err := svc.Generate(context.Background(), tenant, ord.ID, actor)
	require.NoError(t, err)

	sent, err := svc.Send(context.Background(), tenant, inv.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)

	stored := store.Invoices[inv.ID]
	assert.Equal(t, invoice.StatusSent, stored.Status)
	require.NotNil(t, stored.SentAt)

	require.Len(t, notifier.Sent, 1)
	assert.Equal(t, orderevent.TypeInvoiceSent, notifier.Sent[0].EventType)

	_, err = svc.Send(context.Background(), tenant, inv.ID, actor)
	var invalid *errs.InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)
}

func TestMarkPaid(t *testing.T) {
	svc, store, _ := newFixture()
	ord := store.AddOrder(order.Order{TenantID: tenant, Number: "ORD-A"})

	inv, err := svc.Generate(context.Background(), tenant, ord.ID, actor)
	require.NoError(t, err)

	_, err = svc.MarkPaid(context.Background(), tenant, inv.ID, actor)
	var invalid *errs.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	_, err = svc.Send(context.Background(), tenant, inv.ID, actor)
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), tenant, inv.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, paid.Status)
	assert.Equal(t, invoice.StatusPaid, store.Invoices[inv.ID].Status)
}

func TestCancel(t *testing.T) {
	svc, store, _ := newFixture()
	ord := store.AddOrder(order.Order{TenantID: tenant, Number: "ORD-A"})

	inv, err := svc.Generate(context.Background(), tenant, ord.ID, actor)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), tenant, inv.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusCancelled, cancelled.Status)

	_, err = svc.Cancel(context.Background(), tenant, inv.ID, actor)
	var invalid *errs.InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, invoice.StatusCancelled, store.Invoices[inv.ID].Status)
}

func TestTenantIsolation(t *testing.T) {
	svc, store, _ := newFixture()
	ord := store.AddOrder(order.Order{TenantID: tenant, Number: "ORD-A"})

	inv, err := svc.Generate(context.Background(), tenant, ord.ID, actor)
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), "globex", inv.ID, actor)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
