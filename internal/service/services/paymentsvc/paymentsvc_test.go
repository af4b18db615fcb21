package paymentsvc

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercekit/oms/internal/service/models/currency"
	"github.com/commercekit/oms/internal/service/models/errs"
	"github.com/commercekit/oms/internal/service/models/order"
	"github.com/commercekit/oms/internal/service/models/orderevent"
	"github.com/commercekit/oms/internal/service/models/transaction"
	"github.com/commercekit/oms/internal/service/services/servicetest"
)

const tenant = "acme"

var actor = orderevent.Actor{ID: "u1", Name: "Dana"}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newFixture() (*PaymentService, *servicetest.Store, *servicetest.Notifier) {
	store := servicetest.NewStore()
	notifier := &servicetest.Notifier{}
	svc := MustNewPaymentService(
		WithUnitOfWorkFactory(func() unitOfWork { return servicetest.NewUnitOfWork(store) }),
		WithEventRepository(&servicetest.EventRepo{Store: store}),
		WithNotifier(notifier),
	)

	return svc, store, notifier
}

func seedOrder(store *servicetest.Store) order.Order {
	return store.AddOrder(order.Order{
		TenantID:      tenant,
		Number:        "ORD-20260828-TEST0002",
		Status:        order.StatusConfirmed,
		PaymentStatus: transaction.PaymentStatusPending,
		Currency:      currency.CurrencyUSD,
		Total:         d("100.00"),
	})
}

func TestRecordChargeFullAmount(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)

	tx, err := svc.RecordCharge(context.Background(), tenant, ord.ID, d("100.00"), "card", actor)
	require.NoError(t, err)

	assert.Equal(t, transaction.TypeCharge, tx.Type)
	assert.Equal(t, transaction.StatusSuccess, tx.Status)
	assert.Equal(t, currency.CurrencyUSD, tx.Currency)
	assert.Equal(t, transaction.PaymentStatusPaid, store.Orders[ord.ID].PaymentStatus)

	require.Len(t, store.Events, 1)
	assert.Equal(t, orderevent.TypePaymentRecorded, store.Events[0].Type)
}

func TestRecordChargePartialAmount(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)

	_, err := svc.RecordCharge(context.Background(), tenant, ord.ID, d("40.00"), "card", actor)
	require.NoError(t, err)

	assert.Equal(t, transaction.PaymentStatusPartiallyPaid, store.Orders[ord.ID].PaymentStatus)
}

func TestRefundWithinBalance(t *testing.T) {
	svc, store, notifier := newFixture()
	ord := seedOrder(store)

	_, err := svc.RecordCharge(context.Background(), tenant, ord.ID, d("100.00"), "card", actor)
	require.NoError(t, err)

	tx, err := svc.RecordRefund(context.Background(), tenant, ord.ID, d("30.00"), "damaged item", actor)
	require.NoError(t, err)
	assert.Equal(t, "damaged item", tx.Metadata["reason"])
	assert.Equal(t, transaction.PaymentStatusPartiallyPaid, store.Orders[ord.ID].PaymentStatus)

	require.Len(t, notifier.Sent, 1)
	assert.Equal(t, orderevent.TypePaymentRefunded, notifier.Sent[0].EventType)

	_, err = svc.RecordRefund(context.Background(), tenant, ord.ID, d("70.00"), "", actor)
	require.NoError(t, err)
	assert.Equal(t, transaction.PaymentStatusRefunded, store.Orders[ord.ID].PaymentStatus)
}

func TestRefundExceedsBalance(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)

	_, err := svc.RecordCharge(context.Background(), tenant, ord.ID, d("50.00"), "card", actor)
	require.NoError(t, err)

	_, err = svc.RecordRefund(context.Background(), tenant, ord.ID, d("60.00"), "", actor)
	var exceeds *errs.RefundExceedsBalanceError
	require.ErrorAs(t, err, &exceeds)
	assert.True(t, exceeds.NetCaptured.Equal(d("50.00")))

	// The rejected refund must not appear on the ledger.
	assert.Len(t, store.Transactions, 1)
	assert.Equal(t, transaction.PaymentStatusPartiallyPaid, store.Orders[ord.ID].PaymentStatus)
}

func TestRefundAccountsForPriorRefunds(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)

	_, err := svc.RecordCharge(context.Background(), tenant, ord.ID, d("100.00"), "card", actor)
	require.NoError(t, err)
	_, err = svc.RecordRefund(context.Background(), tenant, ord.ID, d("80.00"), "", actor)
	require.NoError(t, err)

	_, err = svc.RecordRefund(context.Background(), tenant, ord.ID, d("30.00"), "", actor)
	var exceeds *errs.RefundExceedsBalanceError
	require.ErrorAs(t, err, &exceeds)
	assert.True(t, exceeds.NetCaptured.Equal(d("20.00")))
}

func TestNonPositiveAmountRejected(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)

	_, err := svc.RecordCharge(context.Background(), tenant, ord.ID, d("0"), "card", actor)
	assert.Error(t, err)
	_, err = svc.RecordRefund(context.Background(), tenant, ord.ID, d("-5.00"), "", actor)
	assert.Error(t, err)
	assert.Empty(t, store.Transactions)
}

func TestRecordUnknownOrder(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.RecordCharge(context.Background(), tenant, 99, d("10.00"), "card", actor)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListTransactions(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)

	_, err := svc.RecordCharge(context.Background(), tenant, ord.ID, d("100.00"), "card", actor)
	require.NoError(t, err)
	_, err = svc.RecordRefund(context.Background(), tenant, ord.ID, d("25.00"), "", actor)
	require.NoError(t, err)

	txs, err := svc.ListTransactions(context.Background(), tenant, ord.ID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, transaction.TypeCharge, txs[0].Type)
	assert.Equal(t, transaction.TypeRefund, txs[1].Type)

	_, err = svc.ListTransactions(context.Background(), "other", ord.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestChargebackDoesNotReduceNet(t *testing.T) {
	svc, store, _ := newFixture()
	ord := seedOrder(store)

	_, err := svc.RecordCharge(context.Background(), tenant, ord.ID, d("100.00"), "card", actor)
	require.NoError(t, err)
	_, err = svc.RecordChargeback(context.Background(), tenant, ord.ID, d("100.00"), actor)
	require.NoError(t, err)

	// Chargebacks are recorded for the audit trail; settlement still reads
	// from charges and refunds only.
	assert.Equal(t, transaction.PaymentStatusPaid, store.Orders[ord.ID].PaymentStatus)
	_, err = svc.RecordRefund(context.Background(), tenant, ord.ID, d("100.00"), "", actor)
	require.NoError(t, err)
	assert.Equal(t, transaction.PaymentStatusRefunded, store.Orders[ord.ID].PaymentStatus)
}
