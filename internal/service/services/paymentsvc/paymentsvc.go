package paymentsvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/commercekit/oms/internal/dal/interfaces/ieventrepo"
	"github.com/commercekit/oms/internal/dal/interfaces/inotifier"
	"github.com/commercekit/oms/internal/dal/interfaces/iorderrepo"
	"github.com/commercekit/oms/internal/dal/interfaces/itransactionrepo"
	"github.com/commercekit/oms/internal/dal/postgres"
	"github.com/commercekit/oms/internal/dal/uow"
	"github.com/commercekit/oms/internal/service/models/errs"
	"github.com/commercekit/oms/internal/service/models/notification"
	"github.com/commercekit/oms/internal/service/models/orderevent"
	"github.com/commercekit/oms/internal/service/models/transaction"
)

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	TransactionRepository() itransactionrepo.ITransactionRepository
}

// PaymentService appends to the order's transaction ledger and keeps the
// derived payment status in step with it. The ledger is append-only:
// corrections are new transactions.
type PaymentService struct {
	pgClient *postgres.Client
	newUOW   func() unitOfWork
	events   ieventrepo.IOrderEventRepository
	notifier inotifier.INotifier
}

// option is a function that configures the PaymentService.
type option func(*PaymentService)

// MustNewPaymentService creates a new PaymentService.
func MustNewPaymentService(opts ...option) *PaymentService {
	s := &PaymentService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.newUOW == nil {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the PaymentService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *PaymentService) {
		s.pgClient = pgClient
	}
}

// WithEventRepository sets the order event repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEventRepository(events ieventrepo.IOrderEventRepository) option {
	return func(s *PaymentService) {
		s.events = events
	}
}

// WithNotifier sets the customer notification collaborator.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithNotifier(n inotifier.INotifier) option {
	return func(s *PaymentService) {
		s.notifier = n
	}
}

// WithUnitOfWorkFactory overrides the unit of work constructor.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *PaymentService) {
		s.newUOW = factory
	}
}

// RecordCharge appends a successful charge.
func (s *PaymentService) RecordCharge(ctx context.Context, tenantID string, orderID int64, amount decimal.Decimal, method string, actor orderevent.Actor) (*transaction.Transaction, error) {
	return s.record(ctx, tenantID, orderID, transaction.TypeCharge, amount, method, nil, actor)
}

// RecordCapture appends a successful capture.
func (s *PaymentService) RecordCapture(ctx context.Context, tenantID string, orderID int64, amount decimal.Decimal, method string, actor orderevent.Actor) (*transaction.Transaction, error) {
	return s.record(ctx, tenantID, orderID, transaction.TypeCapture, amount, method, nil, actor)
}

// RecordRefund appends a refund after checking it against the order's net
// captured amount. The bound is enforced against the ledger as read inside
// the same transaction, before anything is written.
func (s *PaymentService) RecordRefund(ctx context.Context, tenantID string, orderID int64, amount decimal.Decimal, reason string, actor orderevent.Actor) (*transaction.Transaction, error) {
	var metadata map[string]string
	if reason != "" {
		metadata = map[string]string{"reason": reason}
	}

	return s.record(ctx, tenantID, orderID, transaction.TypeRefund, amount, "", metadata, actor)
}

// RecordVoid appends a void of a prior authorization.
func (s *PaymentService) RecordVoid(ctx context.Context, tenantID string, orderID int64, amount decimal.Decimal, actor orderevent.Actor) (*transaction.Transaction, error) {
	return s.record(ctx, tenantID, orderID, transaction.TypeVoid, amount, "", nil, actor)
}

// RecordChargeback appends a chargeback reported by the gateway.
func (s *PaymentService) RecordChargeback(ctx context.Context, tenantID string, orderID int64, amount decimal.Decimal, actor orderevent.Actor) (*transaction.Transaction, error) {
	return s.record(ctx, tenantID, orderID, transaction.TypeChargeback, amount, "", nil, actor)
}

// ListTransactions returns the order's full ledger.
func (s *PaymentService) ListTransactions(ctx context.Context, tenantID string, orderID int64) ([]transaction.Transaction, error) {
	work := s.newUOW()

	if _, err := work.OrderRepository().Get(ctx, tenantID, orderID); err != nil {
		return nil, err
	}

	return work.TransactionRepository().ListByOrder(ctx, tenantID, orderID)
}

func (s *PaymentService) record(
	ctx context.Context,
	tenantID string,
	orderID int64,
	typ transaction.Type,
	amount decimal.Decimal,
	method string,
	metadata map[string]string,
	actor orderevent.Actor,
) (*transaction.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("transaction amount must be positive, got %s", amount.String())
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	ord, err := work.OrderRepository().GetForUpdate(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	ledger, err := work.TransactionRepository().ListByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if typ == transaction.TypeRefund {
		net := transaction.NetCaptured(ledger)
		if amount.GreaterThan(net) {
			return nil, &errs.RefundExceedsBalanceError{
				OrderID:     orderID,
				Requested:   amount,
				NetCaptured: net,
			}
		}
	}

	tx := transaction.Transaction{
		TenantID:      tenantID,
		OrderID:       orderID,
		Type:          typ,
		Status:        transaction.StatusSuccess,
		Amount:        amount,
		Currency:      ord.Currency,
		PaymentMethod: method,
		Metadata:      metadata,
		CreatedAt:     time.Now(),
	}

	created, err := work.TransactionRepository().Insert(ctx, tx)
	if err != nil {
		return nil, err
	}

	status := transaction.DerivePaymentStatus(append(ledger, *created), ord.Total)
	if err := work.OrderRepository().SetPaymentStatus(ctx, tenantID, orderID, status); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	eventType := orderevent.TypePaymentRecorded
	message := fmt.Sprintf("%s of %s %s recorded for order %s", typ, amount.String(), ord.Currency, ord.Number)
	if typ == transaction.TypeRefund {
		eventType = orderevent.TypePaymentRefunded
		message = fmt.Sprintf("Refund of %s %s recorded for order %s", amount.String(), ord.Currency, ord.Number)
	}
	s.appendEvent(ctx, orderevent.New(tenantID, orderID, eventType, message, actor))

	if typ == transaction.TypeRefund {
		s.notify(ctx, tenantID, orderID, orderevent.TypePaymentRefunded)
	}

	return created, nil
}

func (s *PaymentService) appendEvent(ctx context.Context, ev orderevent.OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, ev); err != nil {
		slog.Error("Failed to append order event",
			"order_id", ev.OrderID, "type", ev.Type, "error", err)
	}
}

func (s *PaymentService) notify(ctx context.Context, tenantID string, orderID int64, eventType orderevent.Type) {
	if s.notifier == nil {
		return
	}
	n := notification.New(tenantID, orderID, eventType, fmt.Sprintf("order:%d", orderID))
	if err := s.notifier.Notify(ctx, n); err != nil {
		slog.Error("Failed to notify customer",
			"order_id", orderID, "event_type", eventType, "error", err)
	}
}
