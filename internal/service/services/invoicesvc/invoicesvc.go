package invoicesvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/commercekit/oms/internal/dal/interfaces/ieventrepo"
	"github.com/commercekit/oms/internal/dal/interfaces/iinvoicerepo"
	"github.com/commercekit/oms/internal/dal/interfaces/inotifier"
	"github.com/commercekit/oms/internal/dal/interfaces/iorderrepo"
	"github.com/commercekit/oms/internal/dal/postgres"
	"github.com/commercekit/oms/internal/dal/uow"
	"github.com/commercekit/oms/internal/service/models/invoice"
	"github.com/commercekit/oms/internal/service/models/notification"
	"github.com/commercekit/oms/internal/service/models/orderevent"
)

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	InvoiceRepository() iinvoicerepo.IInvoiceRepository
}

// InvoiceService manages the invoice document lifecycle.
type InvoiceService struct {
	pgClient *postgres.Client
	newUOW   func() unitOfWork
	events   ieventrepo.IOrderEventRepository
	notifier inotifier.INotifier
}

// option is a function that configures the InvoiceService.
type option func(*InvoiceService)

// MustNewInvoiceService creates a new InvoiceService.
func MustNewInvoiceService(opts ...option) *InvoiceService {
	s := &InvoiceService{}
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

// WithPostgresClient sets the Postgres client for the InvoiceService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *InvoiceService) {
		s.pgClient = pgClient
	}
}

// WithEventRepository sets the order event repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEventRepository(events ieventrepo.IOrderEventRepository) option {
	return func(s *InvoiceService) {
		s.events = events
	}
}

// WithNotifier sets the customer notification collaborator.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithNotifier(n inotifier.INotifier) option {
	return func(s *InvoiceService) {
		s.notifier = n
	}
}

// WithUnitOfWorkFactory overrides the unit of work constructor.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *InvoiceService) {
		s.newUOW = factory
	}
}

// Generate allocates the tenant's next invoice number and creates the
// invoice in pending. Draft is skipped in the current flow but remains a
// valid starting state.
func (s *InvoiceService) Generate(ctx context.Context, tenantID string, orderID int64, actor orderevent.Actor) (*invoice.Invoice, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	ord, err := work.OrderRepository().Get(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	seq, err := work.InvoiceRepository().NextNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	created, err := work.InvoiceRepository().Insert(ctx, invoice.Invoice{
		TenantID:  tenantID,
		OrderID:   orderID,
		Number:    invoice.FormatNumber(seq),
		Status:    invoice.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, orderevent.New(
		tenantID, orderID, orderevent.TypeInvoiceGenerated,
		fmt.Sprintf("Invoice %s generated for order %s", created.Number, ord.Number),
		actor,
	))

	return created, nil
}

// Send moves a draft or pending invoice to sent, stamps SentAt, and notifies
// the customer.
func (s *InvoiceService) Send(ctx context.Context, tenantID string, invoiceID int64, actor orderevent.Actor) (*invoice.Invoice, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	inv, err := work.InvoiceRepository().GetForUpdate(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := inv.Send(time.Now()); err != nil {
		return nil, err
	}

	if err := work.InvoiceRepository().SetStatus(ctx, tenantID, inv.ID, inv.Status, inv.SentAt); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, orderevent.New(
		tenantID, inv.OrderID, orderevent.TypeInvoiceSent,
		fmt.Sprintf("Invoice %s sent", inv.Number),
		actor,
	))
	s.notify(ctx, tenantID, inv.OrderID, orderevent.TypeInvoiceSent)

	return inv, nil
}

// MarkPaid closes a sent invoice. Settlement itself lives on the transaction
// ledger.
func (s *InvoiceService) MarkPaid(ctx context.Context, tenantID string, invoiceID int64, actor orderevent.Actor) (*invoice.Invoice, error) {
	return s.transition(ctx, tenantID, invoiceID, func(inv *invoice.Invoice) error {
		return inv.MarkPaid()
	})
}

// Cancel cancels a non-terminal invoice.
func (s *InvoiceService) Cancel(ctx context.Context, tenantID string, invoiceID int64, actor orderevent.Actor) (*invoice.Invoice, error) {
	return s.transition(ctx, tenantID, invoiceID, func(inv *invoice.Invoice) error {
		return inv.Cancel()
	})
}

func (s *InvoiceService) transition(
	ctx context.Context,
	tenantID string,
	invoiceID int64,
	apply func(*invoice.Invoice) error,
) (*invoice.Invoice, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	inv, err := work.InvoiceRepository().GetForUpdate(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := apply(inv); err != nil {
		return nil, err
	}

	if err := work.InvoiceRepository().SetStatus(ctx, tenantID, inv.ID, inv.Status, nil); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *InvoiceService) appendEvent(ctx context.Context, ev orderevent.OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, ev); err != nil {
		slog.Error("Failed to append order event",
			"order_id", ev.OrderID, "type", ev.Type, "error", err)
	}
}

func (s *InvoiceService) notify(ctx context.Context, tenantID string, orderID int64, eventType orderevent.Type) {
	if s.notifier == nil {
		return
	}
	n := notification.New(tenantID, orderID, eventType, fmt.Sprintf("order:%d", orderID))
	if err := s.notifier.Notify(ctx, n); err != nil {
		slog.Error("Failed to notify customer",
			"order_id", orderID, "event_type", eventType, "error", err)
	}
}
