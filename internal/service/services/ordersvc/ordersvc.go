package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/commercekit/oms/internal/dal/interfaces/ieventrepo"
	"github.com/commercekit/oms/internal/dal/interfaces/ifulfillmentrepo"
	"github.com/commercekit/oms/internal/dal/interfaces/iinvoicerepo"
	"github.com/commercekit/oms/internal/dal/interfaces/iorderlinerepo"
	"github.com/commercekit/oms/internal/dal/interfaces/iorderrepo"
	"github.com/commercekit/oms/internal/dal/interfaces/itransactionrepo"
	"github.com/commercekit/oms/internal/dal/postgres"
	"github.com/commercekit/oms/internal/dal/uow"
	"github.com/commercekit/oms/internal/service/models/errs"
	"github.com/commercekit/oms/internal/service/models/fulfillment"
	"github.com/commercekit/oms/internal/service/models/order"
	"github.com/commercekit/oms/internal/service/models/orderevent"
	"github.com/commercekit/oms/internal/service/models/orderline"
	"github.com/commercekit/oms/internal/service/models/transaction"
)

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderLineRepository() iorderlinerepo.IOrderLineRepository
	FulfillmentRepository() ifulfillmentrepo.IFulfillmentRepository
	TransactionRepository() itransactionrepo.ITransactionRepository
	InvoiceRepository() iinvoicerepo.IInvoiceRepository
}

// OrderService owns the order aggregate: creation, reads, cancellation, and
// internal notes.
type OrderService struct {
	pgClient *postgres.Client
	newUOW   func() unitOfWork
	events   ieventrepo.IOrderEventRepository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
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

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithEventRepository sets the order event repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEventRepository(events ieventrepo.IOrderEventRepository) option {
	return func(s *OrderService) {
		s.events = events
	}
}

// WithUnitOfWorkFactory overrides the unit of work constructor.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// BatchInsert creates multiple orders with their lines in one transaction.
// Totals are validated against the components invariant before anything is
// written.
func (s *OrderService) BatchInsert(
	ctx context.Context,
	tenantID string,
	orders []order.Order,
	actor orderevent.Actor,
) ([]order.Order, error) {
	now := time.Now()

	for i := range orders {
		orders[i].TenantID = tenantID
		orders[i].Status = order.StatusPending
		orders[i].PaymentStatus = transaction.PaymentStatusPending
		orders[i].FulfillmentState = order.FulfillmentStatusUnfulfilled
		orders[i].CreatedAt = now
		orders[i].UpdatedAt = now
		if orders[i].Number == "" {
			orders[i].Number = newOrderNumber(now)
		}
		if err := orders[i].CheckTotals(); err != nil {
			return nil, err
		}
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	inserted, err := work.OrderRepository().BulkInsert(ctx, orders)
	if err != nil {
		return nil, err
	}

	lines := make([]orderline.OrderLine, 0)
	for _, o := range inserted {
		for _, line := range o.Lines {
			line.TenantID = tenantID
			line.OrderID = o.ID
			line.CreatedAt = now
			line.UpdatedAt = now
			lines = append(lines, line)
		}
	}
	lines, err = work.OrderLineRepository().BulkInsert(ctx, lines)
	if err != nil {
		return nil, err
	}

	for i := range inserted {
		inserted[i].Lines = nil
		for _, line := range lines {
			if line.OrderID == inserted[i].ID {
				inserted[i].Lines = append(inserted[i].Lines, line)
			}
		}
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	events := make([]orderevent.OrderEvent, 0, len(inserted))
	for _, o := range inserted {
		events = append(events, orderevent.New(
			tenantID, o.ID, orderevent.TypeOrderCreated,
			fmt.Sprintf("Order %s created", o.Number),
			actor,
		))
	}
	s.appendEvents(ctx, events...)

	return inserted, nil
}

// GetOrder loads the full aggregate: lines, fulfillments, transactions,
// invoices, and the event narrative.
func (s *OrderService) GetOrder(ctx context.Context, tenantID string, orderID int64) (*order.Order, error) {
	work := s.newUOW()

	ord, err := work.OrderRepository().Get(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if ord.Lines, err = work.OrderLineRepository().ListByOrder(ctx, tenantID, orderID); err != nil {
		return nil, err
	}
	if ord.Fulfillments, err = work.FulfillmentRepository().ListByOrder(ctx, tenantID, orderID); err != nil {
		return nil, err
	}
	if ord.Transactions, err = work.TransactionRepository().ListByOrder(ctx, tenantID, orderID); err != nil {
		return nil, err
	}
	if ord.Invoices, err = work.InvoiceRepository().ListByOrder(ctx, tenantID, orderID); err != nil {
		return nil, err
	}
	if s.events != nil {
		if ord.Events, err = s.events.ListByOrder(ctx, tenantID, orderID); err != nil {
			return nil, err
		}
	}

	return ord, nil
}

// ListOrders retrieves orders with their lines based on filter.
func (s *OrderService) ListOrders(ctx context.Context, tenantID string, filter *order.QueryOrdersModel) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	lines, err := work.OrderLineRepository().ListByOrders(ctx, tenantID, orderIDs)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		for _, line := range lines {
			if line.OrderID == orders[i].ID {
				orders[i].Lines = append(orders[i].Lines, line)
			}
		}
	}

	return orders, nil
}

// Cancel cancels an order still inside its cancellation window and cascades
// to its active fulfillments, releasing every reservation they held. It does
// not touch captured payment: refunds are a separate explicit action with a
// separate audit trail.
func (s *OrderService) Cancel(ctx context.Context, tenantID string, orderID int64, reason string, actor orderevent.Actor) (*order.Order, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	ord, err := work.OrderRepository().GetForUpdate(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := ord.Cancel(); err != nil {
		return nil, err
	}

	fulfillments, err := work.FulfillmentRepository().ListByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	lines, err := work.OrderLineRepository().ListByOrderForUpdate(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	linesByID := make(map[int64]*orderline.OrderLine, len(lines))
	for i := range lines {
		linesByID[lines[i].ID] = &lines[i]
	}

	cancelled := make([]int64, 0)
	for i := range fulfillments {
		f := &fulfillments[i]
		if f.Status != fulfillment.StatusPending && f.Status != fulfillment.StatusApproved {
			continue
		}
		if err := f.Cancel(); err != nil {
			return nil, err
		}
		if err := work.FulfillmentRepository().SetStatus(ctx, tenantID, f.ID, f.Status); err != nil {
			return nil, err
		}
		for _, fl := range f.Lines {
			line := linesByID[fl.OrderLineID]
			if line == nil {
				return nil, errs.ErrNotFound
			}
			if err := line.Release(fl.Quantity); err != nil {
				return nil, err
			}
			if err := work.OrderLineRepository().SetQuantityFulfilled(ctx, tenantID, line.ID, line.QuantityFulfilled); err != nil {
				return nil, err
			}
		}
		cancelled = append(cancelled, f.ID)
	}

	if err := work.OrderRepository().SetStatus(ctx, tenantID, orderID, ord.Status); err != nil {
		return nil, err
	}

	status := order.DeriveFulfillmentStatus(lines, fulfillments)
	if err := work.OrderRepository().SetFulfillmentStatus(ctx, tenantID, orderID, status); err != nil {
		return nil, err
	}
	ord.FulfillmentState = status

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Order %s cancelled", ord.Number)
	if reason != "" {
		message = fmt.Sprintf("Order %s cancelled: %s", ord.Number, reason)
	}
	ev := orderevent.New(tenantID, orderID, orderevent.TypeOrderCancelled, message, actor)
	if len(cancelled) > 0 {
		ev.Metadata = map[string]string{
			"cancelled_fulfillments": fmt.Sprint(cancelled),
		}
	}
	s.appendEvents(ctx, ev)

	return ord, nil
}

// AddNote appends an internal note to the order.
func (s *OrderService) AddNote(ctx context.Context, tenantID string, orderID int64, note string, actor orderevent.Actor) error {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return err
	}
	defer func() { _ = work.Rollback(ctx) }()

	ord, err := work.OrderRepository().Get(ctx, tenantID, orderID)
	if err != nil {
		return err
	}

	if err := work.OrderRepository().AppendInternalNote(ctx, tenantID, orderID, note); err != nil {
		return err
	}

	if err := work.Commit(ctx); err != nil {
		return err
	}

	s.appendEvents(ctx, orderevent.New(
		tenantID, orderID, orderevent.TypeNoteAdded,
		fmt.Sprintf("Note added to order %s", ord.Number),
		actor,
	))

	return nil
}

// ListEvents returns the order's append-only audit narrative.
func (s *OrderService) ListEvents(ctx context.Context, tenantID string, orderID int64) ([]orderevent.OrderEvent, error) {
	work := s.newUOW()

	if _, err := work.OrderRepository().Get(ctx, tenantID, orderID); err != nil {
		return nil, err
	}

	if s.events == nil {
		return []orderevent.OrderEvent{}, nil
	}

	return s.events.ListByOrder(ctx, tenantID, orderID)
}

func (s *OrderService) appendEvents(ctx context.Context, events ...orderevent.OrderEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Append(ctx, events...); err != nil {
		slog.Error("Failed to append order events", "count", len(events), "error", err)
	}
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]

	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
