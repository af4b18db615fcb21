package fulfillmentsvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/commercekit/oms/internal/dal/interfaces/ieventrepo"
	"github.com/commercekit/oms/internal/dal/interfaces/ifulfillmentrepo"
	"github.com/commercekit/oms/internal/dal/interfaces/inotifier"
	"github.com/commercekit/oms/internal/dal/interfaces/iorderlinerepo"
	"github.com/commercekit/oms/internal/dal/interfaces/iorderrepo"
	"github.com/commercekit/oms/internal/dal/postgres"
	"github.com/commercekit/oms/internal/dal/uow"
	"github.com/commercekit/oms/internal/service/models/errs"
	"github.com/commercekit/oms/internal/service/models/fulfillment"
	"github.com/commercekit/oms/internal/service/models/notification"
	"github.com/commercekit/oms/internal/service/models/order"
	"github.com/commercekit/oms/internal/service/models/orderevent"
	"github.com/commercekit/oms/internal/service/models/orderline"
)

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderLineRepository() iorderlinerepo.IOrderLineRepository
	FulfillmentRepository() ifulfillmentrepo.IFulfillmentRepository
}

// FulfillmentService manages shipment batches and the order line ledger they
// reserve against.
type FulfillmentService struct {
	pgClient *postgres.Client
	newUOW   func() unitOfWork
	events   ieventrepo.IOrderEventRepository
	notifier inotifier.INotifier
}

// option is a function that configures the FulfillmentService.
type option func(*FulfillmentService)

// MustNewFulfillmentService creates a new FulfillmentService.
func MustNewFulfillmentService(opts ...option) *FulfillmentService {
	s := &FulfillmentService{}
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

// WithPostgresClient sets the Postgres client for the FulfillmentService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *FulfillmentService) {
		s.pgClient = pgClient
	}
}

// WithEventRepository sets the order event repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEventRepository(events ieventrepo.IOrderEventRepository) option {
	return func(s *FulfillmentService) {
		s.events = events
	}
}

// WithNotifier sets the customer notification collaborator.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithNotifier(n inotifier.INotifier) option {
	return func(s *FulfillmentService) {
		s.notifier = n
	}
}

// WithUnitOfWorkFactory overrides the unit of work constructor.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *FulfillmentService) {
		s.newUOW = factory
	}
}

// TrackingInfo carries optional carrier metadata on creation.
type TrackingInfo struct {
	Number  string
	URL     string
	Carrier string
}

// LineRequest asks for a quantity of one order line to be included in a
// fulfillment.
type LineRequest struct {
	OrderLineID int64
	Quantity    int
}

// Create validates the requested quantities against what each line still has
// to fulfill, reserves them, and creates the fulfillment in pending. The
// whole operation commits atomically: if any line fails validation, nothing
// is reserved and nothing is created.
func (s *FulfillmentService) Create(
	ctx context.Context,
	tenantID string,
	orderID int64,
	lineReqs []LineRequest,
	tracking *TrackingInfo,
	actor orderevent.Actor,
) (*fulfillment.Fulfillment, error) {
	if len(lineReqs) == 0 {
		return nil, fmt.Errorf("fulfillment requires at least one line")
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

	lines, err := work.OrderLineRepository().ListByOrderForUpdate(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	linesByID := make(map[int64]*orderline.OrderLine, len(lines))
	for i := range lines {
		linesByID[lines[i].ID] = &lines[i]
	}

	for _, req := range lineReqs {
		line, ok := linesByID[req.OrderLineID]
		if !ok {
			return nil, errs.ErrNotFound
		}
		if req.Quantity <= 0 || req.Quantity > line.QuantityToFulfill() {
			return nil, &errs.InsufficientQuantityError{
				OrderLineID: req.OrderLineID,
				Requested:   req.Quantity,
				Remaining:   line.QuantityToFulfill(),
			}
		}
		if err := line.Reserve(req.Quantity); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	f := fulfillment.Fulfillment{
		TenantID:  tenantID,
		OrderID:   orderID,
		Status:    fulfillment.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if tracking != nil {
		f.TrackingNumber = tracking.Number
		f.TrackingURL = tracking.URL
		f.Carrier = tracking.Carrier
	}
	for _, req := range lineReqs {
		f.Lines = append(f.Lines, fulfillment.Line{
			OrderLineID: req.OrderLineID,
			Quantity:    req.Quantity,
		})
	}

	created, err := work.FulfillmentRepository().Insert(ctx, f)
	if err != nil {
		return nil, err
	}

	for _, req := range lineReqs {
		line := linesByID[req.OrderLineID]
		if err := work.OrderLineRepository().SetQuantityFulfilled(ctx, tenantID, line.ID, line.QuantityFulfilled); err != nil {
			return nil, err
		}
	}

	if err := s.recomputeFulfillmentStatus(ctx, work, tenantID, orderID, lines); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, orderevent.New(
		tenantID, orderID, orderevent.TypeFulfillmentCreated,
		fmt.Sprintf("Fulfillment %d created for order %s", created.ID, ord.Number),
		actor,
	))

	return created, nil
}

// Approve moves a fulfillment from pending to approved.
func (s *FulfillmentService) Approve(ctx context.Context, tenantID string, fulfillmentID int64, actor orderevent.Actor) (*fulfillment.Fulfillment, error) {
	return s.transition(ctx, tenantID, fulfillmentID, actor, func(f *fulfillment.Fulfillment) error {
		return f.Approve()
	}, "", "")
}

// MarkShipped moves a fulfillment to shipped and notifies the customer.
func (s *FulfillmentService) MarkShipped(ctx context.Context, tenantID string, fulfillmentID int64, actor orderevent.Actor) (*fulfillment.Fulfillment, error) {
	return s.transition(ctx, tenantID, fulfillmentID, actor, func(f *fulfillment.Fulfillment) error {
		return f.MarkShipped()
	}, orderevent.TypeFulfillmentShipped, "Fulfillment %d shipped")
}

// MarkDelivered moves a fulfillment from shipped to delivered.
func (s *FulfillmentService) MarkDelivered(ctx context.Context, tenantID string, fulfillmentID int64, actor orderevent.Actor) (*fulfillment.Fulfillment, error) {
	return s.transition(ctx, tenantID, fulfillmentID, actor, func(f *fulfillment.Fulfillment) error {
		return f.MarkDelivered()
	}, "", "")
}

func (s *FulfillmentService) transition(
	ctx context.Context,
	tenantID string,
	fulfillmentID int64,
	actor orderevent.Actor,
	apply func(*fulfillment.Fulfillment) error,
	eventType orderevent.Type,
	messageFormat string,
) (*fulfillment.Fulfillment, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	f, err := work.FulfillmentRepository().GetForUpdate(ctx, tenantID, fulfillmentID)
	if err != nil {
		return nil, err
	}

	if err := apply(f); err != nil {
		return nil, err
	}

	if err := work.FulfillmentRepository().SetStatus(ctx, tenantID, f.ID, f.Status); err != nil {
		return nil, err
	}

	lines, err := work.OrderLineRepository().ListByOrderForUpdate(ctx, tenantID, f.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.recomputeFulfillmentStatus(ctx, work, tenantID, f.OrderID, lines); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	if eventType != "" {
		s.appendEvent(ctx, orderevent.New(
			tenantID, f.OrderID, eventType,
			fmt.Sprintf(messageFormat, f.ID),
			actor,
		))
		s.notify(ctx, tenantID, f.OrderID, eventType)
	}

	return f, nil
}

// Cancel moves a pending or approved fulfillment to cancelled and releases
// every quantity it had reserved.
func (s *FulfillmentService) Cancel(ctx context.Context, tenantID string, fulfillmentID int64, actor orderevent.Actor) (*fulfillment.Fulfillment, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	f, err := work.FulfillmentRepository().GetForUpdate(ctx, tenantID, fulfillmentID)
	if err != nil {
		return nil, err
	}

	if err := f.Cancel(); err != nil {
		return nil, err
	}

	if err := work.FulfillmentRepository().SetStatus(ctx, tenantID, f.ID, f.Status); err != nil {
		return nil, err
	}

	lines, err := releaseFulfillmentLines(ctx, work, tenantID, f)
	if err != nil {
		return nil, err
	}

	if err := s.recomputeFulfillmentStatus(ctx, work, tenantID, f.OrderID, lines); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, orderevent.New(
		tenantID, f.OrderID, orderevent.TypeFulfillmentCancelled,
		fmt.Sprintf("Fulfillment %d cancelled", f.ID),
		actor,
	))

	return f, nil
}

// UpdateTracking updates carrier metadata on a non-terminal fulfillment.
func (s *FulfillmentService) UpdateTracking(
	ctx context.Context,
	tenantID string,
	fulfillmentID int64,
	number, url, carrier string,
) (*fulfillment.Fulfillment, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	f, err := work.FulfillmentRepository().GetForUpdate(ctx, tenantID, fulfillmentID)
	if err != nil {
		return nil, err
	}

	if err := f.SetTracking(number, url, carrier); err != nil {
		return nil, err
	}

	if err := work.FulfillmentRepository().SetTracking(ctx, tenantID, f.ID, number, url, carrier); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	return f, nil
}

// releaseFulfillmentLines hands the cancelled batch's reservations back to
// the order line ledger. Lines are locked before mutation.
func releaseFulfillmentLines(
	ctx context.Context,
	work unitOfWork,
	tenantID string,
	f *fulfillment.Fulfillment,
) ([]orderline.OrderLine, error) {
	lines, err := work.OrderLineRepository().ListByOrderForUpdate(ctx, tenantID, f.OrderID)
	if err != nil {
		return nil, err
	}
	linesByID := make(map[int64]*orderline.OrderLine, len(lines))
	for i := range lines {
		linesByID[lines[i].ID] = &lines[i]
	}

	for _, fl := range f.Lines {
		line, ok := linesByID[fl.OrderLineID]
		if !ok {
			return nil, errs.ErrNotFound
		}
		if err := line.Release(fl.Quantity); err != nil {
			return nil, err
		}
		if err := work.OrderLineRepository().SetQuantityFulfilled(ctx, tenantID, line.ID, line.QuantityFulfilled); err != nil {
			return nil, err
		}
	}

	return lines, nil
}

// recomputeFulfillmentStatus rederives the order-level fulfillment status
// from the freshly mutated lines and the order's current fulfillments.
func (s *FulfillmentService) recomputeFulfillmentStatus(
	ctx context.Context,
	work unitOfWork,
	tenantID string,
	orderID int64,
	lines []orderline.OrderLine,
) error {
	fulfillments, err := work.FulfillmentRepository().ListByOrder(ctx, tenantID, orderID)
	if err != nil {
		return err
	}

	status := order.DeriveFulfillmentStatus(lines, fulfillments)

	return work.OrderRepository().SetFulfillmentStatus(ctx, tenantID, orderID, status)
}

func (s *FulfillmentService) appendEvent(ctx context.Context, ev orderevent.OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, ev); err != nil {
		slog.Error("Failed to append order event",
			"order_id", ev.OrderID, "type", ev.Type, "error", err)
	}
}

func (s *FulfillmentService) notify(ctx context.Context, tenantID string, orderID int64, eventType orderevent.Type) {
	if s.notifier == nil {
		return
	}
	n := notification.New(tenantID, orderID, eventType, fmt.Sprintf("order:%d", orderID))
	if err := s.notifier.Notify(ctx, n); err != nil {
		slog.Error("Failed to notify customer",
			"order_id", orderID, "event_type", eventType, "error", err)
	}
}
