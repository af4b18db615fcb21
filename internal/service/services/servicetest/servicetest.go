// Package servicetest provides an in-memory unit of work for exercising the
// service layer without Postgres. Begin snapshots the store and Rollback
// restores it, so tests can assert that failed operations leave no partial
// writes behind.
package servicetest

import (
	"context"
	"time"

	"github.com/commercekit/oms/internal/dal/interfaces/ifulfillmentrepo"
	"github.com/commercekit/oms/internal/dal/interfaces/iinvoicerepo"
	"github.com/commercekit/oms/internal/dal/interfaces/iorderlinerepo"
	"github.com/commercekit/oms/internal/dal/interfaces/iorderrepo"
	"github.com/commercekit/oms/internal/dal/interfaces/itransactionrepo"
	"github.com/commercekit/oms/internal/service/models/fulfillment"
	"github.com/commercekit/oms/internal/service/models/invoice"
	"github.com/commercekit/oms/internal/service/models/notification"
	"github.com/commercekit/oms/internal/service/models/order"
	"github.com/commercekit/oms/internal/service/models/orderevent"
	"github.com/commercekit/oms/internal/service/models/orderline"
	"github.com/commercekit/oms/internal/service/models/transaction"
)

// Store is the shared in-memory state behind the fake repositories.
type Store struct {
	Orders       map[int64]order.Order
	Lines        map[int64]orderline.OrderLine
	Fulfillments map[int64]fulfillment.Fulfillment
	Transactions []transaction.Transaction
	Invoices     map[int64]invoice.Invoice
	Events       []orderevent.OrderEvent

	NextOrderID       int64
	NextLineID        int64
	NextFulfillmentID int64
	NextTransactionID int64
	NextInvoiceID     int64
	InvoiceSeq        map[string]int64

	// Clock stamps CreatedAt on inserted transactions so ledger ordering is
	// deterministic in tests.
	Clock func() time.Time
}

func NewStore() *Store {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	return &Store{
		Orders:            map[int64]order.Order{},
		Lines:             map[int64]orderline.OrderLine{},
		Fulfillments:      map[int64]fulfillment.Fulfillment{},
		Invoices:          map[int64]invoice.Invoice{},
		InvoiceSeq:        map[string]int64{},
		NextOrderID:       1,
		NextLineID:        1,
		NextFulfillmentID: 1,
		NextTransactionID: 1,
		NextInvoiceID:     1,
		Clock: func() time.Time {
			now = now.Add(time.Second)

			return now
		},
	}
}

// AddOrder seeds an order with its lines and returns the stored copy.
func (s *Store) AddOrder(o order.Order, lines ...orderline.OrderLine) order.Order {
	o.ID = s.NextOrderID
	s.NextOrderID++
	s.Orders[o.ID] = cloneOrder(o)
	for _, l := range lines {
		l.ID = s.NextLineID
		s.NextLineID++
		l.TenantID = o.TenantID
		l.OrderID = o.ID
		s.Lines[l.ID] = l
	}

	return o
}

// OrderLines returns the order's lines sorted by id.
func (s *Store) OrderLines(orderID int64) []orderline.OrderLine {
	var out []orderline.OrderLine
	for id := int64(1); id < s.NextLineID; id++ {
		if l, ok := s.Lines[id]; ok && l.OrderID == orderID {
			out = append(out, l)
		}
	}

	return out
}

func (s *Store) snapshot() *Store {
	cp := &Store{
		Orders:            map[int64]order.Order{},
		Lines:             map[int64]orderline.OrderLine{},
		Fulfillments:      map[int64]fulfillment.Fulfillment{},
		Invoices:          map[int64]invoice.Invoice{},
		InvoiceSeq:        map[string]int64{},
		Transactions:      append([]transaction.Transaction(nil), s.Transactions...),
		Events:            append([]orderevent.OrderEvent(nil), s.Events...),
		NextOrderID:       s.NextOrderID,
		NextLineID:        s.NextLineID,
		NextFulfillmentID: s.NextFulfillmentID,
		NextTransactionID: s.NextTransactionID,
		NextInvoiceID:     s.NextInvoiceID,
		Clock:             s.Clock,
	}
	for k, v := range s.Orders {
		cp.Orders[k] = cloneOrder(v)
	}
	for k, v := range s.Lines {
		cp.Lines[k] = v
	}
	for k, v := range s.Fulfillments {
		cp.Fulfillments[k] = cloneFulfillment(v)
	}
	for k, v := range s.Invoices {
		cp.Invoices[k] = v
	}
	for k, v := range s.InvoiceSeq {
		cp.InvoiceSeq[k] = v
	}

	return cp
}

func (s *Store) restore(from *Store) {
	s.Orders = from.Orders
	s.Lines = from.Lines
	s.Fulfillments = from.Fulfillments
	s.Transactions = from.Transactions
	s.Invoices = from.Invoices
	s.Events = from.Events
	s.InvoiceSeq = from.InvoiceSeq
	s.NextOrderID = from.NextOrderID
	s.NextLineID = from.NextLineID
	s.NextFulfillmentID = from.NextFulfillmentID
	s.NextTransactionID = from.NextTransactionID
	s.NextInvoiceID = from.NextInvoiceID
}

func cloneOrder(o order.Order) order.Order {
	o.InternalNotes = append([]string(nil), o.InternalNotes...)
	o.Lines = nil
	o.Fulfillments = nil
	o.Transactions = nil
	o.Invoices = nil
	o.Events = nil

	return o
}

func cloneFulfillment(f fulfillment.Fulfillment) fulfillment.Fulfillment {
	f.Lines = append([]fulfillment.Line(nil), f.Lines...)

	return f
}

// UnitOfWork implements the services' unit of work contract over a Store.
type UnitOfWork struct {
	store    *Store
	snapshot *Store
	done     bool
}

func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) Begin(_ context.Context) error {
	u.snapshot = u.store.snapshot()

	return nil
}

func (u *UnitOfWork) Commit(_ context.Context) error {
	u.done = true

	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if !u.done {
		u.store.restore(u.snapshot)
		u.done = true
	}

	return nil
}

func (u *UnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return &orderRepo{u.store}
}

func (u *UnitOfWork) OrderLineRepository() iorderlinerepo.IOrderLineRepository {
	return &lineRepo{u.store}
}

func (u *UnitOfWork) FulfillmentRepository() ifulfillmentrepo.IFulfillmentRepository {
	return &fulfillmentRepo{u.store}
}

func (u *UnitOfWork) TransactionRepository() itransactionrepo.ITransactionRepository {
	return &transactionRepo{u.store}
}

func (u *UnitOfWork) InvoiceRepository() iinvoicerepo.IInvoiceRepository {
	return &invoiceRepo{u.store}
}

// EventRepo is an in-memory append-only event log.
type EventRepo struct {
	Store *Store
}

func (r *EventRepo) Append(_ context.Context, events ...orderevent.OrderEvent) error {
	r.Store.Events = append(r.Store.Events, events...)

	return nil
}

func (r *EventRepo) ListByOrder(_ context.Context, tenantID string, orderID int64) ([]orderevent.OrderEvent, error) {
	var out []orderevent.OrderEvent
	for _, ev := range r.Store.Events {
		if ev.TenantID == tenantID && ev.OrderID == orderID {
			out = append(out, ev)
		}
	}

	return out, nil
}

// Notifier records published notifications.
type Notifier struct {
	Sent []notification.Notification
}

func (n *Notifier) Notify(_ context.Context, msg notification.Notification) error {
	n.Sent = append(n.Sent, msg)

	return nil
}
