package servicetest

import (
	"context"
	"sort"
	"time"

	"github.com/commercekit/oms/internal/service/models/errs"
	"github.com/commercekit/oms/internal/service/models/fulfillment"
	"github.com/commercekit/oms/internal/service/models/invoice"
	"github.com/commercekit/oms/internal/service/models/order"
	"github.com/commercekit/oms/internal/service/models/orderline"
	"github.com/commercekit/oms/internal/service/models/transaction"
)

type orderRepo struct {
	store *Store
}

func (r *orderRepo) BulkInsert(_ context.Context, orders []order.Order) ([]order.Order, error) {
	out := make([]order.Order, 0, len(orders))
	for _, o := range orders {
		o.ID = r.store.NextOrderID
		r.store.NextOrderID++
		r.store.Orders[o.ID] = cloneOrder(o)
		out = append(out, o)
	}

	return out, nil
}

func (r *orderRepo) Get(_ context.Context, tenantID string, orderID int64) (*order.Order, error) {
	o, ok := r.store.Orders[orderID]
	if !ok || o.TenantID != tenantID {
		return nil, errs.ErrNotFound
	}
	cp := cloneOrder(o)

	return &cp, nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, tenantID string, orderID int64) (*order.Order, error) {
	return r.Get(ctx, tenantID, orderID)
}

func (r *orderRepo) Query(_ context.Context, tenantID string, filter *order.QueryOrdersModel) ([]order.Order, error) {
	var out []order.Order
	for id := int64(1); id < r.store.NextOrderID; id++ {
		o, ok := r.store.Orders[id]
		if !ok || o.TenantID != tenantID {
			continue
		}
		if len(filter.Ids) > 0 && !containsInt64(filter.Ids, o.ID) {
			continue
		}
		if len(filter.CustomerIds) > 0 && (o.CustomerID == nil || !containsInt64(filter.CustomerIds, *o.CustomerID)) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, o.Status) {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (r *orderRepo) SetStatus(_ context.Context, tenantID string, orderID int64, status order.Status) error {
	o, ok := r.store.Orders[orderID]
	if !ok || o.TenantID != tenantID {
		return errs.ErrNotFound
	}
	o.Status = status
	r.store.Orders[orderID] = o

	return nil
}

func (r *orderRepo) SetFulfillmentStatus(_ context.Context, tenantID string, orderID int64, status order.FulfillmentStatus) error {
	o, ok := r.store.Orders[orderID]
	if !ok || o.TenantID != tenantID {
		return errs.ErrNotFound
	}
	o.FulfillmentState = status
	r.store.Orders[orderID] = o

	return nil
}

func (r *orderRepo) SetPaymentStatus(_ context.Context, tenantID string, orderID int64, status transaction.PaymentStatus) error {
	o, ok := r.store.Orders[orderID]
	if !ok || o.TenantID != tenantID {
		return errs.ErrNotFound
	}
	o.PaymentStatus = status
	r.store.Orders[orderID] = o

	return nil
}

func (r *orderRepo) AppendInternalNote(_ context.Context, tenantID string, orderID int64, note string) error {
	o, ok := r.store.Orders[orderID]
	if !ok || o.TenantID != tenantID {
		return errs.ErrNotFound
	}
	o.InternalNotes = append(o.InternalNotes, note)
	r.store.Orders[orderID] = o

	return nil
}

type lineRepo struct {
	store *Store
}

func (r *lineRepo) BulkInsert(_ context.Context, lines []orderline.OrderLine) ([]orderline.OrderLine, error) {
	out := make([]orderline.OrderLine, 0, len(lines))
	for _, l := range lines {
		l.ID = r.store.NextLineID
		r.store.NextLineID++
		r.store.Lines[l.ID] = l
		out = append(out, l)
	}

	return out, nil
}

func (r *lineRepo) ListByOrder(_ context.Context, tenantID string, orderID int64) ([]orderline.OrderLine, error) {
	var out []orderline.OrderLine
	for id := int64(1); id < r.store.NextLineID; id++ {
		if l, ok := r.store.Lines[id]; ok && l.TenantID == tenantID && l.OrderID == orderID {
			out = append(out, l)
		}
	}

	return out, nil
}

func (r *lineRepo) ListByOrders(ctx context.Context, tenantID string, orderIDs []int64) ([]orderline.OrderLine, error) {
	var out []orderline.OrderLine
	for _, orderID := range orderIDs {
		lines, err := r.ListByOrder(ctx, tenantID, orderID)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *lineRepo) ListByOrderForUpdate(ctx context.Context, tenantID string, orderID int64) ([]orderline.OrderLine, error) {
	return r.ListByOrder(ctx, tenantID, orderID)
}

func (r *lineRepo) SetQuantityFulfilled(_ context.Context, tenantID string, lineID int64, quantity int) error {
	l, ok := r.store.Lines[lineID]
	if !ok || l.TenantID != tenantID {
		return errs.ErrNotFound
	}
	l.QuantityFulfilled = quantity
	r.store.Lines[lineID] = l

	return nil
}

type fulfillmentRepo struct {
	store *Store
}

func (r *fulfillmentRepo) Insert(_ context.Context, f fulfillment.Fulfillment) (*fulfillment.Fulfillment, error) {
	f.ID = r.store.NextFulfillmentID
	r.store.NextFulfillmentID++
	for i := range f.Lines {
		f.Lines[i].FulfillmentID = f.ID
	}
	r.store.Fulfillments[f.ID] = cloneFulfillment(f)

	return &f, nil
}

func (r *fulfillmentRepo) Get(_ context.Context, tenantID string, fulfillmentID int64) (*fulfillment.Fulfillment, error) {
	f, ok := r.store.Fulfillments[fulfillmentID]
	if !ok || f.TenantID != tenantID {
		return nil, errs.ErrNotFound
	}
	cp := cloneFulfillment(f)

	return &cp, nil
}

func (r *fulfillmentRepo) GetForUpdate(ctx context.Context, tenantID string, fulfillmentID int64) (*fulfillment.Fulfillment, error) {
	return r.Get(ctx, tenantID, fulfillmentID)
}

func (r *fulfillmentRepo) ListByOrder(_ context.Context, tenantID string, orderID int64) ([]fulfillment.Fulfillment, error) {
	var out []fulfillment.Fulfillment
	for id := int64(1); id < r.store.NextFulfillmentID; id++ {
		if f, ok := r.store.Fulfillments[id]; ok && f.TenantID == tenantID && f.OrderID == orderID {
			f.ID = id
			out = append(out, cloneFulfillment(f))
		}
	}

	return out, nil
}

func (r *fulfillmentRepo) SetStatus(_ context.Context, tenantID string, fulfillmentID int64, status fulfillment.Status) error {
	f, ok := r.store.Fulfillments[fulfillmentID]
	if !ok || f.TenantID != tenantID {
		return errs.ErrNotFound
	}
	f.Status = status
	r.store.Fulfillments[fulfillmentID] = f

	return nil
}

func (r *fulfillmentRepo) SetTracking(_ context.Context, tenantID string, fulfillmentID int64, number, url, carrier string) error {
	f, ok := r.store.Fulfillments[fulfillmentID]
	if !ok || f.TenantID != tenantID {
		return errs.ErrNotFound
	}
	f.TrackingNumber = number
	f.TrackingURL = url
	f.Carrier = carrier
	r.store.Fulfillments[fulfillmentID] = f

	return nil
}

type transactionRepo struct {
	store *Store
}

func (r *transactionRepo) Insert(_ context.Context, tx transaction.Transaction) (*transaction.Transaction, error) {
	tx.ID = r.store.NextTransactionID
	r.store.NextTransactionID++
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = r.store.Clock()
	}
	r.store.Transactions = append(r.store.Transactions, tx)

	return &tx, nil
}

func (r *transactionRepo) ListByOrder(_ context.Context, tenantID string, orderID int64) ([]transaction.Transaction, error) {
	var out []transaction.Transaction
	for _, tx := range r.store.Transactions {
		if tx.TenantID == tenantID && tx.OrderID == orderID {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return out, nil
}

type invoiceRepo struct {
	store *Store
}

func (r *invoiceRepo) Insert(_ context.Context, inv invoice.Invoice) (*invoice.Invoice, error) {
	inv.ID = r.store.NextInvoiceID
	r.store.NextInvoiceID++
	r.store.Invoices[inv.ID] = inv

	return &inv, nil
}

func (r *invoiceRepo) Get(_ context.Context, tenantID string, invoiceID int64) (*invoice.Invoice, error) {
	inv, ok := r.store.Invoices[invoiceID]
	if !ok || inv.TenantID != tenantID {
		return nil, errs.ErrNotFound
	}

	return &inv, nil
}

func (r *invoiceRepo) GetForUpdate(ctx context.Context, tenantID string, invoiceID int64) (*invoice.Invoice, error) {
	return r.Get(ctx, tenantID, invoiceID)
}

func (r *invoiceRepo) ListByOrder(_ context.Context, tenantID string, orderID int64) ([]invoice.Invoice, error) {
	var out []invoice.Invoice
	for id := int64(1); id < r.store.NextInvoiceID; id++ {
		if inv, ok := r.store.Invoices[id]; ok && inv.TenantID == tenantID && inv.OrderID == orderID {
			out = append(out, inv)
		}
	}

	return out, nil
}

func (r *invoiceRepo) SetStatus(_ context.Context, tenantID string, invoiceID int64, status invoice.Status, sentAt *time.Time) error {
	inv, ok := r.store.Invoices[invoiceID]
	if !ok || inv.TenantID != tenantID {
		return errs.ErrNotFound
	}
	inv.Status = status
	if sentAt != nil {
		inv.SentAt = sentAt
	}
	r.store.Invoices[invoiceID] = inv

	return nil
}

func (r *invoiceRepo) NextNumber(_ context.Context, tenantID string) (int64, error) {
	r.store.InvoiceSeq[tenantID]++

	return r.store.InvoiceSeq[tenantID], nil
}

func containsInt64(xs []int64, x int64) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}

	return false
}

func containsStatus(xs []order.Status, x order.Status) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}

	return false
}
