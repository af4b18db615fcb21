package postgresrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/commercekit/oms/internal/dal/postgres"
	"github.com/commercekit/oms/internal/service/models/address"
	"github.com/commercekit/oms/internal/service/models/currency"
	"github.com/commercekit/oms/internal/service/models/errs"
	"github.com/commercekit/oms/internal/service/models/order"
	"github.com/commercekit/oms/internal/service/models/transaction"
)

var orderColumns = []string{
	"id",
	"tenant_id",
	"order_number",
	"status",
	"payment_status",
	"fulfillment_status",
	"currency",
	"subtotal",
	"shipping_total",
	"tax_total",
	"discount_total",
	"total",
	"customer_id",
	"shipping_address",
	"billing_address",
	"customer_note",
	"internal_notes",
	"created_at",
	"updated_at",
}

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id                int64
	TenantId          string
	OrderNumber       string
	Status            string
	PaymentStatus     string
	FulfillmentStatus string
	Currency          string
	Subtotal          decimal.Decimal
	ShippingTotal     decimal.Decimal
	TaxTotal          decimal.Decimal
	DiscountTotal     decimal.Decimal
	Total             decimal.Decimal
	CustomerId        *int64
	ShippingAddress   []byte
	BillingAddress    []byte
	CustomerNote      string
	InternalNotes     []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (o *OrderDal) scanFrom(row pgx.Row) error {
	return row.Scan(
		&o.Id,
		&o.TenantId,
		&o.OrderNumber,
		&o.Status,
		&o.PaymentStatus,
		&o.FulfillmentStatus,
		&o.Currency,
		&o.Subtotal,
		&o.ShippingTotal,
		&o.TaxTotal,
		&o.DiscountTotal,
		&o.Total,
		&o.CustomerId,
		&o.ShippingAddress,
		&o.BillingAddress,
		&o.CustomerNote,
		&o.InternalNotes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(o.Currency)
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	var shipping, billing *address.Address
	if len(o.ShippingAddress) > 0 {
		shipping = &address.Address{}
		if err := json.Unmarshal(o.ShippingAddress, shipping); err != nil {
			return nil, fmt.Errorf("failed to decode shipping address: %w", err)
		}
	}
	if len(o.BillingAddress) > 0 {
		billing = &address.Address{}
		if err := json.Unmarshal(o.BillingAddress, billing); err != nil {
			return nil, fmt.Errorf("failed to decode billing address: %w", err)
		}
	}

	return &order.Order{
		ID:               o.Id,
		TenantID:         o.TenantId,
		Number:           o.OrderNumber,
		Status:           status,
		PaymentStatus:    transaction.PaymentStatus(o.PaymentStatus),
		FulfillmentState: order.FulfillmentStatus(o.FulfillmentStatus),
		Currency:         cur,
		Subtotal:         o.Subtotal,
		ShippingTotal:    o.ShippingTotal,
		TaxTotal:         o.TaxTotal,
		DiscountTotal:    o.DiscountTotal,
		Total:            o.Total,
		CustomerID:       o.CustomerId,
		ShippingAddress:  shipping,
		BillingAddress:   billing,
		CustomerNote:     o.CustomerNote,
		InternalNotes:    o.InternalNotes,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}, nil
}

func encodeAddress(a *address.Address) ([]byte, error) {
	if a == nil {
		return nil, nil
	}

	return json.Marshal(a)
}

type PostgresOrderRepository struct {
	conn postgres.DBTX
}

func NewPostgresOrderRepository(conn postgres.DBTX) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// BulkInsert inserts multiple orders and returns them with assigned ids.
func (r *PostgresOrderRepository) BulkInsert(ctx context.Context, orders []order.Order) ([]order.Order, error) {
	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	builder := sq.Insert("orders").
		Columns(orderColumns[1:]...).
		Suffix("RETURNING " + joinColumns(orderColumns)).
		PlaceholderFormat(sq.Dollar)

	for _, o := range orders {
		shipping, err := encodeAddress(o.ShippingAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to encode shipping address: %w", err)
		}
		billing, err := encodeAddress(o.BillingAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to encode billing address: %w", err)
		}

		builder = builder.Values(
			o.TenantID,
			o.Number,
			string(o.Status),
			string(o.PaymentStatus),
			string(o.FulfillmentState),
			o.Currency.String(),
			o.Subtotal,
			o.ShippingTotal,
			o.TaxTotal,
			o.DiscountTotal,
			o.Total,
			o.CustomerID,
			shipping,
			billing,
			o.CustomerNote,
			o.InternalNotes,
			o.CreatedAt,
			o.UpdatedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert orders: %w", err)
	}
	defer rows.Close()

	result := make([]order.Order, 0, len(orders))
	i := 0
	for rows.Next() {
		var dal OrderDal
		if err := dal.scanFrom(rows); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}

		model.Lines = orders[i].Lines
		i++

		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Get retrieves one order by tenant and id.
func (r *PostgresOrderRepository) Get(ctx context.Context, tenantID string, orderID int64) (*order.Order, error) {
	return r.get(ctx, tenantID, orderID, false)
}

// GetForUpdate retrieves one order and locks its row for the duration of the
// enclosing transaction.
func (r *PostgresOrderRepository) GetForUpdate(ctx context.Context, tenantID string, orderID int64) (*order.Order, error) {
	return r.get(ctx, tenantID, orderID, true)
}

func (r *PostgresOrderRepository) get(ctx context.Context, tenantID string, orderID int64, forUpdate bool) (*order.Order, error) {
	builder := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"tenant_id": tenantID, "id": orderID}).
		PlaceholderFormat(sq.Dollar)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal OrderDal
	if err := dal.scanFrom(r.conn.QueryRow(ctx, query, args...)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return dal.ToModel()
}

// Query retrieves orders based on filter criteria.
func (r *PostgresOrderRepository) Query(ctx context.Context, tenantID string, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("id").
		PlaceholderFormat(sq.Dollar)

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.CustomerIds) > 0 {
		builder = builder.Where(sq.Eq{"customer_id": filter.CustomerIds})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		builder = builder.Where(sq.Eq{"status": statuses})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		if err := dal.scanFrom(rows); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// SetStatus updates the operator-driven order status.
func (r *PostgresOrderRepository) SetStatus(ctx context.Context, tenantID string, orderID int64, status order.Status) error {
	return r.setColumn(ctx, tenantID, orderID, "status", string(status))
}

// SetFulfillmentStatus stores the freshly derived fulfillment status.
func (r *PostgresOrderRepository) SetFulfillmentStatus(ctx context.Context, tenantID string, orderID int64, status order.FulfillmentStatus) error {
	return r.setColumn(ctx, tenantID, orderID, "fulfillment_status", string(status))
}

// SetPaymentStatus stores the freshly derived payment status.
func (r *PostgresOrderRepository) SetPaymentStatus(ctx context.Context, tenantID string, orderID int64, status transaction.PaymentStatus) error {
	return r.setColumn(ctx, tenantID, orderID, "payment_status", string(status))
}

func (r *PostgresOrderRepository) setColumn(ctx context.Context, tenantID string, orderID int64, column, value string) error {
	query, args, err := sq.Update("orders").
		Set(column, value).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"tenant_id": tenantID, "id": orderID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// AppendInternalNote appends one note to the order's internal notes.
func (r *PostgresOrderRepository) AppendInternalNote(ctx context.Context, tenantID string, orderID int64, note string) error {
	query, args, err := sq.Update("orders").
		Set("internal_notes", sq.Expr("array_append(internal_notes, ?)", note)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"tenant_id": tenantID, "id": orderID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to append internal note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}

	return nil
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
