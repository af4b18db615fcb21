package postgresrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/commercekit/oms/internal/dal/postgres"
	"github.com/commercekit/oms/internal/service/models/errs"
	"github.com/commercekit/oms/internal/service/models/orderline"
)

var lineColumns = []string{
	"id",
	"tenant_id",
	"order_id",
	"product_id",
	"product_name",
	"sku",
	"image_url",
	"quantity",
	"quantity_fulfilled",
	"unit_price",
	"total_price",
	"tax_amount",
	"discount_amount",
	"created_at",
	"updated_at",
}

// OrderLineDal represents the order line data access layer model.
type OrderLineDal struct {
	Id                int64
	TenantId          string
	OrderId           int64
	ProductId         int64
	ProductName       string
	Sku               string
	ImageUrl          string
	Quantity          int
	QuantityFulfilled int
	UnitPrice         decimal.Decimal
	TotalPrice        decimal.Decimal
	TaxAmount         decimal.Decimal
	DiscountAmount    decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (l *OrderLineDal) scanFrom(row pgx.Row) error {
	return row.Scan(
		&l.Id,
		&l.TenantId,
		&l.OrderId,
		&l.ProductId,
		&l.ProductName,
		&l.Sku,
		&l.ImageUrl,
		&l.Quantity,
		&l.QuantityFulfilled,
		&l.UnitPrice,
		&l.TotalPrice,
		&l.TaxAmount,
		&l.DiscountAmount,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
}

// ToModel converts OrderLineDal to the service layer model.
func (l *OrderLineDal) ToModel() orderline.OrderLine {
	return orderline.OrderLine{
		ID:                l.Id,
		TenantID:          l.TenantId,
		OrderID:           l.OrderId,
		ProductID:         l.ProductId,
		ProductName:       l.ProductName,
		SKU:               l.Sku,
		ImageURL:          l.ImageUrl,
		Quantity:          l.Quantity,
		QuantityFulfilled: l.QuantityFulfilled,
		UnitPrice:         l.UnitPrice,
		TotalPrice:        l.TotalPrice,
		TaxAmount:         l.TaxAmount,
		DiscountAmount:    l.DiscountAmount,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

type PostgresOrderLineRepository struct {
	conn postgres.DBTX
}

func NewPostgresOrderLineRepository(conn postgres.DBTX) *PostgresOrderLineRepository {
	return &PostgresOrderLineRepository{
		conn: conn,
	}
}

// BulkInsert inserts multiple order lines and returns them with assigned ids.
func (r *PostgresOrderLineRepository) BulkInsert(ctx context.Context, lines []orderline.OrderLine) ([]orderline.OrderLine, error) {
	if len(lines) == 0 {
		return []orderline.OrderLine{}, nil
	}

	builder := sq.Insert("order_lines").
		Columns(lineColumns[1:]...).
		Suffix("RETURNING " + strings.Join(lineColumns, ", ")).
		PlaceholderFormat(sq.Dollar)

	for _, l := range lines {
		builder = builder.Values(
			l.TenantID,
			l.OrderID,
			l.ProductID,
			l.ProductName,
			l.SKU,
			l.ImageURL,
			l.Quantity,
			l.QuantityFulfilled,
			l.UnitPrice,
			l.TotalPrice,
			l.TaxAmount,
			l.DiscountAmount,
			l.CreatedAt,
			l.UpdatedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert order lines: %w", err)
	}
	defer rows.Close()

	result := make([]orderline.OrderLine, 0, len(lines))
	for rows.Next() {
		var dal OrderLineDal
		if err := dal.scanFrom(rows); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// ListByOrder retrieves all lines of one order.
func (r *PostgresOrderLineRepository) ListByOrder(ctx context.Context, tenantID string, orderID int64) ([]orderline.OrderLine, error) {
	return r.list(ctx, tenantID, []int64{orderID}, false)
}

// ListByOrderForUpdate retrieves all lines of one order with row locks, so
// concurrent reservations against the same lines serialize.
func (r *PostgresOrderLineRepository) ListByOrderForUpdate(ctx context.Context, tenantID string, orderID int64) ([]orderline.OrderLine, error) {
	return r.list(ctx, tenantID, []int64{orderID}, true)
}

// ListByOrders retrieves lines for a set of orders.
func (r *PostgresOrderLineRepository) ListByOrders(ctx context.Context, tenantID string, orderIDs []int64) ([]orderline.OrderLine, error) {
	return r.list(ctx, tenantID, orderIDs, false)
}

func (r *PostgresOrderLineRepository) list(ctx context.Context, tenantID string, orderIDs []int64, forUpdate bool) ([]orderline.OrderLine, error) {
	builder := sq.Select(lineColumns...).
		From("order_lines").
		Where(sq.Eq{"tenant_id": tenantID, "order_id": orderIDs}).
		OrderBy("id").
		PlaceholderFormat(sq.Dollar)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var result []orderline.OrderLine
	for rows.Next() {
		var dal OrderLineDal
		if err := dal.scanFrom(rows); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// SetQuantityFulfilled stores the line's new fulfilled quantity.
func (r *PostgresOrderLineRepository) SetQuantityFulfilled(ctx context.Context, tenantID string, lineID int64, quantity int) error {
	query, args, err := sq.Update("order_lines").
		Set("quantity_fulfilled", quantity).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"tenant_id": tenantID, "id": lineID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}

	return nil
}
