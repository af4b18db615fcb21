package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/commercekit/oms/internal/dal/postgres"
	"github.com/commercekit/oms/internal/service/models/errs"
	"github.com/commercekit/oms/internal/service/models/invoice"
)

var invoiceColumns = []string{
	"id",
	"tenant_id",
	"order_id",
	"invoice_number",
	"status",
	"document_url",
	"sent_at",
	"created_at",
	"updated_at",
}

// InvoiceDal represents the invoice data access layer model.
type InvoiceDal struct {
	Id            int64
	TenantId      string
	OrderId       int64
	InvoiceNumber string
	Status        string
	DocumentUrl   string
	SentAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (i *InvoiceDal) scanFrom(row pgx.Row) error {
	return row.Scan(
		&i.Id,
		&i.TenantId,
		&i.OrderId,
		&i.InvoiceNumber,
		&i.Status,
		&i.DocumentUrl,
		&i.SentAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
}

// ToModel converts InvoiceDal to the service layer model.
func (i *InvoiceDal) ToModel() (*invoice.Invoice, error) {
	status, err := invoice.ParseStatus(i.Status)
	if err != nil {
		return nil, err
	}

	return &invoice.Invoice{
		ID:          i.Id,
		TenantID:    i.TenantId,
		OrderID:     i.OrderId,
		Number:      i.InvoiceNumber,
		Status:      status,
		DocumentURL: i.DocumentUrl,
		SentAt:      i.SentAt,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}, nil
}

type PostgresInvoiceRepository struct {
	conn postgres.DBTX
}

func NewPostgresInvoiceRepository(conn postgres.DBTX) *PostgresInvoiceRepository {
	return &PostgresInvoiceRepository{
		conn: conn,
	}
}

// Insert creates one invoice.
func (r *PostgresInvoiceRepository) Insert(ctx context.Context, inv invoice.Invoice) (*invoice.Invoice, error) {
	query, args, err := sq.Insert("invoices").
		Columns(invoiceColumns[1:]...).
		Values(
			inv.TenantID,
			inv.OrderID,
			inv.Number,
			string(inv.Status),
			inv.DocumentURL,
			inv.SentAt,
			inv.CreatedAt,
			inv.UpdatedAt,
		).
		Suffix("RETURNING " + strings.Join(invoiceColumns, ", ")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	var dal InvoiceDal
	if err := dal.scanFrom(r.conn.QueryRow(ctx, query, args...)); err != nil {
		return nil, fmt.Errorf("failed to insert invoice: %w", err)
	}

	return dal.ToModel()
}

// Get retrieves one invoice by tenant and id.
func (r *PostgresInvoiceRepository) Get(ctx context.Context, tenantID string, invoiceID int64) (*invoice.Invoice, error) {
	return r.get(ctx, tenantID, invoiceID, false)
}

// GetForUpdate retrieves one invoice and locks its row.
func (r *PostgresInvoiceRepository) GetForUpdate(ctx context.Context, tenantID string, invoiceID int64) (*invoice.Invoice, error) {
	return r.get(ctx, tenantID, invoiceID, true)
}

func (r *PostgresInvoiceRepository) get(ctx context.Context, tenantID string, invoiceID int64, forUpdate bool) (*invoice.Invoice, error) {
	builder := sq.Select(invoiceColumns...).
		From("invoices").
		Where(sq.Eq{"tenant_id": tenantID, "id": invoiceID}).
		PlaceholderFormat(sq.Dollar)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal InvoiceDal
	if err := dal.scanFrom(r.conn.QueryRow(ctx, query, args...)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query invoice: %w", err)
	}

	return dal.ToModel()
}

// ListByOrder retrieves all invoices of one order.
func (r *PostgresInvoiceRepository) ListByOrder(ctx context.Context, tenantID string, orderID int64) ([]invoice.Invoice, error) {
	query, args, err := sq.Select(invoiceColumns...).
		From("invoices").
		Where(sq.Eq{"tenant_id": tenantID, "order_id": orderID}).
		OrderBy("id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var result []invoice.Invoice
	for rows.Next() {
		var dal InvoiceDal
		if err := dal.scanFrom(rows); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert invoice dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// SetStatus stores the invoice's new status and, when provided, its sent
// timestamp.
func (r *PostgresInvoiceRepository) SetStatus(ctx context.Context, tenantID string, invoiceID int64, status invoice.Status, sentAt *time.Time) error {
	builder := sq.Update("invoices").
		Set("status", string(status)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"tenant_id": tenantID, "id": invoiceID}).
		PlaceholderFormat(sq.Dollar)
	if sentAt != nil {
		builder = builder.Set("sent_at", *sentAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// NextNumber allocates the tenant's next sequential invoice number. The
// counter row is locked by the upsert, so concurrent generations serialize.
func (r *PostgresInvoiceRepository) NextNumber(ctx context.Context, tenantID string) (int64, error) {
	const query = `
		INSERT INTO invoice_counters (tenant_id, last_seq)
		VALUES ($1, 1)
		ON CONFLICT (tenant_id)
		DO UPDATE SET last_seq = invoice_counters.last_seq + 1
		RETURNING last_seq
	`

	var seq int64
	if err := r.conn.QueryRow(ctx, query, tenantID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate invoice number: %w", err)
	}

	return seq, nil
}
