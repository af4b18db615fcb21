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
	"github.com/commercekit/oms/internal/service/models/currency"
	"github.com/commercekit/oms/internal/service/models/transaction"
)

var transactionColumns = []string{
	"id",
	"tenant_id",
	"order_id",
	"type",
	"status",
	"amount",
	"currency",
	"payment_method",
	"gateway_reference",
	"metadata",
	"created_at",
}

// TransactionDal represents the transaction data access layer model.
type TransactionDal struct {
	Id               int64
	TenantId         string
	OrderId          int64
	Type             string
	Status           string
	Amount           decimal.Decimal
	Currency         string
	PaymentMethod    string
	GatewayReference string
	Metadata         map[string]string
	CreatedAt        time.Time
}

func (t *TransactionDal) scanFrom(row pgx.Row) error {
	return row.Scan(
		&t.Id,
		&t.TenantId,
		&t.OrderId,
		&t.Type,
		&t.Status,
		&t.Amount,
		&t.Currency,
		&t.PaymentMethod,
		&t.GatewayReference,
		&t.Metadata,
		&t.CreatedAt,
	)
}

// ToModel converts TransactionDal to the service layer model.
func (t *TransactionDal) ToModel() (*transaction.Transaction, error) {
	typ, err := transaction.ParseType(t.Type)
	if err != nil {
		return nil, err
	}
	status, err := transaction.ParseStatus(t.Status)
	if err != nil {
		return nil, err
	}
	cur, err := currency.ParseCurrency(t.Currency)
	if err != nil {
		return nil, err
	}

	return &transaction.Transaction{
		ID:               t.Id,
		TenantID:         t.TenantId,
		OrderID:          t.OrderId,
		Type:             typ,
		Status:           status,
		Amount:           t.Amount,
		Currency:         cur,
		PaymentMethod:    t.PaymentMethod,
		GatewayReference: t.GatewayReference,
		Metadata:         t.Metadata,
		CreatedAt:        t.CreatedAt,
	}, nil
}

type PostgresTransactionRepository struct {
	conn postgres.DBTX
}

func NewPostgresTransactionRepository(conn postgres.DBTX) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{
		conn: conn,
	}
}

// Insert appends one transaction to the ledger.
func (r *PostgresTransactionRepository) Insert(ctx context.Context, tx transaction.Transaction) (*transaction.Transaction, error) {
	query, args, err := sq.Insert("transactions").
		Columns(transactionColumns[1:]...).
		Values(
			tx.TenantID,
			tx.OrderID,
			string(tx.Type),
			string(tx.Status),
			tx.Amount,
			tx.Currency.String(),
			tx.PaymentMethod,
			tx.GatewayReference,
			tx.Metadata,
			tx.CreatedAt,
		).
		Suffix("RETURNING " + strings.Join(transactionColumns, ", ")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	var dal TransactionDal
	if err := dal.scanFrom(r.conn.QueryRow(ctx, query, args...)); err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return nil, fmt.Errorf("failed to convert transaction dal to model: %w", err)
	}

	return model, nil
}

// ListByOrder retrieves the order's full ledger ordered by creation time.
func (r *PostgresTransactionRepository) ListByOrder(ctx context.Context, tenantID string, orderID int64) ([]transaction.Transaction, error) {
	query, args, err := sq.Select(transactionColumns...).
		From("transactions").
		Where(sq.Eq{"tenant_id": tenantID, "order_id": orderID}).
		OrderBy("created_at", "id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var result []transaction.Transaction
	for rows.Next() {
		var dal TransactionDal
		if err := dal.scanFrom(rows); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert transaction dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
