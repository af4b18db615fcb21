package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/commercekit/oms/internal/dal/postgres"
	"github.com/commercekit/oms/internal/service/models/orderevent"
)

var eventColumns = []string{
	"id",
	"tenant_id",
	"order_id",
	"type",
	"message",
	"actor_id",
	"actor_name",
	"metadata",
	"created_at",
}

// OrderEventDal represents the order event data access layer model.
type OrderEventDal struct {
	Id        int64
	TenantId  string
	OrderId   int64
	Type      string
	Message   string
	ActorId   string
	ActorName string
	Metadata  map[string]string
	CreatedAt time.Time
}

func (e *OrderEventDal) scanFrom(row pgx.Row) error {
	return row.Scan(
		&e.Id,
		&e.TenantId,
		&e.OrderId,
		&e.Type,
		&e.Message,
		&e.ActorId,
		&e.ActorName,
		&e.Metadata,
		&e.CreatedAt,
	)
}

// ToModel converts OrderEventDal to the service layer model.
func (e *OrderEventDal) ToModel() orderevent.OrderEvent {
	return orderevent.OrderEvent{
		ID:        e.Id,
		TenantID:  e.TenantId,
		OrderID:   e.OrderId,
		Type:      orderevent.Type(e.Type),
		Message:   e.Message,
		ActorID:   e.ActorId,
		ActorName: e.ActorName,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	}
}

type PostgresOrderEventRepository struct {
	conn postgres.DBTX
}

func NewPostgresOrderEventRepository(conn postgres.DBTX) *PostgresOrderEventRepository {
	return &PostgresOrderEventRepository{
		conn: conn,
	}
}

// Append writes events to the log. The log is append-only: there is no
// update or delete path anywhere in this repository.
func (r *PostgresOrderEventRepository) Append(ctx context.Context, events ...orderevent.OrderEvent) error {
	if len(events) == 0 {
		return nil
	}

	builder := sq.Insert("order_events").
		Columns(eventColumns[1:]...).
		PlaceholderFormat(sq.Dollar)
	for _, ev := range events {
		builder = builder.Values(
			ev.TenantID,
			ev.OrderID,
			string(ev.Type),
			ev.Message,
			ev.ActorID,
			ev.ActorName,
			ev.Metadata,
			ev.CreatedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to append order events: %w", err)
	}

	return nil
}

// ListByOrder retrieves the order's events ordered by creation time.
func (r *PostgresOrderEventRepository) ListByOrder(ctx context.Context, tenantID string, orderID int64) ([]orderevent.OrderEvent, error) {
	query, args, err := sq.Select(eventColumns...).
		From("order_events").
		Where(sq.Eq{"tenant_id": tenantID, "order_id": orderID}).
		OrderBy("created_at", "id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order events: %w", err)
	}
	defer rows.Close()

	var result []orderevent.OrderEvent
	for rows.Next() {
		var dal OrderEventDal
		if err := dal.scanFrom(rows); err != nil {
			return nil, fmt.Errorf("failed to scan order event: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
