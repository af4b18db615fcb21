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
	"github.com/commercekit/oms/internal/service/models/fulfillment"
)

var fulfillmentColumns = []string{
	"id",
	"tenant_id",
	"order_id",
	"status",
	"tracking_number",
	"tracking_url",
	"carrier",
	"created_at",
	"updated_at",
}

// FulfillmentDal represents the fulfillment data access layer model.
type FulfillmentDal struct {
	Id             int64
	TenantId       string
	OrderId        int64
	Status         string
	TrackingNumber string
	TrackingUrl    string
	Carrier        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (f *FulfillmentDal) scanFrom(row pgx.Row) error {
	return row.Scan(
		&f.Id,
		&f.TenantId,
		&f.OrderId,
		&f.Status,
		&f.TrackingNumber,
		&f.TrackingUrl,
		&f.Carrier,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
}

// ToModel converts FulfillmentDal to the service layer model. Lines are
// populated separately.
func (f *FulfillmentDal) ToModel() (*fulfillment.Fulfillment, error) {
	status, err := fulfillment.ParseStatus(f.Status)
	if err != nil {
		return nil, err
	}

	return &fulfillment.Fulfillment{
		ID:             f.Id,
		TenantID:       f.TenantId,
		OrderID:        f.OrderId,
		Status:         status,
		TrackingNumber: f.TrackingNumber,
		TrackingURL:    f.TrackingUrl,
		Carrier:        f.Carrier,
		Lines:          []fulfillment.Line{},
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}, nil
}

type PostgresFulfillmentRepository struct {
	conn postgres.DBTX
}

func NewPostgresFulfillmentRepository(conn postgres.DBTX) *PostgresFulfillmentRepository {
	return &PostgresFulfillmentRepository{
		conn: conn,
	}
}

// Insert creates a fulfillment together with its lines.
func (r *PostgresFulfillmentRepository) Insert(ctx context.Context, f fulfillment.Fulfillment) (*fulfillment.Fulfillment, error) {
	query, args, err := sq.Insert("fulfillments").
		Columns(fulfillmentColumns[1:]...).
		Values(
			f.TenantID,
			f.OrderID,
			string(f.Status),
			f.TrackingNumber,
			f.TrackingURL,
			f.Carrier,
			f.CreatedAt,
			f.UpdatedAt,
		).
		Suffix("RETURNING " + strings.Join(fulfillmentColumns, ", ")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	var dal FulfillmentDal
	if err := dal.scanFrom(r.conn.QueryRow(ctx, query, args...)); err != nil {
		return nil, fmt.Errorf("failed to insert fulfillment: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return nil, fmt.Errorf("failed to convert fulfillment dal to model: %w", err)
	}

	if len(f.Lines) > 0 {
		lineBuilder := sq.Insert("fulfillment_lines").
			Columns("fulfillment_id", "order_line_id", "quantity").
			Suffix("RETURNING id, fulfillment_id, order_line_id, quantity").
			PlaceholderFormat(sq.Dollar)
		for _, line := range f.Lines {
			lineBuilder = lineBuilder.Values(model.ID, line.OrderLineID, line.Quantity)
		}

		query, args, err := lineBuilder.ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build line insert query: %w", err)
		}

		rows, err := r.conn.Query(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to insert fulfillment lines: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var line fulfillment.Line
			if err := rows.Scan(&line.ID, &line.FulfillmentID, &line.OrderLineID, &line.Quantity); err != nil {
				return nil, fmt.Errorf("failed to scan fulfillment line: %w", err)
			}
			model.Lines = append(model.Lines, line)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows iteration error: %w", err)
		}
	}

	return model, nil
}

// Get retrieves one fulfillment with its lines.
func (r *PostgresFulfillmentRepository) Get(ctx context.Context, tenantID string, fulfillmentID int64) (*fulfillment.Fulfillment, error) {
	return r.get(ctx, tenantID, fulfillmentID, false)
}

// GetForUpdate retrieves one fulfillment with its lines and locks its row.
func (r *PostgresFulfillmentRepository) GetForUpdate(ctx context.Context, tenantID string, fulfillmentID int64) (*fulfillment.Fulfillment, error) {
	return r.get(ctx, tenantID, fulfillmentID, true)
}

func (r *PostgresFulfillmentRepository) get(ctx context.Context, tenantID string, fulfillmentID int64, forUpdate bool) (*fulfillment.Fulfillment, error) {
	builder := sq.Select(fulfillmentColumns...).
		From("fulfillments").
		Where(sq.Eq{"tenant_id": tenantID, "id": fulfillmentID}).
		PlaceholderFormat(sq.Dollar)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal FulfillmentDal
	if err := dal.scanFrom(r.conn.QueryRow(ctx, query, args...)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query fulfillment: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return nil, fmt.Errorf("failed to convert fulfillment dal to model: %w", err)
	}

	lines, err := r.listLines(ctx, []int64{model.ID})
	if err != nil {
		return nil, err
	}
	model.Lines = lines[model.ID]

	return model, nil
}

// ListByOrder retrieves all fulfillments of one order with their lines.
func (r *PostgresFulfillmentRepository) ListByOrder(ctx context.Context, tenantID string, orderID int64) ([]fulfillment.Fulfillment, error) {
	query, args, err := sq.Select(fulfillmentColumns...).
		From("fulfillments").
		Where(sq.Eq{"tenant_id": tenantID, "order_id": orderID}).
		OrderBy("id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fulfillments: %w", err)
	}
	defer rows.Close()

	var result []fulfillment.Fulfillment
	var ids []int64
	for rows.Next() {
		var dal FulfillmentDal
		if err := dal.scanFrom(rows); err != nil {
			return nil, fmt.Errorf("failed to scan fulfillment: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert fulfillment dal to model: %w", err)
		}
		result = append(result, *model)
		ids = append(ids, model.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if len(ids) > 0 {
		lines, err := r.listLines(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range result {
			result[i].Lines = lines[result[i].ID]
		}
	}

	return result, nil
}

func (r *PostgresFulfillmentRepository) listLines(ctx context.Context, fulfillmentIDs []int64) (map[int64][]fulfillment.Line, error) {
	query, args, err := sq.Select("id", "fulfillment_id", "order_line_id", "quantity").
		From("fulfillment_lines").
		Where(sq.Eq{"fulfillment_id": fulfillmentIDs}).
		OrderBy("id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build line select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fulfillment lines: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]fulfillment.Line)
	for rows.Next() {
		var line fulfillment.Line
		if err := rows.Scan(&line.ID, &line.FulfillmentID, &line.OrderLineID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan fulfillment line: %w", err)
		}
		result[line.FulfillmentID] = append(result[line.FulfillmentID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// SetStatus stores the fulfillment's new status.
func (r *PostgresFulfillmentRepository) SetStatus(ctx context.Context, tenantID string, fulfillmentID int64, status fulfillment.Status) error {
	query, args, err := sq.Update("fulfillments").
		Set("status", string(status)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"tenant_id": tenantID, "id": fulfillmentID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update fulfillment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// SetTracking stores the fulfillment's carrier metadata.
func (r *PostgresFulfillmentRepository) SetTracking(ctx context.Context, tenantID string, fulfillmentID int64, number, url, carrier string) error {
	query, args, err := sq.Update("fulfillments").
		Set("tracking_number", number).
		Set("tracking_url", url).
		Set("carrier", carrier).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"tenant_id": tenantID, "id": fulfillmentID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update fulfillment tracking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}

	return nil
}
