package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lossdesk/lossdesk/internal/platform/db"
	"github.com/lossdesk/lossdesk/internal/platform/httpx"
)

// Repository persists loss events in PostgreSQL.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id uuid.UUID) (LossEvent, error)
	List(ctx context.Context, req ListEventsRequest) ([]LossEvent, int, error)
	Create(ctx context.Context, ev LossEvent) (LossEvent, error)
	Update(ctx context.Context, ev LossEvent) (LossEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status EventStatus, approvedBy *int64, decidedAt *time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const eventColumns = `id, occurred_at, product_id, category_id, type, quantity, unit, cost_price, sale_price, reason, status, created_by, approved_by, decided_at, created_at, updated_at`

func scanEvent(row pgx.Row) (LossEvent, error) {
	var ev LossEvent
	var status, eventType string
	err := row.Scan(&ev.ID, &ev.OccurredAt, &ev.ProductID, &ev.CategoryID, &eventType, &ev.Quantity, &ev.Unit,
		&ev.CostPrice, &ev.SalePrice, &ev.Reason, &status, &ev.CreatedBy, &ev.ApprovedBy, &ev.DecidedAt,
		&ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return LossEvent{}, err
	}
	ev.Status = EventStatus(status)
	ev.Type = EventType(eventType)
	return ev, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (LossEvent, error) {
	ev, err := scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM loss_events WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LossEvent{}, httpx.ErrNotFound
		}
		return LossEvent{}, err
	}
	return ev, nil
}

func (r *repository) List(ctx context.Context, req ListEventsRequest) ([]LossEvent, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(*req.Status))
		argPos++
	}
	if req.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argPos))
		args = append(args, string(*req.Type))
		argPos++
	}
	if req.CreatedBy != nil {
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", argPos))
		args = append(args, *req.CreatedBy)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM loss_events`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM loss_events%s ORDER BY occurred_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		eventColumns, where, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []LossEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, ev)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, ev LossEvent) (LossEvent, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO loss_events
(id, occurred_at, product_id, category_id, type, quantity, unit, cost_price, sale_price, reason, status, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
RETURNING created_at, updated_at`,
		ev.ID, ev.OccurredAt, ev.ProductID, ev.CategoryID, string(ev.Type), ev.Quantity, ev.Unit,
		ev.CostPrice, ev.SalePrice, ev.Reason, string(ev.Status), ev.CreatedBy).
		Scan(&ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return LossEvent{}, err
	}
	return ev, nil
}

func (r *repository) Update(ctx context.Context, ev LossEvent) (LossEvent, error) {
	err := r.db.QueryRow(ctx, `UPDATE loss_events SET
	occurred_at=$2, type=$3, quantity=$4, unit=$5, reason=$6, updated_at=NOW()
WHERE id=$1 RETURNING updated_at`,
		ev.ID, ev.OccurredAt, string(ev.Type), ev.Quantity, ev.Unit, ev.Reason).
		Scan(&ev.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LossEvent{}, httpx.ErrNotFound
		}
		return LossEvent{}, err
	}
	return ev, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status EventStatus, approvedBy *int64, decidedAt *time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE loss_events SET
	status=$2,
	approved_by=COALESCE($3, approved_by),
	decided_at=COALESCE($4, decided_at),
	updated_at=NOW()
WHERE id=$1`, id, string(status), approvedBy, decidedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM loss_events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
