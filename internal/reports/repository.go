package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lossdesk/lossdesk/internal/events"
)

// Repository runs the aggregation queries and keeps export batch records.
type Repository interface {
	Dashboard(ctx context.Context, req DashboardRequest) (Dashboard, error)
	CreateBatch(ctx context.Context, batch ExportBatch) (ExportBatch, error)
	ListBatches(ctx context.Context, limit, offset int) ([]ExportBatch, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Dashboard(ctx context.Context, req DashboardRequest) (Dashboard, error) {
	out := Dashboard{From: req.From, To: req.To}

	row := r.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(quantity * cost_price), 0)
FROM loss_events
WHERE occurred_at >= $1 AND occurred_at < $2`, req.From, req.To)
	if err := row.Scan(&out.TotalCount, &out.TotalCostImpact); err != nil {
		return Dashboard{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT date_trunc('day', occurred_at) AS day,
       COUNT(*), COALESCE(SUM(quantity), 0), COALESCE(SUM(quantity * cost_price), 0)
FROM loss_events
WHERE occurred_at >= $1 AND occurred_at < $2
GROUP BY day
ORDER BY day`, req.From, req.To)
	if err != nil {
		return Dashboard{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var b DayBucket
		if err := rows.Scan(&b.Day, &b.Count, &b.Quantity, &b.CostImpact); err != nil {
			return Dashboard{}, err
		}
		out.ByDay = append(out.ByDay, b)
	}
	if err := rows.Err(); err != nil {
		return Dashboard{}, err
	}

	catRows, err := r.pool.Query(ctx, `SELECT e.category_id, COALESCE(c.name, 'Uncategorised'),
       COUNT(*), COALESCE(SUM(e.quantity * e.cost_price), 0)
FROM loss_events e
LEFT JOIN categories c ON c.id = e.category_id
WHERE e.occurred_at >= $1 AND e.occurred_at < $2
GROUP BY e.category_id, c.name
ORDER BY 4 DESC`, req.From, req.To)
	if err != nil {
		return Dashboard{}, err
	}
	defer catRows.Close()
	for catRows.Next() {
		var b CategoryBucket
		if err := catRows.Scan(&b.CategoryID, &b.CategoryName, &b.Count, &b.CostImpact); err != nil {
			return Dashboard{}, err
		}
		out.ByCategory = append(out.ByCategory, b)
	}
	if err := catRows.Err(); err != nil {
		return Dashboard{}, err
	}

	statusRows, err := r.pool.Query(ctx, `SELECT status, COUNT(*), COALESCE(SUM(quantity * cost_price), 0)
FROM loss_events
WHERE occurred_at >= $1 AND occurred_at < $2
GROUP BY status
ORDER BY status`, req.From, req.To)
	if err != nil {
		return Dashboard{}, err
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var b StatusBucket
		var status string
		if err := statusRows.Scan(&status, &b.Count, &b.CostImpact); err != nil {
			return Dashboard{}, err
		}
		b.Status = events.EventStatus(status)
		out.ByStatus = append(out.ByStatus, b)
	}
	return out, statusRows.Err()
}

func (r *repository) CreateBatch(ctx context.Context, batch ExportBatch) (ExportBatch, error) {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `INSERT INTO export_batches (id, kind, event_count, total_cost, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
RETURNING created_at`, batch.ID, string(batch.Kind), batch.EventCount, batch.TotalCost, batch.CreatedBy)
	var createdAt time.Time
	if err := row.Scan(&createdAt); err != nil {
		return ExportBatch{}, err
	}
	batch.CreatedAt = createdAt
	return batch, nil
}

func (r *repository) ListBatches(ctx context.Context, limit, offset int) ([]ExportBatch, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM export_batches`).Scan(&total); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT id, kind, event_count, total_cost, created_by, created_at
FROM export_batches ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var batches []ExportBatch
	for rows.Next() {
		var b ExportBatch
		var kind string
		if err := rows.Scan(&b.ID, &kind, &b.EventCount, &b.TotalCost, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, 0, err
		}
		b.Kind = BatchKind(kind)
		batches = append(batches, b)
	}
	return batches, total, rows.Err()
}
