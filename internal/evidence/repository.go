package evidence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lossdesk/lossdesk/internal/platform/httpx"
)

// Repository persists evidence photos.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (Photo, error)
	List(ctx context.Context, req ListPhotosRequest) ([]Photo, int, error)
	Create(ctx context.Context, p Photo) (Photo, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DetachEvent(ctx context.Context, eventID uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const photoColumns = `id, url, event_id, product_id, reason, uploaded_by, created_at`

func scanPhoto(row pgx.Row) (Photo, error) {
	var p Photo
	err := row.Scan(&p.ID, &p.URL, &p.EventID, &p.ProductID, &p.Reason, &p.UploadedBy, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Photo{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Photo, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+photoColumns+` FROM evidence_photos WHERE id=$1`, id)
	return scanPhoto(row)
}

func (r *repository) List(ctx context.Context, req ListPhotosRequest) ([]Photo, int, error) {
	var (
		where []string
		args  []any
	)
	if req.EventID != nil {
		args = append(args, *req.EventID)
		where = append(where, fmt.Sprintf("event_id = $%d", len(args)))
	}
	if req.ProductID != nil {
		args = append(args, *req.ProductID)
		where = append(where, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if req.Unlinked {
		where = append(where, "event_id IS NULL AND product_id IS NULL")
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM evidence_photos`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, req.Offset)
	query := fmt.Sprintf(`SELECT %s FROM evidence_photos%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		photoColumns, clause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, 0, err
		}
		photos = append(photos, p)
	}
	return photos, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Photo) (Photo, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO evidence_photos (id, url, event_id, product_id, reason, uploaded_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
RETURNING `+photoColumns, p.ID, p.URL, p.EventID, p.ProductID, p.Reason, p.UploadedBy)
	return scanPhoto(row)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM evidence_photos WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// DetachEvent nullifies the event link on every photo of a deleted event.
func (r *repository) DetachEvent(ctx context.Context, eventID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE evidence_photos SET event_id = NULL WHERE event_id=$1`, eventID)
	return err
}
