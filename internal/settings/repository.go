package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the settings row in PostgreSQL.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) (Settings, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Get loads the settings row, falling back to defaults when none exists.
func (r *PGRepository) Get(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `SELECT lock_approved_events, allow_employee_gallery, store_name, export_footer, updated_at
FROM settings WHERE id = 1`).Scan(&s.LockApprovedEvents, &s.AllowEmployeeGallery, &s.StoreName, &s.ExportFooter, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Defaults(), nil
		}
		return Settings{}, err
	}
	return s, nil
}

// Save upserts the settings row and returns the stored value.
func (r *PGRepository) Save(ctx context.Context, s Settings) (Settings, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO settings (id, lock_approved_events, allow_employee_gallery, store_name, export_footer, updated_at)
VALUES (1, $1, $2, $3, $4, NOW())
ON CONFLICT (id) DO UPDATE SET
	lock_approved_events = EXCLUDED.lock_approved_events,
	allow_employee_gallery = EXCLUDED.allow_employee_gallery,
	store_name = EXCLUDED.store_name,
	export_footer = EXCLUDED.export_footer,
	updated_at = NOW()
RETURNING updated_at`, s.LockApprovedEvents, s.AllowEmployeeGallery, s.StoreName, s.ExportFooter).Scan(&s.UpdatedAt)
	if err != nil {
		return Settings{}, err
	}
	return s, nil
}
