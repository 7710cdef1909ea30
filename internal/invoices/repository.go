package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lossdesk/lossdesk/internal/platform/httpx"
)

// Repository persists supplier invoices.
type Repository interface {
	Get(ctx context.Context, id int64) (Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
	Create(ctx context.Context, inv Invoice) (Invoice, error)
	Update(ctx context.Context, inv Invoice) (Invoice, error)
	Delete(ctx context.Context, id int64) error
	SetExportBatch(ctx context.Context, id int64, batchID *uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const invoiceColumns = `id, number, supplier, issue_date, total, access_key, export_batch_id, created_by, created_at, updated_at`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.Supplier, &inv.IssueDate, &inv.Total,
		&inv.AccessKey, &inv.ExportBatchID, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, httpx.ErrNotFound
	}
	return inv, err
}

func (r *repository) Get(ctx context.Context, id int64) (Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id)
	return scanInvoice(row)
}

func (r *repository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	var (
		where []string
		args  []any
	)
	if req.Supplier != "" {
		args = append(args, "%"+strings.ToLower(req.Supplier)+"%")
		where = append(where, fmt.Sprintf("LOWER(supplier) LIKE $%d", len(args)))
	}
	if req.BatchID != nil {
		args = append(args, *req.BatchID)
		where = append(where, fmt.Sprintf("export_batch_id = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, req.Offset)
	query := fmt.Sprintf(`SELECT %s FROM invoices%s ORDER BY issue_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, clause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, inv Invoice) (Invoice, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO invoices (number, supplier, issue_date, total, access_key, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
RETURNING `+invoiceColumns, inv.Number, inv.Supplier, inv.IssueDate, inv.Total, inv.AccessKey, inv.CreatedBy)
	created, err := scanInvoice(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Invoice{}, fmt.Errorf("%w: invoice %s already registered", httpx.ErrDuplicate, inv.Number)
	}
	return created, err
}

func (r *repository) Update(ctx context.Context, inv Invoice) (Invoice, error) {
	row := r.pool.QueryRow(ctx, `UPDATE invoices
SET number=$2, supplier=$3, issue_date=$4, total=$5, access_key=$6, updated_at=NOW()
WHERE id=$1
RETURNING `+invoiceColumns, inv.ID, inv.Number, inv.Supplier, inv.IssueDate, inv.Total, inv.AccessKey)
	return scanInvoice(row)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// SetExportBatch links or, with a nil batch, unlinks the invoice.
func (r *repository) SetExportBatch(ctx context.Context, id int64, batchID *uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE invoices SET export_batch_id=$2, updated_at=NOW() WHERE id=$1`, id, batchID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
