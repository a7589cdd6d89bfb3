package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rentool-backend/internal/domain"
	"rentool-backend/internal/repository"

	"github.com/lib/pq"
)

type toolRepository struct {
	db repository.DBTX
}

func NewToolRepository(db repository.DBTX) repository.ToolRepository {
	return &toolRepository{db: db}
}

const toolColumns = `id, name, day_rate_cents, stock_quantity, created_on, updated_on`

func scanTool(row interface{ Scan(...any) error }, t *domain.Tool) error {
	return row.Scan(&t.ID, &t.Name, &t.DayRateCents, &t.StockQuantity, &t.CreatedOn, &t.UpdatedOn)
}

func (r *toolRepository) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	t := &domain.Tool{}
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = $1`
	err := scanTool(r.db.QueryRowContext(ctx, query, id), t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tool %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *toolRepository) GetByIDs(ctx context.Context, ids []int32) ([]domain.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = ANY($1) ORDER BY id`
	return r.queryTools(ctx, query, pq.Array(ids))
}

// LockByIDs pins the tool rows until the ambient transaction ends, so the
// availability check and the following decrements see consistent stock.
func (r *toolRepository) LockByIDs(ctx context.Context, ids []int32) ([]domain.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	return r.queryTools(ctx, query, pq.Array(ids))
}

func (r *toolRepository) queryTools(ctx context.Context, query string, args ...any) ([]domain.Tool, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tools []domain.Tool
	for rows.Next() {
		var t domain.Tool
		if err := scanTool(rows, &t); err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, rows.Err()
}

func (r *toolRepository) List(ctx context.Context, page, pageSize int32) ([]domain.Tool, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM tools`).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT ` + toolColumns + ` FROM tools ORDER BY id LIMIT $1 OFFSET $2`
	tools, err := r.queryTools(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	return tools, count, nil
}

// ReserveStock is the ledger decrement. The stock_quantity >= qty guard
// closes the race with a concurrent booking that slipped past the
// availability check: the row is already locked, and a zero-row update
// means the remaining stock no longer covers the request.
func (r *toolRepository) ReserveStock(ctx context.Context, toolID, qty int32) error {
	query := `UPDATE tools SET stock_quantity = stock_quantity - $2, updated_on = NOW()
	          WHERE id = $1 AND stock_quantity >= $2`
	result, err := r.db.ExecContext(ctx, query, toolID, qty)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.InsufficientStockError{ToolIDs: []int32{toolID}}
	}
	return nil
}

func (r *toolRepository) ReleaseStock(ctx context.Context, toolID, qty int32) error {
	query := `UPDATE tools SET stock_quantity = stock_quantity + $2, updated_on = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, toolID, qty)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("tool %d: %w", toolID, domain.ErrNotFound)
	}
	return nil
}
