package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"rentool-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func toolRows(tools ...domain.Tool) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "day_rate_cents", "stock_quantity", "created_on", "updated_on"})
	for _, t := range tools {
		rows.AddRow(t.ID, t.Name, t.DayRateCents, t.StockQuantity, t.CreatedOn, t.UpdatedOn)
	}
	return rows
}

func TestToolRepositoryGetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		store, mock := newMockDB(t)
		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta(`FROM tools WHERE id = $1`)).
			WithArgs(int32(3)).
			WillReturnRows(toolRows(domain.Tool{
				ID: 3, Name: "Tile Saw", DayRateCents: 10000, StockQuantity: 5,
				CreatedOn: now, UpdatedOn: now,
			}))

		tool, err := store.ToolRepository.GetByID(ctx, 3)

		require.NoError(t, err)
		assert.Equal(t, "Tile Saw", tool.Name)
		assert.Equal(t, int32(10000), tool.DayRateCents)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing tool maps to not found", func(t *testing.T) {
		store, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM tools WHERE id = $1`)).
			WithArgs(int32(99)).
			WillReturnRows(toolRows())

		_, err := store.ToolRepository.GetByID(ctx, 99)

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestToolRepositoryLockByIDs(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM tools WHERE id = ANY($1) ORDER BY id FOR UPDATE`)).
		WithArgs(pq.Array([]int32{3, 5})).
		WillReturnRows(toolRows(
			domain.Tool{ID: 3, Name: "Tile Saw", DayRateCents: 10000, StockQuantity: 5, CreatedOn: now, UpdatedOn: now},
			domain.Tool{ID: 5, Name: "Hammer Drill", DayRateCents: 2500, StockQuantity: 2, CreatedOn: now, UpdatedOn: now},
		))

	tools, err := store.ToolRepository.LockByIDs(ctx, []int32{3, 5})

	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, int32(3), tools[0].ID)
	assert.Equal(t, int32(5), tools[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolRepositoryReserveStock(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements guarded by remaining stock", func(t *testing.T) {
		store, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE tools SET stock_quantity = stock_quantity - $2`)).
			WithArgs(int32(3), int32(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := store.ToolRepository.ReserveStock(ctx, 3, 2)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows means the stock no longer covers the request", func(t *testing.T) {
		store, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE tools SET stock_quantity = stock_quantity - $2`)).
			WithArgs(int32(3), int32(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.ToolRepository.ReserveStock(ctx, 3, 7)

		var stockErr *domain.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, []int32{3}, stockErr.ToolIDs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestToolRepositoryReleaseStock(t *testing.T) {
	ctx := context.Background()

	t.Run("increments", func(t *testing.T) {
		store, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE tools SET stock_quantity = stock_quantity + $2`)).
			WithArgs(int32(3), int32(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := store.ToolRepository.ReleaseStock(ctx, 3, 2)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing tool", func(t *testing.T) {
		store, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE tools SET stock_quantity = stock_quantity + $2`)).
			WithArgs(int32(99), int32(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.ToolRepository.ReleaseStock(ctx, 99, 1)

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestToolRepositoryList(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM tools`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int32(40)))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM tools ORDER BY id LIMIT $1 OFFSET $2`)).
		WithArgs(int32(25), int32(25)).
		WillReturnRows(toolRows(
			domain.Tool{ID: 26, Name: "Air Compressor", DayRateCents: 4500, StockQuantity: 3, CreatedOn: now, UpdatedOn: now},
		))

	tools, count, err := store.ToolRepository.List(ctx, 2, 25)

	require.NoError(t, err)
	assert.Equal(t, int32(40), count)
	require.Len(t, tools, 1)
	assert.Equal(t, int32(26), tools[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
