package repository

import (
	"context"
	"database/sql"
	"time"

	"rentool-backend/internal/domain"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository
// method can run either standalone or inside the ambient transaction
// opened by the booking orchestrator. Repositories never open their own
// transactions.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repositories bundles the transaction-scoped repositories handed to an
// ExecTx callback.
type Repositories struct {
	Customers CustomerRepository
	Tools     ToolRepository
	Rentals   RentalRepository
}

// Transactor runs fn inside a single ACID transaction. The transaction
// commits only if fn returns nil; any error rolls everything back.
// Serialization aborts surface as domain.ErrStorageConflict.
type Transactor interface {
	ExecTx(ctx context.Context, fn func(Repositories) error) error
}

type CustomerRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Customer, error)
}

// ToolRepository doubles as the stock ledger: LockByIDs pins the touched
// tool rows for the rest of the transaction, ReserveStock and
// ReleaseStock move units in and out of availability.
type ToolRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Tool, error)
	GetByIDs(ctx context.Context, ids []int32) ([]domain.Tool, error)
	List(ctx context.Context, page, pageSize int32) ([]domain.Tool, int32, error)

	// LockByIDs reads the given tools with SELECT ... FOR UPDATE so two
	// concurrent bookings cannot both pass the availability check against
	// a stale quantity.
	LockByIDs(ctx context.Context, ids []int32) ([]domain.Tool, error)

	// ReserveStock decrements stock by qty. The decrement is guarded in
	// SQL and fails with domain.InsufficientStockError if qty exceeds the
	// current stock, even after a prior availability check.
	ReserveStock(ctx context.Context, toolID, qty int32) error

	// ReleaseStock increments stock by qty. Releasing more than was ever
	// reserved is a caller bug, not a ledger error.
	ReleaseStock(ctx context.Context, toolID, qty int32) error
}

type RentalRepository interface {
	Create(ctx context.Context, rt *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)

	// LockByID reads the rental with SELECT ... FOR UPDATE. Every
	// stock-affecting transition reads through this lock so the settled
	// check and the following writes act on the same row version; a plain
	// read would let two concurrent settles both pass the check and
	// release the same stock twice.
	LockByID(ctx context.Context, id int32) (*domain.Rental, error)
	GetLines(ctx context.Context, rentalID int32) ([]domain.RentalLine, error)
	GetLinesWithTools(ctx context.Context, rentalID int32) ([]domain.RentalLine, error)
	InsertLines(ctx context.Context, rentalID int32, lines []domain.RentalLine) error
	DeleteLines(ctx context.Context, rentalID int32) error
	UpdateLineSubtotal(ctx context.Context, lineID int32, subtotalCents int64) error
	UpdateHeader(ctx context.Context, id int32, endDate time.Time, totalCents int64) error
	Settle(ctx context.Context, id int32) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error)
	ListUnreturnedBefore(ctx context.Context, cutoff time.Time) ([]domain.Rental, error)
}
