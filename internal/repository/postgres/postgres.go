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

// Store wires the Postgres repositories over a shared *sql.DB and
// implements repository.Transactor. It is constructed once in main and
// passed down explicitly; there is no package-level database handle.
type Store struct {
	db *sql.DB
	repository.CustomerRepository
	repository.ToolRepository
	repository.RentalRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                 db,
		CustomerRepository: NewCustomerRepository(db),
		ToolRepository:     NewToolRepository(db),
		RentalRepository:   NewRentalRepository(db),
	}
}

// ExecTx runs fn inside one read-committed transaction. Row locks taken
// via LockByIDs plus the guarded stock decrement give the isolation the
// booking flow needs. Concurrent aborts are surfaced as
// domain.ErrStorageConflict so callers can retry from scratch.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	repos := repository.Repositories{
		Customers: NewCustomerRepository(tx),
		Tools:     NewToolRepository(tx),
		Rentals:   NewRentalRepository(tx),
	}

	if err := fn(repos); err != nil {
		return wrapConflict(err)
	}
	if err := tx.Commit(); err != nil {
		return wrapConflict(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// Postgres class 40 codes: transaction rollback due to serialization
// failure or deadlock. Both mean the operation committed nothing and may
// be retried.
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

func wrapConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if string(pqErr.Code) == pqSerializationFailure || string(pqErr.Code) == pqDeadlockDetected {
			return fmt.Errorf("%w: %v", domain.ErrStorageConflict, err)
		}
	}
	return err
}
