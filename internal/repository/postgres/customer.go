package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rentool-backend/internal/domain"
	"rentool-backend/internal/repository"
)

type customerRepository struct {
	db repository.DBTX
}

func NewCustomerRepository(db repository.DBTX) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) GetByID(ctx context.Context, id int32) (*domain.Customer, error) {
	c := &domain.Customer{}
	query := `SELECT id, name, email, COALESCE(phone, ''), COALESCE(address, ''), created_on, updated_on
	          FROM customers WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedOn, &c.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
