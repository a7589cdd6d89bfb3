package service

import (
	"context"
	"time"

	"rentool-backend/internal/domain"
	"rentool-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// stubTransactor hands the callback a fixed repository bundle without any
// real transaction, optionally failing the first N attempts to exercise
// the conflict retry path.
type stubTransactor struct {
	repos       repository.Repositories
	failFirst   int
	failWith    error
	invocations int
}

func (s *stubTransactor) ExecTx(ctx context.Context, fn func(repository.Repositories) error) error {
	s.invocations++
	if s.invocations <= s.failFirst {
		return s.failWith
	}
	return fn(s.repos)
}

type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) GetByID(ctx context.Context, id int32) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*domain.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockToolRepo struct {
	mock.Mock
}

func (m *MockToolRepo) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*domain.Tool), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockToolRepo) GetByIDs(ctx context.Context, ids []int32) ([]domain.Tool, error) {
	args := m.Called(ctx, ids)
	if t := args.Get(0); t != nil {
		return t.([]domain.Tool), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockToolRepo) List(ctx context.Context, page, pageSize int32) ([]domain.Tool, int32, error) {
	args := m.Called(ctx, page, pageSize)
	if t := args.Get(0); t != nil {
		return t.([]domain.Tool), args.Get(1).(int32), args.Error(2)
	}
	return nil, args.Get(1).(int32), args.Error(2)
}

func (m *MockToolRepo) LockByIDs(ctx context.Context, ids []int32) ([]domain.Tool, error) {
	args := m.Called(ctx, ids)
	if t := args.Get(0); t != nil {
		return t.([]domain.Tool), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockToolRepo) ReserveStock(ctx context.Context, toolID, qty int32) error {
	args := m.Called(ctx, toolID, qty)
	return args.Error(0)
}

func (m *MockToolRepo) ReleaseStock(ctx context.Context, toolID, qty int32) error {
	args := m.Called(ctx, toolID, qty)
	return args.Error(0)
}

type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rt *domain.Rental) error {
	args := m.Called(ctx, rt)
	return args.Error(0)
}

func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if rt := args.Get(0); rt != nil {
		return rt.(*domain.Rental), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRentalRepo) LockByID(ctx context.Context, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if rt := args.Get(0); rt != nil {
		return rt.(*domain.Rental), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRentalRepo) GetLines(ctx context.Context, rentalID int32) ([]domain.RentalLine, error) {
	args := m.Called(ctx, rentalID)
	if l := args.Get(0); l != nil {
		return l.([]domain.RentalLine), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRentalRepo) GetLinesWithTools(ctx context.Context, rentalID int32) ([]domain.RentalLine, error) {
	args := m.Called(ctx, rentalID)
	if l := args.Get(0); l != nil {
		return l.([]domain.RentalLine), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRentalRepo) InsertLines(ctx context.Context, rentalID int32, lines []domain.RentalLine) error {
	args := m.Called(ctx, rentalID, lines)
	return args.Error(0)
}

func (m *MockRentalRepo) DeleteLines(ctx context.Context, rentalID int32) error {
	args := m.Called(ctx, rentalID)
	return args.Error(0)
}

func (m *MockRentalRepo) UpdateLineSubtotal(ctx context.Context, lineID int32, subtotalCents int64) error {
	args := m.Called(ctx, lineID, subtotalCents)
	return args.Error(0)
}

func (m *MockRentalRepo) UpdateHeader(ctx context.Context, id int32, endDate time.Time, totalCents int64) error {
	args := m.Called(ctx, id, endDate, totalCents)
	return args.Error(0)
}

func (m *MockRentalRepo) Settle(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRentalRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRentalRepo) List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, filter)
	if l := args.Get(0); l != nil {
		return l.([]domain.Rental), args.Get(1).(int32), args.Error(2)
	}
	return nil, args.Get(1).(int32), args.Error(2)
}

func (m *MockRentalRepo) ListUnreturnedBefore(ctx context.Context, cutoff time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, cutoff)
	if l := args.Get(0); l != nil {
		return l.([]domain.Rental), args.Error(1)
	}
	return nil, args.Error(1)
}
