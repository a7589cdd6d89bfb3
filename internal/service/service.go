package service

import (
	"context"
	"time"

	"rentool-backend/internal/domain"
)

// RentalService is the booking orchestrator. Every stock-affecting
// operation runs as one transaction: availability check, ledger
// mutation, pricing and aggregate persistence commit together or not at
// all.
type RentalService interface {
	CreateRental(ctx context.Context, customerID int32, endDate time.Time, lines []domain.LineRequest) (*domain.Rental, error)
	UpdateRental(ctx context.Context, rentalID int32, newEndDate *time.Time, lines []domain.LineRequest) (*domain.Rental, error)
	// CancelRental releases every reserved unit back to stock, then
	// deletes the aggregate.
	CancelRental(ctx context.Context, rentalID int32) error
	// ForceCancelRental deletes the aggregate without touching stock, for
	// when stock was already reconciled by other means.
	ForceCancelRental(ctx context.Context, rentalID int32) error
	// SettleRental marks the rental paid and returned and releases its
	// reserved stock. Lines are kept for historical record.
	SettleRental(ctx context.Context, rentalID int32) (*domain.Rental, error)
	GetRental(ctx context.Context, rentalID int32) (*domain.Rental, error)
	ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error)
}

type ToolService interface {
	GetTool(ctx context.Context, id int32) (*domain.Tool, error)
	ListTools(ctx context.Context, page, pageSize int32) ([]domain.Tool, int32, error)
}

type EmailService interface {
	SendOverdueReminder(ctx context.Context, toEmail, toName string, rentalID int32, endDate time.Time) error
}
