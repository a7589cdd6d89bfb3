package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentool-backend/internal/domain"
	"rentool-backend/internal/logger"
	"rentool-backend/internal/repository"
	"rentool-backend/internal/utils"
)

// maxTxRetries bounds how often a booking operation is retried after a
// concurrent transaction abort before the conflict is surfaced.
const maxTxRetries = 3

type rentalService struct {
	store        repository.Transactor
	rentalRepo   repository.RentalRepository
	toolRepo     repository.ToolRepository
	customerRepo repository.CustomerRepository
}

func NewRentalService(
	store repository.Transactor,
	rentalRepo repository.RentalRepository,
	toolRepo repository.ToolRepository,
	customerRepo repository.CustomerRepository,
) RentalService {
	return &rentalService{
		store:        store,
		rentalRepo:   rentalRepo,
		toolRepo:     toolRepo,
		customerRepo: customerRepo,
	}
}

// execTx runs fn through the store, retrying aborted transactions. A
// conflicted transaction committed nothing, so rerunning fn from scratch
// is safe.
func (s *rentalService) execTx(ctx context.Context, op string, fn func(repository.Repositories) error) error {
	for attempt := 1; ; attempt++ {
		err := s.store.ExecTx(ctx, fn)
		if !errors.Is(err, domain.ErrStorageConflict) || attempt == maxTxRetries {
			return err
		}
		logger.Warn("Retrying after storage conflict", "operation", op, "attempt", attempt)
	}
}

func (s *rentalService) CreateRental(ctx context.Context, customerID int32, endDate time.Time, lines []domain.LineRequest) (*domain.Rental, error) {
	start := time.Now()
	days := utils.RentalDays(start, endDate)

	var created *domain.Rental
	err := s.execTx(ctx, "create", func(r repository.Repositories) error {
		customer, err := r.Customers.GetByID(ctx, customerID)
		if err != nil {
			return err
		}

		rental := &domain.Rental{
			CustomerID:    customerID,
			StartDate:     start,
			EndDate:       endDate,
			PaymentStatus: domain.PaymentStatusUnpaid,
			ReturnStatus:  domain.ReturnStatusNotReturned,
		}

		if len(lines) > 0 {
			priced, err := reserveAndPrice(ctx, r, lines, days)
			if err != nil {
				return err
			}
			rental.TotalCents = utils.TotalCents(priced)
			if err := r.Rentals.Create(ctx, rental); err != nil {
				return err
			}
			if err := r.Rentals.InsertLines(ctx, rental.ID, priced); err != nil {
				return err
			}
			rental.Lines = priced
		} else if err := r.Rentals.Create(ctx, rental); err != nil {
			return err
		}

		rental.Customer = customer.Summary()
		created = rental
		return nil
	})
	if err != nil {
		logger.Error("Create rental failed", "customer_id", customerID, "error", err)
		return nil, err
	}
	logger.Info("Rental created", "rental_id", created.ID, "customer_id", customerID, "total_cents", created.TotalCents)
	return created, nil
}

func (s *rentalService) UpdateRental(ctx context.Context, rentalID int32, newEndDate *time.Time, lines []domain.LineRequest) (*domain.Rental, error) {
	var updated *domain.Rental
	err := s.execTx(ctx, "update", func(r repository.Repositories) error {
		// Locked read: the settled check and the writes below must see one
		// row version, or two concurrent transitions could both pass it.
		rental, err := r.Rentals.LockByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental.Settled() {
			return fmt.Errorf("update rental %d: %w", rentalID, domain.ErrInvalidState)
		}
		if newEndDate != nil && newEndDate.Before(rental.StartDate) {
			return fmt.Errorf("rental %d: %w", rentalID, domain.ErrInvalidDateRange)
		}

		endDate := rental.EndDate
		if newEndDate != nil {
			endDate = *newEndDate
		}
		days := utils.RentalDays(rental.StartDate, endDate)

		switch {
		case len(lines) > 0:
			// Replace the whole line set: release everything currently
			// reserved, drop the lines, then re-run the booking flow
			// against the new set. Every release is executed and checked
			// before the deletion proceeds.
			existing, err := r.Rentals.GetLines(ctx, rentalID)
			if err != nil {
				return err
			}
			for _, l := range existing {
				if err := r.Tools.ReleaseStock(ctx, l.ToolID, l.Quantity); err != nil {
					return err
				}
			}
			if err := r.Rentals.DeleteLines(ctx, rentalID); err != nil {
				return err
			}

			priced, err := reserveAndPrice(ctx, r, lines, days)
			if err != nil {
				return err
			}
			if err := r.Rentals.InsertLines(ctx, rentalID, priced); err != nil {
				return err
			}
			rental.TotalCents = utils.TotalCents(priced)
			rental.Lines = priced

		case newEndDate != nil:
			// Date-only change: quantities are untouched, so stock stays
			// as is. Each subtotal is recomputed directly from the tool
			// day-rate for the new duration.
			existing, err := r.Rentals.GetLinesWithTools(ctx, rentalID)
			if err != nil {
				return err
			}
			var total int64
			for i := range existing {
				subtotal := utils.LineSubtotal(existing[i].Tool.DayRateCents, existing[i].Quantity, days)
				if err := r.Rentals.UpdateLineSubtotal(ctx, existing[i].ID, subtotal); err != nil {
					return err
				}
				existing[i].SubtotalCents = subtotal
				total += subtotal
			}
			rental.TotalCents = total
			rental.Lines = existing
		}

		rental.EndDate = endDate
		if err := r.Rentals.UpdateHeader(ctx, rentalID, endDate, rental.TotalCents); err != nil {
			return err
		}

		customer, err := r.Customers.GetByID(ctx, rental.CustomerID)
		if err != nil {
			return err
		}
		rental.Customer = customer.Summary()
		updated = rental
		return nil
	})
	if err != nil {
		logger.Error("Update rental failed", "rental_id", rentalID, "error", err)
		return nil, err
	}
	logger.Info("Rental updated", "rental_id", rentalID, "total_cents", updated.TotalCents)
	return updated, nil
}

func (s *rentalService) CancelRental(ctx context.Context, rentalID int32) error {
	err := s.execTx(ctx, "cancel", func(r repository.Repositories) error {
		rental, err := r.Rentals.LockByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental.Settled() {
			// A settled rental holds no reserved stock; releasing its
			// lines again would double-count.
			return fmt.Errorf("cancel rental %d: %w", rentalID, domain.ErrInvalidState)
		}

		lines, err := r.Rentals.GetLines(ctx, rentalID)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if err := r.Tools.ReleaseStock(ctx, l.ToolID, l.Quantity); err != nil {
				return err
			}
		}
		if err := r.Rentals.DeleteLines(ctx, rentalID); err != nil {
			return err
		}
		return r.Rentals.Delete(ctx, rentalID)
	})
	if err != nil {
		logger.Error("Cancel rental failed", "rental_id", rentalID, "error", err)
		return err
	}
	logger.Info("Rental cancelled", "rental_id", rentalID)
	return nil
}

func (s *rentalService) ForceCancelRental(ctx context.Context, rentalID int32) error {
	err := s.execTx(ctx, "force-cancel", func(r repository.Repositories) error {
		if _, err := r.Rentals.GetByID(ctx, rentalID); err != nil {
			return err
		}
		// Lines go with the header by cascade; the ledger is deliberately
		// untouched.
		return r.Rentals.Delete(ctx, rentalID)
	})
	if err != nil {
		logger.Error("Force-cancel rental failed", "rental_id", rentalID, "error", err)
		return err
	}
	logger.Info("Rental force-cancelled, stock not restored", "rental_id", rentalID)
	return nil
}

func (s *rentalService) SettleRental(ctx context.Context, rentalID int32) (*domain.Rental, error) {
	var settled *domain.Rental
	err := s.execTx(ctx, "settle", func(r repository.Repositories) error {
		rental, err := r.Rentals.LockByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental.Settled() {
			return fmt.Errorf("settle rental %d: %w", rentalID, domain.ErrInvalidState)
		}

		if err := r.Rentals.Settle(ctx, rentalID); err != nil {
			return err
		}

		lines, err := r.Rentals.GetLines(ctx, rentalID)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if err := r.Tools.ReleaseStock(ctx, l.ToolID, l.Quantity); err != nil {
				return err
			}
		}

		rental.PaymentStatus = domain.PaymentStatusPaid
		rental.ReturnStatus = domain.ReturnStatusReturned
		rental.Lines = lines
		settled = rental
		return nil
	})
	if err != nil {
		logger.Error("Settle rental failed", "rental_id", rentalID, "error", err)
		return nil, err
	}
	logger.Info("Rental settled", "rental_id", rentalID)
	return settled, nil
}

func (s *rentalService) GetRental(ctx context.Context, rentalID int32) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	lines, err := s.rentalRepo.GetLinesWithTools(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	rental.Lines = lines

	customer, err := s.customerRepo.GetByID(ctx, rental.CustomerID)
	if err != nil {
		return nil, err
	}
	rental.Customer = customer.Summary()
	return rental, nil
}

func (s *rentalService) ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error) {
	return s.rentalRepo.List(ctx, filter)
}

// reserveAndPrice validates availability for the whole request set, then
// reserves stock and prices each line. Tool rows are locked up front so
// the check and the decrements act on the same stock values.
func reserveAndPrice(ctx context.Context, r repository.Repositories, reqs []domain.LineRequest, days int32) ([]domain.RentalLine, error) {
	ids := make([]int32, 0, len(reqs))
	seen := make(map[int32]bool, len(reqs))
	for _, req := range reqs {
		if !seen[req.ToolID] {
			seen[req.ToolID] = true
			ids = append(ids, req.ToolID)
		}
	}

	tools, err := r.Tools.LockByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int32]domain.Tool, len(tools))
	for _, t := range tools {
		byID[t.ID] = t
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("tool %d: %w", id, domain.ErrNotFound)
		}
	}

	// Report every shortfall, not just the first.
	var shortfalls []int32
	for _, req := range reqs {
		if req.Quantity > byID[req.ToolID].StockQuantity {
			shortfalls = append(shortfalls, req.ToolID)
		}
	}
	if len(shortfalls) > 0 {
		return nil, &domain.InsufficientStockError{ToolIDs: shortfalls}
	}

	lines := make([]domain.RentalLine, 0, len(reqs))
	for _, req := range reqs {
		if err := r.Tools.ReserveStock(ctx, req.ToolID, req.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, domain.RentalLine{
			ToolID:        req.ToolID,
			Quantity:      req.Quantity,
			SubtotalCents: utils.LineSubtotal(byID[req.ToolID].DayRateCents, req.Quantity, days),
		})
	}
	return lines, nil
}
