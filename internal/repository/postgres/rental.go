package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentool-backend/internal/domain"
	"rentool-backend/internal/repository"
)

type rentalRepository struct {
	db repository.DBTX
}

func NewRentalRepository(db repository.DBTX) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (customer_id, start_date, end_date, total_cents, payment_status, return_status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id, created_on, updated_on`
	return r.db.QueryRowContext(ctx, query,
		rt.CustomerID, rt.StartDate, rt.EndDate, rt.TotalCents, rt.PaymentStatus, rt.ReturnStatus).
		Scan(&rt.ID, &rt.CreatedOn, &rt.UpdatedOn)
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	return r.getRental(ctx, id, "")
}

// LockByID pins the rental row until the ambient transaction ends, so a
// terminal-state check and the writes that follow it see one row version.
func (r *rentalRepository) LockByID(ctx context.Context, id int32) (*domain.Rental, error) {
	return r.getRental(ctx, id, " FOR UPDATE")
}

func (r *rentalRepository) getRental(ctx context.Context, id int32, suffix string) (*domain.Rental, error) {
	rt := &domain.Rental{}
	query := `SELECT id, customer_id, start_date, end_date, total_cents, payment_status, return_status, created_on, updated_on
	          FROM rentals WHERE id = $1` + suffix
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&rt.ID, &rt.CustomerID, &rt.StartDate, &rt.EndDate, &rt.TotalCents,
			&rt.PaymentStatus, &rt.ReturnStatus, &rt.CreatedOn, &rt.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rental %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) GetLines(ctx context.Context, rentalID int32) ([]domain.RentalLine, error) {
	query := `SELECT id, rental_id, tool_id, quantity, subtotal_cents
	          FROM rental_lines WHERE rental_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.RentalLine
	for rows.Next() {
		var l domain.RentalLine
		if err := rows.Scan(&l.ID, &l.RentalID, &l.ToolID, &l.Quantity, &l.SubtotalCents); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// GetLinesWithTools is the detail read path: each line carries its tool.
func (r *rentalRepository) GetLinesWithTools(ctx context.Context, rentalID int32) ([]domain.RentalLine, error) {
	query := `SELECT l.id, l.rental_id, l.tool_id, l.quantity, l.subtotal_cents,
	                 t.id, t.name, t.day_rate_cents, t.stock_quantity, t.created_on, t.updated_on
	          FROM rental_lines l JOIN tools t ON t.id = l.tool_id
	          WHERE l.rental_id = $1 ORDER BY l.id`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.RentalLine
	for rows.Next() {
		var l domain.RentalLine
		var t domain.Tool
		if err := rows.Scan(&l.ID, &l.RentalID, &l.ToolID, &l.Quantity, &l.SubtotalCents,
			&t.ID, &t.Name, &t.DayRateCents, &t.StockQuantity, &t.CreatedOn, &t.UpdatedOn); err != nil {
			return nil, err
		}
		l.Tool = &t
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *rentalRepository) InsertLines(ctx context.Context, rentalID int32, lines []domain.RentalLine) error {
	query := `INSERT INTO rental_lines (rental_id, tool_id, quantity, subtotal_cents)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	for i := range lines {
		lines[i].RentalID = rentalID
		err := r.db.QueryRowContext(ctx, query,
			rentalID, lines[i].ToolID, lines[i].Quantity, lines[i].SubtotalCents).
			Scan(&lines[i].ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *rentalRepository) DeleteLines(ctx context.Context, rentalID int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rental_lines WHERE rental_id = $1`, rentalID)
	return err
}

func (r *rentalRepository) UpdateLineSubtotal(ctx context.Context, lineID int32, subtotalCents int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE rental_lines SET subtotal_cents = $2 WHERE id = $1`, lineID, subtotalCents)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("rental line %d: %w", lineID, domain.ErrNotFound)
	}
	return nil
}

func (r *rentalRepository) UpdateHeader(ctx context.Context, id int32, endDate time.Time, totalCents int64) error {
	query := `UPDATE rentals SET end_date = $2, total_cents = $3, updated_on = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, endDate, totalCents)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("rental %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Settle flips the header to PAID/RETURNED. A zero-row update means the
// rental vanished between the read and the write; that race is reported
// as not-found so the whole transaction rolls back.
func (r *rentalRepository) Settle(ctx context.Context, id int32) error {
	query := `UPDATE rentals SET payment_status = $2, return_status = $3, updated_on = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, domain.PaymentStatusPaid, domain.ReturnStatusReturned)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("rental %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *rentalRepository) Delete(ctx context.Context, id int32) error {
	// rental_lines has ON DELETE CASCADE on rental_id.
	result, err := r.db.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("rental %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *rentalRepository) List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error) {
	query := `SELECT r.id, r.customer_id, r.start_date, r.end_date, r.total_cents,
	                 r.payment_status, r.return_status, r.created_on, r.updated_on,
	                 c.id, c.name, c.email
	          FROM rentals r JOIN customers c ON c.id = r.customer_id WHERE 1=1`

	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.Search) > 0 {
		query += " AND ("
		for i, keyword := range filter.Search {
			if i > 0 {
				query += " OR "
			}
			p := arg("%" + keyword + "%")
			query += fmt.Sprintf("c.name ILIKE %s OR c.email ILIKE %s", p, p)
		}
		query += ")"
	}
	if filter.MinTotalCents != nil {
		query += " AND r.total_cents >= " + arg(*filter.MinTotalCents)
	}
	if filter.MaxTotalCents != nil {
		query += " AND r.total_cents <= " + arg(*filter.MaxTotalCents)
	}
	if filter.PaymentStatus != "" {
		query += " AND r.payment_status = " + arg(filter.PaymentStatus)
	}
	if filter.ReturnStatus != "" {
		query += " AND r.return_status = " + arg(filter.ReturnStatus)
	}
	if filter.MinStartDate != nil {
		query += " AND r.start_date >= " + arg(*filter.MinStartDate)
	}
	if filter.MaxStartDate != nil {
		query += " AND r.start_date <= " + arg(*filter.MaxStartDate)
	}
	if filter.MinEndDate != nil {
		query += " AND r.end_date >= " + arg(*filter.MinEndDate)
	}
	if filter.MaxEndDate != nil {
		query += " AND r.end_date <= " + arg(*filter.MaxEndDate)
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 25
	}
	query += fmt.Sprintf(" ORDER BY r.created_on DESC LIMIT %s OFFSET %s",
		arg(pageSize), arg((page-1)*pageSize))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		var rt domain.Rental
		var cust domain.CustomerSummary
		if err := rows.Scan(&rt.ID, &rt.CustomerID, &rt.StartDate, &rt.EndDate, &rt.TotalCents,
			&rt.PaymentStatus, &rt.ReturnStatus, &rt.CreatedOn, &rt.UpdatedOn,
			&cust.ID, &cust.Name, &cust.Email); err != nil {
			return nil, 0, err
		}
		rt.Customer = &cust
		rentals = append(rentals, rt)
	}
	return rentals, count, rows.Err()
}

// ListUnreturnedBefore feeds the overdue-reminder job: active rentals
// whose end date has passed, with the customer summary for addressing.
func (r *rentalRepository) ListUnreturnedBefore(ctx context.Context, cutoff time.Time) ([]domain.Rental, error) {
	query := `SELECT r.id, r.customer_id, r.start_date, r.end_date, r.total_cents,
	                 r.payment_status, r.return_status, r.created_on, r.updated_on,
	                 c.id, c.name, c.email
	          FROM rentals r JOIN customers c ON c.id = r.customer_id
	          WHERE r.return_status = $1 AND r.end_date < $2
	          ORDER BY r.end_date`
	rows, err := r.db.QueryContext(ctx, query, domain.ReturnStatusNotReturned, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		var rt domain.Rental
		var cust domain.CustomerSummary
		if err := rows.Scan(&rt.ID, &rt.CustomerID, &rt.StartDate, &rt.EndDate, &rt.TotalCents,
			&rt.PaymentStatus, &rt.ReturnStatus, &rt.CreatedOn, &rt.UpdatedOn,
			&cust.ID, &cust.Name, &cust.Email); err != nil {
			return nil, err
		}
		rt.Customer = &cust
		rentals = append(rentals, rt)
	}
	return rentals, rows.Err()
}
