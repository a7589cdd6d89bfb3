package jobs

import (
	"context"
	"time"

	"rentool-backend/internal/logger"
)

// SendOverdueReminders emails every customer holding an unreturned rental
// whose end date has passed.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()

		overdue, err := jr.store.RentalRepository.ListUnreturnedBefore(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to list overdue rentals", "error", err)
			return
		}

		sent := 0
		for _, rental := range overdue {
			if rental.Customer == nil {
				continue
			}
			err := jr.emailSvc.SendOverdueReminder(ctx,
				rental.Customer.Email, rental.Customer.Name, rental.ID, rental.EndDate)
			if err != nil {
				logger.Error("Failed to send overdue reminder",
					"rental_id", rental.ID, "customer_id", rental.CustomerID, "error", err)
				continue
			}
			sent++
			logger.Debug("Sent overdue reminder",
				"rental_id", rental.ID,
				"customer_id", rental.CustomerID,
				"end_date", rental.EndDate.Format("2006-01-02"))
		}

		logger.Info("Overdue reminders processed", "overdue", len(overdue), "sent", sent)
	})
}
