package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

type ReturnStatus string

const (
	ReturnStatusNotReturned ReturnStatus = "NOT_RETURNED"
	ReturnStatusReturned    ReturnStatus = "RETURNED"
)

// Rental is the booking header. TotalCents must equal the sum of its
// lines' SubtotalCents after every committed transaction.
type Rental struct {
	ID            int32         `json:"id"`
	CustomerID    int32         `json:"customer_id"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
	TotalCents    int64         `json:"total_cents"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	ReturnStatus  ReturnStatus  `json:"return_status"`
	CreatedOn     time.Time     `json:"created_on"`
	UpdatedOn     time.Time     `json:"updated_on"`

	Customer *CustomerSummary `json:"customer,omitempty"`
	Lines    []RentalLine     `json:"lines,omitempty"`
}

// Settled reports whether the rental has reached its terminal state.
// Settled rentals keep their lines for historical record but hold no
// reserved stock, so no further stock-affecting transition is allowed.
func (r *Rental) Settled() bool {
	return r.PaymentStatus == PaymentStatusPaid && r.ReturnStatus == ReturnStatusReturned
}

// RentalLine is one (tool, quantity, subtotal) entry within a rental. The
// set of lines for a header is always replaced wholesale, never patched.
type RentalLine struct {
	ID            int32 `json:"id"`
	RentalID      int32 `json:"rental_id"`
	ToolID        int32 `json:"tool_id"`
	Quantity      int32 `json:"quantity"`
	SubtotalCents int64 `json:"subtotal_cents"`

	Tool *Tool `json:"tool,omitempty"`
}

// LineRequest is a requested (tool, quantity) pair on create/update.
type LineRequest struct {
	ToolID   int32 `json:"tool_id"`
	Quantity int32 `json:"quantity"`
}

// RentalFilter narrows the rental list read path.
type RentalFilter struct {
	Search        []string
	MinTotalCents *int64
	MaxTotalCents *int64
	PaymentStatus PaymentStatus
	ReturnStatus  ReturnStatus
	MinStartDate  *time.Time
	MaxStartDate  *time.Time
	MinEndDate    *time.Time
	MaxEndDate    *time.Time
	Page          int32
	PageSize      int32
}
