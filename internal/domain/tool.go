package domain

import "time"

// Tool is a rentable inventory item. StockQuantity is the number of units
// currently available for booking; it is mutated only through the stock
// ledger operations of ToolRepository and may never go negative.
type Tool struct {
	ID            int32     `json:"id"`
	Name          string    `json:"name"`
	DayRateCents  int32     `json:"day_rate_cents"`
	StockQuantity int32     `json:"stock_quantity"`
	CreatedOn     time.Time `json:"created_on"`
	UpdatedOn     time.Time `json:"updated_on"`
}
