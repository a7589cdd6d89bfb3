package domain

import "time"

// Customer records are owned by the customer CRUD module; the rental core
// only ever reads them.
type Customer struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// CustomerSummary is the slice of customer data attached to rental
// responses.
type CustomerSummary struct {
	ID    int32  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c *Customer) Summary() *CustomerSummary {
	return &CustomerSummary{ID: c.ID, Name: c.Name, Email: c.Email}
}
