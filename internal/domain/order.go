package domain

import "time"

// Customer is the shipping record captured at checkout. Address holds the
// street address, city, zip and country joined into a single string.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Order is a snapshot taken at checkout time. Immutable once created; a new
// order overwrites the previous snapshot in storage.
type Order struct {
	ID       string     `json:"id"`
	Items    []CartLine `json:"items"`
	Total    float64    `json:"total"`
	Date     time.Time  `json:"date"`
	Customer Customer   `json:"customer"`
}
