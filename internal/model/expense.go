package model

import "time"

// Expense is money spent by the band, optionally attributed to a show.
type Expense struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Amount    int64     `json:"amount"`
	SpentOn   time.Time `json:"spentOn"`
	ShowID    *uint64   `json:"showId"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}
