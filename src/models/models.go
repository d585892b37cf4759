package models

import "github.com/shopspring/decimal"

// PriceLevelInfo is one aggregated level of book depth.
type PriceLevelInfo struct {
	Price    decimal.Decimal
	Quantity int64 // total remaining units resting at this price
}

// BookSummary is a read-only projection of both sides of the book. Bids are
// sorted descending (highest first), offers ascending (lowest first), so
// index 0 is the best price on either side.
type BookSummary struct {
	Bids   []PriceLevelInfo
	Offers []PriceLevelInfo
}
