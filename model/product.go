package models

import "github.com/shopspring/decimal"

// Product is catalog reference data. The cart never mutates it.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Featured    bool            `json:"featured"`
}
