package models

import "github.com/shopspring/decimal"

// CartItem is a snapshot of a product taken when it was first added.
// Later price changes in the catalog do not touch it.
type CartItem struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// Cart holds at most one item per product id, in insertion order.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Find returns the index of the item for productID, or -1.
func (c *Cart) Find(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Len is the number of line items, not the sum of quantities.
func (c *Cart) Len() int { return len(c.Items) }
