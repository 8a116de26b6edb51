package service

import (
	"context"
	models "storefront/model"
	"storefront/store"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a product id does not resolve in the catalog.
var ErrNotFound = errors.New("product not found")

// ProductLookup resolves a product id. It returns store.ErrNotFound (or
// ErrNotFound) for unknown ids.
type ProductLookup interface {
	Find(ctx context.Context, id string) (models.Product, error)
}

// CartState is the observable state of a cart.
type CartState int

const (
	Empty    CartState = iota // no line items
	NonEmpty                  // at least one line item
)

func (s CartState) String() string {
	if s == Empty {
		return "empty"
	}
	return "non-empty"
}

// State reports whether the cart holds any line items.
func State(cart *models.Cart) CartState {
	if cart.Len() == 0 {
		return Empty
	}
	return NonEmpty
}

// AddItem adds one unit of productID to the cart and returns the number of
// line items afterwards. A repeated id bumps the quantity of the existing
// line; otherwise a snapshot of the product is appended. On any lookup
// failure the cart is left untouched.
func AddItem(ctx context.Context, cart *models.Cart, productID string, lookup ProductLookup) (int, error) {
	p, err := lookup.Find(ctx, productID)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrNotFound) {
		return cart.Len(), ErrNotFound
	}
	if err != nil {
		return cart.Len(), errors.Wrapf(err, "lookup product %s", productID)
	}

	// key the line by the catalog's id so aliases of one product share a line
	id := p.ID
	if id == "" {
		id = productID
	}
	if i := cart.Find(id); i >= 0 {
		cart.Items[i].Quantity++
		return cart.Len(), nil
	}
	cart.Items = append(cart.Items, models.CartItem{
		ProductID: id,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  1,
		Image:     p.Image,
	})
	return cart.Len(), nil
}

// RemoveItem drops the line for productID. Unknown ids are a no-op.
func RemoveItem(cart *models.Cart, productID string) {
	i := cart.Find(productID)
	if i < 0 {
		return
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
}

// ComputeTotal sums unit price times quantity, rounded to cents.
func ComputeTotal(cart *models.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, it := range cart.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Round(2)
}

// Checkout empties the cart. No payment, stock or order record is involved.
func Checkout(cart *models.Cart) {
	cart.Items = []models.CartItem{}
}
