package cart

import (
	"errors"

	"fitgympro/internal/domain/discount"
	"fitgympro/internal/domain/storeplan"
)

// Domain errors
var (
	ErrAlreadyInCart = errors.New("plan is already in the cart")
	ErrNotInCart     = errors.New("plan is not in the cart")
	ErrEmptyCart     = errors.New("cart is empty")
)

// Cart is one user's pending purchase. DiscountCode is nil when no code applies.
type Cart struct {
	Items        []storeplan.Plan `json:"items"`
	DiscountCode *string          `json:"discountCode"`
}

// Totals is the priced view of a cart.
type Totals struct {
	Subtotal       int64
	DiscountAmount int64
	Total          int64
	Code           string
}

// Empty returns a cart with no items and no code.
func Empty() Cart {
	return Cart{Items: []storeplan.Plan{}}
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// Code returns the applied discount code or "".
func (c *Cart) Code() string {
	if c.DiscountCode == nil {
		return ""
	}
	return *c.DiscountCode
}

// Add puts a plan in the cart.
// PRE: p has been validated
// POST: ErrAlreadyInCart if a plan with the same ID is present
func (c *Cart) Add(p storeplan.Plan) error {
	if storeplan.Find(c.Items, p.ID) >= 0 {
		return ErrAlreadyInCart
	}
	c.Items = append(c.Items, p)
	return nil
}

// Remove takes a plan out of the cart.
func (c *Cart) Remove(planID string) error {
	items, err := storeplan.Remove(c.Items, planID)
	if err != nil {
		return ErrNotInCart
	}
	c.Items = items
	return nil
}

// ApplyCode sets the discount code when it exists in table and clears it otherwise.
// POST: Returns true if a code is now applied
func (c *Cart) ApplyCode(code string, table discount.Table) bool {
	code = discount.NormalizeCode(code)
	if _, ok := table[code]; code == "" || !ok {
		c.DiscountCode = nil
		return false
	}
	c.DiscountCode = &code
	return true
}

// Subtotal sums item prices.
func (c *Cart) Subtotal() int64 {
	var sum int64
	for _, it := range c.Items {
		sum += it.Price
	}
	return sum
}

// Totals prices the cart against the current discount table.
// A code that no longer exists in table contributes nothing.
// POST: Total = max(0, Subtotal - DiscountAmount)
func (c *Cart) Totals(table discount.Table) Totals {
	t := Totals{Subtotal: c.Subtotal()}
	if code := c.Code(); code != "" {
		if d, ok := table[code]; ok {
			t.Code = code
			t.DiscountAmount = d.Amount(t.Subtotal)
		}
	}
	t.Total = max(0, t.Subtotal-t.DiscountAmount)
	return t
}
