package projections

import (
	"context"

	"fitgympro/internal/domain/cart"
	"fitgympro/internal/domain/storeplan"
)

// GetCartResult carries the priced cart.
type GetCartResult struct {
	Items  []storeplan.Plan
	Totals cart.Totals
	// StaleCode is a code still in the cart that no longer exists.
	StaleCode string
}

// GetCartDeps holds dependencies for GetCart.
type GetCartDeps struct {
	Carts     CartStore
	Discounts DiscountStore
}

// QueryGetCart prices a user's cart against the current discount table.
// POST: Totals.Total = max(0, Subtotal - DiscountAmount)
func QueryGetCart(ctx context.Context, username string, deps GetCartDeps) (GetCartResult, error) {
	c, err := deps.Carts.Get(ctx, username)
	if err != nil {
		return GetCartResult{}, err
	}
	table, err := deps.Discounts.Get(ctx)
	if err != nil {
		return GetCartResult{}, err
	}
	res := GetCartResult{Items: c.Items, Totals: c.Totals(table)}
	if code := c.Code(); code != "" && res.Totals.Code == "" {
		res.StaleCode = code
	}
	return res, nil
}
