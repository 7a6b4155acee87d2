package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fitgympro/internal/domain/cart"
	"fitgympro/internal/domain/discount"
	"fitgympro/internal/domain/notification"
	"fitgympro/internal/domain/storeplan"
	"fitgympro/internal/domain/userdata"
)

// CartStore defines the cart operations the cart orchestrators need.
type CartStore interface {
	Get(ctx context.Context, username string) (cart.Cart, error)
	Update(ctx context.Context, username string, fn func(c *cart.Cart) error) error
}

// PlanReader loads store plans.
type PlanReader interface {
	Get(ctx context.Context, id string) (storeplan.Plan, error)
}

// DiscountReader loads the discount table.
type DiscountReader interface {
	Get(ctx context.Context) (discount.Table, error)
}

// Notifier sets a badge on one of a user's dashboard tabs.
type Notifier interface {
	Set(ctx context.Context, username, tab, badge string) error
}

// CartDeps holds dependencies for the add, remove and discount orchestrators.
type CartDeps struct {
	CartStore CartStore
	Plans     PlanReader
	Discounts DiscountReader
}

// ExecuteAddToCart puts a store plan in the user's cart.
// PRE: planID names a saved plan
// POST: cart contains the plan exactly once; cart.ErrAlreadyInCart otherwise
func ExecuteAddToCart(ctx context.Context, username, planID string, deps CartDeps) (storeplan.Plan, error) {
	plan, err := deps.Plans.Get(ctx, planID)
	if err != nil {
		return storeplan.Plan{}, err
	}
	err = deps.CartStore.Update(ctx, username, func(c *cart.Cart) error {
		return c.Add(plan)
	})
	if err != nil {
		return storeplan.Plan{}, err
	}
	slog.Info("cart_event", "event", "add", "username", username, "plan", planID)
	return plan, nil
}

// ExecuteRemoveFromCart takes a plan out of the user's cart.
func ExecuteRemoveFromCart(ctx context.Context, username, planID string, deps CartDeps) error {
	err := deps.CartStore.Update(ctx, username, func(c *cart.Cart) error {
		return c.Remove(planID)
	})
	if err != nil {
		return err
	}
	slog.Info("cart_event", "event", "remove", "username", username, "plan", planID)
	return nil
}

// ExecuteApplyDiscount sets or clears the cart's discount code.
// An unknown or empty code clears any code already applied.
// POST: Returns whether a code is now applied
func ExecuteApplyDiscount(ctx context.Context, username, code string, deps CartDeps) (bool, error) {
	table, err := deps.Discounts.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("load discounts: %w", err)
	}
	var applied bool
	err = deps.CartStore.Update(ctx, username, func(c *cart.Cart) error {
		applied = c.ApplyCode(code, table)
		return nil
	})
	if err != nil {
		return false, err
	}
	slog.Info("cart_event", "event", "discount", "username", username, "code", discount.NormalizeCode(code), "applied", applied)
	return applied, nil
}

// UserDataStoreForCheckout defines the user data operations Checkout needs.
type UserDataStoreForCheckout interface {
	Update(ctx context.Context, username string, fn func(d *userdata.Data) error) error
}

// CheckoutDeps holds dependencies for Checkout.
type CheckoutDeps struct {
	CartStore     CartStore
	Discounts     DiscountReader
	UserDataStore UserDataStoreForCheckout
	Notifier      Notifier
	Activity      ActivityRecorder
	Now           func() time.Time
}

// CheckoutResult carries the outcome of a checkout.
type CheckoutResult struct {
	Totals    cart.Totals
	Purchased []storeplan.Plan
	CoachName string
}

// ExecuteCheckout turns the cart into unfulfilled subscriptions and empties it.
// Payment is simulated; the total is computed for the receipt only.
// The cart is taken and emptied in one update, so concurrent checkouts of one
// cart subscribe once.
// PRE: cart is non-empty
// POST: one subscription per item; cart is empty; the user's coach has a students badge
func ExecuteCheckout(ctx context.Context, username string, deps CheckoutDeps) (CheckoutResult, error) {
	table, err := deps.Discounts.Get(ctx)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("load discounts: %w", err)
	}

	var c cart.Cart
	err = deps.CartStore.Update(ctx, username, func(stored *cart.Cart) error {
		if stored.IsEmpty() {
			return cart.ErrEmptyCart
		}
		c = *stored
		*stored = cart.Empty()
		return nil
	})
	if errors.Is(err, cart.ErrEmptyCart) {
		return CheckoutResult{}, err
	}
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("take cart: %w", err)
	}

	now := deps.Now()
	var coachName string
	err = deps.UserDataStore.Update(ctx, username, func(d *userdata.Data) error {
		d.Subscribe(c.Items, now)
		coachName = d.CoachName()
		return nil
	})
	if err != nil {
		restoreCart(ctx, deps.CartStore, username, c)
		return CheckoutResult{}, fmt.Errorf("save subscriptions: %w", err)
	}

	if coachName != "" {
		if err := deps.Notifier.Set(ctx, coachName, notification.TabStudents, notification.BadgeAlert); err != nil {
			slog.Warn("notification_failed", "username", coachName, "tab", notification.TabStudents, "error", err)
		}
	}

	totals := c.Totals(table)
	logActivity(ctx, deps.Activity, fmt.Sprintf("%s purchased %d plan(s).", username, len(c.Items)))
	slog.Info("cart_event", "event", "checkout", "username", username, "items", len(c.Items), "total", totals.Total)
	return CheckoutResult{Totals: totals, Purchased: c.Items, CoachName: coachName}, nil
}

// restoreCart puts taken items back after a failed checkout, keeping anything
// added in the meantime.
func restoreCart(ctx context.Context, store CartStore, username string, taken cart.Cart) {
	err := store.Update(ctx, username, func(c *cart.Cart) error {
		for _, p := range taken.Items {
			if err := c.Add(p); err != nil && !errors.Is(err, cart.ErrAlreadyInCart) {
				return err
			}
		}
		if c.DiscountCode == nil {
			c.DiscountCode = taken.DiscountCode
		}
		return nil
	})
	if err != nil {
		slog.Error("cart_restore_failed", "username", username, "items", len(taken.Items), "error", err)
	}
}
