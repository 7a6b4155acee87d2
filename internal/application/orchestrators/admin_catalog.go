package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"fitgympro/internal/domain/discount"
	"fitgympro/internal/domain/storeplan"
)

// PlanStore defines the store plan operations admin orchestrators need.
type PlanStore interface {
	Save(ctx context.Context, value storeplan.Plan) error
	Delete(ctx context.Context, id string) error
}

// SavePlanDeps holds dependencies for SavePlan.
type SavePlanDeps struct {
	Plans      PlanStore
	GenerateID func() string
}

// ExecuteSavePlan creates or replaces a store plan.
// A plan without an ID is new and gets one.
// PRE: plan comes from the admin form
// POST: the saved plan has an ID and passes Validate
func ExecuteSavePlan(ctx context.Context, plan storeplan.Plan, deps SavePlanDeps) (storeplan.Plan, error) {
	plan.Name = strings.TrimSpace(plan.Name)
	if err := plan.Validate(); err != nil {
		return storeplan.Plan{}, err
	}
	created := plan.ID == ""
	if created {
		plan.ID = "plan_" + deps.GenerateID()
	}
	if err := deps.Plans.Save(ctx, plan); err != nil {
		return storeplan.Plan{}, err
	}
	slog.Info("admin_event", "event", "plan_saved", "plan", plan.ID, "created", created)
	return plan, nil
}

// ExecuteDeletePlan removes a store plan. Carts that already hold it keep their copy.
func ExecuteDeletePlan(ctx context.Context, id string, plans PlanStore) error {
	if err := plans.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("admin_event", "event", "plan_deleted", "plan", id)
	return nil
}

// DiscountStore defines the discount operations admin orchestrators need.
type DiscountStore interface {
	Update(ctx context.Context, fn func(t discount.Table) error) error
}

// ExecuteSaveDiscount creates or replaces a discount code.
// POST: Returns the normalized code
func ExecuteSaveDiscount(ctx context.Context, code string, d discount.Discount, discounts DiscountStore) (string, error) {
	var saved string
	err := discounts.Update(ctx, func(t discount.Table) error {
		var err error
		saved, err = t.Put(code, d)
		return err
	})
	if err != nil {
		return "", err
	}
	slog.Info("admin_event", "event", "discount_saved", "code", saved, "type", d.Type, "value", d.Value)
	return saved, nil
}

// ExecuteDeleteDiscount removes a discount code. Carts holding it stop receiving the discount.
func ExecuteDeleteDiscount(ctx context.Context, code string, discounts DiscountStore) error {
	err := discounts.Update(ctx, func(t discount.Table) error {
		return t.Remove(code)
	})
	if err != nil {
		return err
	}
	slog.Info("admin_event", "event", "discount_deleted", "code", discount.NormalizeCode(code))
	return nil
}
