package storeplan

import (
	"errors"
	"strings"
)

// Access grants a purchased plan unlocks on the user dashboard.
const (
	AccessWorkout   = "workout_plan"
	AccessNutrition = "nutrition_plan"
	AccessChat      = "chat"
)

// ValidAccess contains all valid access values.
var ValidAccess = []string{AccessWorkout, AccessNutrition, AccessChat}

// Domain errors
var (
	ErrEmptyName     = errors.New("plan name cannot be empty")
	ErrNegativePrice = errors.New("plan price cannot be negative")
	ErrInvalidAccess = errors.New("access must be one of: workout_plan, nutrition_plan, chat")
	ErrNotFound      = errors.New("plan not found")
)

// Plan is a subscription package sold in the store.
type Plan struct {
	ID          string   `json:"planId"`
	Name        string   `json:"planName"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Features    []string `json:"features"`
	Emoji       string   `json:"emoji"`
	Color       string   `json:"color"`
	Recommended bool     `json:"recommended,omitempty"`
	Access      []string `json:"access"`
}

// Validate checks if the Plan has valid data.
// PRE: Plan struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	for _, a := range p.Access {
		if !isValidAccess(a) {
			return ErrInvalidAccess
		}
	}
	return nil
}

// Grants reports whether the plan unlocks access.
func (p *Plan) Grants(access string) bool {
	for _, a := range p.Access {
		if a == access {
			return true
		}
	}
	return false
}

// Find returns the index of the plan with id, or -1.
func Find(plans []Plan, id string) int {
	for i := range plans {
		if plans[i].ID == id {
			return i
		}
	}
	return -1
}

// Upsert replaces the plan with the same ID or appends it.
// PRE: p.ID is non-empty
// POST: Exactly one plan with p.ID exists in the result
func Upsert(plans []Plan, p Plan) []Plan {
	if i := Find(plans, p.ID); i >= 0 {
		out := append([]Plan(nil), plans...)
		out[i] = p
		return out
	}
	return append(append([]Plan(nil), plans...), p)
}

// Remove drops the plan with id.
// POST: Returns ErrNotFound when no plan had that id
func Remove(plans []Plan, id string) ([]Plan, error) {
	i := Find(plans, id)
	if i < 0 {
		return plans, ErrNotFound
	}
	out := make([]Plan, 0, len(plans)-1)
	out = append(out, plans[:i]...)
	return append(out, plans[i+1:]...), nil
}

// SplitLines turns a textarea value into trimmed non-empty lines.
func SplitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func isValidAccess(a string) bool {
	for _, v := range ValidAccess {
		if v == a {
			return true
		}
	}
	return false
}
