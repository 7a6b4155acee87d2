package discount

import (
	"errors"
	"math"
	"strings"
)

// Discount types
const (
	TypePercentage = "percentage"
	TypeFixed      = "fixed"
)

// Domain errors
var (
	ErrEmptyCode       = errors.New("discount code cannot be empty")
	ErrInvalidType     = errors.New("discount type must be percentage or fixed")
	ErrNonPositive     = errors.New("discount value must be greater than zero")
	ErrPercentOverflow = errors.New("percentage discount cannot exceed 100")
	ErrNotFound        = errors.New("discount code not found")
)

// Discount is one redeemable code's effect.
type Discount struct {
	Type  string `json:"type"`
	Value int64  `json:"value"`
}

// Table maps normalized codes to discounts.
type Table map[string]Discount

// NormalizeCode trims and upper-cases a user-entered code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks if the Discount has valid data.
// PRE: Discount struct is populated
// POST: Returns nil if valid, error otherwise
func (d Discount) Validate() error {
	if d.Type != TypePercentage && d.Type != TypeFixed {
		return ErrInvalidType
	}
	if d.Value <= 0 {
		return ErrNonPositive
	}
	if d.Type == TypePercentage && d.Value > 100 {
		return ErrPercentOverflow
	}
	return nil
}

// Amount returns how much the discount takes off subtotal.
// POST: 0 <= result <= subtotal
func (d Discount) Amount(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	var amount int64
	switch d.Type {
	case TypePercentage:
		amount = int64(math.Round(float64(subtotal) * float64(d.Value) / 100))
	case TypeFixed:
		amount = d.Value
	}
	return min(amount, subtotal)
}

// Lookup finds code after normalizing it.
func (t Table) Lookup(code string) (Discount, bool) {
	d, ok := t[NormalizeCode(code)]
	return d, ok
}

// Put validates and stores d under the normalized code.
// POST: Returns the normalized code on success
func (t Table) Put(code string, d Discount) (string, error) {
	code = NormalizeCode(code)
	if code == "" {
		return "", ErrEmptyCode
	}
	if err := d.Validate(); err != nil {
		return "", err
	}
	t[code] = d
	return code, nil
}

// Remove deletes the normalized code.
func (t Table) Remove(code string) error {
	code = NormalizeCode(code)
	if _, ok := t[code]; !ok {
		return ErrNotFound
	}
	delete(t, code)
	return nil
}
