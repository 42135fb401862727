// Package pricing computes order amounts, including the bulk discount.
//
// Exactly one discount model is active per Engine. Amounts are decimals rounded
// half away from zero to two places, so a percentage discount is within 0.005 of
// the exact product. FinalAmount always equals OriginalAmount minus DiscountAmount.
package pricing

import (
	"fmt"

	"harvest/internal/apperror"

	"github.com/shopspring/decimal"
)

// BulkThreshold is the quantity from which a bulk discount applies.
const BulkThreshold = 5

// Model names a discount policy.
type Model string

const (
	ModelPercentage Model = "percentage"
	ModelFlat       Model = "flat"
)

var (
	// BulkPercentage is the discount applied by the percentage model.
	BulkPercentage = decimal.RequireFromString("28.5")
	// FlatDiscountPerUnit is the discount per unit applied by the flat model.
	FlatDiscountPerUnit = decimal.NewFromInt(10)

	hundred = decimal.NewFromInt(100)
)

// Quote is the result of pricing one order line.
type Quote struct {
	OriginalAmount     decimal.Decimal `json:"original_amount"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	FinalAmount        decimal.Decimal `json:"final_amount"`
	HasDiscount        bool            `json:"has_discount"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DiscountPerUnit    decimal.Decimal `json:"discount_per_unit"`
}

// Policy computes the discount for a bulk purchase.
type Policy interface {
	Model() Model
	// Discount returns the discount owed on original for quantity units.
	// It is only called when quantity >= BulkThreshold.
	Discount(quantity int, original decimal.Decimal) decimal.Decimal
	// PerUnit reports the per-unit discount, or zero when the policy is not per-unit.
	PerUnit() decimal.Decimal
}

type percentagePolicy struct{}

func (percentagePolicy) Model() Model { return ModelPercentage }

func (percentagePolicy) Discount(_ int, original decimal.Decimal) decimal.Decimal {
	return original.Mul(BulkPercentage).Div(hundred).Round(2)
}

func (percentagePolicy) PerUnit() decimal.Decimal { return decimal.Zero }

type flatPolicy struct{}

func (flatPolicy) Model() Model { return ModelFlat }

// Discount caps the flat discount at the original amount so the final amount
// floors at zero.
func (flatPolicy) Discount(quantity int, original decimal.Decimal) decimal.Decimal {
	return decimal.Min(FlatDiscountPerUnit.Mul(decimal.NewFromInt(int64(quantity))), original)
}

func (flatPolicy) PerUnit() decimal.Decimal { return FlatDiscountPerUnit }

// PolicyFor returns the policy registered under model.
func PolicyFor(model Model) (Policy, error) {
	switch model {
	case ModelPercentage, "":
		return percentagePolicy{}, nil
	case ModelFlat:
		return flatPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown discount model %q", model)
	}
}

// Engine prices order lines with a single discount policy.
type Engine struct {
	policy Policy
}

// NewEngine creates an Engine for the given model.
func NewEngine(model Model) (*Engine, error) {
	policy, err := PolicyFor(model)
	if err != nil {
		return nil, err
	}
	return &Engine{policy: policy}, nil
}

// Model reports the active discount model.
func (e *Engine) Model() Model { return e.policy.Model() }

// Compute prices quantity units at unitPrice.
func (e *Engine) Compute(quantity int, unitPrice decimal.Decimal) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, apperror.Validationf("quantity must be a positive integer, got %d", quantity)
	}
	if unitPrice.IsNegative() {
		return Quote{}, apperror.Validationf("unit price must not be negative, got %s", unitPrice)
	}

	original := unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	quote := Quote{
		OriginalAmount:     original,
		DiscountAmount:     decimal.Zero,
		FinalAmount:        original,
		DiscountPercentage: decimal.Zero,
		DiscountPerUnit:    decimal.Zero,
	}
	if quantity < BulkThreshold {
		return quote, nil
	}

	discount := e.policy.Discount(quantity, original)
	quote.DiscountAmount = discount
	quote.FinalAmount = original.Sub(discount)
	quote.HasDiscount = true
	quote.DiscountPerUnit = e.policy.PerUnit()
	quote.DiscountPercentage = percentageOf(discount, original)
	return quote, nil
}

func percentageOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return decimal.Min(part.Mul(hundred).Div(whole).Round(2), hundred)
}
