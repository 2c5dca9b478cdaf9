// Package pricing implements the price derivation engine: the rules that turn
// a catalog article plus its commercial overrides into a consistent set of
// derived figures (discounted price, public price before/after tax,
// rebate-adjusted net price, margins, markup rate).
//
// Every operation is a pure function over its inputs. Calling Derive twice
// with the same inputs yields identical output, and no combination of
// in-range inputs produces an error.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/montroyal/quote-service/internal/types"
)

// Basis names a reference price used by the engine. The historical revisions
// of the business rules disagreed on which price the percentage discount and
// the gross margin are computed against, so both are explicit parameters
// rather than hidden constants.
type Basis string

const (
	// BasisGrossPrice references the undiscounted list price.
	BasisGrossPrice Basis = "gross_price"
	// BasisNetPrice references the pre-negotiation wholesale price.
	BasisNetPrice Basis = "net_price"
)

// ParseBasis converts a config string to a Basis.
func ParseBasis(s string) (Basis, error) {
	switch Basis(s) {
	case BasisGrossPrice, BasisNetPrice:
		return Basis(s), nil
	default:
		return "", fmt.Errorf("unknown price basis %q", s)
	}
}

var (
	hundred       = decimal.NewFromInt(100)
	vatMultiplier = decimal.RequireFromString("1.20") // fixed 20% VAT
)

// Engine holds the configurable reference-price choices. The zero value is
// not usable; construct with NewEngine.
type Engine struct {
	discountBasis    Basis
	grossMarginBasis Basis
}

// NewEngine builds an engine with the given reference-price configuration.
// Empty basis values fall back to the gross price, matching the most recent
// revision of the business rules.
func NewEngine(discountBasis, grossMarginBasis Basis) Engine {
	if discountBasis == "" {
		discountBasis = BasisGrossPrice
	}
	if grossMarginBasis == "" {
		grossMarginBasis = BasisGrossPrice
	}
	return Engine{
		discountBasis:    discountBasis,
		grossMarginBasis: grossMarginBasis,
	}
}

// DefaultEngine returns an engine with both bases on the gross price.
func DefaultEngine() Engine {
	return NewEngine(BasisGrossPrice, BasisGrossPrice)
}

// DiscountBasis returns the reference price used for percentage discounts.
func (e Engine) DiscountBasis() Basis { return e.discountBasis }

// GrossMarginBasis returns the reference price used for the gross margin.
func (e Engine) GrossMarginBasis() Basis { return e.grossMarginBasis }

func (e Engine) referencePrice(a types.Article, b Basis) decimal.Decimal {
	if b == BasisNetPrice {
		return a.NetPrice
	}
	return a.GrossPrice
}

// ResolveDiscount decides which of the two discount inputs is authoritative
// and produces a single discount amount plus the input normalized to its
// canonical state.
//
// Percent mode derives the amount from the configured reference price.
// Amount mode takes the amount verbatim and resets the percentage to zero so
// a stale percentage can never be reapplied by a later pass. Switching modes
// never rewrites the other field's last value; it only changes which field
// is authoritative going forward.
func (e Engine) ResolveDiscount(a types.Article, in types.DiscountInput) (decimal.Decimal, types.DiscountInput) {
	switch in.Mode {
	case types.DiscountModeAmount:
		out := in
		out.DiscountPercent = decimal.Zero
		return in.DiscountAmount, out
	default: // percent mode
		amount := e.referencePrice(a, e.discountBasis).Mul(in.DiscountPercent).Div(hundred)
		out := in
		out.Mode = types.DiscountModePercent
		out.DiscountAmount = amount
		return amount, out
	}
}

// Derive runs one full derivation pass for an article. All derived fields
// are recomputed wholesale; nothing is patched incrementally.
//
// Out-of-range inputs (percentages outside [0,100], negative amounts) are a
// precondition violation the edit surface must enforce; Derive itself is
// total over all inputs.
func (e Engine) Derive(a types.Article, in types.DiscountInput) types.DerivedPricing {
	discount, _ := e.ResolveDiscount(a, in)

	// Not floored at zero: a discount exceeding the net price passes through
	// and yields negative downstream prices.
	netAfterDiscount := a.NetPrice.Sub(discount).Sub(a.OtherDiscountAmount)

	// A zero coefficient means "pricing not yet configured", not an error.
	publicHT := decimal.Zero
	if !a.Coefficient.IsZero() {
		publicHT = netAfterDiscount.Mul(a.Coefficient)
	}
	publicTTC := publicHT.Mul(vatMultiplier)

	// Skip the rebate arithmetic entirely when no rebate applies, so a zero
	// rebate leaves the value bit-identical.
	finalNetNet := netAfterDiscount
	if !a.RebatePercent.IsZero() {
		finalNetNet = netAfterDiscount.Sub(netAfterDiscount.Mul(a.RebatePercent).Div(hundred))
	}

	grossMargin := publicHT.Sub(e.referencePrice(a, e.grossMarginBasis))
	netMargin := publicHT.Sub(netAfterDiscount)

	markup := decimal.Zero
	if !publicHT.IsZero() {
		markup = netMargin.Div(publicHT).Mul(hundred)
	}

	return types.DerivedPricing{
		DiscountAmount:    discount,
		NetAfterDiscount:  netAfterDiscount,
		PublicPriceHT:     publicHT,
		PublicPriceTTC:    publicTTC,
		GrossMargin:       grossMargin,
		NetMargin:         netMargin,
		MarkupRatePercent: markup,
		FinalNetNet:       finalNetNet,
	}
}
