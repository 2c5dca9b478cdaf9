package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montroyal/quote-service/internal/types"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testArticle() types.Article {
	return types.Article{
		Category:            "Montures",
		Label:               "Monture acier",
		Version:             "V2",
		BusinessKey:         "EDI-1001",
		GrossPrice:          dec("100"),
		NetPrice:            dec("90"),
		OtherDiscountAmount: decimal.Zero,
		Coefficient:         dec("2"),
		RebatePercent:       dec("5"),
	}
}

func assertDecEqual(t *testing.T, expected string, actual decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "%s = %s, want %s", field, actual, expected)
}

func TestDerivePercentModeEndToEnd(t *testing.T) {
	a := testArticle()
	in := types.DiscountInput{Mode: types.DiscountModePercent, DiscountPercent: dec("10")}

	d := DefaultEngine().Derive(a, in)

	assertDecEqual(t, "10", d.DiscountAmount, "discountAmount")
	assertDecEqual(t, "80", d.NetAfterDiscount, "netAfterDiscount")
	assertDecEqual(t, "160", d.PublicPriceHT, "publicPriceHT")
	assertDecEqual(t, "192", d.PublicPriceTTC, "publicPriceTTC")
	assertDecEqual(t, "76", d.FinalNetNet, "finalNetNet")
	assertDecEqual(t, "60", d.GrossMargin, "grossMargin")
	assertDecEqual(t, "80", d.NetMargin, "netMargin")
	assertDecEqual(t, "50", d.MarkupRatePercent, "markupRatePercent")
}

func TestDeriveAmountModeIgnoresPercent(t *testing.T) {
	a := testArticle()
	// Percent is stale and must not be reapplied in amount mode.
	in := types.DiscountInput{
		Mode:            types.DiscountModeAmount,
		DiscountPercent: dec("10"),
		DiscountAmount:  dec("15"),
	}

	d := DefaultEngine().Derive(a, in)

	assertDecEqual(t, "15", d.DiscountAmount, "discountAmount")
	assertDecEqual(t, "75", d.NetAfterDiscount, "netAfterDiscount")
	assertDecEqual(t, "150", d.PublicPriceHT, "publicPriceHT")
	assertDecEqual(t, "180", d.PublicPriceTTC, "publicPriceTTC")
	assertDecEqual(t, "71.25", d.FinalNetNet, "finalNetNet")
	assertDecEqual(t, "50", d.GrossMargin, "grossMargin")
	assertDecEqual(t, "75", d.NetMargin, "netMargin")
	assertDecEqual(t, "50", d.MarkupRatePercent, "markupRatePercent")
}

func TestDeriveZeroCoefficientGuards(t *testing.T) {
	a := testArticle()
	a.Coefficient = decimal.Zero
	a.RebatePercent = decimal.Zero
	in := types.DiscountInput{Mode: types.DiscountModePercent, DiscountPercent: dec("10")}

	d := DefaultEngine().Derive(a, in)

	assertDecEqual(t, "0", d.PublicPriceHT, "publicPriceHT")
	assertDecEqual(t, "0", d.PublicPriceTTC, "publicPriceTTC")
	assertDecEqual(t, "0", d.MarkupRatePercent, "markupRatePercent")
	// Net margin is still computed against zero and goes negative.
	assertDecEqual(t, "-80", d.NetMargin, "netMargin")
	assertDecEqual(t, "-100", d.GrossMargin, "grossMargin")
}

func TestDeriveZeroRebateLeavesNetUntouched(t *testing.T) {
	a := testArticle()
	a.RebatePercent = decimal.Zero
	in := types.DiscountInput{Mode: types.DiscountModePercent, DiscountPercent: dec("10")}

	d := DefaultEngine().Derive(a, in)

	assert.True(t, d.FinalNetNet.Equal(d.NetAfterDiscount),
		"finalNetNet = %s, want netAfterDiscount %s", d.FinalNetNet, d.NetAfterDiscount)
}

func TestDeriveNegativeNetPassesThrough(t *testing.T) {
	a := testArticle()
	in := types.DiscountInput{Mode: types.DiscountModeAmount, DiscountAmount: dec("120")}

	d := DefaultEngine().Derive(a, in)

	assertDecEqual(t, "-30", d.NetAfterDiscount, "netAfterDiscount")
	assertDecEqual(t, "-60", d.PublicPriceHT, "publicPriceHT")
	assertDecEqual(t, "-72", d.PublicPriceTTC, "publicPriceTTC")
}

func TestDeriveIsIdempotent(t *testing.T) {
	a := testArticle()
	a.OtherDiscountAmount = dec("2.5")
	in := types.DiscountInput{Mode: types.DiscountModePercent, DiscountPercent: dec("7.5")}

	e := DefaultEngine()
	first := e.Derive(a, in)

	// Feed the normalized input back in; the output must not drift.
	_, normalized := e.ResolveDiscount(a, in)
	second := e.Derive(a, normalized)

	assert.Equal(t, first, second)
}

func TestResolveDiscountNormalizesAmountMode(t *testing.T) {
	a := testArticle()
	in := types.DiscountInput{
		Mode:            types.DiscountModeAmount,
		DiscountPercent: dec("12"),
		DiscountAmount:  dec("8"),
	}

	amount, normalized := DefaultEngine().ResolveDiscount(a, in)

	assertDecEqual(t, "8", amount, "amount")
	assert.True(t, normalized.DiscountPercent.IsZero(),
		"normalized percent = %s, want 0", normalized.DiscountPercent)
	assert.Equal(t, types.DiscountModeAmount, normalized.Mode)
}

func TestResolveDiscountPercentBasis(t *testing.T) {
	a := testArticle()
	in := types.DiscountInput{Mode: types.DiscountModePercent, DiscountPercent: dec("10")}

	tests := []struct {
		name     string
		basis    Basis
		expected string
	}{
		{"gross price basis", BasisGrossPrice, "10"},
		{"net price basis", BasisNetPrice, "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.basis, BasisGrossPrice)
			amount, normalized := e.ResolveDiscount(a, in)
			assertDecEqual(t, tt.expected, amount, "amount")
			assert.True(t, normalized.DiscountAmount.Equal(amount))
		})
	}
}

func TestGrossMarginBasis(t *testing.T) {
	a := testArticle()
	in := types.DiscountInput{Mode: types.DiscountModePercent, DiscountPercent: dec("10")}

	e := NewEngine(BasisGrossPrice, BasisNetPrice)
	d := e.Derive(a, in)

	// PPGC HT 160 against the net price 90 instead of the gross price 100.
	assertDecEqual(t, "70", d.GrossMargin, "grossMargin")
}

func TestParseBasis(t *testing.T) {
	b, err := ParseBasis("net_price")
	require.NoError(t, err)
	assert.Equal(t, BasisNetPrice, b)

	_, err = ParseBasis("list_price")
	assert.Error(t, err)
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine("", "")
	assert.Equal(t, BasisGrossPrice, e.DiscountBasis())
	assert.Equal(t, BasisGrossPrice, e.GrossMarginBasis())
}
