package types

import (
	"github.com/shopspring/decimal"
)

// DiscountMode selects which discount input field is authoritative for an
// article. The mode is set explicitly by user action, never inferred from
// the field values during recalculation.
type DiscountMode string

const (
	// DiscountModePercent means DiscountPercent drives the discount; the
	// equivalent amount is derived on every pass.
	DiscountModePercent DiscountMode = "percent"
	// DiscountModeAmount means DiscountAmount is taken verbatim; the
	// percentage is forced to zero to signal "not in use".
	DiscountModeAmount DiscountMode = "amount"
)

// Article is one catalog entry. It is immutable for the duration of an edit
// cycle; cart items hold their own copy so commercial overrides never touch
// the catalog.
type Article struct {
	Category            string          `json:"category"`
	Label               string          `json:"label"`
	Version             string          `json:"version"`
	BusinessKey         string          `json:"businessKey"` // EDI code, unique per product/version
	GrossPrice          decimal.Decimal `json:"grossPrice"`
	NetPrice            decimal.Decimal `json:"netPrice"`
	OtherDiscountAmount decimal.Decimal `json:"otherDiscountAmount"`
	Coefficient         decimal.Decimal `json:"coefficient"`
	RebatePercent       decimal.Decimal `json:"rebatePercent"` // RFA, 0-100
	DiscountPercent     decimal.Decimal `json:"discountPercent"`
	DiscountAmount      decimal.Decimal `json:"discountAmount"`
}

// DiscountInput is the per-article override state. Exactly one of the two
// fields is authoritative, selected by Mode.
type DiscountInput struct {
	Mode            DiscountMode    `json:"mode"`
	DiscountPercent decimal.Decimal `json:"discountPercent"` // 0-100
	DiscountAmount  decimal.Decimal `json:"discountAmount"`  // >= 0
}

// DefaultDiscountInput builds the initial discount state for an article
// entering the cart: percent mode when the catalog carries a nonzero default
// percentage, amount mode otherwise.
func DefaultDiscountInput(a Article) DiscountInput {
	if !a.DiscountPercent.IsZero() {
		return DiscountInput{
			Mode:            DiscountModePercent,
			DiscountPercent: a.DiscountPercent,
			DiscountAmount:  a.DiscountAmount,
		}
	}
	return DiscountInput{
		Mode:           DiscountModeAmount,
		DiscountAmount: a.DiscountAmount,
	}
}

// DerivedPricing is the output of one derivation pass. All fields are
// recomputed wholesale on every pass so the record is always internally
// consistent with its inputs.
type DerivedPricing struct {
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	NetAfterDiscount  decimal.Decimal `json:"netAfterDiscount"`
	PublicPriceHT     decimal.Decimal `json:"publicPriceHT"`  // PPGC before tax
	PublicPriceTTC    decimal.Decimal `json:"publicPriceTTC"` // PPGC with 20% VAT
	GrossMargin       decimal.Decimal `json:"grossMargin"`
	NetMargin         decimal.Decimal `json:"netMargin"`
	MarkupRatePercent decimal.Decimal `json:"markupRatePercent"`
	FinalNetNet       decimal.Decimal `json:"finalNetNet"` // after rebate
}

// CartItem is an article selected for a quote, carrying its own override
// state and the last derivation output. Keyed by Article.BusinessKey.
type CartItem struct {
	Article  Article        `json:"article"`
	Discount DiscountInput  `json:"discount"`
	Derived  DerivedPricing `json:"derived"`
}

// ExportRecord is the flat per-item record handed to the document exporter.
// The active discount mode is included so the exporter can suppress the
// inactive discount column within a category table.
type ExportRecord struct {
	Category            string          `json:"category"`
	Label               string          `json:"label"`
	Version             string          `json:"version"`
	BusinessKey         string          `json:"businessKey"`
	GrossPrice          decimal.Decimal `json:"grossPrice"`
	NetPrice            decimal.Decimal `json:"netPrice"`
	OtherDiscountAmount decimal.Decimal `json:"otherDiscountAmount"`
	Coefficient         decimal.Decimal `json:"coefficient"`
	RebatePercent       decimal.Decimal `json:"rebatePercent"`
	DiscountMode        DiscountMode    `json:"discountMode"`
	DiscountPercent     decimal.Decimal `json:"discountPercent"`
	DiscountAmount      decimal.Decimal `json:"discountAmount"`
	NetAfterDiscount    decimal.Decimal `json:"netAfterDiscount"`
	PublicPriceHT       decimal.Decimal `json:"publicPriceHT"`
	PublicPriceTTC      decimal.Decimal `json:"publicPriceTTC"`
	GrossMargin         decimal.Decimal `json:"grossMargin"`
	NetMargin           decimal.Decimal `json:"netMargin"`
	MarkupRatePercent   decimal.Decimal `json:"markupRatePercent"`
	FinalNetNet         decimal.Decimal `json:"finalNetNet"`
}
