// Package cart holds the articles selected for a quote, each carrying its own
// commercial override state. The cart owns its items exclusively; it never
// mutates the catalog it was filled from.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/montroyal/quote-service/internal/pricing"
	"github.com/montroyal/quote-service/internal/types"
)

// Override carries a partial edit of a cart item's commercial fields. Nil
// fields are left untouched. Setting Mode switches which discount field is
// authoritative going forward; it does not rewrite the other field's value.
type Override struct {
	Mode                *types.DiscountMode `json:"mode,omitempty"`
	DiscountPercent     *decimal.Decimal    `json:"discountPercent,omitempty"`
	DiscountAmount      *decimal.Decimal    `json:"discountAmount,omitempty"`
	Coefficient         *decimal.Decimal    `json:"coefficient,omitempty"`
	RebatePercent       *decimal.Decimal    `json:"rebatePercent,omitempty"`
	OtherDiscountAmount *decimal.Decimal    `json:"otherDiscountAmount,omitempty"`
}

// Cart is the selection for one quote, in insertion order, deduplicated by
// business key.
type Cart struct {
	items []types.CartItem
	index map[string]int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// Add inserts the given articles. An article whose business key is already
// present is skipped: the first occupant wins. Returns the number actually
// inserted and the number skipped as duplicates.
func (c *Cart) Add(articles []types.Article) (added, skipped int) {
	for _, a := range articles {
		if _, ok := c.index[a.BusinessKey]; ok {
			skipped++
			continue
		}
		c.index[a.BusinessKey] = len(c.items)
		c.items = append(c.items, types.CartItem{
			Article:  a,
			Discount: types.DefaultDiscountInput(a),
		})
		added++
	}
	return added, skipped
}

// UpdateOverride patches the override fields of the matching item. Absent
// keys are a silent no-op. Derived pricing is not recomputed here; callers
// run RecalculateAll after a batch of edits.
func (c *Cart) UpdateOverride(businessKey string, o Override) {
	i, ok := c.index[businessKey]
	if !ok {
		return
	}
	item := &c.items[i]

	if o.Mode != nil {
		item.Discount.Mode = *o.Mode
	}
	if o.DiscountPercent != nil {
		item.Discount.DiscountPercent = *o.DiscountPercent
	}
	if o.DiscountAmount != nil {
		item.Discount.DiscountAmount = *o.DiscountAmount
	}
	if o.Coefficient != nil {
		item.Article.Coefficient = *o.Coefficient
	}
	if o.RebatePercent != nil {
		item.Article.RebatePercent = *o.RebatePercent
	}
	if o.OtherDiscountAmount != nil {
		item.Article.OtherDiscountAmount = *o.OtherDiscountAmount
	}
}

// RecalculateAll runs the derivation engine over every item, replacing each
// DerivedPricing wholesale and storing the normalized discount input back on
// the item. Safe to call any number of times.
func (c *Cart) RecalculateAll(e pricing.Engine) {
	for i := range c.items {
		item := &c.items[i]
		_, normalized := e.ResolveDiscount(item.Article, item.Discount)
		item.Discount = normalized
		item.Derived = e.Derive(item.Article, item.Discount)
	}
}

// Remove deletes the matching item; no-op when absent.
func (c *Cart) Remove(businessKey string) {
	i, ok := c.index[businessKey]
	if !ok {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, businessKey)
	for k := i; k < len(c.items); k++ {
		c.index[c.items[k].Article.BusinessKey] = k
	}
}

// Clear empties the cart and all per-item edit state.
func (c *Cart) Clear() {
	c.items = nil
	c.index = make(map[string]int)
}

// Items returns the cart items in insertion order.
func (c *Cart) Items() []types.CartItem {
	out := make([]types.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the item with the given business key.
func (c *Cart) Get(businessKey string) (types.CartItem, bool) {
	i, ok := c.index[businessKey]
	if !ok {
		return types.CartItem{}, false
	}
	return c.items[i], true
}

// Len returns the number of items in the cart.
func (c *Cart) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the cart has no items. Downstream export is only
// offered for a non-empty cart.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}
