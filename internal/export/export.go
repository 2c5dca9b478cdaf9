// Package export flattens cart items into the record set consumed by the
// document generator and renders the commercial proposal workbook.
package export

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/montroyal/quote-service/internal/types"
)

// Proposal is one exportable quote.
type Proposal struct {
	Number    string               `json:"number"`
	Client    string               `json:"client,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	Groups    []CategoryGroup      `json:"groups"`
	Summary   Summary              `json:"summary"`
	Records   []types.ExportRecord `json:"records"`
}

// CategoryGroup is the per-category slice of a proposal, in first-seen
// category order.
type CategoryGroup struct {
	Category string               `json:"category"`
	Records  []types.ExportRecord `json:"records"`
}

// Summary aggregates the proposal totals shown on the recap.
type Summary struct {
	ArticleCount   int             `json:"articleCount"`
	TotalDiscount  decimal.Decimal `json:"totalDiscount"`
	TotalPublicTTC decimal.Decimal `json:"totalPublicTTC"`
	TotalNetNet    decimal.Decimal `json:"totalNetNet"`
}

// ProposalNumber builds the auto-generated proposal reference for the given
// instant, e.g. PROP-20260829-1415.
func ProposalNumber(now time.Time) string {
	return fmt.Sprintf("PROP-%s-%s", now.Format("20060102"), now.Format("1504"))
}

// BuildRecords flattens cart items into export records, preserving cart
// order. Each record carries the active discount mode so the document
// generator can suppress the inactive discount column.
func BuildRecords(items []types.CartItem) []types.ExportRecord {
	records := make([]types.ExportRecord, 0, len(items))
	for _, item := range items {
		records = append(records, types.ExportRecord{
			Category:            item.Article.Category,
			Label:               item.Article.Label,
			Version:             item.Article.Version,
			BusinessKey:         item.Article.BusinessKey,
			GrossPrice:          item.Article.GrossPrice,
			NetPrice:            item.Article.NetPrice,
			OtherDiscountAmount: item.Article.OtherDiscountAmount,
			Coefficient:         item.Article.Coefficient,
			RebatePercent:       item.Article.RebatePercent,
			DiscountMode:        item.Discount.Mode,
			DiscountPercent:     item.Discount.DiscountPercent,
			DiscountAmount:      item.Derived.DiscountAmount,
			NetAfterDiscount:    item.Derived.NetAfterDiscount,
			PublicPriceHT:       item.Derived.PublicPriceHT,
			PublicPriceTTC:      item.Derived.PublicPriceTTC,
			GrossMargin:         item.Derived.GrossMargin,
			NetMargin:           item.Derived.NetMargin,
			MarkupRatePercent:   item.Derived.MarkupRatePercent,
			FinalNetNet:         item.Derived.FinalNetNet,
		})
	}
	return records
}

// GroupByCategory groups export records by category, preserving the order in
// which categories first appear.
func GroupByCategory(records []types.ExportRecord) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(groups)
			index[r.Category] = i
			groups = append(groups, CategoryGroup{Category: r.Category})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// Summarize computes the proposal totals.
func Summarize(records []types.ExportRecord) Summary {
	s := Summary{ArticleCount: len(records)}
	for _, r := range records {
		s.TotalDiscount = s.TotalDiscount.Add(r.DiscountAmount)
		s.TotalPublicTTC = s.TotalPublicTTC.Add(r.PublicPriceTTC)
		s.TotalNetNet = s.TotalNetNet.Add(r.FinalNetNet)
	}
	return s
}

// BuildProposal assembles a full proposal from cart items.
func BuildProposal(items []types.CartItem, client string, now time.Time) Proposal {
	records := BuildRecords(items)
	return Proposal{
		Number:    ProposalNumber(now),
		Client:    client,
		CreatedAt: now,
		Groups:    GroupByCategory(records),
		Summary:   Summarize(records),
		Records:   records,
	}
}
