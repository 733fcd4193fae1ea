package services

import (
	"github.com/agromap/agromap/pkg/collection"
)

// GroupByBaseProduct attaches to each product every distinct market that
// stocks the same base product, in first-seen order. A product without a
// base product lists only its own market. The input order is preserved.
func GroupByBaseProduct(products []ProductView) []ProductView {
	withBase := collection.Filter(products, func(p ProductView) bool { return p.BaseProductID != nil })
	groups := collection.GroupBy(withBase, func(p ProductView) uint { return *p.BaseProductID })

	marketsOf := make(map[uint][]MarketRef, len(groups))
	for baseID, group := range groups {
		distinct := collection.UniqueBy(group, func(p ProductView) uint { return p.MarketID })
		marketsOf[baseID] = collection.Map(distinct, func(p ProductView) MarketRef { return productMarket(p) })
	}

	out := make([]ProductView, len(products))
	for i, p := range products {
		if p.BaseProductID != nil {
			p.Markets = marketsOf[*p.BaseProductID]
		} else {
			p.Markets = []MarketRef{productMarket(p)}
		}
		out[i] = p
	}
	return out
}

func productMarket(p ProductView) MarketRef {
	if p.Market != nil {
		return refOf(p.Market)
	}
	return MarketRef{ID: p.MarketID}
}
