package arbitrage

import "sort"

// Rank orders opportunities by profit, highest first. Equal profits prefer
// fewer jumps, then the lower item id; anything still tied keeps its
// enumeration order.
func Rank(opps []*Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		a, b := opps[i], opps[j]
		if a.Profit != b.Profit {
			return a.Profit > b.Profit
		}
		if a.Jumps != b.Jumps {
			return a.Jumps < b.Jumps
		}
		return a.ItemID < b.ItemID
	})
}

// TopK returns the first limit entries of a ranked slice. A non-positive
// limit yields an empty, non-nil slice.
func TopK(opps []*Opportunity, limit int) []*Opportunity {
	if limit <= 0 {
		return []*Opportunity{}
	}
	if len(opps) <= limit {
		if opps == nil {
			return []*Opportunity{}
		}
		return opps
	}
	return opps[:limit:limit]
}
