package arbitrage

import (
	"fmt"
)

// Opportunity is a profitable transfer of one item between two hubs.
// ExpectedRevenue - TotalCost == Profit always holds.
type Opportunity struct {
	ItemID          int32   `json:"item_id"`
	ItemName        string  `json:"item_name"`
	SourceHub       string  `json:"source_hub"`
	DestinationHub  string  `json:"destination_hub"`
	BuyPrice        float64 `json:"buy_price"`  // best ask at the source hub
	SellPrice       float64 `json:"sell_price"` // best bid at the destination hub
	Quantity        int64   `json:"quantity"`
	TotalCost       float64 `json:"total_cost"`
	TotalVolume     float64 `json:"total_volume"`
	ExpectedRevenue float64 `json:"expected_revenue"`
	Profit          float64 `json:"profit"`
	Jumps           int     `json:"jumps"`
	ProfitPerJump   float64 `json:"profit_per_jump"`
}

// FitsWithin reports whether a trader with the given wallet and cargo hold
// could execute the whole opportunity. Used when filtering batch results,
// which are computed without caller constraints.
func (o *Opportunity) FitsWithin(wallet float64, cargo float64) bool {
	return o.TotalCost <= wallet && o.TotalVolume <= cargo
}

// String returns a human-readable representation of the opportunity.
func (o *Opportunity) String() string {
	return fmt.Sprintf(
		"Opportunity[%d %s] %s->%s qty=%d cost=%.2f revenue=%.2f profit=%.2f jumps=%d profit/jump=%.2f",
		o.ItemID,
		o.ItemName,
		o.SourceHub,
		o.DestinationHub,
		o.Quantity,
		o.TotalCost,
		o.ExpectedRevenue,
		o.Profit,
		o.Jumps,
		o.ProfitPerJump,
	)
}

// FilterFitting returns the opportunities that fit within wallet and cargo,
// preserving order.
func FilterFitting(opps []*Opportunity, wallet float64, cargo float64) []*Opportunity {
	out := make([]*Opportunity, 0, len(opps))
	for _, opp := range opps {
		if opp.FitsWithin(wallet, cargo) {
			out = append(out, opp)
		}
	}
	return out
}
