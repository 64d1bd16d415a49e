package arbitrage

import (
	"math"

	"github.com/mselser95/eve-trade-arb/pkg/types"
)

// Prune reasons, also used as metric labels.
const (
	reasonNoQuote        = "no_quote"
	reasonNoMargin       = "no_margin"
	reasonNoQuantity     = "no_quantity"
	reasonBelowMinProfit = "below_min_profit"
)

// bounds are the limits applied to a single (route, item) evaluation.
// Batch runs leave constrained false so only order-book liquidity applies.
type bounds struct {
	constrained bool
	wallet      float64
	cargo       float64
	minProfit   float64
}

func onDemandBounds(c Constraints) bounds {
	return bounds{
		constrained: true,
		wallet:      c.Wallet,
		cargo:       c.Cargo,
		minProfit:   c.MinProfit,
	}
}

// evaluate decides whether moving item along route is profitable given the
// best ask at the source (sell) and best bid at the destination (buy).
// It returns the opportunity, or nil and the prune reason.
func evaluate(route types.Route, item types.Item, sell *types.OrderQuote, buy *types.OrderQuote, b bounds) (*Opportunity, string) {
	if !sell.Valid() || !buy.Valid() {
		return nil, reasonNoQuote
	}

	buyPrice := sell.Price
	sellPrice := buy.Price
	if sellPrice <= buyPrice {
		return nil, reasonNoMargin
	}

	quantity := min(sell.VolumeRemain, buy.VolumeRemain)
	unitVolume := item.UnitVolume()

	if b.constrained {
		quantity = capQuantity(quantity, b.wallet/buyPrice)
		// Unknown or zero volume: the hold never limits the trade.
		if unitVolume > 0 {
			quantity = capQuantity(quantity, b.cargo/unitVolume)
		}
	}

	if quantity <= 0 {
		return nil, reasonNoQuantity
	}

	qty := float64(quantity)
	totalCost := buyPrice * qty
	revenue := sellPrice * qty
	profit := revenue - totalCost

	if b.constrained {
		if profit < b.minProfit {
			return nil, reasonBelowMinProfit
		}
	} else if profit <= 0 {
		return nil, reasonBelowMinProfit
	}

	profitPerJump := profit
	if route.Jumps > 0 {
		profitPerJump = profit / float64(route.Jumps)
	}

	return &Opportunity{
		ItemID:          item.ID,
		ItemName:        item.DisplayName(),
		SourceHub:       route.From.Name,
		DestinationHub:  route.To.Name,
		BuyPrice:        buyPrice,
		SellPrice:       sellPrice,
		Quantity:        quantity,
		TotalCost:       totalCost,
		TotalVolume:     unitVolume * qty,
		ExpectedRevenue: revenue,
		Profit:          profit,
		Jumps:           route.Jumps,
		ProfitPerJump:   profitPerJump,
	}, ""
}

// capQuantity lowers quantity to floor(limit).
func capQuantity(quantity int64, limit float64) int64 {
	if math.IsNaN(limit) || limit <= 0 {
		return 0
	}

	capped := math.Floor(limit)
	if capped < float64(quantity) {
		return int64(capped)
	}

	return quantity
}
