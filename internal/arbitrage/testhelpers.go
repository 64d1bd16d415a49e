package arbitrage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/mselser95/eve-trade-arb/pkg/types"
)

// StaticQuotes is a map-backed QuoteSource for tests.
type StaticQuotes struct {
	mu     sync.RWMutex
	quotes map[[2]int32]types.QuotePair
	errs   map[[2]int32]error
	calls  atomic.Int64
}

// NewStaticQuotes creates an empty StaticQuotes.
func NewStaticQuotes() *StaticQuotes {
	return &StaticQuotes{
		quotes: make(map[[2]int32]types.QuotePair),
		errs:   make(map[[2]int32]error),
	}
}

// SetSell sets the best ask for an item in a region.
func (s *StaticQuotes) SetSell(regionID int32, itemID int32, price float64, volume int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]int32{regionID, itemID}
	pair := s.quotes[key]
	pair.Sell = &types.OrderQuote{Price: price, VolumeRemain: volume}
	s.quotes[key] = pair
}

// SetBuy sets the best bid for an item in a region.
func (s *StaticQuotes) SetBuy(regionID int32, itemID int32, price float64, volume int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]int32{regionID, itemID}
	pair := s.quotes[key]
	pair.Buy = &types.OrderQuote{Price: price, VolumeRemain: volume}
	s.quotes[key] = pair
}

// SetError makes lookups for an item in a region fail.
func (s *StaticQuotes) SetError(regionID int32, itemID int32, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[[2]int32{regionID, itemID}] = err
}

// Quotes implements QuoteSource.
func (s *StaticQuotes) Quotes(ctx context.Context, regionID int32, itemID int32) (types.QuotePair, error) {
	s.calls.Add(1)

	err := ctx.Err()
	if err != nil {
		return types.QuotePair{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key := [2]int32{regionID, itemID}
	if err := s.errs[key]; err != nil {
		return types.QuotePair{}, err
	}

	return s.quotes[key], nil
}

// Calls returns the number of lookups served.
func (s *StaticQuotes) Calls() int64 {
	return s.calls.Load()
}

// CreateTestOpportunity creates an opportunity with consistent totals.
func CreateTestOpportunity(itemID int32, from string, to string, quantity int64, buyPrice float64, sellPrice float64) *Opportunity {
	qty := float64(quantity)
	cost := buyPrice * qty
	revenue := sellPrice * qty

	return &Opportunity{
		ItemID:          itemID,
		ItemName:        "Test Item",
		SourceHub:       from,
		DestinationHub:  to,
		BuyPrice:        buyPrice,
		SellPrice:       sellPrice,
		Quantity:        quantity,
		TotalCost:       cost,
		TotalVolume:     qty,
		ExpectedRevenue: revenue,
		Profit:          revenue - cost,
		Jumps:           1,
		ProfitPerJump:   revenue - cost,
	}
}
