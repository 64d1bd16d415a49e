package types

// MarketOrder mirrors an ESI market order.
type MarketOrder struct {
	OrderID      int64   `json:"order_id"`
	TypeID       int32   `json:"type_id"`
	LocationID   int64   `json:"location_id"`
	SystemID     int32   `json:"system_id"`
	Price        float64 `json:"price"`
	VolumeRemain int64   `json:"volume_remain"`
	IsBuyOrder   bool    `json:"is_buy_order"`
}

// OrderQuote is the best standing order on one side of a book.
type OrderQuote struct {
	Price        float64 `json:"price"`
	VolumeRemain int64   `json:"volume_remain"`
}

// Valid reports whether the quote can be traded against.
func (q *OrderQuote) Valid() bool {
	return q != nil && q.Price > 0 && q.VolumeRemain >= 0
}

// QuotePair holds the best sell (lowest ask) and best buy (highest bid)
// for one item in one region. Either side may be nil.
type QuotePair struct {
	Sell *OrderQuote
	Buy  *OrderQuote
}

// BookPayload is the stored order-book document for one region/item.
// Sell is sorted by ascending price, Buy by descending price.
type BookPayload struct {
	Sell []OrderQuote `json:"sell"`
	Buy  []OrderQuote `json:"buy"`
}

// Best picks the extremal valid order on each side. Entries with a
// non-positive price or negative volume are ignored.
func (p *BookPayload) Best() QuotePair {
	var pair QuotePair

	for i := range p.Sell {
		q := p.Sell[i]
		if !q.Valid() {
			continue
		}
		if pair.Sell == nil || q.Price < pair.Sell.Price {
			pair.Sell = &q
		}
	}

	for i := range p.Buy {
		q := p.Buy[i]
		if !q.Valid() {
			continue
		}
		if pair.Buy == nil || q.Price > pair.Buy.Price {
			pair.Buy = &q
		}
	}

	return pair
}
