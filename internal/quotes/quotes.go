// Package quotes serves best buy and sell quotes per (region, item) from the
// order-book documents the price loader keeps in Redis.
package quotes

import (
	"context"
	"fmt"

	"github.com/mselser95/eve-trade-arb/pkg/types"
)

// KeyPrefix prefixes every stored order-book document.
const KeyPrefix = "orders"

// Source resolves the best quotes for an item in a region.
type Source interface {
	Quotes(ctx context.Context, regionID int32, itemID int32) (types.QuotePair, error)
}

// Key returns the storage key for one region/item order book.
func Key(regionID int32, itemID int32) string {
	return fmt.Sprintf("%s:%d:%d", KeyPrefix, regionID, itemID)
}
