package storage

import (
	"context"
	"errors"

	"github.com/mselser95/eve-trade-arb/internal/arbitrage"
)

// ErrNotFound is returned when nothing has been stored for an item.
var ErrNotFound = errors.New("no stored opportunities")

// Storage persists batch results. Each store call replaces everything
// previously stored for the item, including with an empty list.
type Storage interface {
	// StoreItemOpportunities replaces the stored list for itemID.
	StoreItemOpportunities(ctx context.Context, itemID int32, opps []*arbitrage.Opportunity) error

	// Close closes the storage connection.
	Close() error
}

// Reader serves stored batch results.
type Reader interface {
	// ItemOpportunities returns the stored list for one item, or ErrNotFound.
	ItemOpportunities(ctx context.Context, itemID int32) ([]*arbitrage.Opportunity, error)

	// AllOpportunities returns every stored opportunity.
	AllOpportunities(ctx context.Context) ([]*arbitrage.Opportunity, error)
}

// Store is a Storage that can also be read back.
type Store interface {
	Storage
	Reader
}
