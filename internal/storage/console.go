package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/mselser95/eve-trade-arb/internal/arbitrage"
	"go.uber.org/zap"
)

// ConsoleStorage implements Store by printing each item's result and keeping
// the latest lists in memory for readers.
type ConsoleStorage struct {
	out     io.Writer
	printMu sync.Mutex
	items   map[int32][]*arbitrage.Opportunity
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewConsoleStorage creates a new console storage writing to stdout.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	return newConsoleStorage(os.Stdout, logger)
}

func newConsoleStorage(out io.Writer, logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		out:    out,
		items:  make(map[int32][]*arbitrage.Opportunity),
		logger: logger,
	}
}

// StoreItemOpportunities prints the item's opportunities and replaces the
// in-memory copy. Each item's block reaches out in a single write so blocks
// from concurrent workers never interleave.
func (c *ConsoleStorage) StoreItemOpportunities(ctx context.Context, itemID int32, opps []*arbitrage.Opportunity) error {
	c.mu.Lock()
	if len(opps) == 0 {
		delete(c.items, itemID)
	} else {
		copied := make([]*arbitrage.Opportunity, len(opps))
		copy(copied, opps)
		c.items[itemID] = copied
	}
	c.mu.Unlock()

	StoreOperationsTotal.WithLabelValues("console", "stored").Inc()

	if len(opps) == 0 {
		return nil
	}

	var block bytes.Buffer
	fmt.Fprintln(&block, "────────────────────────────────────────────────────────────────────────")
	fmt.Fprintf(&block, "ITEM %d  %s  (%d routes)\n", itemID, opps[0].ItemName, len(opps))
	for _, opp := range opps {
		fmt.Fprintf(&block, "  %-12s -> %-12s qty=%-8d buy=%-12.2f sell=%-12.2f profit=%-14.2f jumps=%d\n",
			opp.SourceHub, opp.DestinationHub, opp.Quantity, opp.BuyPrice, opp.SellPrice, opp.Profit, opp.Jumps)
	}

	c.printMu.Lock()
	defer c.printMu.Unlock()

	if _, err := c.out.Write(block.Bytes()); err != nil {
		c.logger.Warn("console-write-failed", zap.Int32("item-id", itemID), zap.Error(err))
	}
	return nil
}

// ItemOpportunities implements Reader.
func (c *ConsoleStorage) ItemOpportunities(ctx context.Context, itemID int32) ([]*arbitrage.Opportunity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	opps, ok := c.items[itemID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]*arbitrage.Opportunity(nil), opps...), nil
}

// AllOpportunities implements Reader, in item id order.
func (c *ConsoleStorage) AllOpportunities(ctx context.Context) ([]*arbitrage.Opportunity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]int32, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]*arbitrage.Opportunity, 0)
	for _, id := range ids {
		result = append(result, c.items[id]...)
	}
	return result, nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
