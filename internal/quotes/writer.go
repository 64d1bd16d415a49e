package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/eve-trade-arb/pkg/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultQuoteTTL is how long a written order book stays readable.
const DefaultQuoteTTL = time.Hour

// defaultBatchSize caps the commands sent in one pipeline round trip.
const defaultBatchSize = 500

// Writer stores order-book documents for the quote source to read.
type Writer struct {
	client    *redis.Client
	ttl       time.Duration
	batchSize int
	logger    *zap.Logger
}

// WriterConfig holds Writer configuration.
type WriterConfig struct {
	Client    *redis.Client
	TTL       time.Duration
	BatchSize int
	Logger    *zap.Logger
}

// NewWriter creates a Writer.
func NewWriter(cfg WriterConfig) (*Writer, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Writer{
		client:    cfg.Client,
		ttl:       ttl,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// WriteRegion stores one document per item for a region, replacing any
// previous document. It returns the number of documents written.
func (w *Writer) WriteRegion(ctx context.Context, regionID int32, books map[int32]types.BookPayload) (int, error) {
	written := 0
	pipe := w.client.Pipeline()

	flush := func() error {
		if pipe.Len() == 0 {
			return nil
		}
		n := pipe.Len()
		_, err := pipe.Exec(ctx)
		if err != nil {
			return fmt.Errorf("write order books for region %d: %w", regionID, err)
		}
		written += n
		return nil
	}

	for itemID, book := range books {
		data, err := json.Marshal(book)
		if err != nil {
			return written, fmt.Errorf("marshal order book %s: %w", Key(regionID, itemID), err)
		}

		pipe.Set(ctx, Key(regionID, itemID), data, w.ttl)

		if pipe.Len() >= w.batchSize {
			err = flush()
			if err != nil {
				return written, err
			}
		}
	}

	err := flush()
	if err != nil {
		return written, err
	}

	BooksWrittenTotal.Add(float64(written))
	w.logger.Debug("order-books-written",
		zap.Int32("region-id", regionID),
		zap.Int("books", written),
		zap.Duration("ttl", w.ttl))

	return written, nil
}
