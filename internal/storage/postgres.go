package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/mselser95/eve-trade-arb/internal/arbitrage"
	"go.uber.org/zap"
)

// PostgresStorage implements Store using PostgreSQL. One row per
// opportunity; an item's rows are replaced in a single transaction.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

const opportunityColumns = `item_id, position, item_name, source_hub, destination_hub,
	buy_price, sell_price, quantity, total_cost, total_volume,
	expected_revenue, profit, jumps, profit_per_jump`

// NewPostgresStorage creates a new PostgreSQL storage.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Test connection
	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// StoreItemOpportunities replaces all rows for itemID.
func (p *PostgresStorage) StoreItemOpportunities(ctx context.Context, itemID int32, opps []*arbitrage.Opportunity) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		StoreOperationsTotal.WithLabelValues("postgres", "error").Inc()
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			StoreOperationsTotal.WithLabelValues("postgres", "error").Inc()
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `DELETE FROM trade_opportunities WHERE item_id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete opportunities for item %d: %w", itemID, err)
	}

	query := `INSERT INTO trade_opportunities (` + opportunityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	for i, opp := range opps {
		_, err = tx.ExecContext(ctx, query,
			itemID,
			i,
			opp.ItemName,
			opp.SourceHub,
			opp.DestinationHub,
			opp.BuyPrice,
			opp.SellPrice,
			opp.Quantity,
			opp.TotalCost,
			opp.TotalVolume,
			opp.ExpectedRevenue,
			opp.Profit,
			opp.Jumps,
			opp.ProfitPerJump,
		)
		if err != nil {
			return fmt.Errorf("insert opportunity for item %d: %w", itemID, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit opportunities for item %d: %w", itemID, err)
	}

	StoreOperationsTotal.WithLabelValues("postgres", "stored").Inc()
	p.logger.Debug("item-opportunities-stored",
		zap.Int32("item-id", itemID),
		zap.Int("count", len(opps)))

	return nil
}

// ItemOpportunities implements Reader. An item whose last batch found
// nothing has no rows and is reported as ErrNotFound.
func (p *PostgresStorage) ItemOpportunities(ctx context.Context, itemID int32) ([]*arbitrage.Opportunity, error) {
	opps, err := p.query(ctx,
		`SELECT `+opportunityColumns+` FROM trade_opportunities WHERE item_id = $1 ORDER BY position`,
		itemID)
	if err != nil {
		return nil, err
	}
	if len(opps) == 0 {
		return nil, ErrNotFound
	}
	return opps, nil
}

// AllOpportunities implements Reader.
func (p *PostgresStorage) AllOpportunities(ctx context.Context) ([]*arbitrage.Opportunity, error) {
	return p.query(ctx,
		`SELECT `+opportunityColumns+` FROM trade_opportunities ORDER BY item_id, position`)
}

func (p *PostgresStorage) query(ctx context.Context, query string, args ...any) ([]*arbitrage.Opportunity, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query opportunities: %w", err)
	}
	defer rows.Close()

	result := make([]*arbitrage.Opportunity, 0)
	for rows.Next() {
		var (
			opp      arbitrage.Opportunity
			position int
		)
		err = rows.Scan(
			&opp.ItemID,
			&position,
			&opp.ItemName,
			&opp.SourceHub,
			&opp.DestinationHub,
			&opp.BuyPrice,
			&opp.SellPrice,
			&opp.Quantity,
			&opp.TotalCost,
			&opp.TotalVolume,
			&opp.ExpectedRevenue,
			&opp.Profit,
			&opp.Jumps,
			&opp.ProfitPerJump,
		)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		result = append(result, &opp)
	}

	err = rows.Err()
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("iterate opportunities: %w", err)
	}

	return result, nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
