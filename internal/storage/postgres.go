package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/mselser95/auctionflow/pkg/types"
	"go.uber.org/zap"
)

// PostgresStorage implements Storage using PostgreSQL.
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

// StoreSwap persists a committed swap. Amounts are stored as numeric
// strings to keep full integer precision.
func (p *PostgresStorage) StoreSwap(ctx context.Context, event *types.SwapEvent) error {
	query := `
		INSERT INTO swap_events (
			id, pair_id, sender, receiver, token_in, token_out,
			amount_out, amount_in_max, amount_in, payload, executed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		event.ID,
		event.PairID,
		event.Sender.Hex(),
		event.Receiver.Hex(),
		event.TokenIn.Hex(),
		event.TokenOut.Hex(),
		event.AmountOut.String(),
		event.AmountInMax.String(),
		event.AmountIn.String(),
		event.Payload,
		event.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("insert swap event: %w", err)
	}

	p.logger.Debug("swap-event-stored",
		zap.String("swap-id", event.ID),
		zap.String("pair-id", event.PairID))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
