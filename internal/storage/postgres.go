package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/lib/pq"
	"github.com/quantfeed/blockwatch/pkg/types"
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

// StoreMessage stores a raw feed message. The feed redelivers messages after
// reconnects, so an existing message_id is left untouched.
func (p *PostgresStorage) StoreMessage(ctx context.Context, msg *types.RawMessage) error {
	query := `
		INSERT INTO feed_messages (message_id, received_at, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id) DO NOTHING
	`

	_, err := p.db.ExecContext(ctx, query, msg.ID, msg.Timestamp, msg.Text)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	p.logger.Debug("message-stored", zap.Int64("message-id", msg.ID))
	return nil
}

// StoreTrade stores the parsed trade for a message. Legs and greeks go into
// JSONB columns so multi-leg strategies need no schema change.
func (p *PostgresStorage) StoreTrade(ctx context.Context, messageID int64, trade *types.ParsedTrade) error {
	legsJSON, err := json.Marshal(trade.Legs)
	if err != nil {
		return fmt.Errorf("marshal legs: %w", err)
	}

	var greeksJSON []byte
	if trade.Greeks != nil {
		greeksJSON, err = json.Marshal(trade.Greeks)
		if err != nil {
			return fmt.Errorf("marshal greeks: %w", err)
		}
	}

	query := `
		INSERT INTO parsed_trades (
			message_id, asset, strategy_title, exchange, ref_price_usd, legs, greeks
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (message_id) DO UPDATE SET
			asset = EXCLUDED.asset,
			strategy_title = EXCLUDED.strategy_title,
			exchange = EXCLUDED.exchange,
			ref_price_usd = EXCLUDED.ref_price_usd,
			legs = EXCLUDED.legs,
			greeks = EXCLUDED.greeks
	`

	_, err = p.db.ExecContext(ctx, query,
		messageID,
		string(trade.Asset),
		trade.StrategyTitle,
		trade.Exchange,
		trade.RefPriceUSD,
		legsJSON,
		greeksJSON,
	)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}

	p.logger.Debug("trade-stored",
		zap.Int64("message-id", messageID),
		zap.String("asset", string(trade.Asset)),
		zap.Int("leg-count", len(trade.Legs)))
	return nil
}

// StoreDecision stores an alert decision. Decision IDs are deterministic per
// message, so re-evaluating a message overwrites nothing new.
func (p *PostgresStorage) StoreDecision(ctx context.Context, decision *types.AlertDecision) error {
	metricsJSON, err := json.Marshal(decision.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	thresholdsJSON, err := json.Marshal(decision.Thresholds)
	if err != nil {
		return fmt.Errorf("marshal thresholds: %w", err)
	}

	reasons := make([]string, 0, len(decision.Reasons))
	for _, r := range decision.Reasons {
		reasons = append(reasons, string(r))
	}

	query := `
		INSERT INTO alert_decisions (
			id, message_id, fire, reasons, skip_reason, metrics, thresholds
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = p.db.ExecContext(ctx, query,
		decision.ID,
		decision.MessageID,
		decision.Fire,
		pq.Array(reasons),
		string(decision.SkipReason),
		metricsJSON,
		thresholdsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}

	p.logger.Debug("decision-stored",
		zap.String("decision-id", decision.ID),
		zap.Bool("fire", decision.Fire))
	return nil
}

// ListMessages returns stored raw messages in [from, to), oldest first.
func (p *PostgresStorage) ListMessages(ctx context.Context, from, to time.Time) ([]types.RawMessage, error) {
	query := `
		SELECT message_id, received_at, body
		FROM feed_messages
		WHERE received_at >= $1 AND received_at < $2
		ORDER BY received_at ASC
	`

	rows, err := p.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []types.RawMessage
	for rows.Next() {
		var msg types.RawMessage
		err = rows.Scan(&msg.ID, &msg.Timestamp, &msg.Text)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
