package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}

	if err := client.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (p *PostgresClient) Migrate() error {
	ctx := context.Background()

	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS admin_users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) DEFAULT 'admin',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create admin_users table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS subscribers (
			id SERIAL PRIMARY KEY,
			bot VARCHAR(20) NOT NULL,
			telegram_id VARCHAR(32) NOT NULL,
			username VARCHAR(255),
			first_name VARCHAR(255),
			last_name VARCHAR(255),
			language VARCHAR(8) DEFAULT 'tr',
			total_requests INT DEFAULT 0,
			text_requests INT DEFAULT 0,
			voice_requests INT DEFAULT 0,
			image_requests INT DEFAULT 0,
			is_blocked BOOLEAN DEFAULT FALSE,
			is_active BOOLEAN DEFAULT TRUE,
			last_active_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (bot, telegram_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("create subscribers table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS channels (
			id SERIAL PRIMARY KEY,
			channel_id VARCHAR(64) NOT NULL,
			channel_username VARCHAR(255) NOT NULL,
			title VARCHAR(255) NOT NULL,
			photo_url TEXT,
			is_mandatory BOOLEAN DEFAULT TRUE,
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create channels table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS posts (
			id SERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			media_url TEXT,
			media_path TEXT,
			type VARCHAR(20) DEFAULT 'text',
			button_text VARCHAR(255),
			button_url TEXT,
			channel_id VARCHAR(64),
			message_id VARCHAR(64),
			status VARCHAR(20) DEFAULT 'draft',
			scheduled_at TIMESTAMP,
			sent_at TIMESTAMP,
			broadcast_to_users BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS usage_records (
			id SERIAL PRIMARY KEY,
			telegram_id VARCHAR(32) NOT NULL,
			bot VARCHAR(20) NOT NULL,
			type VARCHAR(20) DEFAULT 'text',
			original_text TEXT NOT NULL,
			corrected_text TEXT NOT NULL,
			errors_count INT DEFAULT 0,
			processing_ms BIGINT DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create usage_records table: %w", err)
	}

	// Aggregate queries filter on created_at constantly
	_, err = p.Pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_usage_created_at ON usage_records (created_at);`)
	if err != nil {
		return fmt.Errorf("create usage index: %w", err)
	}

	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
