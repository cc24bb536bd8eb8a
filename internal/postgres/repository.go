package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gamebuddy-app/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both the pool and a transaction
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Repository provides PostgreSQL-based data access
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS gamers (
			id VARCHAR(64) PRIMARY KEY,
			username VARCHAR(255) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			age INT NOT NULL DEFAULT 0,
			country VARCHAR(64) NOT NULL DEFAULT '',
			gender VARCHAR(32) NOT NULL DEFAULT '',
			coin INT NOT NULL DEFAULT 0 CHECK (coin >= 0),
			avatar_id VARCHAR(64),
			fcm_token TEXT,
			last_modified TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS gamer_relations (
			user_low VARCHAR(64) NOT NULL REFERENCES gamers(id) ON DELETE CASCADE,
			user_high VARCHAR(64) NOT NULL REFERENCES gamers(id) ON DELETE CASCADE,
			state SMALLINT NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_low, user_high),
			CHECK (user_low < user_high)
		)`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			value INT NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS avatars (
			id UUID PRIMARY KEY,
			image TEXT NOT NULL,
			is_special BOOLEAN NOT NULL DEFAULT FALSE,
			price INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			game_icon TEXT NOT NULL DEFAULT '',
			category VARCHAR(64) NOT NULL DEFAULT '',
			avg_vote DOUBLE PRECISION NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			is_popular BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS keywords (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS gamer_earned_achievements (
			gamer_id VARCHAR(64) NOT NULL REFERENCES gamers(id) ON DELETE CASCADE,
			achievement_id UUID NOT NULL REFERENCES achievements(id),
			PRIMARY KEY (gamer_id, achievement_id)
		)`,
		`CREATE TABLE IF NOT EXISTS gamer_collected_achievements (
			gamer_id VARCHAR(64) NOT NULL REFERENCES gamers(id) ON DELETE CASCADE,
			achievement_id UUID NOT NULL REFERENCES achievements(id),
			PRIMARY KEY (gamer_id, achievement_id)
		)`,
		`CREATE TABLE IF NOT EXISTS bought_avatars (
			gamer_id VARCHAR(64) NOT NULL REFERENCES gamers(id) ON DELETE CASCADE,
			avatar_id UUID NOT NULL REFERENCES avatars(id),
			PRIMARY KEY (gamer_id, avatar_id)
		)`,
		`CREATE TABLE IF NOT EXISTS gamer_games_join (
			gamer_id VARCHAR(64) NOT NULL REFERENCES gamers(id) ON DELETE CASCADE,
			game_id VARCHAR(64) NOT NULL REFERENCES games(id),
			PRIMARY KEY (gamer_id, game_id)
		)`,
		`CREATE TABLE IF NOT EXISTS gamer_keywords_join (
			gamer_id VARCHAR(64) NOT NULL REFERENCES gamers(id) ON DELETE CASCADE,
			keyword_id VARCHAR(64) NOT NULL REFERENCES keywords(id),
			PRIMARY KEY (gamer_id, keyword_id)
		)`,
		`CREATE TABLE IF NOT EXISTS communities (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			community_avatar VARCHAR(255) NOT NULL DEFAULT '',
			wallpaper VARCHAR(255) NOT NULL DEFAULT '',
			owner_id VARCHAR(64) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS gamer_communities (
			gamer_id VARCHAR(64) NOT NULL REFERENCES gamers(id) ON DELETE CASCADE,
			community_id UUID NOT NULL REFERENCES communities(id) ON DELETE CASCADE,
			PRIMARY KEY (gamer_id, community_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_gamer_relations_high ON gamer_relations(user_high)`,
		`CREATE INDEX IF NOT EXISTS idx_games_popular ON games(avg_vote DESC) WHERE is_popular`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}
