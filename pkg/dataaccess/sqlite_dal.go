package dataaccess

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
)

const sqliteDalName = "sqlite_dal"

const sqliteSchema = `CREATE TABLE IF NOT EXISTS guild_configs (
	guild_id   TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

const sqliteUpsert = `INSERT INTO guild_configs (guild_id, document, updated_at) VALUES (?, ?, ?)
ON CONFLICT(guild_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`

type sqliteDal struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *sql.DB
}

// NewSQLiteStore creates a ConfigStore that keeps each guild's config as a JSON document in
// the guild_configs table, creating the table if needed.
func NewSQLiteStore(ctx context.Context, l *slog.Logger, db *sql.DB) (ConfigStore, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("error creating guild_configs table: %w", err)
	}

	return &sqliteDal{
		l:  l.With(slog.String(logging.KeyDal, sqliteDalName)),
		db: db,
	}, nil
}

// GetGuildConfig gets a guild's config by guild ID.
func (d *sqliteDal) GetGuildConfig(ctx context.Context, guildID string) (*entities.GuildConfig, error) {
	monitoring.StoreTotalRequests.WithLabelValues(sqliteDalName, "get_guild_config").Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(sqliteDalName, "get_guild_config"))
	defer t.ObserveDuration()

	var doc string
	err := d.db.QueryRowContext(ctx, `SELECT document FROM guild_configs WHERE guild_id = ?`, guildID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.NewGuildConfig(guildID), nil
	} else if err != nil {
		return nil, fmt.Errorf("error getting guild config: %w", err)
	}

	cfg := new(entities.GuildConfig)
	if err := json.Unmarshal([]byte(doc), cfg); err != nil {
		return nil, fmt.Errorf("error decoding guild config: %w", err)
	}
	cfg.ID = guildID
	cfg.Normalize()
	return cfg, nil
}

// SaveGuildConfig replaces a guild's config row.
func (d *sqliteDal) SaveGuildConfig(ctx context.Context, cfg *entities.GuildConfig) error {
	monitoring.StoreTotalRequests.WithLabelValues(sqliteDalName, "save_guild_config").Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(sqliteDalName, "save_guild_config"))
	defer t.ObserveDuration()

	if cfg.ID == "" {
		return ErrInvalidGuildID
	}

	b, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error encoding guild config: %w", err)
	}

	if _, err := d.db.ExecContext(ctx, sqliteUpsert, cfg.ID, string(b), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("error saving guild config: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (d *sqliteDal) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("error pinging sqlite: %w", err)
	}
	return nil
}
