package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/connection"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

// Driver names a ConfigStore backend.
type Driver string

const (
	// DriverMongo stores one document per guild in MongoDB.
	DriverMongo Driver = "mongo"

	// DriverFile stores one JSON file per guild in a directory.
	DriverFile Driver = "file"

	// DriverSQLite stores one row per guild in a SQLite database.
	DriverSQLite Driver = "sqlite"

	// DriverMemory keeps configs in memory. Nothing survives a restart.
	DriverMemory Driver = "memory"
)

const (
	// mongoDatabase is the database the guild configs are stored in.
	mongoDatabase = "tickets"

	// guildConfigsCollection is the collection, table or directory name for guild configs.
	guildConfigsCollection = "guild_configs"
)

// ErrUnknownDriver is returned when a store driver is not supported.
var ErrUnknownDriver = errors.New("unknown store driver")

// ConfigStore persists guild configs. Each guild is one document and every save replaces it
// in a single write.
type ConfigStore interface {
	// GetGuildConfig returns the guild's config, or a new default config if none is stored.
	GetGuildConfig(ctx context.Context, guildID string) (*entities.GuildConfig, error)

	// SaveGuildConfig replaces the guild's config.
	SaveGuildConfig(ctx context.Context, cfg *entities.GuildConfig) error
}

// Pinger is implemented by stores that can report whether their backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options select and configure a ConfigStore.
type Options struct {
	// Driver is the backend to use.
	Driver Driver

	// MongoURI is the connection string for DriverMongo.
	MongoURI string

	// Path is the directory for DriverFile or the database file for DriverSQLite.
	Path string
}

// NewConfigStore creates the store selected by the options. The returned function releases
// the store's connections.
func NewConfigStore(ctx context.Context, l *slog.Logger, opts Options) (ConfigStore, func(), error) {
	switch opts.Driver {
	case DriverMongo, "":
		conn := &connection.MongoDB{ConnectionString: opts.MongoURI}
		client, err := conn.Connect(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("error connecting to mongo: %w", err)
		}
		cleanup := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				l.Error("Error disconnecting from mongo", slog.String(logging.KeyError, err.Error()))
			}
		}
		return NewGuildConfigDal(l, client), cleanup, nil
	case DriverFile:
		s, err := NewFileStore(l, opts.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case DriverSQLite:
		db, err := connection.OpenSQLite(ctx, opts.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening sqlite: %w", err)
		}
		s, err := NewSQLiteStore(ctx, l, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				l.Error("Error closing sqlite", slog.String(logging.KeyError, err.Error()))
			}
		}
		return s, cleanup, nil
	case DriverMemory:
		return NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownDriver, opts.Driver)
	}
}
