package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const guildConfigDalName = "guild_config_dal"

type guildConfigDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewGuildConfigDal creates a ConfigStore backed by MongoDB.
func NewGuildConfigDal(l *slog.Logger, client *mongo.Client) ConfigStore {
	l = l.With(slog.String(logging.KeyDal, guildConfigDalName))

	if client == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &guildConfigDal{
		l:      l,
		client: client,
	}
}

func (d *guildConfigDal) collection() *mongo.Collection {
	return d.client.Database(mongoDatabase).Collection(guildConfigsCollection)
}

// GetGuildConfig gets a guild's config by guild ID.
func (d *guildConfigDal) GetGuildConfig(ctx context.Context, guildID string) (*entities.GuildConfig, error) {
	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(guildConfigDalName, "get_guild_config", mongoDatabase, guildConfigsCollection).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(guildConfigDalName, "get_guild_config", mongoDatabase, guildConfigsCollection))
	defer t.ObserveDuration()

	cfg := new(entities.GuildConfig)
	err := d.collection().FindOne(ctx, bson.M{"id": guildID}).Decode(cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		d.l.Debug("No config stored for guild, using defaults", slog.String(logging.KeyGuild, guildID))
		return entities.NewGuildConfig(guildID), nil
	} else if err != nil {
		return nil, fmt.Errorf("error getting guild config: %w", err)
	}

	cfg.Normalize()
	return cfg, nil
}

// SaveGuildConfig replaces a guild's config, inserting it if it does not exist.
func (d *guildConfigDal) SaveGuildConfig(ctx context.Context, cfg *entities.GuildConfig) error {
	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(guildConfigDalName, "save_guild_config", mongoDatabase, guildConfigsCollection).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(guildConfigDalName, "save_guild_config", mongoDatabase, guildConfigsCollection))
	defer t.ObserveDuration()

	opts := options.Replace().SetUpsert(true)
	if _, err := d.collection().ReplaceOne(ctx, bson.M{"id": cfg.ID}, cfg, opts); err != nil {
		return fmt.Errorf("error saving guild config: %w", err)
	}
	return nil
}

// Ping checks that the primary is reachable.
func (d *guildConfigDal) Ping(ctx context.Context) error {
	monitoring.MongoTotalRequests.WithLabelValues("health_check", "ping", "-", "-").Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues("health_check", "ping", "-", "-"))
	defer t.ObserveDuration()

	if err := d.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("error pinging mongo: %w", err)
	}
	return nil
}
