package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// FlagConfig is the flag holding the path of an optional YAML config file.
const FlagConfig = "config"

// ErrInvalidConfig is returned when the loaded configuration is incomplete or malformed.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the configuration for the bot.
type Config struct {
	Discord    DiscordConfig    `koanf:"discord"`
	Store      StoreConfig      `koanf:"store"`
	Monitoring MonitoringConfig `koanf:"monitoring"`
	Log        LogConfig        `koanf:"log"`
	Tickets    TicketsConfig    `koanf:"tickets"`
	Sweep      SweepConfig      `koanf:"sweep"`
	Audit      AuditConfig      `koanf:"audit"`
}

type DiscordConfig struct {
	// Token is the bot token.
	Token string `koanf:"token"`

	// ApplicationID is the ID of the application the slash commands are registered for.
	ApplicationID string `koanf:"application_id"`

	// OperationTimeout bounds each interaction's store operations.
	OperationTimeout time.Duration `koanf:"operation_timeout"`
}

type StoreConfig struct {
	// Driver is one of mongo, file, sqlite or memory.
	Driver string `koanf:"driver"`

	// MongoURI is the connection string for the mongo driver.
	MongoURI string `koanf:"mongo_uri"`

	// Path is the directory for the file driver or the database file for the sqlite driver.
	Path string `koanf:"path"`
}

type MonitoringConfig struct {
	// Port is the port the metrics and health server listens on.
	Port string `koanf:"port"`

	// ShutdownTimeout bounds the graceful shutdown of the monitoring server.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type TicketsConfig struct {
	// OpenInterval is how often a member may open a ticket once their burst is spent.
	OpenInterval time.Duration `koanf:"open_interval"`

	// OpenBurst is how many tickets a member may open back to back.
	OpenBurst int `koanf:"open_burst"`

	// PendingTTL is how long a reservation may wait for its channel before it is swept.
	PendingTTL time.Duration `koanf:"pending_ttl"`
}

type SweepConfig struct {
	// Schedule is a standard cron expression. Empty disables reconciliation.
	Schedule string `koanf:"schedule"`
}

type AuditConfig struct {
	// QueueSize is the number of audit events buffered for the log channel.
	QueueSize int `koanf:"queue_size"`

	// Timeout bounds the delivery of one audit event.
	Timeout time.Duration `koanf:"timeout"`
}

func defaults() map[string]any {
	return map[string]any{
		"discord.operation_timeout":   DefaultOperationTimeout,
		"store.driver":                DefaultStoreDriver,
		"store.path":                  DefaultStorePath,
		"monitoring.port":             DefaultMonitoringPort,
		"monitoring.shutdown_timeout": DefaultShutdownTimeout,
		"log.level":                   DefaultLogLevel,
		"log.format":                  DefaultLogFormat,
		"tickets.open_interval":       DefaultOpenInterval,
		"tickets.open_burst":          DefaultOpenBurst,
		"tickets.pending_ttl":         DefaultPendingTTL,
		"sweep.schedule":              DefaultSweepSchedule,
		"audit.queue_size":            DefaultAuditQueueSize,
		"audit.timeout":               DefaultAuditTimeout,
	}
}

// RegisterFlags adds the configuration flags to the flag set.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfig, "", "path of a YAML config file")
	fs.String("store.driver", DefaultStoreDriver, "config store driver (mongo, file, sqlite, memory)")
	fs.String("store.path", DefaultStorePath, "directory for the file store or database file for the sqlite store")
	fs.String("monitoring.port", DefaultMonitoringPort, "port for the metrics and health server")
	fs.String("log.level", DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.String("log.format", DefaultLogFormat, "log format (json, text)")
	fs.String("sweep.schedule", DefaultSweepSchedule, "cron schedule for ledger reconciliation, empty to disable")
}

// Load reads the configuration from the defaults, an optional YAML file, the environment and
// the command's flags, in increasing order of precedence.
func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("error setting default %s: %w", key, err)
		}
	}

	if cmd != nil {
		if path, _ := cmd.Flags().GetString(FlagConfig); path != "" {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	if cmd != nil {
		if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
			return nil, fmt.Errorf("error loading flags: %w", err)
		}
	}

	cfg := new(Config)
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the required values are present and well formed.
func (c *Config) Validate() error {
	var errs []error
	if c.Discord.Token == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvBotToken))
	}
	if c.Discord.ApplicationID == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvApplicationId))
	}

	switch dataaccess.Driver(c.Store.Driver) {
	case dataaccess.DriverMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, fmt.Errorf("%s is required for the mongo store", EnvMongoUri))
		}
	case dataaccess.DriverFile, dataaccess.DriverSQLite:
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("%s is required for the %s store", EnvStorePath, c.Store.Driver))
		}
	case dataaccess.DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("store driver %q is not supported", c.Store.Driver))
	}

	switch strings.ToLower(c.Log.Format) {
	case logging.FormatJSON, logging.FormatText:
	default:
		errs = append(errs, fmt.Errorf("log format %q is not supported", c.Log.Format))
	}

	if c.Sweep.Schedule != "" {
		if _, err := cron.ParseStandard(c.Sweep.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("sweep schedule %q: %w", c.Sweep.Schedule, err))
		}
	}
	if c.Tickets.OpenInterval < 0 || c.Tickets.OpenBurst < 1 {
		errs = append(errs, errors.New("tickets.open_interval must not be negative and tickets.open_burst must be at least 1"))
	}
	if c.Audit.QueueSize < 1 {
		errs = append(errs, errors.New("audit.queue_size must be at least 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// StoreOptions converts the store section into data access options.
func (c *Config) StoreOptions() dataaccess.Options {
	return dataaccess.Options{
		Driver:   dataaccess.Driver(c.Store.Driver),
		MongoURI: c.Store.MongoURI,
		Path:     c.Store.Path,
	}
}

// LoggingConfig converts the log section into a logging config.
func (c *Config) LoggingConfig() *logging.Config {
	lc := logging.NewConfig(AppName)
	lc.Level = logging.ParseLevel(c.Log.Level)
	lc.Format = strings.ToLower(c.Log.Format)
	return lc
}

// LogValue hides the secrets when the config is logged.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("application_id", c.Discord.ApplicationID),
		slog.String("store_driver", c.Store.Driver),
		slog.String("store_path", c.Store.Path),
		slog.String("monitoring_port", c.Monitoring.Port),
		slog.String("log_level", c.Log.Level),
		slog.String("sweep_schedule", c.Sweep.Schedule),
	)
}
