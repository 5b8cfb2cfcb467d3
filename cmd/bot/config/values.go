package config

import "time"

const (
	// AppName is the name of the application.
	AppName = "tickets"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`

	// EnvStoreDriver is the environment variable for the config store driver.
	EnvStoreDriver = `STORE_DRIVER`

	// EnvStorePath is the environment variable for the file or SQLite store location.
	EnvStorePath = `STORE_PATH`

	// EnvLogLevel is the environment variable for the log level.
	EnvLogLevel = `LOG_LEVEL`

	// EnvLogFormat is the environment variable for the log format.
	EnvLogFormat = `LOG_FORMAT`

	// EnvSweepSchedule is the environment variable for the ledger reconciliation schedule.
	EnvSweepSchedule = `SWEEP_SCHEDULE`
)

const (
	DefaultMonitoringPort   = "8080"
	DefaultStoreDriver      = "mongo"
	DefaultStorePath        = "data"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultOpenInterval     = 30 * time.Second
	DefaultOpenBurst        = 2
	DefaultPendingTTL       = 5 * time.Minute
	DefaultSweepSchedule    = "*/15 * * * *"
	DefaultAuditQueueSize   = 256
	DefaultAuditTimeout     = 10 * time.Second
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultOperationTimeout = 10 * time.Second
)

// envKeys maps the supported environment variables to config keys.
var envKeys = map[string]string{
	EnvBotToken:       "discord.token",
	EnvApplicationId:  "discord.application_id",
	EnvMongoUri:       "store.mongo_uri",
	EnvMonitoringPort: "monitoring.port",
	EnvStoreDriver:    "store.driver",
	EnvStorePath:      "store.path",
	EnvLogLevel:       "log.level",
	EnvLogFormat:      "log.format",
	EnvSweepSchedule:  "sweep.schedule",
}
