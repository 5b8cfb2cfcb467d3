package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const (
	// KeyError is the key for an error attribute.
	KeyError = "error"

	// KeyDal is the key for the data access layer name.
	KeyDal = "dal"

	// KeyGuild is the key for a guild ID.
	KeyGuild = "guild_id"

	// KeyChannel is the key for a channel ID.
	KeyChannel = "channel_id"

	// KeyUser is the key for a user ID.
	KeyUser = "user_id"

	// KeyApp is the key for the application name.
	KeyApp = "app"
)

const (
	// FormatJSON writes one JSON object per record.
	FormatJSON = "json"

	// FormatText writes coloured, human readable records.
	FormatText = "text"
)

// ErrInvalidFormat is returned when the log format is not known.
var ErrInvalidFormat = errors.New("invalid log format")

// Name is the name of the application the logger is for.
type Name string

// Config is the configuration for a logger.
type Config struct {
	// Name is attached to every record.
	Name Name

	// Level is the minimum level that is written.
	Level slog.Level

	// Format is one of FormatJSON or FormatText.
	Format string

	// Writer is where records are written. Defaults to stdout.
	Writer io.Writer
}

// NewConfig creates a new logging config with the defaults for the given application.
func NewConfig(name Name) *Config {
	return &Config{
		Name:   name,
		Level:  slog.LevelInfo,
		Format: FormatJSON,
		Writer: os.Stdout,
	}
}

// ParseLevel converts a level name into a slog.Level. Unknown names fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CommonLogger creates the logger used across the application and sets it as the default.
func CommonLogger(c *Config) (*slog.Logger, error) {
	if c == nil {
		return nil, errors.New("logging config is nil")
	}

	w := c.Writer
	if w == nil {
		w = os.Stdout
	}

	var h slog.Handler
	switch c.Format {
	case FormatJSON, "":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource: c.Level == slog.LevelDebug,
			Level:     c.Level,
		})
	case FormatText:
		h = tint.NewHandler(w, &tint.Options{
			Level:      c.Level,
			TimeFormat: time.TimeOnly,
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, c.Format)
	}

	l := slog.New(h).With(slog.String(KeyApp, string(c.Name)))
	slog.SetDefault(l)
	return l, nil
}
