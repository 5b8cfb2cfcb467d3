package dataaccess

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	fileDalName = "file_dal"

	// fileLockRetry is how often a contended lock file is retried.
	fileLockRetry = 25 * time.Millisecond
)

// ErrInvalidGuildID is returned when a guild ID cannot be used as a file name.
var ErrInvalidGuildID = errors.New("invalid guild id")

type fileDal struct {
	// l is the logger.
	l *slog.Logger

	// dir holds one <guild id>.json file per guild.
	dir string
}

// NewFileStore creates a ConfigStore that keeps each guild's config as a JSON file in dir.
// Writes replace the file atomically and are serialised across processes with a lock file.
func NewFileStore(l *slog.Logger, dir string) (ConfigStore, error) {
	if dir == "" {
		return nil, errors.New("no file store directory provided")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating file store directory: %w", err)
	}

	return &fileDal{
		l:   l.With(slog.String(logging.KeyDal, fileDalName)),
		dir: dir,
	}, nil
}

func (d *fileDal) path(guildID string) (string, error) {
	if guildID == "" {
		return "", ErrInvalidGuildID
	}
	for _, r := range guildID {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidGuildID, guildID)
		}
	}
	return filepath.Join(d.dir, guildID+".json"), nil
}

// GetGuildConfig reads a guild's config under a shared lock.
func (d *fileDal) GetGuildConfig(ctx context.Context, guildID string) (*entities.GuildConfig, error) {
	monitoring.StoreTotalRequests.WithLabelValues(fileDalName, "get_guild_config").Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(fileDalName, "get_guild_config"))
	defer t.ObserveDuration()

	path, err := d.path(guildID)
	if err != nil {
		return nil, err
	}

	lock := flock.New(path + ".lock")
	if _, err := lock.TryRLockContext(ctx, fileLockRetry); err != nil {
		return nil, fmt.Errorf("error locking guild config: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			d.l.Error("Error unlocking guild config", slog.String(logging.KeyError, err.Error()))
		}
	}()

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return entities.NewGuildConfig(guildID), nil
	} else if err != nil {
		return nil, fmt.Errorf("error reading guild config: %w", err)
	}

	cfg := new(entities.GuildConfig)
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("error decoding guild config: %w", err)
	}
	cfg.ID = guildID
	cfg.Normalize()
	return cfg, nil
}

// SaveGuildConfig replaces a guild's config file under an exclusive lock.
func (d *fileDal) SaveGuildConfig(ctx context.Context, cfg *entities.GuildConfig) error {
	monitoring.StoreTotalRequests.WithLabelValues(fileDalName, "save_guild_config").Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(fileDalName, "save_guild_config"))
	defer t.ObserveDuration()

	path, err := d.path(cfg.ID)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding guild config: %w", err)
	}

	lock := flock.New(path + ".lock")
	if _, err := lock.TryLockContext(ctx, fileLockRetry); err != nil {
		return fmt.Errorf("error locking guild config: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			d.l.Error("Error unlocking guild config", slog.String(logging.KeyError, err.Error()))
		}
	}()

	if err := atomic.WriteFile(path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("error writing guild config: %w", err)
	}
	return nil
}

// Ping checks that the store directory is still there.
func (d *fileDal) Ping(_ context.Context) error {
	info, err := os.Stat(d.dir)
	if err != nil {
		return fmt.Errorf("error checking file store directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("file store path %s is not a directory", d.dir)
	}
	return nil
}
