package dataaccess

import (
	"context"
	"sync"

	"github.com/Jacobbrewer1/tickets/pkg/entities"
)

type memoryDal struct {
	mu      sync.RWMutex
	configs map[string]*entities.GuildConfig
}

// NewMemoryStore creates a ConfigStore that keeps configs in memory. Configs are copied on
// the way in and out so callers never share state with the store.
func NewMemoryStore() ConfigStore {
	return &memoryDal{
		configs: make(map[string]*entities.GuildConfig),
	}
}

func (d *memoryDal) GetGuildConfig(_ context.Context, guildID string) (*entities.GuildConfig, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cfg, ok := d.configs[guildID]
	if !ok {
		return entities.NewGuildConfig(guildID), nil
	}
	return cfg.Clone(), nil
}

func (d *memoryDal) SaveGuildConfig(_ context.Context, cfg *entities.GuildConfig) error {
	if cfg.ID == "" {
		return ErrInvalidGuildID
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.configs[cfg.ID] = cfg.Clone()
	return nil
}

func (d *memoryDal) Ping(context.Context) error {
	return nil
}
