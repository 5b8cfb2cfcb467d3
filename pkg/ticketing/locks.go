package ticketing

import (
	"context"
	"sync"
)

// GuildLocks serialises work per guild. Different guilds never wait on each other.
type GuildLocks struct {
	mu    sync.Mutex
	locks map[string]*guildLock
}

type guildLock struct {
	ch   chan struct{}
	refs int
}

// NewGuildLocks creates an empty lock set.
func NewGuildLocks() *GuildLocks {
	return &GuildLocks{
		locks: make(map[string]*guildLock),
	}
}

// Lock blocks until the guild's lock is held or the context is done. The returned function releases it.
func (g *GuildLocks) Lock(ctx context.Context, guildID string) (func(), error) {
	g.mu.Lock()
	gl, ok := g.locks[guildID]
	if !ok {
		gl = &guildLock{ch: make(chan struct{}, 1)}
		g.locks[guildID] = gl
	}
	gl.refs++
	g.mu.Unlock()

	select {
	case gl.ch <- struct{}{}:
	case <-ctx.Done():
		g.release(guildID, gl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-gl.ch
			g.release(guildID, gl)
		})
	}, nil
}

func (g *GuildLocks) release(guildID string, gl *guildLock) {
	g.mu.Lock()
	defer g.mu.Unlock()

	gl.refs--
	if gl.refs == 0 {
		delete(g.locks, guildID)
	}
}

// Len returns the number of guilds with a held or awaited lock.
func (g *GuildLocks) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}
