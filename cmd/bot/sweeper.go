package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/robfig/cron/v3"
)

const (
	// limiterPruneSchedule is how often idle rate limiter entries are dropped.
	limiterPruneSchedule = "@every 10m"

	// limiterIdle is how long a member's rate limiter is kept after their last request.
	limiterIdle = time.Hour
)

// newScheduler registers the background jobs. An empty sweep schedule disables reconciliation.
func (a *App) newScheduler() (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger)))

	if a.cfg.Sweep.Schedule != "" {
		if _, err := c.AddFunc(a.cfg.Sweep.Schedule, a.sweepGuilds); err != nil {
			return nil, fmt.Errorf("error scheduling sweep: %w", err)
		}
	}

	if _, err := c.AddFunc(limiterPruneSchedule, func() {
		if n := a.limiter.Prune(limiterIdle); n > 0 {
			a.Debug("Pruned idle rate limiters", slog.Int("count", n))
		}
	}); err != nil {
		return nil, fmt.Errorf("error scheduling limiter prune: %w", err)
	}
	return c, nil
}

// sweepGuilds reconciles the ledger of every guild the bot is in.
func (a *App) sweepGuilds() {
	if a.s.State == nil {
		return
	}

	a.s.State.RLock()
	guildIDs := make([]string, 0, len(a.s.State.Guilds))
	for _, g := range a.s.State.Guilds {
		guildIDs = append(guildIDs, g.ID)
	}
	a.s.State.RUnlock()

	exists := channelExists(a.s)
	for _, guildID := range guildIDs {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Discord.OperationTimeout)
		removed, err := a.engine.Sweep(ctx, guildID, exists, a.cfg.Tickets.PendingTTL)
		cancel()
		if err != nil {
			a.Error("Error sweeping guild",
				slog.String(logging.KeyError, err.Error()),
				slog.String(logging.KeyGuild, guildID),
			)
			continue
		}

		for _, t := range removed {
			a.Info("Removed stale ticket",
				slog.String(logging.KeyGuild, guildID),
				slog.String(logging.KeyChannel, t.ChannelID),
				slog.String("channel_name", t.ChannelName),
				slog.Bool("pending", t.Pending),
			)
		}
	}
}
