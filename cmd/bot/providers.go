package main

import (
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/cmd/bot/config"
	"github.com/Jacobbrewer1/tickets/pkg/audit"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/ticketing"
)

// eventNotifierSize buffers gateway events so the metrics listener never blocks the session.
const eventNotifierSize = 100

func provideLoggingConfig(cfg *config.Config) *logging.Config {
	return cfg.LoggingConfig()
}

func provideStoreOptions(cfg *config.Config) dataaccess.Options {
	return cfg.StoreOptions()
}

func newEventNotifier() chan any {
	return make(chan any, eventNotifierSize)
}

func newDiscordSession(cfg *config.Config, notifier chan any) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds
	dg.SetEventNotifier(notifier)
	return dg, nil
}

// newAuditQueue delivers audit events to the guilds' log channels in the background.
func newAuditQueue(l *slog.Logger, s *discordgo.Session, cfg *config.Config) (*audit.Queue, func()) {
	q := audit.NewQueue(l, logChannelDeliverer(s), cfg.Audit.QueueSize, cfg.Audit.Timeout)
	return q, q.Close
}

func provideAuditSink(l *slog.Logger, q *audit.Queue) audit.Sink {
	return audit.Multi{audit.NewLogSink(l), q}
}

func provideEngine(l *slog.Logger, store dataaccess.ConfigStore, sink audit.Sink, s *discordgo.Session) *ticketing.Engine {
	return ticketing.NewEngine(l, store, sink, ticketing.WithRoleResolver(&stateRoleResolver{s: s}))
}

func provideOpenLimiter(cfg *config.Config) *openLimiter {
	return newOpenLimiter(cfg.Tickets.OpenInterval, cfg.Tickets.OpenBurst)
}
