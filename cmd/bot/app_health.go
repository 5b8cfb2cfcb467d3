package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/alexliesenfeld/health"
)

func (a *App) healthCheck() Controller {
	opts := []health.CheckerOption{
		// Set a TTL of 1 second for the results of the checks.
		health.WithCacheDuration(1 * time.Second),

		// Set a timeout of 2 seconds for the checks.
		health.WithTimeout(2 * time.Second),

		// Monitor the health of the Discord API.
		health.WithPeriodicCheck(15*time.Second, 5*time.Second, health.Check{
			Name: "Discord_API",
			Check: func(ctx context.Context) error {
				if _, err := a.Session().GatewayBot(); err != nil {
					return fmt.Errorf("failed to ping Discord API: %w", err)
				}
				return nil
			},
			Timeout:        3 * time.Second,
			StatusListener: a.statusListener("Discord API"),
		}),
	}

	// Monitor the health of the config store, where it can be reached.
	if p, ok := a.store.(dataaccess.Pinger); ok {
		opts = append(opts, health.WithCheck(health.Check{
			Name: "Config_Store",
			Check: func(ctx context.Context) error {
				if err := p.Ping(ctx); err != nil {
					return fmt.Errorf("failed to ping config store: %w", err)
				}
				return nil
			},
			Timeout:        2 * time.Second,
			StatusListener: a.statusListener("Config store"),
		}))
	}

	return Controller(health.NewHandler(health.NewChecker(opts...)))
}

func (a *App) statusListener(what string) func(ctx context.Context, name string, state health.CheckState) {
	return func(_ context.Context, name string, state health.CheckState) {
		a.Log().Info(what+" health check status changed",
			slog.String("name", name),
			slog.String("state", string(state.Status)),
		)
	}
}
