package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/cmd/bot/config"
	"github.com/Jacobbrewer1/tickets/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/request"
	"github.com/Jacobbrewer1/tickets/pkg/ticketing"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
)

const (
	// PathMetrics is the path for the prometheus metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for the health check.
	PathHealth = "/health"
)

// IApp is the interface for the application.
type IApp interface {
	// Log returns the logger.
	Log() *slog.Logger

	// Session returns the discord session.
	Session() *discordgo.Session

	// Engine returns the ticket engine.
	Engine() *ticketing.Engine

	// Limiter returns the ticket open rate limiter.
	Limiter() *openLimiter

	// Config returns the configuration.
	Config() *config.Config
}

type App struct {
	// is the logger.
	*slog.Logger

	// cfg is the loaded configuration.
	cfg *config.Config

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// store is the guild config store.
	store dataaccess.ConfigStore

	// engine runs the ticket lifecycle.
	engine *ticketing.Engine

	// limiter limits how often members open tickets.
	limiter *openLimiter

	// c runs the background jobs.
	c *cron.Cron

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any
}

// NewApp creates a new instance of App.
func NewApp(
	l *slog.Logger,
	cfg *config.Config,
	r *mux.Router,
	s *discordgo.Session,
	notifier chan any,
	store dataaccess.ConfigStore,
	engine *ticketing.Engine,
	limiter *openLimiter,
) *App {
	return &App{
		Logger:        l,
		cfg:           cfg,
		r:             r,
		s:             s,
		store:         store,
		engine:        engine,
		limiter:       limiter,
		eventNotifier: notifier,
	}
}

// Run connects to Discord and serves the monitoring endpoints until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s", r.User.Username), slog.Int("guilds", len(r.Guilds)))
	})

	a.registerDiscordHandlers()

	// Start event listener.
	go a.eventListener()

	c, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("error creating scheduler: %w", err)
	}
	a.c = c

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.c.Start()
	a.Info("Bot is now running.")

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	<-ctx.Done()
	a.Info("Received shutdown signal")
	return a.ShutdownHook()
}

// ShutdownHook stops the background work and closes the connections.
func (a *App) ShutdownHook() error {
	monitoring.TotalDiscordGuilds.Set(0)

	var errs []error
	if a.c != nil {
		<-a.c.Stop().Done()
	}

	if a.svr != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Monitoring.ShutdownTimeout)
		defer cancel()
		if err := a.svr.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("error shutting down monitoring server: %w", err))
		}
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing connection to Discord: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) runServer() {
	go func() {
		a.Info("Starting monitoring server", slog.String("addr", a.svr.Addr))
		if err := a.svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)
	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), a)).Methods(http.MethodGet)

	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger)
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:    ":" + a.cfg.Monitoring.Port,
		Handler: a.r,
	}
}

func (a *App) registerDiscordHandlers() {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a,
		// Slash Controllers
		map[string]slashCommandController{
			panelCmdName:        panelCmdController,
			TicketCmdName:       ticketCmdController,
			ticketTypeCmdName:   ticketTypeCmdController,
			ticketConfigCmdName: ticketConfigCmdController,
		},
		// Button Controllers
		map[string]componentProcessor{
			OpenTicketButtonPrefix: openTicketButton,
			ClaimTicketButtonID:    claimTicketButton,
			CloseTicketButtonID:    closeTicketButton,
		},
		// Modal Controllers
		map[string]componentProcessor{
			IntakeModalPrefix: intakeModalSubmit,
		}))
}

func (a *App) eventListener() {
	for e := range a.eventNotifier {
		switch t := e.(type) {
		case *discordgo.Event:
			if t.Type != "" {
				monitoring.TotalDiscordEvents.WithLabelValues(t.Type).Inc()
			} else {
				// If there is no type, then use the operation name.
				monitoring.TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
			}
		default:
			a.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
			monitoring.TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	}
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Engine() *ticketing.Engine {
	return a.engine
}

func (a *App) Limiter() *openLimiter {
	return a.limiter
}

func (a *App) Config() *config.Config {
	return a.cfg
}
