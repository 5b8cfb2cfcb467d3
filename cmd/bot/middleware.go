package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/messages"
	"github.com/Jacobbrewer1/tickets/pkg/request"
	"github.com/gorilla/mux"
)

// slashCommandController is the handler for slash commands. It picks the processor for a sub command.
type slashCommandController func(a IApp, cmd string) (slashProcessor, error)

// slashProcessor is the processor for slash commands.
type slashProcessor func(a IApp, i *discordgo.InteractionCreate) error

// componentProcessor handles a button press or modal submission. arg is the part of the custom
// ID after the prefix.
type componentProcessor func(a IApp, i *discordgo.InteractionCreate, arg string) error

type Controller func(w http.ResponseWriter, r *http.Request)

func middlewareHttp(handler Controller, a IApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
				)
				cw.WriteHeader(http.StatusInternalServerError)
				if err := json.NewEncoder(cw).Encode(request.NewMessage(request.ErrInternalServer.Error())); err != nil {
					a.Log().Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
				}
			}
		}()

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Log().Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path
			}
		} else {
			path = r.URL.Path
		}

		defer func() {
			// The status code is only known once the handler has returned.
			monitoring.HttpTotalRequests.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Inc()
			monitoring.HttpRequestDuration.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Observe(time.Since(now).Seconds())
		}()

		handler(cw, r)
	}
}

// interactionHandler routes interactions to their processors. Slash commands are routed by
// command name, components and modals by custom ID prefix.
func interactionHandler(
	a IApp,
	slash map[string]slashCommandController,
	components map[string]componentProcessor,
	modals map[string]componentProcessor,
) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		var (
			name string
			run  func() error
		)

		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			data := i.ApplicationCommandData()
			name = data.Name
			controller, ok := slash[name]
			if !ok {
				break
			}

			var sub string
			if len(data.Options) > 0 && data.Options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
				sub = data.Options[0].Name
			}
			run = func() error {
				processor, err := controller(a, sub)
				if err != nil {
					return fmt.Errorf("error getting processor for command %s: %w", name, err)
				}
				return processor(a, i)
			}
		case discordgo.InteractionMessageComponent:
			prefix, arg := decodeCustomID(i.MessageComponentData().CustomID)
			name = prefix
			if processor, ok := components[prefix]; ok {
				run = func() error { return processor(a, i, arg) }
			}
		case discordgo.InteractionModalSubmit:
			prefix, arg := decodeCustomID(i.ModalSubmitData().CustomID)
			name = prefix
			if processor, ok := modals[prefix]; ok {
				run = func() error { return processor(a, i, arg) }
			}
		default:
			return
		}

		a.Log().Debug("Handling interaction", slog.String("interaction", name), slog.String(logging.KeyGuild, i.GuildID))

		if run == nil {
			a.Log().Error("No processor found for interaction", slog.String("interaction", name))
			if err := respondSlashError(a, i); err != nil {
				a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
			}
			return
		}

		if i.GuildID == "" || i.Member == nil {
			if err := respondEphemeral(a, i, messages.ErrNotInGuild); err != nil {
				a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
			}
			return
		}

		now := time.Now()
		result := "ok"
		defer func() {
			if rec := recover(); rec != nil {
				result = "panic"
				a.Log().Error("Panic in interaction handler",
					slog.String(logging.KeyError, fmt.Sprint(rec)),
					slog.String("interaction", name),
					slog.String("stack", string(debug.Stack())),
				)
				if err := respondSlashError(a, i); err != nil {
					a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
				}
			}
			monitoring.DiscordInteractionDuration.WithLabelValues(name, result).Observe(time.Since(now).Seconds())
		}()

		if err := run(); err != nil {
			result = "error"
			if errors.Is(err, errResponded) {
				return
			}
			respondError(a, i, err, false)
		}
	}
}
