package monitoring

import (
	"fmt"

	"github.com/Jacobbrewer1/tickets/cmd/bot/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalDiscordEvents is the total number of events.
	TotalDiscordEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_total_discord_events", config.AppName),
			Help: "Total number of events",
		},
		[]string{"event"},
	)

	// HttpTotalRequests is the total number of http requests.
	HttpTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_http_total_requests", config.AppName),
			Help: "Total number of http requests",
		},
		[]string{"path", "method", "status_code"},
	)

	// HttpRequestDuration is the duration of the http request.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: fmt.Sprintf("%s_http_request_duration", config.AppName),
			Help: "Duration of the http request",
		},
		[]string{"path", "method", "status_code"},
	)

	TotalDiscordGuilds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_total_discord_guilds", config.AppName),
			Help: "Total number of discord guilds",
		},
	)

	// DiscordInteractionDuration is the duration of handling an interaction.
	DiscordInteractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: fmt.Sprintf("%s_discord_interaction_duration", config.AppName),
			Help: "Duration of handling a discord interaction",
		},
		[]string{"interaction", "result"},
	)

	// TicketsOpenRateLimited is the number of ticket requests refused by the rate limiter.
	TicketsOpenRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_tickets_open_rate_limited", config.AppName),
			Help: "Number of ticket requests refused by the rate limiter",
		},
	)

	// TicketChannelRollbacks is the number of reservations rolled back after the platform failed.
	TicketChannelRollbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_ticket_channel_rollbacks", config.AppName),
			Help: "Number of ticket reservations rolled back after channel creation failed",
		},
	)
)
