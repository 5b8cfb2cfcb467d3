package main

import (
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

// guildJoinedHandler registers the commands in each guild as it becomes available, both at startup
// and when the bot is added to a new guild.
func guildJoinedHandler(a IApp) func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(s *discordgo.Session, g *discordgo.GuildCreate) {
		a.Log().Info("Joined guild", slog.String(logging.KeyGuild, g.ID), slog.String("name", g.Name))
		setGuildCount(s)

		if _, err := s.ApplicationCommandBulkOverwrite(a.Config().Discord.ApplicationID, g.ID, guildCommands()); err != nil {
			a.Log().Error("Error registering commands",
				slog.String(logging.KeyError, err.Error()),
				slog.String(logging.KeyGuild, g.ID),
			)
		}
	}
}

func guildLeaveHandler(a IApp) func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(s *discordgo.Session, g *discordgo.GuildDelete) {
		if g.Unavailable {
			a.Log().Warn("Guild unavailable", slog.String(logging.KeyGuild, g.ID))
			return
		}

		// The guild's config is kept so the tickets survive the bot being re-added.
		a.Log().Info("Left guild", slog.String(logging.KeyGuild, g.ID))
		setGuildCount(s)
	}
}

func setGuildCount(s *discordgo.Session) {
	if s.State == nil {
		return
	}
	s.State.RLock()
	defer s.State.RUnlock()
	monitoring.TotalDiscordGuilds.Set(float64(len(s.State.Guilds)))
}
