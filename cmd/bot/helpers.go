package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/messages"
	"github.com/Jacobbrewer1/tickets/pkg/ticketing"
)

// errResponded is returned by processors that have already told the user what went wrong.
var errResponded = errors.New("interaction already responded to")

func respondSlashError(a IApp, i *discordgo.InteractionCreate) error {
	return respondEphemeral(a, i, messages.ErrUserErrorProcessing)
}

func respondEphemeral(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         content,
			Flags:           discordgo.MessageFlagsEphemeral,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	})
}

func respondPublic(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         content,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	})
}

// deferEphemeral acknowledges the interaction so the work can outlive the response deadline.
func deferEphemeral(a IApp, i *discordgo.InteractionCreate) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// editDeferred replaces the deferred response's content.
func editDeferred(a IApp, i *discordgo.InteractionCreate, content string) error {
	if _, err := a.Session().InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	}); err != nil {
		return fmt.Errorf("error editing response: %w", err)
	}
	return nil
}

// respondError tells the user why their request failed. Errors caused by the request are shown
// as they are; anything else is logged and reported generically.
func respondError(a IApp, i *discordgo.InteractionCreate, err error, deferred bool) {
	attrs := []any{
		slog.String(logging.KeyError, err.Error()),
		slog.String(logging.KeyGuild, i.GuildID),
		slog.String(logging.KeyChannel, i.ChannelID),
	}
	if u := interactionUser(i); u != nil {
		attrs = append(attrs, slog.String(logging.KeyUser, u.ID))
	}

	if ticketing.IsUserError(err) {
		a.Log().Debug("Request refused", attrs...)
	} else {
		a.Log().Error("Error processing interaction", attrs...)
	}

	msg := ticketing.UserMessage(err)
	var respErr error
	if deferred {
		respErr = editDeferred(a, i, msg)
	} else {
		respErr = respondEphemeral(a, i, msg)
	}
	if respErr != nil {
		a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, respErr.Error()))
	}
}
