package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/messages"
	"github.com/Jacobbrewer1/tickets/pkg/ticketing"
)

const (
	// ClaimEmoji is the emoji that will be used for the claim button. (Ticket)
	ClaimEmoji = "\U0001F3AB"

	// CloseEmoji is the emoji that will be used for the close button. (Padlock)
	CloseEmoji = "\U0001F510"
)

const (
	// TicketCmdName is the command for controlling a ticket.
	TicketCmdName = "ticket"

	// ClaimCmdName is the sub command for claiming a ticket.
	ClaimCmdName = "claim"

	// CloseCmdName is the sub command for closing a ticket.
	CloseCmdName = "close"
)

// ticketCmd is the command for controlling tickets.
var ticketCmd = &discordgo.ApplicationCommand{
	Name:        TicketCmdName,
	Type:        discordgo.ChatApplicationCommand,
	Description: "This is the command for controlling tickets.",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        ClaimCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This claims the ticket for the channel that the command was executed in.",
		},
		{
			Name:        CloseCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This closes the ticket for the channel that the command was executed in.",
		},
	},
}

func ticketCmdController(_ IApp, cmd string) (slashProcessor, error) {
	switch cmd {
	case ClaimCmdName:
		return claimTicket, nil
	case CloseCmdName:
		return closeTicket, nil
	default:
		return nil, fmt.Errorf("unhandled sub command %s", cmd)
	}
}

// operationContext bounds the store work done for one interaction.
func operationContext(a IApp) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.Config().Discord.OperationTimeout)
}

// openTicketButton handles a panel button. Types with intake questions are asked through a modal first.
func openTicketButton(a IApp, i *discordgo.InteractionCreate, typeName string) error {
	ctx, cancel := operationContext(a)
	defer cancel()

	t, err := a.Engine().GetType(ctx, i.GuildID, typeName)
	if err != nil {
		return err
	}

	if len(t.IntakeFields) == 0 {
		return openTicket(a, i, t.Name, nil)
	}

	if err := a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: intakeModal(t),
	}); err != nil {
		return fmt.Errorf("error showing intake modal: %w", err)
	}
	return nil
}

// intakeModalSubmit opens the ticket once the intake questions are answered.
func intakeModalSubmit(a IApp, i *discordgo.InteractionCreate, typeName string) error {
	return openTicket(a, i, typeName, modalAnswers(i.ModalSubmitData()))
}

// openTicket reserves a ticket, creates its channel and confirms the reservation. The reservation
// is rolled back if the channel cannot be created.
func openTicket(a IApp, i *discordgo.InteractionCreate, typeName string, answers []string) error {
	user := interactionUser(i)
	if !a.Limiter().Allow(i.GuildID, user.ID) {
		monitoring.TicketsOpenRateLimited.Inc()
		return respondEphemeral(a, i, messages.ErrRateLimited)
	}

	if err := deferEphemeral(a, i); err != nil {
		return fmt.Errorf("error deferring response: %w", err)
	}

	ctx, cancel := operationContext(a)
	defer cancel()

	res, err := a.Engine().Open(ctx, ticketing.OpenRequest{
		GuildID:  i.GuildID,
		TypeName: typeName,
		UserID:   user.ID,
		Answers:  answers,
	})
	if err != nil {
		respondError(a, i, err, true)
		return errResponded
	}

	var botID string
	if st := a.Session().State; st != nil && st.User != nil {
		botID = st.User.ID
	}

	ch, err := a.Session().GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
		Name:                 res.ChannelName,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("%s ticket #%d opened by %s", res.Instance.TypeName, res.Number, user.Username),
		PermissionOverwrites: permissionOverwrites(res.Grants, botID),
	})
	if err != nil {
		rollbackTicket(a, i.GuildID, res.ReservationID)
		respondError(a, i, fmt.Errorf("error creating ticket channel: %w", err), true)
		return errResponded
	}

	inst, err := a.Engine().Commit(ctx, i.GuildID, res.ReservationID, ch.ID)
	if err != nil {
		if _, delErr := a.Session().ChannelDelete(ch.ID); delErr != nil && !isUnknownChannel(delErr) {
			a.Log().Error("Error deleting uncommitted ticket channel",
				slog.String(logging.KeyError, delErr.Error()),
				slog.String(logging.KeyChannel, ch.ID),
			)
		}
		rollbackTicket(a, i.GuildID, res.ReservationID)
		respondError(a, i, err, true)
		return errResponded
	}

	if _, err := a.Session().ChannelMessageSendComplex(ch.ID, ticketMessage(inst, res)); err != nil {
		// The ticket is recorded and its channel exists; the members can still talk in it.
		a.Log().Warn("Error sending ticket message",
			slog.String(logging.KeyError, err.Error()),
			slog.String(logging.KeyGuild, i.GuildID),
			slog.String(logging.KeyChannel, ch.ID),
		)
	}

	a.Log().Info("Ticket opened",
		slog.String(logging.KeyGuild, i.GuildID),
		slog.String(logging.KeyChannel, ch.ID),
		slog.String(logging.KeyUser, user.ID),
		slog.String("channel_name", inst.ChannelName),
	)

	if err := editDeferred(a, i, fmt.Sprintf(messages.TicketCreated, ch.ID)); err != nil {
		a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
	}
	return nil
}

// rollbackTicket removes a reservation whose channel could not be set up. It runs on its own
// context as the interaction's may already have expired.
func rollbackTicket(a IApp, guildID, reservationID string) {
	monitoring.TicketChannelRollbacks.Inc()

	ctx, cancel := operationContext(a)
	defer cancel()

	if err := a.Engine().Rollback(ctx, guildID, reservationID); err != nil && !errors.Is(err, ticketing.ErrNotFound) {
		// The sweep drops the reservation once it expires.
		a.Log().Error("Error rolling back ticket",
			slog.String(logging.KeyError, err.Error()),
			slog.String(logging.KeyGuild, guildID),
			slog.String(logging.KeyChannel, reservationID),
		)
	}
}

func claimTicket(a IApp, i *discordgo.InteractionCreate) error {
	ctx, cancel := operationContext(a)
	defer cancel()

	res, err := a.Engine().Claim(ctx, i.GuildID, i.ChannelID, interactionUser(i).ID)
	if err != nil {
		return err
	}

	if !res.Changed {
		return respondEphemeral(a, i, res.Notice)
	}
	return respondPublic(a, i, res.Notice)
}

func claimTicketButton(a IApp, i *discordgo.InteractionCreate, _ string) error {
	return claimTicket(a, i)
}

// closeTicket removes the ticket from the ledger and then deletes its channel.
func closeTicket(a IApp, i *discordgo.InteractionCreate) error {
	ctx, cancel := operationContext(a)
	defer cancel()

	user := interactionUser(i)
	res, err := a.Engine().Close(ctx, ticketing.CloseRequest{
		GuildID:     i.GuildID,
		ChannelID:   i.ChannelID,
		RequesterID: user.ID,
		Privileged:  isPrivileged(i.Member),
	})
	if err != nil {
		return err
	}

	if err := respondPublic(a, i, fmt.Sprintf(messages.TicketClosing, user.ID)); err != nil {
		a.Log().Warn("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
	}

	if _, err := a.Session().ChannelDelete(i.ChannelID); err != nil && !isUnknownChannel(err) {
		a.Log().Error("Error deleting ticket channel",
			slog.String(logging.KeyError, err.Error()),
			slog.String(logging.KeyGuild, i.GuildID),
			slog.String(logging.KeyChannel, i.ChannelID),
		)
		return errResponded
	}

	a.Log().Info("Ticket closed",
		slog.String(logging.KeyGuild, i.GuildID),
		slog.String(logging.KeyChannel, i.ChannelID),
		slog.String(logging.KeyUser, user.ID),
		slog.String("channel_name", res.Instance.ChannelName),
	)
	return nil
}

func closeTicketButton(a IApp, i *discordgo.InteractionCreate, _ string) error {
	return closeTicket(a, i)
}
