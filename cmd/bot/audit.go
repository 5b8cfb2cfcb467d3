package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/audit"
)

// logChannelDeliverer posts audit events to the guild's log channel. Events for guilds without a
// log channel are dropped.
func logChannelDeliverer(s *discordgo.Session) audit.Deliverer {
	return audit.DelivererFunc(func(_ context.Context, e audit.Event) error {
		if e.LogChannelID == "" {
			return nil
		}
		if _, err := s.ChannelMessageSendEmbed(e.LogChannelID, auditEmbed(e)); err != nil {
			return fmt.Errorf("error sending audit event to channel %s: %w", e.LogChannelID, err)
		}
		return nil
	})
}

func auditEmbed(e audit.Event) *discordgo.MessageEmbed {
	color := 0x3498db
	switch e.Kind {
	case audit.KindClaimed:
		color = 0xe67e22
	case audit.KindClosed:
		color = 0xe74c3c
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Ticket %s", e.Kind),
		Description: e.Summary(),
		Color:       color,
		Timestamp:   e.At.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Type", Value: e.TypeName, Inline: true},
			{Name: "Number", Value: strconv.FormatInt(e.Number, 10), Inline: true},
			{Name: "Owner", Value: fmt.Sprintf("<@%s>", e.OwnerID), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: e.ID},
	}
	if e.ClaimedBy != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Claimed by", Value: fmt.Sprintf("<@%s>", e.ClaimedBy), Inline: true,
		})
	}
	if e.Kind == audit.KindClosed {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Closed by", Value: fmt.Sprintf("<@%s>", e.ClosedBy), Inline: true},
			&discordgo.MessageEmbedField{Name: "Open for", Value: e.OpenFor.Round(time.Second).String(), Inline: true},
		)
	}
	return embed
}
