package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/ticketing"
)

// ticketPermissions are the permissions granted to members and roles that can see a ticket.
const ticketPermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory |
	discordgo.PermissionAttachFiles |
	discordgo.PermissionEmbedLinks

// permissionOverwrites converts the engine's grants into channel overwrites. The bot is always
// allowed in so it can post to and delete the channel.
func permissionOverwrites(grants []ticketing.PermissionGrant, botID string) []*discordgo.PermissionOverwrite {
	overwrites := make([]*discordgo.PermissionOverwrite, 0, len(grants)+1)
	for _, g := range grants {
		ow := &discordgo.PermissionOverwrite{
			ID:   g.TargetID,
			Type: discordgo.PermissionOverwriteTypeRole,
		}
		if g.Target == ticketing.GrantMember {
			ow.Type = discordgo.PermissionOverwriteTypeMember
		}
		if g.Allow {
			ow.Allow = ticketPermissions
		} else {
			ow.Deny = discordgo.PermissionViewChannel
		}
		overwrites = append(overwrites, ow)
	}

	if botID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    botID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: ticketPermissions | discordgo.PermissionManageChannels,
		})
	}
	return overwrites
}

// isPrivileged reports whether the member may manage the guild's tickets.
func isPrivileged(m *discordgo.Member) bool {
	if m == nil {
		return false
	}
	return m.Permissions&discordgo.PermissionAdministrator != 0 ||
		m.Permissions&discordgo.PermissionManageServer != 0
}

// interactionUser returns the user behind an interaction, whether it came from a guild or a DM.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// stateRoleResolver checks roles against the session state, falling back to the API.
type stateRoleResolver struct {
	s *discordgo.Session
}

func (r *stateRoleResolver) RoleExists(guildID, roleID string) bool {
	if r.s.State != nil {
		if _, err := r.s.State.Role(guildID, roleID); err == nil {
			return true
		}
	}

	roles, err := r.s.GuildRoles(guildID)
	if err != nil {
		// Without an answer the role is kept; the platform rejects it if it is really gone.
		return true
	}
	for _, role := range roles {
		if role.ID == roleID {
			return true
		}
	}
	return false
}

// channelExists reports whether a channel is still on the platform.
func channelExists(s *discordgo.Session) ticketing.ChannelExistsFunc {
	return func(_ context.Context, channelID string) (bool, error) {
		if s.State != nil {
			if _, err := s.State.Channel(channelID); err == nil {
				return true, nil
			}
		}

		if _, err := s.Channel(channelID); err != nil {
			if isUnknownChannel(err) {
				return false, nil
			}
			return false, fmt.Errorf("error getting channel: %w", err)
		}
		return true, nil
	}
}

func isUnknownChannel(err error) bool {
	er := new(discordgo.RESTError)
	return errors.As(err, &er) && er.Message != nil && er.Message.Code == discordgo.ErrCodeUnknownChannel
}

// optionMap indexes a sub command's options by name.
func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

// optionString returns an option's value as a string. Role and channel options carry IDs.
func optionString(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	o, ok := opts[name]
	if !ok || o.Value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(o.Value))
}

// parseRoleIDs parses a comma separated list of role IDs or role mentions.
func parseRoleIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "<@&")
		part = strings.TrimSuffix(part, ">")
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// parseIntakeFields parses the intake questions, separated by semicolons.
func parseIntakeFields(s string) []string {
	var fields []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			fields = append(fields, part)
		}
	}
	return fields
}

// intakeModal builds the modal that asks a ticket type's intake questions.
func intakeModal(t *entities.TicketType) *discordgo.InteractionResponseData {
	rows := make([]discordgo.MessageComponent, 0, len(t.IntakeFields))
	for idx, f := range t.IntakeFields {
		rows = append(rows, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:  encodeCustomID(intakeFieldPrefix, strconv.Itoa(idx)),
					Label:     f,
					Style:     discordgo.TextInputParagraph,
					Required:  true,
					MaxLength: 1000,
				},
			},
		})
	}

	title := t.Name
	if len(title) > 45 {
		title = title[:45]
	}
	return &discordgo.InteractionResponseData{
		CustomID:   encodeCustomID(IntakeModalPrefix, t.Name),
		Title:      title,
		Components: rows,
	}
}

// modalAnswers reads the intake answers out of a submitted modal in field order.
func modalAnswers(data discordgo.ModalSubmitInteractionData) []string {
	byIndex := make(map[int]string)
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, rc := range row.Components {
			input, ok := rc.(*discordgo.TextInput)
			if !ok {
				continue
			}
			prefix, arg := decodeCustomID(input.CustomID)
			idx, err := strconv.Atoi(arg)
			if prefix != intakeFieldPrefix || err != nil {
				continue
			}
			byIndex[idx] = input.Value
		}
	}

	answers := make([]string, len(byIndex))
	for idx, v := range byIndex {
		if idx < 0 || idx >= len(answers) {
			// A gap in the indices; the engine rejects the short answer list.
			return answers[:0]
		}
		answers[idx] = v
	}
	return answers
}

// ticketMessage is the first message posted in a new ticket channel.
func ticketMessage(inst *entities.TicketInstance, res *ticketing.OpenResult) *discordgo.MessageSend {
	mentions := make([]string, 0, len(res.MentionRoleIDs)+1)
	mentions = append(mentions, fmt.Sprintf("<@%s>", inst.OwnerID))
	for _, id := range res.MentionRoleIDs {
		mentions = append(mentions, fmt.Sprintf("<@&%s>", id))
	}

	msg := &discordgo.MessageSend{
		Content: strings.Join(mentions, " ") + "\nThanks for reaching out, a member of staff will be with you shortly.",
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{inst.OwnerID},
			Roles: res.MentionRoleIDs,
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    fmt.Sprintf("%s Claim", ClaimEmoji),
						Style:    discordgo.PrimaryButton,
						CustomID: ClaimTicketButtonID,
					},
					discordgo.Button{
						Label:    fmt.Sprintf("%s Close", CloseEmoji),
						Style:    discordgo.DangerButton,
						CustomID: CloseTicketButtonID,
					},
				},
			},
		},
	}

	if res.Summary != "" {
		msg.Embeds = []*discordgo.MessageEmbed{
			{
				Title:       fmt.Sprintf("%s #%d", inst.TypeName, inst.Number),
				Description: res.Summary,
				Color:       embedColor(inst.Color),
			},
		}
	}
	return msg
}
