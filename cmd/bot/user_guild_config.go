package main

import (
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/messages"
)

const (
	// panelCmdName posts the ticket panel.
	panelCmdName = "panel"

	// ticketTypeCmdName is the command for managing ticket types.
	ticketTypeCmdName = "ticket_type"

	// ticketConfigCmdName is the command for the guild's ticket settings.
	ticketConfigCmdName = "ticket_config"

	typeSetCmdName     = "set"
	typeAddRoleCmdName = "add_role"
	typeColorCmdName   = "color"
	typeDeleteCmdName  = "delete"
	typeListCmdName    = "list"

	logChannelCmdName  = "log_channel"
	closePolicyCmdName = "close_policy"

	nameOptionName    = "name"
	rolesOptionName   = "roles"
	roleOptionName    = "role"
	colorOptionName   = "color"
	fieldsOptionName  = "fields"
	channelOptionName = "channel"
	policyOptionName  = "policy"
)

// manageServerPermission hides the admin commands from members who cannot use them.
var manageServerPermission int64 = discordgo.PermissionManageServer

var (
	panelCmd = &discordgo.ApplicationCommand{
		Name:                     panelCmdName,
		Type:                     discordgo.ChatApplicationCommand,
		Description:              "Posts the ticket panel in this channel.",
		DefaultMemberPermissions: &manageServerPermission,
	}

	ticketTypeCmd = &discordgo.ApplicationCommand{
		Name:                     ticketTypeCmdName,
		Type:                     discordgo.ChatApplicationCommand,
		Description:              "Manages the kinds of ticket members can open.",
		DefaultMemberPermissions: &manageServerPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        typeSetCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Creates a ticket type, or replaces the one with the same name.",
				Options: []*discordgo.ApplicationCommandOption{
					typeNameOption(),
					{
						Name:        rolesOptionName,
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "Comma separated roles that can see and handle these tickets.",
					},
					colorOption(false),
					{
						Name:        fieldsOptionName,
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "Up to five questions to ask, separated by semicolons.",
					},
				},
			},
			{
				Name:        typeAddRoleCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Adds a staff role to a ticket type.",
				Options: []*discordgo.ApplicationCommandOption{
					typeNameOption(),
					{
						Name:        roleOptionName,
						Type:        discordgo.ApplicationCommandOptionRole,
						Description: "The role to add.",
						Required:    true,
					},
				},
			},
			{
				Name:        typeColorCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Changes the colour of a ticket type's button.",
				Options: []*discordgo.ApplicationCommandOption{
					typeNameOption(),
					colorOption(true),
				},
			},
			{
				Name:        typeDeleteCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Deletes a ticket type. Its open tickets are left alone.",
				Options: []*discordgo.ApplicationCommandOption{
					typeNameOption(),
				},
			},
			{
				Name:        typeListCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Lists the ticket types.",
			},
		},
	}

	ticketConfigCmd = &discordgo.ApplicationCommand{
		Name:                     ticketConfigCmdName,
		Type:                     discordgo.ChatApplicationCommand,
		Description:              "Changes the ticket settings for this server.",
		DefaultMemberPermissions: &manageServerPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        logChannelCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Sets the channel ticket events are logged to. Leave empty to stop logging.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:         channelOptionName,
						Type:         discordgo.ApplicationCommandOptionChannel,
						Description:  "The log channel.",
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
					},
				},
			},
			{
				Name:        closePolicyCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Sets who may close a ticket.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        policyOptionName,
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "Who may close a ticket. Members with Manage Server always can.",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "Owner, claimant or staff", Value: string(entities.ClosePolicyOwnerClaimantStaff)},
							{Name: "Owner or staff", Value: string(entities.ClosePolicyOwnerStaff)},
							{Name: "Anyone in the ticket", Value: string(entities.ClosePolicyAnyone)},
						},
					},
				},
			},
		},
	}
)

func typeNameOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        nameOptionName,
		Type:        discordgo.ApplicationCommandOptionString,
		Description: "The ticket type's name.",
		Required:    true,
		MaxLength:   80,
	}
}

func colorOption(required bool) *discordgo.ApplicationCommandOption {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(entities.Palette))
	for _, c := range entities.Palette {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: string(c), Value: string(c)})
	}
	return &discordgo.ApplicationCommandOption{
		Name:        colorOptionName,
		Type:        discordgo.ApplicationCommandOptionString,
		Description: "The button colour.",
		Required:    required,
		Choices:     choices,
	}
}

// guildCommands are registered in every guild the bot joins.
func guildCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{panelCmd, ticketCmd, ticketTypeCmd, ticketConfigCmd}
}

// privileged wraps a processor so only members that can manage the guild may run it.
func privileged(p slashProcessor) slashProcessor {
	return func(a IApp, i *discordgo.InteractionCreate) error {
		if !isPrivileged(i.Member) {
			return respondEphemeral(a, i, messages.ErrNotPrivileged)
		}
		return p(a, i)
	}
}

func panelCmdController(_ IApp, _ string) (slashProcessor, error) {
	return privileged(postPanel), nil
}

func ticketTypeCmdController(_ IApp, cmd string) (slashProcessor, error) {
	switch cmd {
	case typeSetCmdName:
		return privileged(setTicketType), nil
	case typeAddRoleCmdName:
		return privileged(addTicketTypeRole), nil
	case typeColorCmdName:
		return privileged(setTicketTypeColor), nil
	case typeDeleteCmdName:
		return privileged(deleteTicketType), nil
	case typeListCmdName:
		return privileged(listTicketTypes), nil
	default:
		return nil, fmt.Errorf("unhandled sub command %s", cmd)
	}
}

func ticketConfigCmdController(_ IApp, cmd string) (slashProcessor, error) {
	switch cmd {
	case logChannelCmdName:
		return privileged(setLogChannel), nil
	case closePolicyCmdName:
		return privileged(setClosePolicy), nil
	default:
		return nil, fmt.Errorf("unhandled sub command %s", cmd)
	}
}

// subCommandOptions returns the options of the invoked sub command.
func subCommandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return optionMap(nil)
	}
	return optionMap(data.Options[0].Options)
}

// postPanel posts the panel in the channel the command was run in.
func postPanel(a IApp, i *discordgo.InteractionCreate) error {
	ctx, cancel := operationContext(a)
	defer cancel()

	types, err := a.Engine().ListTypes(ctx, i.GuildID)
	if err != nil {
		return err
	}
	if len(types) == 0 {
		return respondEphemeral(a, i, messages.ErrNoTicketTypes)
	}

	msg, omitted := panelMessage(types)
	if _, err := a.Session().ChannelMessageSendComplex(i.ChannelID, msg); err != nil {
		return fmt.Errorf("error sending panel: %w", err)
	}

	if omitted > 0 {
		return respondEphemeral(a, i, fmt.Sprintf(messages.PanelTruncated, omitted))
	}
	return respondEphemeral(a, i, messages.PanelPosted)
}

func setTicketType(a IApp, i *discordgo.InteractionCreate) error {
	opts := subCommandOptions(i)

	color := entities.ColorBlue
	if raw := optionString(opts, colorOptionName); raw != "" {
		color, _ = entities.ParseColor(raw)
	}

	ctx, cancel := operationContext(a)
	defer cancel()

	t, err := a.Engine().CreateOrReplaceType(ctx, i.GuildID,
		optionString(opts, nameOptionName),
		parseRoleIDs(optionString(opts, rolesOptionName)),
		color,
		parseIntakeFields(optionString(opts, fieldsOptionName)),
	)
	if err != nil {
		return err
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.TypeSaved, t.Name))
}

func addTicketTypeRole(a IApp, i *discordgo.InteractionCreate) error {
	opts := subCommandOptions(i)
	roleID := optionString(opts, roleOptionName)

	ctx, cancel := operationContext(a)
	defer cancel()

	t, err := a.Engine().AddTypeRole(ctx, i.GuildID, optionString(opts, nameOptionName), roleID)
	if err != nil {
		return err
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.TypeRoleAdded, roleID, t.Name))
}

func setTicketTypeColor(a IApp, i *discordgo.InteractionCreate) error {
	opts := subCommandOptions(i)
	color, _ := entities.ParseColor(optionString(opts, colorOptionName))

	ctx, cancel := operationContext(a)
	defer cancel()

	t, err := a.Engine().SetTypeColor(ctx, i.GuildID, optionString(opts, nameOptionName), color)
	if err != nil {
		return err
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.TypeColorSet, t.Name, t.Color))
}

func deleteTicketType(a IApp, i *discordgo.InteractionCreate) error {
	opts := subCommandOptions(i)

	ctx, cancel := operationContext(a)
	defer cancel()

	t, err := a.Engine().RemoveType(ctx, i.GuildID, optionString(opts, nameOptionName))
	if err != nil {
		return err
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.TypeDeleted, t.Name))
}

func listTicketTypes(a IApp, i *discordgo.InteractionCreate) error {
	ctx, cancel := operationContext(a)
	defer cancel()

	types, err := a.Engine().ListTypes(ctx, i.GuildID)
	if err != nil {
		return err
	}
	if len(types) == 0 {
		return respondEphemeral(a, i, messages.ErrNoTicketTypes)
	}
	return respondEphemeral(a, i, describeTypes(types))
}

// describeTypes renders one line per ticket type.
func describeTypes(types []entities.TicketType) string {
	sb := new(strings.Builder)
	for idx, t := range types {
		if idx > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(sb, "**%s** (%s)", t.Name, t.Color)

		if len(t.RoleIDs) > 0 {
			roles := make([]string, 0, len(t.RoleIDs))
			for _, id := range t.RoleIDs {
				roles = append(roles, fmt.Sprintf("<@&%s>", id))
			}
			sb.WriteString(" roles: " + strings.Join(roles, ", "))
		}
		if len(t.IntakeFields) > 0 {
			fmt.Fprintf(sb, " questions: %s", strings.Join(t.IntakeFields, "; "))
		}
	}
	return sb.String()
}

func setLogChannel(a IApp, i *discordgo.InteractionCreate) error {
	channelID := optionString(subCommandOptions(i), channelOptionName)

	ctx, cancel := operationContext(a)
	defer cancel()

	if err := a.Engine().SetLogChannel(ctx, i.GuildID, channelID); err != nil {
		return err
	}

	if channelID == "" {
		return respondEphemeral(a, i, messages.LogChannelCleared)
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.LogChannelSet, channelID))
}

func setClosePolicy(a IApp, i *discordgo.InteractionCreate) error {
	policy := entities.ClosePolicy(optionString(subCommandOptions(i), policyOptionName))

	ctx, cancel := operationContext(a)
	defer cancel()

	if err := a.Engine().SetClosePolicy(ctx, i.GuildID, policy); err != nil {
		return err
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.ClosePolicySet, policy.OrDefault()))
}
