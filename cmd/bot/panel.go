package main

import (
	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
)

const (
	// maxPanelButtons is the most buttons a message can carry.
	maxPanelButtons = 25

	// maxButtonsPerRow is the most buttons an action row can carry.
	maxButtonsPerRow = 5
)

const panelMessageText = `**Support tickets**
Click the button for the kind of help you need and a private channel will be opened for you.`

// buttonStyle maps a ticket type colour to a button style.
func buttonStyle(c entities.Color) discordgo.ButtonStyle {
	switch c {
	case entities.ColorBlue:
		return discordgo.PrimaryButton
	case entities.ColorGreen:
		return discordgo.SuccessButton
	case entities.ColorRed:
		return discordgo.DangerButton
	default:
		return discordgo.SecondaryButton
	}
}

// embedColor maps a ticket type colour to an embed colour.
func embedColor(c entities.Color) int {
	switch c {
	case entities.ColorBlue:
		return 0x3498db
	case entities.ColorGreen:
		return 0x2ecc71
	case entities.ColorRed:
		return 0xe74c3c
	case entities.ColorOrange:
		return 0xe67e22
	default:
		return 0x95a5a6
	}
}

// renderPanel lays out one button per ticket type in insertion order. Types beyond the
// platform's button limit are left out and counted.
func renderPanel(types []entities.TicketType) (rows []discordgo.MessageComponent, omitted int) {
	if len(types) > maxPanelButtons {
		omitted = len(types) - maxPanelButtons
		types = types[:maxPanelButtons]
	}

	var row discordgo.ActionsRow
	for _, t := range types {
		row.Components = append(row.Components, discordgo.Button{
			Label:    t.Name,
			Style:    buttonStyle(t.Color),
			CustomID: encodeCustomID(OpenTicketButtonPrefix, t.Name),
		})
		if len(row.Components) == maxButtonsPerRow {
			rows = append(rows, row)
			row = discordgo.ActionsRow{}
		}
	}
	if len(row.Components) > 0 {
		rows = append(rows, row)
	}
	return rows, omitted
}

// panelMessage builds the panel message for the ticket types.
func panelMessage(types []entities.TicketType) (*discordgo.MessageSend, int) {
	rows, omitted := renderPanel(types)
	return &discordgo.MessageSend{
		Content:         panelMessageText,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
		Components:      rows,
	}, omitted
}
