package main

import (
	"fmt"
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/stretchr/testify/require"
)

func makeTypes(n int) []entities.TicketType {
	types := make([]entities.TicketType, 0, n)
	for i := 0; i < n; i++ {
		types = append(types, entities.TicketType{
			Name:  fmt.Sprintf("Type %d", i),
			Color: entities.Palette[i%len(entities.Palette)],
		})
	}
	return types
}

func buttons(t *testing.T, rows []discordgo.MessageComponent) []discordgo.Button {
	t.Helper()

	var out []discordgo.Button
	for _, r := range rows {
		row, ok := r.(discordgo.ActionsRow)
		require.True(t, ok)
		require.LessOrEqual(t, len(row.Components), maxButtonsPerRow)
		for _, c := range row.Components {
			b, ok := c.(discordgo.Button)
			require.True(t, ok)
			out = append(out, b)
		}
	}
	return out
}

func TestRenderPanel(t *testing.T) {
	tests := []struct {
		name        string
		types       int
		wantRows    int
		wantOmitted int
	}{
		{name: "empty", types: 0, wantRows: 0},
		{name: "one", types: 1, wantRows: 1},
		{name: "full row", types: 5, wantRows: 1},
		{name: "second row", types: 6, wantRows: 2},
		{name: "limit", types: 25, wantRows: 5},
		{name: "over limit", types: 30, wantRows: 5, wantOmitted: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			types := makeTypes(tt.types)
			rows, omitted := renderPanel(types)
			require.Len(t, rows, tt.wantRows)
			require.Equal(t, tt.wantOmitted, omitted)

			bs := buttons(t, rows)
			require.Len(t, bs, tt.types-tt.wantOmitted)
			for i, b := range bs {
				require.Equal(t, types[i].Name, b.Label)
				require.Equal(t, encodeCustomID(OpenTicketButtonPrefix, types[i].Name), b.CustomID)
				require.Equal(t, buttonStyle(types[i].Color), b.Style)
			}
		})
	}
}

func TestButtonStyle(t *testing.T) {
	require.Equal(t, discordgo.PrimaryButton, buttonStyle(entities.ColorBlue))
	require.Equal(t, discordgo.SuccessButton, buttonStyle(entities.ColorGreen))
	require.Equal(t, discordgo.DangerButton, buttonStyle(entities.ColorRed))
	require.Equal(t, discordgo.SecondaryButton, buttonStyle(entities.ColorGrey))
	require.Equal(t, discordgo.SecondaryButton, buttonStyle(entities.ColorOrange))
}

func TestPanelMessage(t *testing.T) {
	msg, omitted := panelMessage(makeTypes(3))
	require.Zero(t, omitted)
	require.Equal(t, panelMessageText, msg.Content)
	require.NotNil(t, msg.AllowedMentions)
	require.Len(t, msg.Components, 1)
}
