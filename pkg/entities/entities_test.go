package entities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in     string
		want   Color
		wantOk bool
	}{
		{in: "blue", want: ColorBlue, wantOk: true},
		{in: " RED ", want: ColorRed, wantOk: true},
		{in: "gray", want: ColorGrey, wantOk: true},
		{in: "orange", want: ColorOrange, wantOk: true},
		{in: "purple", want: Color("purple"), wantOk: false},
		{in: "", want: Color(""), wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseColor(tt.in)
			require.Equal(t, tt.wantOk, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestClosePolicy(t *testing.T) {
	require.True(t, ClosePolicy("").Valid())
	require.True(t, ClosePolicyAnyone.Valid())
	require.False(t, ClosePolicy("mods").Valid())
	require.Equal(t, ClosePolicyOwnerClaimantStaff, ClosePolicy("").OrDefault())
	require.Equal(t, ClosePolicyOwnerStaff, ClosePolicyOwnerStaff.OrDefault())
}

func TestGuildConfig_Clone(t *testing.T) {
	g := NewGuildConfig("1")
	g.Types = append(g.Types, &TicketType{Name: "bug", RoleIDs: []string{"10"}, Color: ColorRed})
	g.OpenTickets["100"] = &TicketInstance{ChannelID: "100", TypeName: "bug", Number: 1, OwnerID: "42"}

	c := g.Clone()
	c.Types[0].RoleIDs[0] = "11"
	c.OpenTickets["100"].ClaimedBy = "7"
	delete(c.OpenTickets, "100")

	require.Equal(t, "10", g.Types[0].RoleIDs[0])
	require.Empty(t, g.OpenTickets["100"].ClaimedBy)
	require.Len(t, g.OpenTickets, 1)
}

func TestGuildConfig_Normalize(t *testing.T) {
	g := &GuildConfig{ID: "1"}
	g.Normalize()
	require.NotNil(t, g.Types)
	require.NotNil(t, g.OpenTickets)
}
