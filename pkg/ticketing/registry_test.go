package ticketing

import (
	"testing"

	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestTypeRegistry_CreateOrReplace(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		roles   []string
		color   entities.Color
		fields  []string
		wantErr error
	}{
		{name: "valid", typ: "bug", roles: []string{"111"}, color: entities.ColorRed, fields: []string{"desc"}},
		{name: "no roles", typ: "support", color: entities.ColorBlue},
		{name: "empty name", typ: "  ", color: entities.ColorBlue, wantErr: ErrValidation},
		{name: "bad color", typ: "bug", color: entities.Color("pink"), wantErr: ErrValidation},
		{name: "malformed role", typ: "bug", roles: []string{"<@&12>"}, color: entities.ColorBlue, wantErr: ErrValidation},
		{name: "empty role", typ: "bug", roles: []string{""}, color: entities.ColorBlue, wantErr: ErrValidation},
		{name: "too many fields", typ: "bug", color: entities.ColorBlue, fields: []string{"a", "b", "c", "d", "e", "f"}, wantErr: ErrValidation},
		{name: "empty field", typ: "bug", color: entities.ColorBlue, fields: []string{" "}, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := entities.NewGuildConfig("1")
			_, err := Registry(cfg).CreateOrReplace(tt.typ, tt.roles, tt.color, tt.fields)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, cfg.Types)
				return
			}
			require.NoError(t, err)
			require.Len(t, cfg.Types, 1)
		})
	}
}

func TestTypeRegistry_RoundTrip(t *testing.T) {
	cfg := entities.NewGuildConfig("1")
	r := Registry(cfg)

	_, err := r.CreateOrReplace("bug", []string{"111"}, entities.ColorRed, []string{"desc"})
	require.NoError(t, err)

	var names []string
	for name, typ := range r.List() {
		names = append(names, name)
		require.Equal(t, []string{"111"}, typ.RoleIDs)
		require.Equal(t, entities.ColorRed, typ.Color)
		require.Equal(t, []string{"desc"}, typ.IntakeFields)
	}
	require.Equal(t, []string{"bug"}, names)
}

func TestTypeRegistry_ReplaceKeepsOrderAndIgnoresCase(t *testing.T) {
	cfg := entities.NewGuildConfig("1")
	r := Registry(cfg)

	for _, n := range []string{"bug", "billing", "other"} {
		_, err := r.CreateOrReplace(n, nil, entities.ColorBlue, nil)
		require.NoError(t, err)
	}

	_, err := r.CreateOrReplace("BUG", []string{"222", "222"}, entities.ColorGreen, nil)
	require.NoError(t, err)

	var names []string
	for name := range r.List() {
		names = append(names, name)
	}
	require.Equal(t, []string{"BUG", "billing", "other"}, names)

	bug, ok := r.Get("Bug")
	require.True(t, ok)
	require.Equal(t, []string{"222"}, bug.RoleIDs)
	require.Equal(t, entities.ColorGreen, bug.Color)
}

func TestTypeRegistry_ListIsRestartable(t *testing.T) {
	cfg := entities.NewGuildConfig("1")
	r := Registry(cfg)
	for _, n := range []string{"a", "b", "c"} {
		_, err := r.CreateOrReplace(n, nil, entities.ColorBlue, nil)
		require.NoError(t, err)
	}

	seq := r.List()
	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	require.Equal(t, 3, count())
	require.Equal(t, 3, count())

	var first string
	for name := range seq {
		first = name
		break
	}
	require.Equal(t, "a", first)
}

func TestTypeRegistry_AddRole(t *testing.T) {
	cfg := entities.NewGuildConfig("1")
	r := Registry(cfg)
	_, err := r.CreateOrReplace("bug", []string{"111"}, entities.ColorRed, nil)
	require.NoError(t, err)

	typ, err := r.AddRole("bug", "222")
	require.NoError(t, err)
	require.Equal(t, []string{"111", "222"}, typ.RoleIDs)

	typ, err = r.AddRole("bug", "222")
	require.NoError(t, err)
	require.Equal(t, []string{"111", "222"}, typ.RoleIDs)

	_, err = r.AddRole("missing", "222")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = r.AddRole("bug", "abc")
	require.ErrorIs(t, err, ErrValidation)
}

func TestTypeRegistry_SetColor(t *testing.T) {
	cfg := entities.NewGuildConfig("1")
	r := Registry(cfg)
	_, err := r.CreateOrReplace("bug", nil, entities.ColorRed, nil)
	require.NoError(t, err)

	typ, err := r.SetColor("bug", entities.ColorOrange)
	require.NoError(t, err)
	require.Equal(t, entities.ColorOrange, typ.Color)

	_, err = r.SetColor("bug", entities.Color("pink"))
	require.ErrorIs(t, err, ErrValidation)

	_, err = r.SetColor("missing", entities.ColorBlue)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTypeRegistry_Remove(t *testing.T) {
	cfg := entities.NewGuildConfig("1")
	r := Registry(cfg)
	_, err := r.CreateOrReplace("bug", nil, entities.ColorRed, nil)
	require.NoError(t, err)
	cfg.OpenTickets["100"] = &entities.TicketInstance{ChannelID: "100", TypeName: "bug", Number: 1}

	_, err = r.Remove("bug")
	require.NoError(t, err)
	require.Zero(t, r.Len())
	require.Contains(t, cfg.OpenTickets, "100")

	_, err = r.Remove("bug")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestValidSnowflake(t *testing.T) {
	require.True(t, ValidSnowflake("123456789012345678"))
	require.False(t, ValidSnowflake(""))
	require.False(t, ValidSnowflake("12a"))
	require.False(t, ValidSnowflake("123456789012345678901"))
}
