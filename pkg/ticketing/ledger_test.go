package ticketing

import (
	"testing"

	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestLedger(t *testing.T) {
	cfg := entities.NewGuildConfig("1")
	l := LedgerOf(cfg)

	require.NoError(t, l.Record("100", &entities.TicketInstance{Number: 1, OwnerID: "42"}))
	require.ErrorIs(t, l.Record("100", &entities.TicketInstance{Number: 2}), ErrConflict)

	got, ok := l.Lookup("100")
	require.True(t, ok)
	require.Equal(t, "100", got.ChannelID)
	require.Equal(t, int64(1), got.Number)

	_, ok = l.Lookup("200")
	require.False(t, ok)

	removed, err := l.Remove("100")
	require.NoError(t, err)
	require.Equal(t, int64(1), removed.Number)

	_, ok = l.Lookup("100")
	require.False(t, ok)

	_, err = l.Remove("100")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_Claim(t *testing.T) {
	cfg := entities.NewGuildConfig("1")
	l := LedgerOf(cfg)
	require.NoError(t, l.Record("100", &entities.TicketInstance{Number: 1, OwnerID: "42"}))

	_, changed, err := l.Claim("100", "7")
	require.NoError(t, err)
	require.True(t, changed)

	_, changed, err = l.Claim("100", "7")
	require.NoError(t, err)
	require.False(t, changed)

	_, _, err = l.Claim("100", "8")
	require.ErrorIs(t, err, ErrAlreadyClaimed)
	var ace *AlreadyClaimedError
	require.ErrorAs(t, err, &ace)
	require.Equal(t, "7", ace.ClaimedBy)

	got, _ := l.Lookup("100")
	require.Equal(t, "7", got.ClaimedBy)

	_, _, err = l.Claim("200", "7")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_Rekey(t *testing.T) {
	cfg := entities.NewGuildConfig("1")
	l := LedgerOf(cfg)
	require.NoError(t, l.Record("pending-a", &entities.TicketInstance{Number: 1}))
	require.NoError(t, l.Record("200", &entities.TicketInstance{Number: 2}))

	_, err := l.Rekey("pending-a", "200")
	require.ErrorIs(t, err, ErrConflict)

	got, err := l.Rekey("pending-a", "100")
	require.NoError(t, err)
	require.Equal(t, "100", got.ChannelID)

	_, ok := l.Lookup("pending-a")
	require.False(t, ok)
	require.Equal(t, 2, l.Len())

	_, err = l.Rekey("pending-a", "300")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNextNumber(t *testing.T) {
	cfg := entities.NewGuildConfig("1")
	require.Equal(t, int64(1), NextNumber(cfg))
	require.Equal(t, int64(2), NextNumber(cfg))
	require.Equal(t, int64(2), cfg.SequenceCounter)
}
