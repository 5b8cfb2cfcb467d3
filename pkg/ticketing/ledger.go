package ticketing

import (
	"github.com/Jacobbrewer1/tickets/pkg/entities"
)

// Ledger is the record of a guild's open tickets, keyed by channel ID.
type Ledger struct {
	cfg *entities.GuildConfig
}

// LedgerOf returns the ledger over the config.
func LedgerOf(cfg *entities.GuildConfig) *Ledger {
	cfg.Normalize()
	return &Ledger{cfg: cfg}
}

// Record adds a ticket under the channel ID.
func (l *Ledger) Record(channelID string, t *entities.TicketInstance) error {
	if channelID == "" {
		return validationf("channel id is empty")
	}
	if _, ok := l.cfg.OpenTickets[channelID]; ok {
		return conflictf("channel %s already has a ticket", channelID)
	}
	t.ChannelID = channelID
	l.cfg.OpenTickets[channelID] = t
	return nil
}

// Lookup returns the ticket for the channel.
func (l *Ledger) Lookup(channelID string) (*entities.TicketInstance, bool) {
	t, ok := l.cfg.OpenTickets[channelID]
	return t, ok
}

// Claim assigns the ticket to the user. It reports whether anything changed: claiming a ticket
// the user already holds succeeds without change.
func (l *Ledger) Claim(channelID, userID string) (*entities.TicketInstance, bool, error) {
	if userID == "" {
		return nil, false, validationf("user id is empty")
	}

	t, ok := l.cfg.OpenTickets[channelID]
	if !ok {
		return nil, false, notFoundf("ticket for channel %s", channelID)
	}

	switch t.ClaimedBy {
	case userID:
		return t, false, nil
	case "":
		t.ClaimedBy = userID
		return t, true, nil
	default:
		return t, false, &AlreadyClaimedError{ClaimedBy: t.ClaimedBy}
	}
}

// Remove deletes and returns the ticket for the channel.
func (l *Ledger) Remove(channelID string) (*entities.TicketInstance, error) {
	t, ok := l.cfg.OpenTickets[channelID]
	if !ok {
		return nil, notFoundf("ticket for channel %s", channelID)
	}
	delete(l.cfg.OpenTickets, channelID)
	return t, nil
}

// Rekey moves a ticket to a new channel ID.
func (l *Ledger) Rekey(from, to string) (*entities.TicketInstance, error) {
	t, ok := l.cfg.OpenTickets[from]
	if !ok {
		return nil, notFoundf("ticket for channel %s", from)
	}
	if from == to {
		return t, nil
	}
	if _, ok := l.cfg.OpenTickets[to]; ok {
		return nil, conflictf("channel %s already has a ticket", to)
	}

	delete(l.cfg.OpenTickets, from)
	t.ChannelID = to
	l.cfg.OpenTickets[to] = t
	return t, nil
}

// Len returns the number of open tickets, including pending reservations.
func (l *Ledger) Len() int {
	return len(l.cfg.OpenTickets)
}
