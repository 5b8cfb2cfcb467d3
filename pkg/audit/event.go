package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind is the lifecycle transition an event records.
type Kind string

const (
	KindOpened  Kind = "opened"
	KindClaimed Kind = "claimed"
	KindClosed  Kind = "closed"
)

// Event is a ticket lifecycle event.
type Event struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`

	// Kind is the transition.
	Kind Kind `json:"kind"`

	// GuildID is the guild the ticket belongs to.
	GuildID string `json:"guild_id"`

	// LogChannelID is the guild's configured log channel at the time of the event. May be empty.
	LogChannelID string `json:"log_channel_id,omitempty"`

	// ChannelID is the ticket channel.
	ChannelID string `json:"channel_id"`

	// ChannelName is the ticket channel's name.
	ChannelName string `json:"channel_name"`

	// TypeName is the ticket type.
	TypeName string `json:"type_name"`

	// Number is the ticket number.
	Number int64 `json:"number"`

	// OwnerID is the user that opened the ticket.
	OwnerID string `json:"owner_id"`

	// ClaimedBy is the claimant, if any.
	ClaimedBy string `json:"claimed_by,omitempty"`

	// ClosedBy is the user that closed the ticket. Only set for KindClosed.
	ClosedBy string `json:"closed_by,omitempty"`

	// OpenFor is how long the ticket was open. Only set for KindClosed.
	OpenFor time.Duration `json:"open_for,omitempty"`

	// At is when the event happened.
	At time.Time `json:"at"`
}

// NewEvent creates an event of the given kind with a fresh ID.
func NewEvent(kind Kind, at time.Time) Event {
	return Event{
		ID:   ulid.Make().String(),
		Kind: kind,
		At:   at.UTC(),
	}
}

// Summary renders the event as a single line for a log channel.
func (e Event) Summary() string {
	sb := new(strings.Builder)
	switch e.Kind {
	case KindOpened:
		fmt.Fprintf(sb, "Ticket opened: **%s** (#%d, %s) by <@%s>", e.ChannelName, e.Number, e.TypeName, e.OwnerID)
	case KindClaimed:
		fmt.Fprintf(sb, "Ticket claimed: **%s** by <@%s>", e.ChannelName, e.ClaimedBy)
	case KindClosed:
		fmt.Fprintf(sb, "Ticket closed: **%s** by <@%s>, opened by <@%s>", e.ChannelName, e.ClosedBy, e.OwnerID)
		if e.ClaimedBy != "" {
			fmt.Fprintf(sb, ", handled by <@%s>", e.ClaimedBy)
		}
		fmt.Fprintf(sb, ", open for %s", e.OpenFor.Round(time.Second))
	default:
		fmt.Fprintf(sb, "Ticket %s: **%s**", e.Kind, e.ChannelName)
	}
	return sb.String()
}
