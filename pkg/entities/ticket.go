package entities

import (
	"github.com/Jacobbrewer1/tickets/pkg/custom"
)

// TicketInstance is an open ticket.
type TicketInstance struct {
	// ChannelID is the ID of the ticket channel. While Pending it holds the reservation ID instead.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// TypeName is the name of the ticket type at the time the ticket was opened.
	// The type may since have been deleted.
	TypeName string `json:"type_name" bson:"type_name"`

	// Number is the guild sequence number of the ticket.
	Number int64 `json:"number" bson:"number"`

	// ChannelName is the name the ticket channel was created with.
	ChannelName string `json:"channel_name" bson:"channel_name"`

	// OwnerID is the ID of the user that opened the ticket.
	OwnerID string `json:"owner_id" bson:"owner_id"`

	// ClaimedBy is the ID of the user handling the ticket. Empty when unclaimed.
	ClaimedBy string `json:"claimed_by,omitempty" bson:"claimed_by,omitempty"`

	// CreatedAt is the time that the ticket was opened.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at"`

	// IntakeAnswers are the answers to the type's intake fields, in order.
	IntakeAnswers []string `json:"intake_answers" bson:"intake_answers"`

	// RoleIDs is a snapshot of the type's roles when the ticket was opened.
	RoleIDs []string `json:"role_ids" bson:"role_ids"`

	// Color is a snapshot of the type's colour when the ticket was opened.
	Color Color `json:"color" bson:"color"`

	// Pending is set between reserving a ticket and the platform confirming its channel.
	Pending bool `json:"pending,omitempty" bson:"pending,omitempty"`
}

// Claimed reports whether a user is handling the ticket.
func (t *TicketInstance) Claimed() bool {
	return t.ClaimedBy != ""
}

// Clone returns a deep copy of the ticket.
func (t *TicketInstance) Clone() *TicketInstance {
	if t == nil {
		return nil
	}
	c := *t
	c.IntakeAnswers = append([]string(nil), t.IntakeAnswers...)
	c.RoleIDs = append([]string(nil), t.RoleIDs...)
	return &c
}
