package ticketing

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Jacobbrewer1/tickets/pkg/audit"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
)

// PendingPrefix marks ledger keys that are reservations rather than channel IDs.
const PendingPrefix = "pending-"

// GrantTarget is what a permission grant applies to.
type GrantTarget string

const (
	// GrantEveryone is the guild's default role. Its ID is the guild ID.
	GrantEveryone GrantTarget = "everyone"

	// GrantMember is a single member.
	GrantMember GrantTarget = "member"

	// GrantRole is a role.
	GrantRole GrantTarget = "role"
)

// PermissionGrant allows or denies a target access to a ticket channel.
type PermissionGrant struct {
	// TargetID is the ID of the role or member.
	TargetID string

	// Target is the kind of target.
	Target GrantTarget

	// Allow is true to grant view and send, false to deny view.
	Allow bool
}

// OpenRequest asks for a new ticket.
type OpenRequest struct {
	GuildID  string
	TypeName string
	UserID   string
	Answers  []string
}

// OpenResult describes the side effects the platform must perform for a reserved ticket,
// followed by Engine.Commit or Engine.Rollback.
type OpenResult struct {
	// ReservationID is the ledger key until the ticket is committed.
	ReservationID string

	// Number is the ticket number.
	Number int64

	// ChannelName is the name to create the channel with.
	ChannelName string

	// Grants are the permission overwrites for the channel.
	Grants []PermissionGrant

	// MentionRoleIDs are the roles to mention in the first message.
	MentionRoleIDs []string

	// Summary is the intake questions and answers formatted for the first message. Empty if the type has none.
	Summary string

	// Instance is a copy of the recorded ticket.
	Instance *entities.TicketInstance

	// Event is the opened event, published on commit.
	Event audit.Event
}

// ClaimResult is the outcome of a claim.
type ClaimResult struct {
	// Instance is a copy of the ticket after the claim.
	Instance *entities.TicketInstance

	// Changed is false when the requester already held the claim.
	Changed bool

	// Notice is the message to post in the ticket channel.
	Notice string

	// Event is the claimed event. Zero when nothing changed.
	Event audit.Event
}

// CloseRequest asks for a ticket to be closed.
type CloseRequest struct {
	GuildID     string
	ChannelID   string
	RequesterID string

	// Privileged is true when the requester holds an administrative capability in the guild.
	Privileged bool
}

// CloseResult is the outcome of a close. The caller deletes the channel.
type CloseResult struct {
	// Instance is the removed ticket.
	Instance *entities.TicketInstance

	// Event is the closed event.
	Event audit.Event
}

// ChannelName derives the channel name for a ticket: the lower-cased type name with whitespace
// replaced by hyphens, a hyphen and the number.
func ChannelName(typeName string, number int64) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '-'
		}
		return unicode.ToLower(r)
	}, strings.TrimSpace(typeName))
	return fmt.Sprintf("%s-%d", name, number)
}

// IntakeSummary formats intake answers against their prompts.
func IntakeSummary(fields, answers []string) string {
	if len(fields) == 0 {
		return ""
	}

	sb := new(strings.Builder)
	for i, f := range fields {
		if i > 0 {
			sb.WriteString("\n")
		}
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}
		if strings.TrimSpace(answer) == "" {
			answer = "_No answer_"
		}
		fmt.Fprintf(sb, "**%s**\n%s\n", f, answer)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// IsPending reports whether a ledger key is an unconfirmed reservation.
func IsPending(key string) bool {
	return strings.HasPrefix(key, PendingPrefix)
}
