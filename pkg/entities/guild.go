package entities

// ClosePolicy decides who may close a ticket.
type ClosePolicy string

const (
	// ClosePolicyOwnerClaimantStaff allows the owner, the claimant and privileged members.
	ClosePolicyOwnerClaimantStaff ClosePolicy = "owner_claimant_staff"

	// ClosePolicyOwnerStaff allows the owner and privileged members.
	ClosePolicyOwnerStaff ClosePolicy = "owner_staff"

	// ClosePolicyAnyone allows anyone who can see the ticket channel.
	ClosePolicyAnyone ClosePolicy = "anyone"
)

// Valid reports whether the policy is a known one. The empty policy is valid and means the default.
func (p ClosePolicy) Valid() bool {
	switch p {
	case "", ClosePolicyOwnerClaimantStaff, ClosePolicyOwnerStaff, ClosePolicyAnyone:
		return true
	default:
		return false
	}
}

// OrDefault returns the policy, or the default policy if unset.
func (p ClosePolicy) OrDefault() ClosePolicy {
	if p == "" {
		return ClosePolicyOwnerClaimantStaff
	}
	return p
}

// GuildConfig is the ticketing configuration and state for a guild. It is persisted as a single document.
type GuildConfig struct {
	// ID is the ID of the guild.
	ID string `json:"id" bson:"id"`

	// SequenceCounter is the last ticket number handed out. It never decreases.
	SequenceCounter int64 `json:"sequence_counter" bson:"sequence_counter"`

	// Types are the ticket types in the order they were first created.
	Types []*TicketType `json:"types" bson:"types"`

	// OpenTickets are the open tickets keyed by channel ID.
	OpenTickets map[string]*TicketInstance `json:"open_tickets" bson:"open_tickets"`

	// LogChannelID is the channel audit events are posted to. Empty when not configured.
	LogChannelID string `json:"log_channel_id,omitempty" bson:"log_channel_id,omitempty"`

	// ClosePolicy decides who may close tickets in this guild.
	ClosePolicy ClosePolicy `json:"close_policy,omitempty" bson:"close_policy,omitempty"`
}

// NewGuildConfig creates the default configuration for a guild.
func NewGuildConfig(guildID string) *GuildConfig {
	return &GuildConfig{
		ID:          guildID,
		Types:       make([]*TicketType, 0),
		OpenTickets: make(map[string]*TicketInstance),
	}
}

// Normalize fills in nil collections left by decoding an older or partial document.
func (g *GuildConfig) Normalize() {
	if g.Types == nil {
		g.Types = make([]*TicketType, 0)
	}
	if g.OpenTickets == nil {
		g.OpenTickets = make(map[string]*TicketInstance)
	}
}

// Clone returns a deep copy of the config.
func (g *GuildConfig) Clone() *GuildConfig {
	if g == nil {
		return nil
	}

	c := *g
	c.Types = make([]*TicketType, 0, len(g.Types))
	for _, t := range g.Types {
		c.Types = append(c.Types, t.Clone())
	}
	c.OpenTickets = make(map[string]*TicketInstance, len(g.OpenTickets))
	for k, v := range g.OpenTickets {
		c.OpenTickets[k] = v.Clone()
	}
	return &c
}
