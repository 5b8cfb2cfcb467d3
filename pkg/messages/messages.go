// Package messages holds the text the bot sends back to users.
package messages

const (
	ErrUserErrorProcessing = "There was an error processing your request. Please try again later."

	ErrNotPrivileged = "You need the Manage Server permission to use this command."

	ErrRateLimited = "You are opening tickets too quickly. Please wait a moment and try again."

	ErrNotInGuild = "This can only be used inside a server."

	ErrNoTicketTypes = "There are no ticket types configured. Add one with `/ticket_type set` first."

	TicketCreated = "Your ticket has been created: <#%s>"

	TicketClosing = "This ticket has been closed by <@%s> and the channel will now be deleted."

	PanelPosted = "Panel posted."

	PanelTruncated = "Panel posted. %d ticket types did not fit and were left out."

	TypeSaved = "Ticket type **%s** saved."

	TypeRoleAdded = "Role <@&%s> added to ticket type **%s**."

	TypeColorSet = "Ticket type **%s** is now %s."

	TypeDeleted = "Ticket type **%s** deleted. Its open tickets are unaffected."

	LogChannelSet = "Ticket events will be logged to <#%s>."

	LogChannelCleared = "Ticket events will no longer be logged."

	ClosePolicySet = "Close policy set to **%s**."
)
