package main

import "strings"

const (
	// OpenTicketButtonPrefix prefixes the panel buttons. The ticket type name follows the separator.
	OpenTicketButtonPrefix = "ticket_open"

	// IntakeModalPrefix prefixes the intake modals. The ticket type name follows the separator.
	IntakeModalPrefix = "ticket_intake"

	// ClaimTicketButtonID is the ID for the claim ticket button.
	ClaimTicketButtonID = "ticket_claim"

	// CloseTicketButtonID is the ID for the close ticket button.
	CloseTicketButtonID = "ticket_close"

	// intakeFieldPrefix prefixes the text inputs of an intake modal. The field index follows the separator.
	intakeFieldPrefix = "field"

	customIDSeparator = ":"
)

// encodeCustomID attaches an argument to a component prefix.
func encodeCustomID(prefix, arg string) string {
	if arg == "" {
		return prefix
	}
	return prefix + customIDSeparator + arg
}

// decodeCustomID splits a custom ID into its prefix and argument. Only the first separator
// splits, so arguments may contain it.
func decodeCustomID(id string) (prefix, arg string) {
	prefix, arg, _ = strings.Cut(id, customIDSeparator)
	return prefix, arg
}
