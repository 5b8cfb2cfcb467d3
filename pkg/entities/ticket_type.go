package entities

import "strings"

// MaxIntakeFields is the most intake prompts a ticket type may have. Discord modals hold five inputs.
const MaxIntakeFields = 5

// Color is the display colour of a ticket type's panel button.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorGrey   Color = "grey"
	ColorOrange Color = "orange"
)

// Palette is every supported colour, in display order.
var Palette = []Color{ColorBlue, ColorGreen, ColorRed, ColorGrey, ColorOrange}

// Valid reports whether the colour is in the palette.
func (c Color) Valid() bool {
	for _, p := range Palette {
		if c == p {
			return true
		}
	}
	return false
}

// ParseColor converts user input into a colour. The second value is false if it is not in the palette.
func ParseColor(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "gray" {
		s = string(ColorGrey)
	}
	c := Color(s)
	return c, c.Valid()
}

// TicketType is an administrator defined template for tickets.
type TicketType struct {
	// Name is the display name. It is unique within a guild, ignoring case.
	Name string `json:"name" bson:"name"`

	// RoleIDs are the roles given access to tickets of this type.
	RoleIDs []string `json:"role_ids" bson:"role_ids"`

	// Color is the panel button colour.
	Color Color `json:"color" bson:"color"`

	// IntakeFields are the questions asked when a ticket is opened.
	IntakeFields []string `json:"intake_fields" bson:"intake_fields"`
}

// HasRole reports whether the role is already granted by the type.
func (t *TicketType) HasRole(roleID string) bool {
	for _, r := range t.RoleIDs {
		if r == roleID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the type.
func (t *TicketType) Clone() *TicketType {
	if t == nil {
		return nil
	}
	c := *t
	c.RoleIDs = append([]string(nil), t.RoleIDs...)
	c.IntakeFields = append([]string(nil), t.IntakeFields...)
	return &c
}
