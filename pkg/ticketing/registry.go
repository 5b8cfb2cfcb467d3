package ticketing

import (
	"iter"
	"strings"

	"github.com/Jacobbrewer1/tickets/pkg/entities"
)

const (
	// MaxTypeNameLength is the longest type name, bounded by the panel button label.
	MaxTypeNameLength = 80

	// MaxIntakeFieldLength is the longest intake prompt, bounded by the modal input label.
	MaxIntakeFieldLength = 45
)

// TypeRegistry manages the ticket types of one guild config. It does no locking or persistence;
// the engine owns both.
type TypeRegistry struct {
	cfg *entities.GuildConfig
}

// Registry returns the type registry over the config.
func Registry(cfg *entities.GuildConfig) *TypeRegistry {
	cfg.Normalize()
	return &TypeRegistry{cfg: cfg}
}

// ValidSnowflake reports whether the ID looks like a Discord snowflake.
func ValidSnowflake(id string) bool {
	if id == "" || len(id) > 20 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (r *TypeRegistry) index(name string) int {
	for i, t := range r.cfg.Types {
		if strings.EqualFold(t.Name, name) {
			return i
		}
	}
	return -1
}

// Get returns the type with the given name, ignoring case.
func (r *TypeRegistry) Get(name string) (*entities.TicketType, bool) {
	i := r.index(strings.TrimSpace(name))
	if i < 0 {
		return nil, false
	}
	return r.cfg.Types[i], true
}

// CreateOrReplace inserts a type, or overwrites the type with the same name in place.
// Open tickets of the type keep their snapshot.
func (r *TypeRegistry) CreateOrReplace(name string, roleIDs []string, color entities.Color, intakeFields []string) (*entities.TicketType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("ticket type name is empty")
	}
	if len(name) > MaxTypeNameLength {
		return nil, validationf("ticket type name is longer than %d characters", MaxTypeNameLength)
	}
	if !color.Valid() {
		return nil, validationf("color %q is not supported", color)
	}

	roles := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		id = strings.TrimSpace(id)
		if !ValidSnowflake(id) {
			return nil, validationf("role id %q is malformed", id)
		}
		if !contains(roles, id) {
			roles = append(roles, id)
		}
	}

	if len(intakeFields) > entities.MaxIntakeFields {
		return nil, validationf("at most %d intake fields are allowed", entities.MaxIntakeFields)
	}
	fields := make([]string, 0, len(intakeFields))
	for _, f := range intakeFields {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, validationf("intake field prompt is empty")
		}
		if len(f) > MaxIntakeFieldLength {
			return nil, validationf("intake field %q is longer than %d characters", f, MaxIntakeFieldLength)
		}
		fields = append(fields, f)
	}

	t := &entities.TicketType{
		Name:         name,
		RoleIDs:      roles,
		Color:        color,
		IntakeFields: fields,
	}

	if i := r.index(name); i >= 0 {
		r.cfg.Types[i] = t
	} else {
		r.cfg.Types = append(r.cfg.Types, t)
	}
	return t, nil
}

// AddRole grants a role access to a type. Adding a role that is already present is a no-op.
func (r *TypeRegistry) AddRole(name, roleID string) (*entities.TicketType, error) {
	roleID = strings.TrimSpace(roleID)
	if !ValidSnowflake(roleID) {
		return nil, validationf("role id %q is malformed", roleID)
	}

	t, ok := r.Get(name)
	if !ok {
		return nil, notFoundf("ticket type %q", name)
	}
	if !t.HasRole(roleID) {
		t.RoleIDs = append(t.RoleIDs, roleID)
	}
	return t, nil
}

// SetColor changes the colour of a type.
func (r *TypeRegistry) SetColor(name string, color entities.Color) (*entities.TicketType, error) {
	if !color.Valid() {
		return nil, validationf("color %q is not supported", color)
	}

	t, ok := r.Get(name)
	if !ok {
		return nil, notFoundf("ticket type %q", name)
	}
	t.Color = color
	return t, nil
}

// Remove deletes a type. Open tickets of the type are not affected.
func (r *TypeRegistry) Remove(name string) (*entities.TicketType, error) {
	i := r.index(strings.TrimSpace(name))
	if i < 0 {
		return nil, notFoundf("ticket type %q", name)
	}

	t := r.cfg.Types[i]
	r.cfg.Types = append(r.cfg.Types[:i], r.cfg.Types[i+1:]...)
	return t, nil
}

// Len returns the number of types.
func (r *TypeRegistry) Len() int {
	return len(r.cfg.Types)
}

// List yields the types in insertion order. The sequence can be ranged over more than once.
func (r *TypeRegistry) List() iter.Seq2[string, entities.TicketType] {
	return func(yield func(string, entities.TicketType) bool) {
		for _, t := range r.cfg.Types {
			if !yield(t.Name, *t.Clone()) {
				return
			}
		}
	}
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
