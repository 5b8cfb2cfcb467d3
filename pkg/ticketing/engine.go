package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/audit"
	"github.com/Jacobbrewer1/tickets/pkg/custom"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/ticketing/monitoring"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	opOpen           = "open"
	opCommit         = "commit"
	opRollback       = "rollback"
	opClaim          = "claim"
	opClose          = "close"
	opLookup         = "lookup"
	opSnapshot       = "snapshot"
	opListTypes      = "list_types"
	opGetType        = "get_type"
	opSetType        = "set_type"
	opAddTypeRole    = "add_type_role"
	opSetTypeColor   = "set_type_color"
	opRemoveType     = "remove_type"
	opSetLogChannel  = "set_log_channel"
	opSetClosePolicy = "set_close_policy"
	opSweep          = "sweep"
)

// Store loads and saves a guild's config as one document.
type Store interface {
	// GetGuildConfig returns the guild's config, or a new default config if there is none.
	GetGuildConfig(ctx context.Context, guildID string) (*entities.GuildConfig, error)

	// SaveGuildConfig replaces the guild's config in a single write.
	SaveGuildConfig(ctx context.Context, cfg *entities.GuildConfig) error
}

// RoleResolver reports whether a role still exists in a guild.
type RoleResolver interface {
	RoleExists(guildID, roleID string) bool
}

// Engine runs the ticket lifecycle. Operations on one guild are serialised and each
// successful mutation is persisted with a single store write before it is reported.
type Engine struct {
	l     *slog.Logger
	store Store
	locks *GuildLocks
	sink  audit.Sink
	roles RoleResolver
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRoleResolver skips roles the resolver does not know when building grants.
func WithRoleResolver(r RoleResolver) Option {
	return func(e *Engine) {
		e.roles = r
	}
}

// WithClock replaces the engine's clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new engine.
func NewEngine(l *slog.Logger, store Store, sink audit.Sink, opts ...Option) *Engine {
	if sink == nil {
		sink = audit.Discard
	}

	e := &Engine{
		l:     l,
		store: store,
		locks: NewGuildLocks(),
		sink:  sink,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// mutate runs fn against the guild's config under the guild lock and saves the config if fn
// reports a change. Nothing is saved when fn returns an error.
func (e *Engine) mutate(ctx context.Context, op, guildID string, fn func(cfg *entities.GuildConfig) (bool, error)) (err error) {
	t := prometheus.NewTimer(monitoring.OperationDuration.WithLabelValues(op))
	defer t.ObserveDuration()
	defer func() {
		monitoring.OperationsTotal.WithLabelValues(op, Category(err)).Inc()
	}()

	if strings.TrimSpace(guildID) == "" {
		return validationf("guild id is empty")
	}

	unlock, err := e.locks.Lock(ctx, guildID)
	if err != nil {
		return fmt.Errorf("error waiting for guild lock: %w", err)
	}
	defer unlock()

	cfg, err := e.store.GetGuildConfig(ctx, guildID)
	if err != nil {
		return fmt.Errorf("error getting guild config: %w", err)
	}
	cfg.ID = guildID
	cfg.Normalize()

	changed, err := fn(cfg)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			e.l.Error("Ticket ledger conflict",
				slog.String(logging.KeyError, err.Error()),
				slog.String(logging.KeyGuild, guildID),
				slog.String("operation", op),
			)
		}
		return err
	}
	if !changed {
		return nil
	}

	if err := e.store.SaveGuildConfig(ctx, cfg); err != nil {
		return fmt.Errorf("error saving guild config: %w", err)
	}
	return nil
}

func (e *Engine) read(ctx context.Context, op, guildID string, fn func(cfg *entities.GuildConfig) error) error {
	return e.mutate(ctx, op, guildID, func(cfg *entities.GuildConfig) (bool, error) {
		return false, fn(cfg)
	})
}

func (e *Engine) event(kind audit.Kind, cfg *entities.GuildConfig, t *entities.TicketInstance) audit.Event {
	ev := audit.NewEvent(kind, e.now())
	ev.GuildID = cfg.ID
	ev.LogChannelID = cfg.LogChannelID
	ev.ChannelID = t.ChannelID
	ev.ChannelName = t.ChannelName
	ev.TypeName = t.TypeName
	ev.Number = t.Number
	ev.OwnerID = t.OwnerID
	ev.ClaimedBy = t.ClaimedBy
	return ev
}

func (e *Engine) grants(guildID, userID string, t *entities.TicketType) ([]PermissionGrant, []string) {
	grants := []PermissionGrant{
		{TargetID: guildID, Target: GrantEveryone, Allow: false},
		{TargetID: userID, Target: GrantMember, Allow: true},
	}

	mentions := make([]string, 0, len(t.RoleIDs))
	for _, roleID := range t.RoleIDs {
		if e.roles != nil && !e.roles.RoleExists(guildID, roleID) {
			e.l.Debug("Skipping unknown role for ticket type",
				slog.String(logging.KeyGuild, guildID),
				slog.String("role_id", roleID),
				slog.String("type", t.Name),
			)
			continue
		}
		grants = append(grants, PermissionGrant{TargetID: roleID, Target: GrantRole, Allow: true})
		mentions = append(mentions, roleID)
	}
	return grants, mentions
}

// Open reserves a ticket: it allocates a number and records a pending ledger entry, and returns
// the channel the platform must create. The caller then calls Commit with the created channel's
// ID, or Rollback with the reservation ID if the channel could not be created.
func (e *Engine) Open(ctx context.Context, req OpenRequest) (*OpenResult, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, validationf("user id is empty")
	}

	var res *OpenResult
	err := e.mutate(ctx, opOpen, req.GuildID, func(cfg *entities.GuildConfig) (bool, error) {
		t, ok := Registry(cfg).Get(req.TypeName)
		if !ok {
			return false, fmt.Errorf("ticket type %q: %w", req.TypeName, ErrUnknownTicketType)
		}

		if len(req.Answers) != len(t.IntakeFields) {
			return false, validationf("ticket type %q expects %d answers, got %d", t.Name, len(t.IntakeFields), len(req.Answers))
		}
		answers := make([]string, 0, len(req.Answers))
		for _, a := range req.Answers {
			answers = append(answers, strings.TrimSpace(a))
		}

		number := NextNumber(cfg)
		grants, mentions := e.grants(cfg.ID, req.UserID, t)

		inst := &entities.TicketInstance{
			TypeName:      t.Name,
			Number:        number,
			ChannelName:   ChannelName(t.Name, number),
			OwnerID:       req.UserID,
			CreatedAt:     custom.Datetime(e.now().UTC()),
			IntakeAnswers: answers,
			RoleIDs:       append([]string(nil), t.RoleIDs...),
			Color:         t.Color,
			Pending:       true,
		}

		reservation := PendingPrefix + ulid.Make().String()
		if err := LedgerOf(cfg).Record(reservation, inst); err != nil {
			return false, err
		}

		res = &OpenResult{
			ReservationID:  reservation,
			Number:         number,
			ChannelName:    inst.ChannelName,
			Grants:         grants,
			MentionRoleIDs: mentions,
			Summary:        IntakeSummary(t.IntakeFields, answers),
			Instance:       inst.Clone(),
			Event:          e.event(audit.KindOpened, cfg, inst),
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Commit confirms a reservation once its channel exists, moving the ticket to the channel's ID.
func (e *Engine) Commit(ctx context.Context, guildID, reservationID, channelID string) (*entities.TicketInstance, error) {
	if !IsPending(reservationID) {
		return nil, validationf("%q is not a reservation", reservationID)
	}
	if strings.TrimSpace(channelID) == "" || IsPending(channelID) {
		return nil, validationf("channel id %q is invalid", channelID)
	}

	var (
		inst *entities.TicketInstance
		ev   audit.Event
	)
	err := e.mutate(ctx, opCommit, guildID, func(cfg *entities.GuildConfig) (bool, error) {
		t, err := LedgerOf(cfg).Rekey(reservationID, channelID)
		if err != nil {
			return false, err
		}
		t.Pending = false

		inst = t.Clone()
		ev = e.event(audit.KindOpened, cfg, t)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	e.sink.Publish(ctx, ev)
	return inst, nil
}

// Rollback removes a reservation or ticket whose channel could not be created. The allocated
// number is not reused.
func (e *Engine) Rollback(ctx context.Context, guildID, key string) error {
	return e.mutate(ctx, opRollback, guildID, func(cfg *entities.GuildConfig) (bool, error) {
		t, err := LedgerOf(cfg).Remove(key)
		if err != nil {
			return false, err
		}

		e.l.Warn("Rolled back ticket",
			slog.String(logging.KeyGuild, guildID),
			slog.String(logging.KeyChannel, key),
			slog.Int64("number", t.Number),
		)
		return true, nil
	})
}

// lookupCommitted finds a confirmed ticket. Reservations are not visible to claim or close.
func lookupCommitted(cfg *entities.GuildConfig, channelID string) (*entities.TicketInstance, error) {
	t, ok := LedgerOf(cfg).Lookup(channelID)
	if !ok || t.Pending {
		return nil, notFoundf("ticket for channel %s", channelID)
	}
	return t, nil
}

// Claim assigns a ticket to a user. Claiming a ticket the user already holds is a no-op.
// A ticket held by someone else yields an *AlreadyClaimedError naming the claimant.
func (e *Engine) Claim(ctx context.Context, guildID, channelID, userID string) (*ClaimResult, error) {
	var res *ClaimResult
	err := e.mutate(ctx, opClaim, guildID, func(cfg *entities.GuildConfig) (bool, error) {
		if _, err := lookupCommitted(cfg, channelID); err != nil {
			return false, err
		}

		t, changed, err := LedgerOf(cfg).Claim(channelID, userID)
		if err != nil {
			return false, err
		}

		res = &ClaimResult{
			Instance: t.Clone(),
			Changed:  changed,
		}
		if !changed {
			res.Notice = fmt.Sprintf("<@%s>, you have already claimed this ticket.", userID)
			return false, nil
		}

		res.Notice = fmt.Sprintf("<@%s> has claimed this ticket and will be handling it.", userID)
		res.Event = e.event(audit.KindClaimed, cfg, t)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if res.Changed {
		e.sink.Publish(ctx, res.Event)
	}
	return res, nil
}

// CanClose applies a close policy.
func CanClose(policy entities.ClosePolicy, t *entities.TicketInstance, requesterID string, privileged bool) bool {
	if privileged {
		return true
	}

	switch policy.OrDefault() {
	case entities.ClosePolicyAnyone:
		return true
	case entities.ClosePolicyOwnerStaff:
		return requesterID == t.OwnerID
	default:
		return requesterID == t.OwnerID || (t.ClaimedBy != "" && requesterID == t.ClaimedBy)
	}
}

// Close removes a ticket from the ledger if the guild's close policy allows the requester to.
func (e *Engine) Close(ctx context.Context, req CloseRequest) (*CloseResult, error) {
	var res *CloseResult
	err := e.mutate(ctx, opClose, req.GuildID, func(cfg *entities.GuildConfig) (bool, error) {
		t, err := lookupCommitted(cfg, req.ChannelID)
		if err != nil {
			return false, err
		}

		if !CanClose(cfg.ClosePolicy, t, req.RequesterID, req.Privileged) {
			return false, fmt.Errorf("closing ticket %s: %w", t.ChannelName, ErrForbidden)
		}

		if _, err := LedgerOf(cfg).Remove(req.ChannelID); err != nil {
			return false, err
		}

		ev := e.event(audit.KindClosed, cfg, t)
		ev.ClosedBy = req.RequesterID
		if !t.CreatedAt.IsZero() {
			ev.OpenFor = ev.At.Sub(t.CreatedAt.Time())
		}

		res = &CloseResult{
			Instance: t,
			Event:    ev,
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	e.sink.Publish(ctx, res.Event)
	return res, nil
}

// Lookup returns a copy of the ticket recorded for the channel.
func (e *Engine) Lookup(ctx context.Context, guildID, channelID string) (*entities.TicketInstance, bool, error) {
	var (
		inst *entities.TicketInstance
		ok   bool
	)
	err := e.read(ctx, opLookup, guildID, func(cfg *entities.GuildConfig) error {
		var t *entities.TicketInstance
		t, ok = LedgerOf(cfg).Lookup(channelID)
		inst = t.Clone()
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return inst, ok, nil
}

// Snapshot returns a copy of the guild's config.
func (e *Engine) Snapshot(ctx context.Context, guildID string) (*entities.GuildConfig, error) {
	var c *entities.GuildConfig
	err := e.read(ctx, opSnapshot, guildID, func(cfg *entities.GuildConfig) error {
		c = cfg.Clone()
		return nil
	})
	return c, err
}

// ListTypes returns the guild's ticket types in insertion order.
func (e *Engine) ListTypes(ctx context.Context, guildID string) ([]entities.TicketType, error) {
	var types []entities.TicketType
	err := e.read(ctx, opListTypes, guildID, func(cfg *entities.GuildConfig) error {
		for _, t := range Registry(cfg).List() {
			types = append(types, t)
		}
		return nil
	})
	return types, err
}

// GetType returns a copy of the named ticket type.
func (e *Engine) GetType(ctx context.Context, guildID, name string) (*entities.TicketType, error) {
	var out *entities.TicketType
	err := e.read(ctx, opGetType, guildID, func(cfg *entities.GuildConfig) error {
		t, ok := Registry(cfg).Get(name)
		if !ok {
			return fmt.Errorf("ticket type %q: %w", name, ErrUnknownTicketType)
		}
		out = t.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) mutateType(ctx context.Context, op, guildID string, fn func(r *TypeRegistry) (*entities.TicketType, error)) (*entities.TicketType, error) {
	var out *entities.TicketType
	err := e.mutate(ctx, op, guildID, func(cfg *entities.GuildConfig) (bool, error) {
		t, err := fn(Registry(cfg))
		if err != nil {
			return false, err
		}
		out = t.Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOrReplaceType defines a ticket type, replacing any type with the same name.
func (e *Engine) CreateOrReplaceType(ctx context.Context, guildID, name string, roleIDs []string, color entities.Color, intakeFields []string) (*entities.TicketType, error) {
	return e.mutateType(ctx, opSetType, guildID, func(r *TypeRegistry) (*entities.TicketType, error) {
		return r.CreateOrReplace(name, roleIDs, color, intakeFields)
	})
}

// AddTypeRole grants a role access to a ticket type.
func (e *Engine) AddTypeRole(ctx context.Context, guildID, name, roleID string) (*entities.TicketType, error) {
	return e.mutateType(ctx, opAddTypeRole, guildID, func(r *TypeRegistry) (*entities.TicketType, error) {
		return r.AddRole(name, roleID)
	})
}

// SetTypeColor changes a ticket type's colour.
func (e *Engine) SetTypeColor(ctx context.Context, guildID, name string, color entities.Color) (*entities.TicketType, error) {
	return e.mutateType(ctx, opSetTypeColor, guildID, func(r *TypeRegistry) (*entities.TicketType, error) {
		return r.SetColor(name, color)
	})
}

// RemoveType deletes a ticket type. Its open tickets stay open.
func (e *Engine) RemoveType(ctx context.Context, guildID, name string) (*entities.TicketType, error) {
	return e.mutateType(ctx, opRemoveType, guildID, func(r *TypeRegistry) (*entities.TicketType, error) {
		return r.Remove(name)
	})
}

// SetLogChannel sets the channel audit events are posted to. An empty ID disables it.
func (e *Engine) SetLogChannel(ctx context.Context, guildID, channelID string) error {
	if channelID != "" && !ValidSnowflake(channelID) {
		return validationf("channel id %q is malformed", channelID)
	}
	return e.mutate(ctx, opSetLogChannel, guildID, func(cfg *entities.GuildConfig) (bool, error) {
		cfg.LogChannelID = channelID
		return true, nil
	})
}

// SetClosePolicy sets who may close tickets in the guild.
func (e *Engine) SetClosePolicy(ctx context.Context, guildID string, policy entities.ClosePolicy) error {
	if policy == "" || !policy.Valid() {
		return validationf("close policy %q is not supported", policy)
	}
	return e.mutate(ctx, opSetClosePolicy, guildID, func(cfg *entities.GuildConfig) (bool, error) {
		cfg.ClosePolicy = policy
		return true, nil
	})
}

// ChannelExistsFunc reports whether a channel still exists on the platform.
type ChannelExistsFunc func(ctx context.Context, channelID string) (bool, error)

// Sweep reconciles the ledger with the platform. Reservations older than pendingTTL are dropped,
// as are tickets whose channel has been deleted outside the bot. Channel checks run without the
// guild lock held; an entry is only removed if it is unchanged when the lock is retaken.
func (e *Engine) Sweep(ctx context.Context, guildID string, exists ChannelExistsFunc, pendingTTL time.Duration) ([]*entities.TicketInstance, error) {
	snapshot, err := e.Snapshot(ctx, guildID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	stale := make(map[string]string)
	for key, t := range snapshot.OpenTickets {
		if t.Pending {
			if now.Sub(t.CreatedAt.Time()) > pendingTTL {
				stale[key] = "pending_expired"
			}
			continue
		}

		ok, err := exists(ctx, key)
		if err != nil {
			e.l.Warn("Error checking ticket channel",
				slog.String(logging.KeyError, err.Error()),
				slog.String(logging.KeyGuild, guildID),
				slog.String(logging.KeyChannel, key),
			)
			continue
		}
		if !ok {
			stale[key] = "channel_missing"
		}
	}
	if len(stale) == 0 {
		return nil, nil
	}

	var removed []*entities.TicketInstance
	err = e.mutate(ctx, opSweep, guildID, func(cfg *entities.GuildConfig) (bool, error) {
		ledger := LedgerOf(cfg)
		for key, reason := range stale {
			t, ok := ledger.Lookup(key)
			if !ok || t.Number != snapshot.OpenTickets[key].Number {
				continue
			}
			if _, err := ledger.Remove(key); err != nil {
				return false, err
			}
			monitoring.TicketsSwept.WithLabelValues(reason).Inc()
			removed = append(removed, t)
		}
		return len(removed) > 0, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
