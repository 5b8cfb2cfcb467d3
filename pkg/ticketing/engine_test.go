package ticketing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/audit"
	"github.com/Jacobbrewer1/tickets/pkg/custom"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/stretchr/testify/require"
)

const testGuild = "1000"

type memStore struct {
	mu      sync.Mutex
	configs map[string]*entities.GuildConfig
	saves   int
	failPut error
}

func newMemStore() *memStore {
	return &memStore{configs: make(map[string]*entities.GuildConfig)}
}

func (s *memStore) GetGuildConfig(_ context.Context, guildID string) (*entities.GuildConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.configs[guildID]; ok {
		return c.Clone(), nil
	}
	return entities.NewGuildConfig(guildID), nil
}

func (s *memStore) SaveGuildConfig(_ context.Context, cfg *entities.GuildConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut != nil {
		return s.failPut
	}
	s.saves++
	s.configs[cfg.ID] = cfg.Clone()
	return nil
}

func (s *memStore) get(guildID string) *entities.GuildConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configs[guildID].Clone()
}

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *recordingSink) Publish(_ context.Context, e audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) kinds() []audit.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]audit.Kind, 0, len(s.events))
	for _, e := range s.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type roleSet map[string]bool

func (r roleSet) RoleExists(_, roleID string) bool {
	return r[roleID]
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *memStore, *recordingSink) {
	t.Helper()
	store := newMemStore()
	sink := new(recordingSink)
	l := slog.New(slog.NewJSONHandler(new(bytes.Buffer), nil))
	return NewEngine(l, store, sink, opts...), store, sink
}

// openTicket opens and commits a ticket, returning its channel ID.
func openTicket(t *testing.T, e *Engine, typeName, userID, channelID string, answers ...string) *OpenResult {
	t.Helper()
	ctx := context.Background()
	res, err := e.Open(ctx, OpenRequest{GuildID: testGuild, TypeName: typeName, UserID: userID, Answers: answers})
	require.NoError(t, err)
	_, err = e.Commit(ctx, testGuild, res.ReservationID, channelID)
	require.NoError(t, err)
	return res
}

func TestEngine_Scenario(t *testing.T) {
	ctx := context.Background()
	e, store, sink := newTestEngine(t)

	_, err := e.CreateOrReplaceType(ctx, testGuild, "support", nil, entities.ColorBlue, nil)
	require.NoError(t, err)

	res, err := e.Open(ctx, OpenRequest{GuildID: testGuild, TypeName: "support", UserID: "42"})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Number)
	require.Equal(t, "support-1", res.ChannelName)
	require.Empty(t, res.Summary)
	require.Equal(t, []PermissionGrant{
		{TargetID: testGuild, Target: GrantEveryone, Allow: false},
		{TargetID: "42", Target: GrantMember, Allow: true},
	}, res.Grants)

	inst, err := e.Commit(ctx, testGuild, res.ReservationID, "500")
	require.NoError(t, err)
	require.Equal(t, "500", inst.ChannelID)
	require.Equal(t, "42", inst.OwnerID)
	require.Empty(t, inst.ClaimedBy)
	require.False(t, inst.Pending)

	cfg := store.get(testGuild)
	require.Len(t, cfg.OpenTickets, 1)
	require.Equal(t, int64(1), cfg.SequenceCounter)

	_, err = e.RemoveType(ctx, testGuild, "support")
	require.NoError(t, err)

	got, ok, err := e.Lookup(ctx, testGuild, "500")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "support", got.TypeName)
	require.Equal(t, entities.ColorBlue, got.Color)

	closed, err := e.Close(ctx, CloseRequest{GuildID: testGuild, ChannelID: "500", RequesterID: "42"})
	require.NoError(t, err)
	require.Equal(t, "42", closed.Event.OwnerID)
	require.Equal(t, "42", closed.Event.ClosedBy)

	_, ok, err = e.Lookup(ctx, testGuild, "500")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, store.get(testGuild).OpenTickets)

	_, err = e.Close(ctx, CloseRequest{GuildID: testGuild, ChannelID: "500", RequesterID: "42"})
	require.ErrorIs(t, err, ErrNotFound)

	require.Equal(t, []audit.Kind{audit.KindOpened, audit.KindClosed}, sink.kinds())
}

func TestEngine_OpenUnknownType(t *testing.T) {
	e, store, _ := newTestEngine(t)

	_, err := e.Open(context.Background(), OpenRequest{GuildID: testGuild, TypeName: "gone", UserID: "42"})
	require.ErrorIs(t, err, ErrUnknownTicketType)
	require.Zero(t, store.saves)
}

func TestEngine_OpenAnswerMismatchAllocatesNothing(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEngine(t)

	_, err := e.CreateOrReplaceType(ctx, testGuild, "bug", nil, entities.ColorRed, []string{"What broke?", "Steps?"})
	require.NoError(t, err)

	for _, answers := range [][]string{nil, {"only one"}, {"a", "b", "c"}} {
		_, err = e.Open(ctx, OpenRequest{GuildID: testGuild, TypeName: "bug", UserID: "42", Answers: answers})
		require.ErrorIs(t, err, ErrValidation)
	}

	cfg := store.get(testGuild)
	require.Zero(t, cfg.SequenceCounter)
	require.Empty(t, cfg.OpenTickets)
}

func TestEngine_OpenBuildsGrantsAndSummary(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, WithRoleResolver(roleSet{"111": true, "333": true}))

	_, err := e.CreateOrReplaceType(ctx, testGuild, "Bug Report", []string{"111", "222", "333"}, entities.ColorRed, []string{"What broke?"})
	require.NoError(t, err)

	res, err := e.Open(ctx, OpenRequest{GuildID: testGuild, TypeName: "bug report", UserID: "42", Answers: []string{" the login page "}})
	require.NoError(t, err)

	require.Equal(t, "bug-report-1", res.ChannelName)
	require.Equal(t, []string{"111", "333"}, res.MentionRoleIDs)
	require.Len(t, res.Grants, 4)
	require.Equal(t, PermissionGrant{TargetID: "333", Target: GrantRole, Allow: true}, res.Grants[3])
	require.Equal(t, "**What broke?**\nthe login page", res.Summary)
	require.Equal(t, []string{"111", "222", "333"}, res.Instance.RoleIDs)
	require.True(t, res.Instance.Pending)
}

func TestEngine_ConcurrentOpensGetUniqueNumbers(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEngine(t)

	_, err := e.CreateOrReplaceType(ctx, testGuild, "support", nil, entities.ColorBlue, nil)
	require.NoError(t, err)

	const n = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[int64]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.Open(ctx, OpenRequest{GuildID: testGuild, TypeName: "support", UserID: fmt.Sprint(i + 1)})
			if err != nil {
				t.Errorf("open: %v", err)
				return
			}
			if i%5 == 0 {
				if err := e.Rollback(ctx, testGuild, res.ReservationID); err != nil {
					t.Errorf("rollback: %v", err)
				}
			}
			mu.Lock()
			defer mu.Unlock()
			if numbers[res.Number] {
				t.Errorf("duplicate number %d", res.Number)
			}
			numbers[res.Number] = true
		}(i)
	}
	wg.Wait()

	cfg := store.get(testGuild)
	require.Len(t, numbers, n)
	require.Equal(t, int64(n), cfg.SequenceCounter)
	for num := range numbers {
		require.True(t, num >= 1 && num <= cfg.SequenceCounter)
	}
	require.Len(t, cfg.OpenTickets, n-n/5)
}

func TestEngine_Claim(t *testing.T) {
	ctx := context.Background()
	e, store, sink := newTestEngine(t)
	_, err := e.CreateOrReplaceType(ctx, testGuild, "support", nil, entities.ColorBlue, nil)
	require.NoError(t, err)
	openTicket(t, e, "support", "42", "500")

	res, err := e.Claim(ctx, testGuild, "500", "7")
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Equal(t, "7", res.Instance.ClaimedBy)

	saves := store.saves
	res, err = e.Claim(ctx, testGuild, "500", "7")
	require.NoError(t, err)
	require.False(t, res.Changed)
	require.Equal(t, saves, store.saves)

	_, err = e.Claim(ctx, testGuild, "500", "8")
	var ace *AlreadyClaimedError
	require.ErrorAs(t, err, &ace)
	require.Equal(t, "7", ace.ClaimedBy)
	require.Equal(t, "7", store.get(testGuild).OpenTickets["500"].ClaimedBy)

	_, err = e.Claim(ctx, testGuild, "999", "7")
	require.ErrorIs(t, err, ErrNotFound)

	require.Equal(t, []audit.Kind{audit.KindOpened, audit.KindClaimed}, sink.kinds())
}

func TestEngine_PendingTicketsAreNotClaimable(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	_, err := e.CreateOrReplaceType(ctx, testGuild, "support", nil, entities.ColorBlue, nil)
	require.NoError(t, err)

	res, err := e.Open(ctx, OpenRequest{GuildID: testGuild, TypeName: "support", UserID: "42"})
	require.NoError(t, err)

	_, err = e.Claim(ctx, testGuild, res.ReservationID, "7")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.Close(ctx, CloseRequest{GuildID: testGuild, ChannelID: res.ReservationID, RequesterID: "42"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEngine_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	e, store, sink := newTestEngine(t)
	_, err := e.CreateOrReplaceType(ctx, testGuild, "support", nil, entities.ColorBlue, nil)
	require.NoError(t, err)

	res, err := e.Open(ctx, OpenRequest{GuildID: testGuild, TypeName: "support", UserID: "42"})
	require.NoError(t, err)
	require.NoError(t, e.Rollback(ctx, testGuild, res.ReservationID))
	require.Empty(t, store.get(testGuild).OpenTickets)
	require.Empty(t, sink.kinds())

	_, err = e.Commit(ctx, testGuild, res.ReservationID, "500")
	require.ErrorIs(t, err, ErrNotFound)

	res, err = e.Open(ctx, OpenRequest{GuildID: testGuild, TypeName: "support", UserID: "42"})
	require.NoError(t, err)
	require.Equal(t, int64(2), res.Number)

	_, err = e.Commit(ctx, testGuild, "500", "500")
	require.ErrorIs(t, err, ErrValidation)
	_, err = e.Commit(ctx, testGuild, res.ReservationID, "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = e.Commit(ctx, testGuild, res.ReservationID, "500")
	require.NoError(t, err)
	require.NoError(t, e.Rollback(ctx, testGuild, "500"))
	require.ErrorIs(t, e.Rollback(ctx, testGuild, "500"), ErrNotFound)
}

func TestEngine_ClosePolicy(t *testing.T) {
	tests := []struct {
		name       string
		policy     entities.ClosePolicy
		requester  string
		privileged bool
		wantErr    error
	}{
		{name: "default owner", requester: "42"},
		{name: "default claimant", requester: "7"},
		{name: "default staff", requester: "9", privileged: true},
		{name: "default stranger", requester: "9", wantErr: ErrForbidden},
		{name: "owner_staff claimant", policy: entities.ClosePolicyOwnerStaff, requester: "7", wantErr: ErrForbidden},
		{name: "owner_staff owner", policy: entities.ClosePolicyOwnerStaff, requester: "42"},
		{name: "anyone stranger", policy: entities.ClosePolicyAnyone, requester: "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			e, store, _ := newTestEngine(t)
			_, err := e.CreateOrReplaceType(ctx, testGuild, "support", nil, entities.ColorBlue, nil)
			require.NoError(t, err)
			if tt.policy != "" {
				require.NoError(t, e.SetClosePolicy(ctx, testGuild, tt.policy))
			}
			openTicket(t, e, "support", "42", "500")
			_, err = e.Claim(ctx, testGuild, "500", "7")
			require.NoError(t, err)

			_, err = e.Close(ctx, CloseRequest{GuildID: testGuild, ChannelID: "500", RequesterID: tt.requester, Privileged: tt.privileged})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Contains(t, store.get(testGuild).OpenTickets, "500")
				return
			}
			require.NoError(t, err)
			require.NotContains(t, store.get(testGuild).OpenTickets, "500")
		})
	}
}

func TestEngine_CloseEventCarriesDuration(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, WithClock(func() time.Time { return now }))
	_, err := e.CreateOrReplaceType(ctx, testGuild, "support", nil, entities.ColorBlue, nil)
	require.NoError(t, err)
	require.NoError(t, e.SetLogChannel(ctx, testGuild, "900"))
	openTicket(t, e, "support", "42", "500")
	_, err = e.Claim(ctx, testGuild, "500", "7")
	require.NoError(t, err)

	now = now.Add(time.Hour)
	res, err := e.Close(ctx, CloseRequest{GuildID: testGuild, ChannelID: "500", RequesterID: "7"})
	require.NoError(t, err)
	require.Equal(t, time.Hour, res.Event.OpenFor)
	require.Equal(t, "7", res.Event.ClaimedBy)
	require.Equal(t, "900", res.Event.LogChannelID)
	require.Equal(t, "support-1", res.Event.ChannelName)
}

func TestEngine_ClaimCloseRace(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEngine(t)
	_, err := e.CreateOrReplaceType(ctx, testGuild, "support", nil, entities.ColorBlue, nil)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		channel := fmt.Sprint(500 + i)
		openTicket(t, e, "support", "42", channel)

		var (
			wg       sync.WaitGroup
			claimErr error
			closeErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, claimErr = e.Claim(ctx, testGuild, channel, "7")
		}()
		go func() {
			defer wg.Done()
			_, closeErr = e.Close(ctx, CloseRequest{GuildID: testGuild, ChannelID: channel, RequesterID: "42"})
		}()
		wg.Wait()

		require.NoError(t, closeErr)
		if claimErr != nil {
			require.ErrorIs(t, claimErr, ErrNotFound)
		}
		require.NotContains(t, store.get(testGuild).OpenTickets, channel)
	}
}

func TestEngine_PersistFailureReportsError(t *testing.T) {
	ctx := context.Background()
	e, store, sink := newTestEngine(t)
	_, err := e.CreateOrReplaceType(ctx, testGuild, "support", nil, entities.ColorBlue, nil)
	require.NoError(t, err)
	openTicket(t, e, "support", "42", "500")

	store.failPut = errors.New("disk full")
	_, err = e.Close(ctx, CloseRequest{GuildID: testGuild, ChannelID: "500", RequesterID: "42"})
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, []audit.Kind{audit.KindOpened}, sink.kinds())

	store.failPut = nil
	_, ok, err := e.Lookup(ctx, testGuild, "500")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEngine_Admin(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	_, err := e.CreateOrReplaceType(ctx, testGuild, "bug", []string{"111"}, entities.ColorRed, []string{"desc"})
	require.NoError(t, err)
	_, err = e.CreateOrReplaceType(ctx, testGuild, "billing", nil, entities.ColorGreen, nil)
	require.NoError(t, err)

	typ, err := e.AddTypeRole(ctx, testGuild, "bug", "222")
	require.NoError(t, err)
	require.Equal(t, []string{"111", "222"}, typ.RoleIDs)

	typ, err = e.SetTypeColor(ctx, testGuild, "billing", entities.ColorOrange)
	require.NoError(t, err)
	require.Equal(t, entities.ColorOrange, typ.Color)

	typ, err = e.GetType(ctx, testGuild, "BUG")
	require.NoError(t, err)
	require.Equal(t, "bug", typ.Name)
	_, err = e.GetType(ctx, testGuild, "gone")
	require.ErrorIs(t, err, ErrUnknownTicketType)

	types, err := e.ListTypes(ctx, testGuild)
	require.NoError(t, err)
	require.Len(t, types, 2)
	require.Equal(t, "bug", types[0].Name)
	require.Equal(t, "billing", types[1].Name)

	require.ErrorIs(t, e.SetLogChannel(ctx, testGuild, "#logs"), ErrValidation)
	require.ErrorIs(t, e.SetClosePolicy(ctx, testGuild, "mods"), ErrValidation)
	require.NoError(t, e.SetLogChannel(ctx, testGuild, "900"))

	snap, err := e.Snapshot(ctx, testGuild)
	require.NoError(t, err)
	require.Equal(t, "900", snap.LogChannelID)

	_, err = e.ListTypes(ctx, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestEngine_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e, store, _ := newTestEngine(t, WithClock(func() time.Time { return now }))
	_, err := e.CreateOrReplaceType(ctx, testGuild, "support", nil, entities.ColorBlue, nil)
	require.NoError(t, err)

	openTicket(t, e, "support", "42", "500")
	openTicket(t, e, "support", "42", "501")
	stale, err := e.Open(ctx, OpenRequest{GuildID: testGuild, TypeName: "support", UserID: "42"})
	require.NoError(t, err)

	now = now.Add(time.Minute)
	fresh, err := e.Open(ctx, OpenRequest{GuildID: testGuild, TypeName: "support", UserID: "43"})
	require.NoError(t, err)

	exists := func(_ context.Context, channelID string) (bool, error) {
		switch channelID {
		case "500":
			return true, nil
		case "501":
			return false, nil
		default:
			return false, errors.New("unexpected lookup " + channelID)
		}
	}

	removed, err := e.Sweep(ctx, testGuild, exists, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, removed, 2)

	cfg := store.get(testGuild)
	require.Contains(t, cfg.OpenTickets, "500")
	require.NotContains(t, cfg.OpenTickets, "501")
	require.NotContains(t, cfg.OpenTickets, stale.ReservationID)
	require.Contains(t, cfg.OpenTickets, fresh.ReservationID)
}

func TestEngine_CreatedAtIsPersisted(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e, store, _ := newTestEngine(t, WithClock(func() time.Time { return now }))
	_, err := e.CreateOrReplaceType(ctx, testGuild, "support", nil, entities.ColorBlue, nil)
	require.NoError(t, err)
	openTicket(t, e, "support", "42", "500")

	require.Equal(t, custom.Datetime(now), store.get(testGuild).OpenTickets["500"].CreatedAt)
}

func TestEngine_NumbersSurviveRestart(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEngine(t)

	_, err := e.CreateOrReplaceType(ctx, testGuild, "support", nil, entities.ColorBlue, nil)
	require.NoError(t, err)
	openTicket(t, e, "support", "42", "500")
	_, err = e.Close(ctx, CloseRequest{GuildID: testGuild, ChannelID: "500", RequesterID: "42"})
	require.NoError(t, err)

	restarted := NewEngine(slog.New(slog.NewJSONHandler(new(bytes.Buffer), nil)), store, nil)
	res, err := restarted.Open(ctx, OpenRequest{GuildID: testGuild, TypeName: "support", UserID: "43"})
	require.NoError(t, err)
	require.Equal(t, int64(2), res.Number)
	require.Equal(t, "support-2", res.ChannelName)
}
