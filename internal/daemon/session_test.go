package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/gitisland/internal/activity"
	"github.com/jmylchreest/gitisland/internal/clock"
	"github.com/jmylchreest/gitisland/internal/reveal"
	"github.com/jmylchreest/gitisland/internal/store"
)

var epoch = time.Date(2026, 1, 17, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu  sync.Mutex
	ids []string
}

func (r *recorder) RecordOpen(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return nil
}

func mockProvider() activity.Provider {
	return activity.ProviderFunc(func(_ context.Context, identity string) (*activity.Grid, error) {
		return activity.MockGrid(identity, epoch), nil
	})
}

func newTestPanel(t *testing.T, p activity.Provider, flag store.FlagStore) (*Panel, *reveal.Reveal, *recorder) {
	t.Helper()
	c := clock.Fake(epoch)
	rv := reveal.New(flag, reveal.WithClock(c))
	rec := &recorder{}
	panel := NewPanel(p, rv, PanelConfig{
		Identity: "octocat",
		Clock:    c,
		Recorder: rec,
	})
	t.Cleanup(panel.End)
	return panel, rv, rec
}

func waitState(t *testing.T, p *Panel, want SessionState) Session {
	t.Helper()
	require.Eventually(t, func() bool { return p.Session().State == want },
		time.Second, 5*time.Millisecond, "session never reached %s", want)
	return p.Session()
}

func TestSessionState_String(t *testing.T) {
	assert.Equal(t, "idle", SessionIdle.String())
	assert.Equal(t, "loading", SessionLoading.String())
	assert.Equal(t, "loaded", SessionLoaded.String())
	assert.Equal(t, "failed", SessionFailed.String())
	assert.Equal(t, "unknown", SessionState(9).String())
}

func TestPanel_BeginLoadsAndReveals(t *testing.T) {
	panel, rv, rec := newTestPanel(t, mockProvider(), store.NewMemoryFlagStore(false))

	s := panel.Begin()
	assert.Equal(t, SessionLoading, s.State)
	assert.NotZero(t, s.ID)
	assert.Equal(t, epoch, s.StartedAt)

	loaded := waitState(t, panel, SessionLoaded)
	assert.Equal(t, s.ID, loaded.ID)
	require.NotNil(t, loaded.Grid)
	assert.Equal(t, 625, loaded.Grid.Total)
	assert.Equal(t, reveal.PhaseAnimating, rv.Phase())
	assert.NotEmpty(t, panel.MonthLabels())

	rec.mu.Lock()
	assert.Equal(t, []string{s.ID.String()}, rec.ids)
	rec.mu.Unlock()
}

func TestPanel_SecondOpenSettlesImmediately(t *testing.T) {
	panel, rv, _ := newTestPanel(t, mockProvider(), store.NewMemoryFlagStore(false))

	panel.Begin()
	waitState(t, panel, SessionLoaded)
	panel.End()
	assert.Equal(t, reveal.PhaseIdle, rv.Phase())

	first := panel.Session()
	assert.Equal(t, SessionIdle, first.State)

	second := panel.Begin()
	waitState(t, panel, SessionLoaded)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, reveal.PhaseSettled, rv.Phase())
}

func TestPanel_FetchFailure(t *testing.T) {
	cause := errors.New("connection refused")
	failing := activity.ProviderFunc(func(_ context.Context, identity string) (*activity.Grid, error) {
		return nil, &activity.FetchError{Identity: identity, Op: "request", Cause: cause}
	})
	panel, rv, _ := newTestPanel(t, failing, store.NewMemoryFlagStore(false))

	var mu sync.Mutex
	var reported []error
	panel.OnFailure(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, err)
	})

	panel.Begin()
	s := waitState(t, panel, SessionFailed)
	assert.ErrorIs(t, s.Err, cause)
	assert.Nil(t, s.Grid)
	assert.Equal(t, reveal.PhaseIdle, rv.Phase(), "a failed fetch never starts the reveal")

	mu.Lock()
	assert.Len(t, reported, 1)
	mu.Unlock()
}

func TestPanel_InvalidGridFails(t *testing.T) {
	bad := activity.ProviderFunc(func(_ context.Context, identity string) (*activity.Grid, error) {
		g := activity.MockGrid(identity, epoch)
		g.Weeks[3].Days[2].Level = 9
		return g, nil
	})
	panel, _, _ := newTestPanel(t, bad, store.NewMemoryFlagStore(true))

	panel.Begin()
	s := waitState(t, panel, SessionFailed)

	var fe *activity.FetchError
	require.ErrorAs(t, s.Err, &fe)
	assert.Equal(t, "validate", fe.Op)
}

func TestPanel_EndCancelsFetch(t *testing.T) {
	returned := make(chan error, 1)
	blocking := activity.ProviderFunc(func(ctx context.Context, _ string) (*activity.Grid, error) {
		<-ctx.Done()
		returned <- ctx.Err()
		return nil, ctx.Err()
	})
	panel, rv, _ := newTestPanel(t, blocking, store.NewMemoryFlagStore(false))

	var mu sync.Mutex
	var updates []SessionState
	panel.OnChange(func(s Session) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, s.State)
	})

	panel.Begin()
	panel.End()

	select {
	case err := <-returned:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("fetch was not cancelled")
	}

	// Give the stale completion a chance to be (wrongly) applied.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, SessionIdle, panel.Session().State)
	assert.Equal(t, reveal.PhaseIdle, rv.Phase())

	mu.Lock()
	assert.Equal(t, []SessionState{SessionLoading, SessionIdle}, updates)
	mu.Unlock()
}

func TestPanel_EndWhenIdleIsNoop(t *testing.T) {
	panel, _, _ := newTestPanel(t, mockProvider(), store.NewMemoryFlagStore(true))

	calls := 0
	panel.OnChange(func(Session) { calls++ })
	panel.End()
	assert.Zero(t, calls)
}

func TestPanel_SetSource(t *testing.T) {
	panel, _, _ := newTestPanel(t, mockProvider(), store.NewMemoryFlagStore(true))

	panel.SetSource(activity.ProviderFunc(func(_ context.Context, identity string) (*activity.Grid, error) {
		g := activity.MockGrid(identity, epoch)
		return g, nil
	}), "torvalds", time.Second)

	panel.Begin()
	s := waitState(t, panel, SessionLoaded)
	assert.Equal(t, "torvalds", s.Grid.Username)
}
