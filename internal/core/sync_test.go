package core

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/halos-dev/homarr-adapter/internal/discovery"
	"github.com/halos-dev/homarr-adapter/internal/domain"
	"github.com/halos-dev/homarr-adapter/internal/homarr"
	"github.com/halos-dev/homarr-adapter/internal/state"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(name, url string) domain.AppDescriptor {
	return domain.AppDescriptor{
		Id:   domain.SlugifyName(name),
		Name: name,
		Url:  url,
	}
}

func newSyncHarness(t *testing.T, descriptors ...domain.AppDescriptor) (*fakeDashboard, *fakeDiscoverer, *state.Store) {
	t.Helper()
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"), zerolog.Nop())

	st := state.New()
	st.SetPermanentCredential("key-2.permsecret")
	st.FirstBootCompleted = true
	require.NoError(t, store.Save(st))

	return newFakeDashboard(), &fakeDiscoverer{descriptors: descriptors}, store
}

func TestSyncAddsNewApp(t *testing.T) {
	dash, disc, store := newSyncHarness(t, descriptor("Signal K", "http://localhost:3000"))

	s := NewSync(dash, disc, store, "HaLOS", zerolog.Nop())
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SyncResult{Created: 1}, result)
	assert.Equal(t, []string{"Signal K"}, dash.createAppLog)
	assert.Equal(t, []string{"app-1"}, dash.attachLog)

	st := store.Load()
	require.True(t, st.IsDiscovered("signal-k"))
	assert.Equal(t, "app-1", st.DiscoveredApps["signal-k"].TileId)
	assert.NotNil(t, st.LastSyncAt)
}

func TestSyncIsIdempotent(t *testing.T) {
	dash, disc, store := newSyncHarness(t, descriptor("Signal K", "http://localhost:3000"))

	s := NewSync(dash, disc, store, "HaLOS", zerolog.Nop())
	_, err := s.Run(context.Background())
	require.NoError(t, err)

	result, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Skipped: 1}, result)
	assert.Len(t, dash.createAppLog, 1, "second run must issue no create calls")
}

func TestSyncAlreadyDiscoveredSkipsCreate(t *testing.T) {
	dash, disc, store := newSyncHarness(t, descriptor("Signal K", "http://localhost:3000"))

	st := store.Load()
	st.RecordDiscovered("signal-k", state.AppRecord{TileId: "tile-1"})
	require.NoError(t, store.Save(st))

	s := NewSync(dash, disc, store, "HaLOS", zerolog.Nop())
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SyncResult{Skipped: 1}, result)
	assert.Empty(t, dash.createAppLog)
	assert.Equal(t, "tile-1", store.Load().DiscoveredApps["signal-k"].TileId)
}

func TestSyncNeverResurrectsRemovedApps(t *testing.T) {
	dash, disc, store := newSyncHarness(t, descriptor("Signal K", "http://localhost:3000"))

	st := store.Load()
	st.MarkRemoved("signal-k")
	require.NoError(t, store.Save(st))

	s := NewSync(dash, disc, store, "HaLOS", zerolog.Nop())
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SyncResult{Skipped: 1}, result)
	assert.Empty(t, dash.createAppLog)

	loaded := store.Load()
	assert.True(t, loaded.IsRemoved("signal-k"))
	assert.False(t, loaded.IsDiscovered("signal-k"))
}

func TestSyncIsAdditiveOnly(t *testing.T) {
	// A previously discovered app whose container is gone stays in state
	// and on the dashboard; removal is an explicit operator action.
	dash, disc, store := newSyncHarness(t) // no running containers

	st := store.Load()
	st.RecordDiscovered("grafana", state.AppRecord{TileId: "tile-9"})
	require.NoError(t, store.Save(st))

	s := NewSync(dash, disc, store, "HaLOS", zerolog.Nop())
	_, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, store.Load().IsDiscovered("grafana"))
}

func TestSyncIsolatesPerItemFailures(t *testing.T) {
	dash, disc, store := newSyncHarness(t,
		descriptor("Alpha", "http://localhost:3001"),
		descriptor("Broken", "http://localhost:3002"),
		descriptor("Gamma", "http://localhost:3003"),
	)
	dash.createAppErrs = map[string]error{
		"Broken": &homarr.APIError{Procedure: "app.create", Status: http.StatusBadRequest, Kind: homarr.FailureValidation},
	}

	s := NewSync(dash, disc, store, "HaLOS", zerolog.Nop())
	result, err := s.Run(context.Background())

	var partial *PartialSyncError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, SyncResult{Created: 2, Failed: 1}, result)

	st := store.Load()
	assert.True(t, st.IsDiscovered("alpha"))
	assert.True(t, st.IsDiscovered("gamma"))
	assert.False(t, st.IsDiscovered("broken"))
	assert.NotNil(t, st.LastSyncAt, "partial runs still persist state")
}

func TestSyncCountsParseFailures(t *testing.T) {
	dash, disc, store := newSyncHarness(t, descriptor("Signal K", "http://localhost:3000"))
	disc.failures = []*discovery.InvalidLabelsError{
		discovery.NewInvalidLabelsError("broken", "missing required label homarr.url"),
	}

	s := NewSync(dash, disc, store, "HaLOS", zerolog.Nop())
	result, err := s.Run(context.Background())

	var partial *PartialSyncError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, SyncResult{Created: 1, Failed: 1}, result)
}

func TestSyncConflictRecoversExistingApp(t *testing.T) {
	dash, disc, store := newSyncHarness(t, descriptor("Grafana", "http://localhost:3001"))
	dash.createAppErrs = map[string]error{
		"Grafana": &homarr.APIError{Procedure: "app.create", Status: http.StatusConflict, Kind: homarr.FailureConflict},
	}
	dash.findAppId = "app-77"

	s := NewSync(dash, disc, store, "HaLOS", zerolog.Nop())
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SyncResult{Created: 1}, result)
	assert.Empty(t, dash.attachLog, "conflict recovery assumes the earlier attach")
	assert.Equal(t, "app-77", store.Load().DiscoveredApps["grafana"].TileId)
}

func TestSyncAttachFailureIsNotRecorded(t *testing.T) {
	dash, disc, store := newSyncHarness(t, descriptor("Signal K", "http://localhost:3000"))
	dash.attachErr = &homarr.APIError{Procedure: "board.saveBoard", Status: http.StatusBadRequest, Kind: homarr.FailureValidation}

	s := NewSync(dash, disc, store, "HaLOS", zerolog.Nop())
	result, err := s.Run(context.Background())

	var partial *PartialSyncError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, SyncResult{Failed: 1}, result)
	assert.False(t, store.Load().IsDiscovered("signal-k"), "unattached tiles retry next run")
}

func TestSyncDiscoveryFailureIsFatal(t *testing.T) {
	dash, disc, store := newSyncHarness(t)
	disc.err = homarr.NewConnectionError("docker", assert.AnError)

	s := NewSync(dash, disc, store, "HaLOS", zerolog.Nop())
	_, err := s.Run(context.Background())
	require.Error(t, err)

	var partial *PartialSyncError
	assert.False(t, errors.As(err, &partial))
}

func TestSyncWithoutCredentialIsConfigError(t *testing.T) {
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"), zerolog.Nop())
	dash := newFakeDashboard()
	disc := &fakeDiscoverer{}

	s := NewSync(dash, disc, store, "HaLOS", zerolog.Nop())
	_, err := s.Run(context.Background())

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
