package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewState(t *testing.T) {
	st := New()
	assert.Equal(t, "1.0", st.Version)
	assert.False(t, st.FirstBootCompleted)
	assert.Empty(t, st.PermanentCredential)
	assert.Empty(t, st.DiscoveredApps)
	assert.Empty(t, st.RemovedApps)
	assert.Nil(t, st.LastSyncAt)
}

func TestSetPermanentCredentialWriteOnce(t *testing.T) {
	st := New()
	assert.True(t, st.SetPermanentCredential("first"))
	assert.False(t, st.SetPermanentCredential("second"))
	assert.Equal(t, "first", st.PermanentCredential)
}

func TestDiscoveredAndRemovedStayDisjoint(t *testing.T) {
	st := New()
	st.RecordDiscovered("grafana", AppRecord{TileId: "tile-1"})
	assert.True(t, st.IsDiscovered("grafana"))
	assert.False(t, st.IsRemoved("grafana"))

	st.MarkRemoved("grafana")
	assert.False(t, st.IsDiscovered("grafana"))
	assert.True(t, st.IsRemoved("grafana"))

	// Re-discovering clears the exclusion again.
	st.RecordDiscovered("grafana", AppRecord{TileId: "tile-2"})
	assert.True(t, st.IsDiscovered("grafana"))
	assert.False(t, st.IsRemoved("grafana"))
}

func TestMarkRemovedIsIdempotent(t *testing.T) {
	st := New()
	st.MarkRemoved("pihole")
	st.MarkRemoved("pihole")
	assert.Equal(t, []string{"pihole"}, st.RemovedApps)
}

func TestTouchSyncTime(t *testing.T) {
	st := New()
	before := time.Now().UTC()
	st.TouchSyncTime()
	after := time.Now().UTC()

	if assert.NotNil(t, st.LastSyncAt) {
		assert.False(t, st.LastSyncAt.Before(before))
		assert.False(t, st.LastSyncAt.After(after))
	}
}
