package state

import (
	"slices"
	"time"
)

const schemaVersion = "1.0"

// AppRecord remembers one tile the adapter created, keyed in
// State.DiscoveredApps by the descriptor id that produced it.
type AppRecord struct {
	TileId  string    `json:"tile_id"`
	Name    string    `json:"name"`
	Url     string    `json:"url"`
	AddedAt time.Time `json:"added_at"`
}

// State is everything the adapter has durably decided. It is loaded at the
// start of a run, mutated in memory by exactly one controller, and written
// back as a complete snapshot.
type State struct {
	Version             string               `json:"version"`
	PermanentCredential string               `json:"permanent_credential,omitempty"`
	FirstBootCompleted  bool                 `json:"first_boot_completed"`
	DiscoveredApps      map[string]AppRecord `json:"discovered_apps"`
	RemovedApps         []string             `json:"removed_apps"`
	LastSyncAt          *time.Time           `json:"last_sync_at,omitempty"`
}

// New returns an empty state document at the current schema version.
func New() *State {
	return &State{
		Version:        schemaVersion,
		DiscoveredApps: make(map[string]AppRecord),
	}
}

// SetPermanentCredential stores the credential if none is known yet and
// reports whether it wrote. The credential is write-once for the lifetime
// of the state file; only the bootstrap rotation may call this.
func (s *State) SetPermanentCredential(credential string) bool {
	if s.PermanentCredential != "" {
		return false
	}
	s.PermanentCredential = credential
	return true
}

// RecordDiscovered maps a descriptor id to the tile it produced. The id is
// dropped from the removed set so the two sets stay disjoint.
func (s *State) RecordDiscovered(id string, record AppRecord) {
	if s.DiscoveredApps == nil {
		s.DiscoveredApps = make(map[string]AppRecord)
	}
	s.DiscoveredApps[id] = record
	s.RemovedApps = slices.DeleteFunc(s.RemovedApps, func(removed string) bool {
		return removed == id
	})
}

// MarkRemoved excludes a descriptor id from future syncs and forgets its
// tile mapping.
func (s *State) MarkRemoved(id string) {
	delete(s.DiscoveredApps, id)
	if !s.IsRemoved(id) {
		s.RemovedApps = append(s.RemovedApps, id)
		slices.Sort(s.RemovedApps)
	}
}

// IsRemoved reports whether the id was explicitly excluded by an operator.
func (s *State) IsRemoved(id string) bool {
	return slices.Contains(s.RemovedApps, id)
}

// IsDiscovered reports whether the id already has a tile.
func (s *State) IsDiscovered(id string) bool {
	_, ok := s.DiscoveredApps[id]
	return ok
}

// TouchSyncTime records that a sync pass ran. Advisory only.
func (s *State) TouchSyncTime() {
	now := time.Now().UTC()
	s.LastSyncAt = &now
}
