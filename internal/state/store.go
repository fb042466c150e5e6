package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Store persists the state document as a JSON file. The file holds the
// permanent credential, so it is written owner-readable only, and always via
// a temp file plus rename so a reader never sees a truncated document.
type Store struct {
	path   string
	logger zerolog.Logger
}

func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
	}
}

// Load reads the state file. A missing file is an empty document, not an
// error. An unreadable or unparseable file is logged and treated the same
// way: everything in it except the permanent credential is re-derivable
// from the dashboard and the container engine, and losing the credential
// just re-runs an idempotent bootstrap.
func (s *Store) Load() *State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("State file unreadable, starting from empty state")
		}
		return New()
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("State file corrupt, starting from empty state")
		return New()
	}
	if st.Version == "" {
		st.Version = schemaVersion
	}
	if st.DiscoveredApps == nil {
		st.DiscoveredApps = make(map[string]AppRecord)
	}
	return &st
}

// Save writes a complete snapshot atomically.
func (s *Store) Save(st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("restricting state file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}
	s.logger.Debug().Str("path", s.path).Msg("State persisted")
	return nil
}
