package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// StatusReport is a read-only summary of the persisted state.
type StatusReport struct {
	FirstBootCompleted bool
	CredentialKnown    bool
	DiscoveredApps     []string
	RemovedApps        []string
	LastSyncAt         *time.Time
}

// Status summarizes the adapter's persisted state without touching the
// dashboard or the container engine.
type Status struct {
	store  stateStore
	logger zerolog.Logger
}

func NewStatus(store stateStore, logger zerolog.Logger) *Status {
	return &Status{store: store, logger: logger}
}

// Report loads the state and summarizes it. A corrupt or missing state file
// reports as empty; the store already logged the warning.
func (s *Status) Report() StatusReport {
	st := s.store.Load()

	discovered := make([]string, 0, len(st.DiscoveredApps))
	for id := range st.DiscoveredApps {
		discovered = append(discovered, id)
	}
	sort.Strings(discovered)

	return StatusReport{
		FirstBootCompleted: st.FirstBootCompleted,
		CredentialKnown:    st.PermanentCredential != "",
		DiscoveredApps:     discovered,
		RemovedApps:        append([]string(nil), st.RemovedApps...),
		LastSyncAt:         st.LastSyncAt,
	}
}

// String renders the report for the status command.
func (r StatusReport) String() string {
	var b strings.Builder
	if r.FirstBootCompleted {
		b.WriteString("First-boot setup: completed\n")
	} else {
		b.WriteString("First-boot setup: pending\n")
	}
	if r.CredentialKnown {
		b.WriteString("Permanent credential: present\n")
	} else {
		b.WriteString("Permanent credential: absent\n")
	}
	fmt.Fprintf(&b, "Discovered apps: %d", len(r.DiscoveredApps))
	if len(r.DiscoveredApps) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(r.DiscoveredApps, ", "))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Removed apps: %d", len(r.RemovedApps))
	if len(r.RemovedApps) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(r.RemovedApps, ", "))
	}
	b.WriteString("\n")
	if r.LastSyncAt != nil {
		fmt.Fprintf(&b, "Last sync: %s\n", r.LastSyncAt.Format(time.RFC3339))
	} else {
		b.WriteString("Last sync: never\n")
	}
	return b.String()
}
