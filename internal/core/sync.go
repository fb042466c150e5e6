package core

import (
	"context"
	"fmt"
	"time"

	"github.com/halos-dev/homarr-adapter/internal/domain"
	"github.com/halos-dev/homarr-adapter/internal/homarr"
	"github.com/halos-dev/homarr-adapter/internal/state"
	"github.com/rs/zerolog"
)

// SyncResult summarizes one reconciliation pass.
type SyncResult struct {
	Created int
	Skipped int
	Failed  int
}

// Sync makes the dashboard's tile set match the currently running,
// opted-in containers. Additive only: tiles for containers that disappear
// stay on the dashboard until an operator removes them, and tiles an
// operator removed are never re-added.
type Sync struct {
	client    dashboardClient
	discovery appDiscoverer
	store     stateStore
	boardName string
	logger    zerolog.Logger
}

func NewSync(client dashboardClient, disc appDiscoverer, store stateStore, boardName string, logger zerolog.Logger) *Sync {
	return &Sync{
		client:    client,
		discovery: disc,
		store:     store,
		boardName: boardName,
		logger:    logger,
	}
}

// Run performs one reconciliation pass. One descriptor's dashboard
// rejection does not abort the rest; whatever succeeded is persisted either
// way. A pass with per-item failures returns PartialSyncError.
func (s *Sync) Run(ctx context.Context) (SyncResult, error) {
	var result SyncResult

	st := s.store.Load()
	if st.PermanentCredential == "" {
		return result, NewConfigError("no permanent credential in state; run setup first")
	}
	credential := st.PermanentCredential

	descriptors, parseFailures, err := s.discovery.DiscoverApps(ctx)
	if err != nil {
		return result, fmt.Errorf("discovering apps: %w", err)
	}
	result.Failed += len(parseFailures)

	for _, descriptor := range descriptors {
		switch {
		case st.IsRemoved(descriptor.Id):
			s.logger.Debug().Str("id", descriptor.Id).Msg("Skipping operator-removed app")
			result.Skipped++
		case st.IsDiscovered(descriptor.Id):
			s.logger.Debug().Str("id", descriptor.Id).Msg("App already synced")
			result.Skipped++
		default:
			tileId, err := s.addApp(ctx, credential, descriptor)
			if err != nil {
				s.logger.Warn().Err(err).Str("id", descriptor.Id).Msg("Failed to add app to dashboard")
				result.Failed++
				continue
			}
			st.RecordDiscovered(descriptor.Id, state.AppRecord{
				TileId:  tileId,
				Name:    descriptor.Name,
				Url:     descriptor.Url,
				AddedAt: time.Now().UTC(),
			})
			s.logger.Info().Str("id", descriptor.Id).Str("tile_id", tileId).Msg("Added app to dashboard")
			result.Created++
		}
	}

	st.TouchSyncTime()
	if err := s.store.Save(st); err != nil {
		return result, fmt.Errorf("persisting sync state: %w", err)
	}

	if result.Failed > 0 {
		return result, NewPartialSyncError(result)
	}
	return result, nil
}

// addApp creates the dashboard entry and places its tile on the configured
// board. A conflict means an earlier run (or a lost state file) already
// created it: recover the existing id instead of failing, and assume its
// tile placement happened then.
func (s *Sync) addApp(ctx context.Context, credential string, descriptor domain.AppDescriptor) (string, error) {
	appId, err := s.client.CreateApp(ctx, credential, descriptor)
	if homarr.IsConflict(err) {
		existingId, findErr := s.client.FindAppByName(ctx, credential, descriptor.Name)
		if findErr != nil {
			return "", fmt.Errorf("recovering app id after conflict: %w", findErr)
		}
		return existingId, nil
	}
	if err != nil {
		return "", err
	}

	if err := s.client.AttachAppToBoard(ctx, credential, s.boardName, appId, homarr.DefaultPlacement()); err != nil {
		return "", fmt.Errorf("attaching tile to board %q: %w", s.boardName, err)
	}
	return appId, nil
}
