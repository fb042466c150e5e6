package app

import (
	"context"
	"fmt"

	dockerCli "github.com/docker/docker/client"
	"github.com/halos-dev/homarr-adapter/internal/branding"
	"github.com/halos-dev/homarr-adapter/internal/config"
	"github.com/halos-dev/homarr-adapter/internal/core"
	"github.com/halos-dev/homarr-adapter/internal/discovery"
	"github.com/halos-dev/homarr-adapter/internal/homarr"
	"github.com/halos-dev/homarr-adapter/internal/state"
	"github.com/rs/zerolog"
)

type App struct {
	cfg          *config.Config
	dockerClient *dockerCli.Client
	homarrClient *homarr.Client
	store        *state.Store
	logger       zerolog.Logger
}

// New creates a new App by wiring up all dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	// Docker CLI
	dockerClient, err := dockerCli.NewClientWithOpts(dockerCli.FromEnv, dockerCli.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}

	return &App{
		cfg:          cfg,
		dockerClient: dockerClient,
		homarrClient: homarr.NewClient(&cfg.Homarr, logger),
		store:        state.NewStore(cfg.Adapter.StateFile, logger),
		logger:       logger,
	}, nil
}

// Setup runs the first-boot bootstrap sequence.
func (a *App) Setup(ctx context.Context) error {
	brandingCfg, err := branding.Load(a.cfg.Adapter.BrandingFile)
	if err != nil {
		return err
	}
	bootstrap := core.NewBootstrap(a.homarrClient, a.store, brandingCfg, a.logger)
	return bootstrap.Run(ctx)
}

// Sync runs one container-to-tile reconciliation pass, bootstrapping first
// if that has never completed.
func (a *App) Sync(ctx context.Context) (core.SyncResult, error) {
	brandingCfg, err := branding.Load(a.cfg.Adapter.BrandingFile)
	if err != nil {
		return core.SyncResult{}, err
	}

	if st := a.store.Load(); !st.FirstBootCompleted {
		a.logger.Info().Msg("First boot not completed, running setup")
		bootstrap := core.NewBootstrap(a.homarrClient, a.store, brandingCfg, a.logger)
		if err := bootstrap.Run(ctx); err != nil {
			return core.SyncResult{}, fmt.Errorf("first-boot setup: %w", err)
		}
	}

	disc := discovery.New(a.dockerClient, a.cfg.Adapter.DockerLabelPrefix, a.logger)
	sync := core.NewSync(a.homarrClient, disc, a.store, brandingCfg.Board.Name, a.logger)
	return sync.Run(ctx)
}

// Status summarizes the persisted state.
func (a *App) Status() core.StatusReport {
	status := core.NewStatus(a.store, a.logger)
	return status.Report()
}

func (a *App) Close() error {
	if a.dockerClient != nil {
		if err := a.dockerClient.Close(); err != nil {
			return fmt.Errorf("close docker client: %w", err)
		}
	}
	return nil
}
