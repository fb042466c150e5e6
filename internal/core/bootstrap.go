package core

import (
	"context"
	"fmt"

	"github.com/halos-dev/homarr-adapter/internal/branding"
	"github.com/halos-dev/homarr-adapter/internal/domain"
	"github.com/halos-dev/homarr-adapter/internal/homarr"
	"github.com/halos-dev/homarr-adapter/internal/state"
	"github.com/rs/zerolog"
)

// Onboarding is a remote flow; cap the step loop so a dashboard that never
// reports "finish" cannot spin the adapter forever.
const maxOnboardingSteps = 10

// Bootstrap drives the dashboard from its factory state to a configured,
// permanently-credentialed one. Every step is derived from persisted state
// plus live dashboard queries, so an interrupted run is resumed by simply
// invoking setup again.
type Bootstrap struct {
	client   dashboardClient
	store    stateStore
	branding *branding.BrandingConfig
	logger   zerolog.Logger
}

func NewBootstrap(client dashboardClient, store stateStore, brandingCfg *branding.BrandingConfig, logger zerolog.Logger) *Bootstrap {
	return &Bootstrap{
		client:   client,
		store:    store,
		branding: brandingCfg,
		logger:   logger,
	}
}

// Run executes the first-boot sequence. Safe to re-run unconditionally: the
// permanent credential is write-once, board setup is an upsert keyed by
// board name, and onboarding steps the dashboard already finished are
// skipped by its own status report.
func (b *Bootstrap) Run(ctx context.Context) error {
	st := b.store.Load()

	if st.FirstBootCompleted && st.PermanentCredential != "" {
		// The completion flag is a short-circuit, not the source of truth:
		// it only skips the network round trips once a credential is known.
		b.logger.Info().Msg("First-boot setup already completed")
		return nil
	}

	credential, err := b.ensureCredential(ctx, st)
	if err != nil {
		return err
	}

	if err := b.ensureOnboarded(ctx); err != nil {
		return err
	}

	boardId, err := b.ensureBoard(ctx, credential)
	if err != nil {
		return err
	}

	if err := b.finishBoardSetup(ctx, credential, boardId); err != nil {
		return err
	}

	if oidc := b.branding.Credentials.Oidc; oidc != nil {
		b.logger.Info().Msg("Pushing federated login credentials")
		err := b.client.PushOidcSettings(ctx, credential, homarr.OidcSettings{
			IssuerUrl:    oidc.IssuerUrl,
			ClientId:     oidc.ClientId,
			ClientSecret: oidc.ClientSecret,
		})
		if err != nil {
			return fmt.Errorf("pushing oidc settings: %w", err)
		}
	}

	st.FirstBootCompleted = true
	if err := b.store.Save(st); err != nil {
		return fmt.Errorf("persisting first-boot completion: %w", err)
	}
	b.logger.Info().Msg("First-boot setup complete")
	return nil
}

// ensureCredential rotates the bootstrap credential into a permanent one.
// The permanent credential is persisted the moment minting succeeds, before
// the bootstrap key is deleted: a crash in between leaves the permanent key
// known and the bootstrap key possibly live, which the next run cleans up
// without minting again.
func (b *Bootstrap) ensureCredential(ctx context.Context, st *state.State) (string, error) {
	bootstrapKey := b.branding.Credentials.BootstrapApiKey

	if st.PermanentCredential == "" {
		if bootstrapKey == "" {
			return "", NewConfigError("no permanent credential is known and the branding file has no credentials.bootstrap_api_key")
		}
		b.logger.Info().Msg("Minting permanent credential")
		minted, err := b.client.MintCredential(ctx, bootstrapKey)
		if err != nil {
			return "", fmt.Errorf("minting permanent credential: %w", err)
		}
		st.SetPermanentCredential(minted.Token)
		if err := b.store.Save(st); err != nil {
			return "", fmt.Errorf("persisting permanent credential: %w", err)
		}
	}

	if bootstrapKey != "" {
		err := b.client.DeleteCredential(ctx, st.PermanentCredential, homarr.KeyId(bootstrapKey))
		switch {
		case err == nil:
			b.logger.Info().Msg("Bootstrap credential invalidated")
		case homarr.IsNotFound(err):
			b.logger.Debug().Msg("Bootstrap credential already invalidated")
		default:
			return "", fmt.Errorf("deleting bootstrap credential: %w", err)
		}
	}

	return st.PermanentCredential, nil
}

// ensureOnboarded walks the dashboard's onboarding flow until it reports
// finished, querying the current step fresh each iteration.
func (b *Bootstrap) ensureOnboarded(ctx context.Context) error {
	for i := 0; i < maxOnboardingSteps; i++ {
		status, err := b.client.OnboardingStatus(ctx)
		if err != nil {
			return fmt.Errorf("querying onboarding status: %w", err)
		}
		if status.Complete() {
			return nil
		}
		b.logger.Info().Str("step", status.Current).Msg("Onboarding step")

		switch status.Current {
		case "start":
			err = b.client.AdvanceOnboarding(ctx)
		case "user":
			creds := b.branding.Credentials
			err = b.client.CreateAdminUser(ctx, creds.AdminUsername, creds.AdminPassword)
		case "settings":
			err = b.client.ApplyServerSettings(ctx, serverSettingsFromBranding(b.branding))
		default:
			// Steps the adapter has nothing to contribute to.
			err = b.client.AdvanceOnboarding(ctx)
		}
		if err != nil {
			return fmt.Errorf("onboarding step %q: %w", status.Current, err)
		}
	}
	return fmt.Errorf("onboarding did not reach finish after %d steps", maxOnboardingSteps)
}

// ensureBoard upserts the branded board, keyed by its fixed name.
func (b *Bootstrap) ensureBoard(ctx context.Context, credential string) (string, error) {
	board := b.branding.Board

	existing, err := b.client.GetBoardByName(ctx, credential, board.Name)
	switch {
	case err == nil:
		b.logger.Info().Str("board", board.Name).Msg("Board already exists")
		return existing.Id, nil
	case homarr.IsNotFound(err):
		// fall through to create
	default:
		return "", fmt.Errorf("looking up board %q: %w", board.Name, err)
	}

	b.logger.Info().Str("board", board.Name).Msg("Creating board")
	boardId, err := b.client.CreateBoard(ctx, credential, board.Name, board.ColumnCount, board.IsPublic)
	if err != nil {
		return "", fmt.Errorf("creating board %q: %w", board.Name, err)
	}
	return boardId, nil
}

// finishBoardSetup places the cockpit tile, marks the board as home, and
// applies the branded color scheme.
func (b *Bootstrap) finishBoardSetup(ctx context.Context, credential, boardId string) error {
	cockpit := b.branding.Board.Cockpit
	if cockpit.Enabled {
		if err := b.ensureCockpitTile(ctx, credential, cockpit); err != nil {
			return err
		}
	}

	if err := b.client.SetHomeBoard(ctx, credential, boardId); err != nil {
		return fmt.Errorf("setting home board: %w", err)
	}
	if err := b.client.SetColorScheme(ctx, credential, b.branding.Theme.DefaultColorScheme); err != nil {
		return fmt.Errorf("setting color scheme: %w", err)
	}
	return nil
}

func (b *Bootstrap) ensureCockpitTile(ctx context.Context, credential string, cockpit branding.CockpitTile) error {
	descriptor := cockpitDescriptor(cockpit)

	appId, err := b.client.CreateApp(ctx, credential, descriptor)
	if homarr.IsConflict(err) {
		// Already created by an earlier run; assume it was attached then.
		b.logger.Debug().Str("app", cockpit.Name).Msg("Cockpit app already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating cockpit app: %w", err)
	}

	placement := homarr.TilePlacement{
		Width:   cockpit.Width,
		Height:  cockpit.Height,
		XOffset: cockpit.XOffset,
		YOffset: cockpit.YOffset,
	}
	if err := b.client.AttachAppToBoard(ctx, credential, b.branding.Board.Name, appId, placement); err != nil {
		return fmt.Errorf("attaching cockpit tile: %w", err)
	}
	return nil
}

func cockpitDescriptor(cockpit branding.CockpitTile) domain.AppDescriptor {
	return domain.AppDescriptor{
		Id:          domain.SlugifyName(cockpit.Name),
		Name:        cockpit.Name,
		Description: cockpit.Description,
		Url:         cockpit.Href,
		IconUrl:     cockpit.IconUrl,
	}
}

func serverSettingsFromBranding(cfg *branding.BrandingConfig) homarr.ServerSettings {
	return homarr.ServerSettings{
		Analytics: homarr.AnalyticsSettings{
			EnableGeneral:         cfg.Settings.Analytics.EnableGeneral,
			EnableWidgetData:      cfg.Settings.Analytics.EnableWidgetData,
			EnableIntegrationData: cfg.Settings.Analytics.EnableIntegrationData,
			EnableUserData:        cfg.Settings.Analytics.EnableUserData,
		},
		Crawling: homarr.CrawlingSettings{
			NoIndex:              cfg.Settings.Crawling.NoIndex,
			NoFollow:             cfg.Settings.Crawling.NoFollow,
			NoTranslate:          cfg.Settings.Crawling.NoTranslate,
			NoSitelinksSearchBox: cfg.Settings.Crawling.NoSitelinksSearchBox,
		},
	}
}
