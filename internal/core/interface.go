package core

import (
	"context"

	"github.com/halos-dev/homarr-adapter/internal/discovery"
	"github.com/halos-dev/homarr-adapter/internal/domain"
	"github.com/halos-dev/homarr-adapter/internal/homarr"
	"github.com/halos-dev/homarr-adapter/internal/state"
)

type dashboardClient interface {
	MintCredential(ctx context.Context, bootstrapToken string) (homarr.Credential, error)
	DeleteCredential(ctx context.Context, credential, keyId string) error
	OnboardingStatus(ctx context.Context) (homarr.OnboardingStatus, error)
	AdvanceOnboarding(ctx context.Context) error
	CreateAdminUser(ctx context.Context, username, password string) error
	ApplyServerSettings(ctx context.Context, settings homarr.ServerSettings) error
	PushOidcSettings(ctx context.Context, credential string, settings homarr.OidcSettings) error
	GetBoardByName(ctx context.Context, credential, name string) (homarr.BoardDetail, error)
	CreateBoard(ctx context.Context, credential, name string, columnCount int, isPublic bool) (string, error)
	SetHomeBoard(ctx context.Context, credential, boardId string) error
	SetColorScheme(ctx context.Context, credential, scheme string) error
	CreateApp(ctx context.Context, credential string, descriptor domain.AppDescriptor) (string, error)
	FindAppByName(ctx context.Context, credential, name string) (string, error)
	AttachAppToBoard(ctx context.Context, credential, boardName, appId string, placement homarr.TilePlacement) error
}

type appDiscoverer interface {
	DiscoverApps(ctx context.Context) ([]domain.AppDescriptor, []*discovery.InvalidLabelsError, error)
}

type stateStore interface {
	Load() *state.State
	Save(st *state.State) error
}
