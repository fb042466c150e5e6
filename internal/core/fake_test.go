package core

import (
	"context"
	"fmt"
	"net/http"

	"github.com/halos-dev/homarr-adapter/internal/discovery"
	"github.com/halos-dev/homarr-adapter/internal/domain"
	"github.com/halos-dev/homarr-adapter/internal/homarr"
)

// fakeDashboard implements dashboardClient with recorded calls and
// scriptable failures.
type fakeDashboard struct {
	mintErr    error
	minted     homarr.Credential
	mintCalls  int
	beforeMint func()

	deleteErr    error
	deleteCalls  []string // key ids
	beforeDelete func()

	// statusSeq is consumed one entry per OnboardingStatus call; the last
	// entry repeats once exhausted.
	statusSeq   []string
	statusIdx   int
	statusErr   error
	statusCalls int

	advanceCalls    int
	createUserCalls int
	settingsCalls   int
	settingsErr     error
	oidcCalls       int

	boards           map[string]homarr.BoardDetail
	createBoardCalls int
	createBoardErr   error

	homeBoardCalls   int
	colorSchemeCalls int
	colorScheme      string

	createAppErrs map[string]error // by descriptor name
	createAppLog  []string
	nextAppId     int

	findAppId  string
	findAppErr error

	attachErr error
	attachLog []string // app ids
}

func newFakeDashboard() *fakeDashboard {
	return &fakeDashboard{
		minted:    homarr.Credential{Id: "key-2", Token: "key-2.permsecret"},
		statusSeq: []string{"finish"},
		boards:    map[string]homarr.BoardDetail{},
	}
}

func (f *fakeDashboard) MintCredential(ctx context.Context, bootstrapToken string) (homarr.Credential, error) {
	f.mintCalls++
	if f.beforeMint != nil {
		f.beforeMint()
	}
	if f.mintErr != nil {
		return homarr.Credential{}, f.mintErr
	}
	return f.minted, nil
}

func (f *fakeDashboard) DeleteCredential(ctx context.Context, credential, keyId string) error {
	if f.beforeDelete != nil {
		f.beforeDelete()
	}
	f.deleteCalls = append(f.deleteCalls, keyId)
	return f.deleteErr
}

func (f *fakeDashboard) OnboardingStatus(ctx context.Context) (homarr.OnboardingStatus, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return homarr.OnboardingStatus{}, f.statusErr
	}
	idx := f.statusIdx
	if idx >= len(f.statusSeq) {
		idx = len(f.statusSeq) - 1
	} else {
		f.statusIdx++
	}
	return homarr.OnboardingStatus{Current: f.statusSeq[idx]}, nil
}

func (f *fakeDashboard) AdvanceOnboarding(ctx context.Context) error {
	f.advanceCalls++
	return nil
}

func (f *fakeDashboard) CreateAdminUser(ctx context.Context, username, password string) error {
	f.createUserCalls++
	return nil
}

func (f *fakeDashboard) ApplyServerSettings(ctx context.Context, settings homarr.ServerSettings) error {
	f.settingsCalls++
	return f.settingsErr
}

func (f *fakeDashboard) PushOidcSettings(ctx context.Context, credential string, settings homarr.OidcSettings) error {
	f.oidcCalls++
	return nil
}

func (f *fakeDashboard) GetBoardByName(ctx context.Context, credential, name string) (homarr.BoardDetail, error) {
	board, ok := f.boards[name]
	if !ok {
		return homarr.BoardDetail{}, &homarr.APIError{
			Procedure: "board.getBoardByName",
			Status:    http.StatusNotFound,
			Kind:      homarr.FailureNotFound,
		}
	}
	return board, nil
}

func (f *fakeDashboard) CreateBoard(ctx context.Context, credential, name string, columnCount int, isPublic bool) (string, error) {
	f.createBoardCalls++
	if f.createBoardErr != nil {
		return "", f.createBoardErr
	}
	id := fmt.Sprintf("board-%d", f.createBoardCalls)
	f.boards[name] = homarr.BoardDetail{
		Id:       id,
		Name:     name,
		Sections: []homarr.Section{{Id: "sec-1", Kind: "empty"}},
		Layouts:  []homarr.Layout{{Id: "lay-1", Name: "base", ColumnCount: columnCount}},
	}
	return id, nil
}

func (f *fakeDashboard) SetHomeBoard(ctx context.Context, credential, boardId string) error {
	f.homeBoardCalls++
	return nil
}

func (f *fakeDashboard) SetColorScheme(ctx context.Context, credential, scheme string) error {
	f.colorSchemeCalls++
	f.colorScheme = scheme
	return nil
}

func (f *fakeDashboard) CreateApp(ctx context.Context, credential string, descriptor domain.AppDescriptor) (string, error) {
	f.createAppLog = append(f.createAppLog, descriptor.Name)
	if err, ok := f.createAppErrs[descriptor.Name]; ok && err != nil {
		return "", err
	}
	f.nextAppId++
	return fmt.Sprintf("app-%d", f.nextAppId), nil
}

func (f *fakeDashboard) FindAppByName(ctx context.Context, credential, name string) (string, error) {
	if f.findAppErr != nil {
		return "", f.findAppErr
	}
	return f.findAppId, nil
}

func (f *fakeDashboard) AttachAppToBoard(ctx context.Context, credential, boardName, appId string, placement homarr.TilePlacement) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.attachLog = append(f.attachLog, appId)
	return nil
}

// fakeDiscoverer implements appDiscoverer with preset results.
type fakeDiscoverer struct {
	descriptors []domain.AppDescriptor
	failures    []*discovery.InvalidLabelsError
	err         error
}

func (f *fakeDiscoverer) DiscoverApps(ctx context.Context) ([]domain.AppDescriptor, []*discovery.InvalidLabelsError, error) {
	return f.descriptors, f.failures, f.err
}
