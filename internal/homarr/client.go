package homarr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/halos-dev/homarr-adapter/internal/config"
	"github.com/halos-dev/homarr-adapter/internal/domain"
	"github.com/rs/zerolog"
)

// Client is a typed wrapper around the dashboard's tRPC-over-HTTP
// interface. Every call carries a bearer credential (except the pre-auth
// onboarding procedures), a bounded per-call timeout, and bounded
// exponential-backoff retry on connection-class failures only.
type Client struct {
	httpClient *http.Client
	baseUrl    string
	timeout    time.Duration
	maxRetries uint64
	logger     zerolog.Logger
}

func NewClient(cfg *config.HomarrConfig, logger zerolog.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		httpClient: &http.Client{},
		baseUrl:    strings.TrimRight(cfg.BaseUrl, "/"),
		timeout:    timeout,
		maxRetries: uint64(maxRetries),
		logger:     logger,
	}
}

// MintCredential asks the dashboard to create a new long-lived API key,
// authenticated with the short-lived bootstrap key. The returned token is
// the only copy; the caller must persist it before doing anything else.
func (c *Client) MintCredential(ctx context.Context, bootstrapToken string) (Credential, error) {
	return call[Credential](ctx, c, http.MethodPost, "apiKeys.create",
		map[string]any{"name": "homarr-adapter"}, bootstrapToken)
}

// DeleteCredential invalidates an API key by its id reference.
func (c *Client) DeleteCredential(ctx context.Context, credential, keyId string) error {
	_, err := c.do(ctx, http.MethodPost, "apiKeys.delete", map[string]any{"id": keyId}, credential)
	return err
}

// OnboardingStatus reports where the dashboard's first-run flow stands.
// Pre-auth: available before any credential exists.
func (c *Client) OnboardingStatus(ctx context.Context) (OnboardingStatus, error) {
	return call[OnboardingStatus](ctx, c, http.MethodGet, "onboard.currentStep", nil, "")
}

// AdvanceOnboarding moves the dashboard to its next onboarding step.
func (c *Client) AdvanceOnboarding(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "onboard.nextStep", map[string]any{}, "")
	return err
}

// CreateAdminUser creates the initial administrative account.
func (c *Client) CreateAdminUser(ctx context.Context, username, password string) error {
	_, err := c.do(ctx, http.MethodPost, "user.initUser", map[string]any{
		"username":        username,
		"password":        password,
		"confirmPassword": password,
	}, "")
	return err
}

// ApplyServerSettings applies the branded analytics and crawling settings
// during onboarding.
func (c *Client) ApplyServerSettings(ctx context.Context, settings ServerSettings) error {
	_, err := c.do(ctx, http.MethodPost, "serverSettings.initSettings", settings, "")
	return err
}

// PushOidcSettings configures federated login, when branding provides it.
func (c *Client) PushOidcSettings(ctx context.Context, credential string, settings OidcSettings) error {
	_, err := c.do(ctx, http.MethodPost, "serverSettings.updateOidcSettings", settings, credential)
	return err
}

// GetBoardByName fetches a board definition, including its current tiles.
func (c *Client) GetBoardByName(ctx context.Context, credential, name string) (BoardDetail, error) {
	return call[BoardDetail](ctx, c, http.MethodGet, "board.getBoardByName",
		map[string]any{"name": name}, credential)
}

// CreateBoard creates an empty board and returns its id.
func (c *Client) CreateBoard(ctx context.Context, credential, name string, columnCount int, isPublic bool) (string, error) {
	resp, err := call[createBoardResponse](ctx, c, http.MethodPost, "board.createBoard", map[string]any{
		"name":        name,
		"columnCount": columnCount,
		"isPublic":    isPublic,
	}, credential)
	if err != nil {
		return "", err
	}
	return resp.BoardId, nil
}

// SetHomeBoard marks the board as the default landing board.
func (c *Client) SetHomeBoard(ctx context.Context, credential, boardId string) error {
	_, err := c.do(ctx, http.MethodPost, "board.setHomeBoard", map[string]any{"id": boardId}, credential)
	return err
}

// SetColorScheme applies the branded color scheme.
func (c *Client) SetColorScheme(ctx context.Context, credential, scheme string) error {
	_, err := c.do(ctx, http.MethodPost, "user.changeColorScheme", map[string]any{"colorScheme": scheme}, credential)
	return err
}

// CreateApp registers an application entry and returns its id. A duplicate
// name yields an APIError with kind conflict; callers recover the existing
// id via FindAppByName.
func (c *Client) CreateApp(ctx context.Context, credential string, descriptor domain.AppDescriptor) (string, error) {
	payload := map[string]any{
		"name":        descriptor.Name,
		"description": descriptor.Description,
		"iconUrl":     descriptor.IconUrl,
		"href":        descriptor.Url,
		"pingUrl":     nil,
	}
	resp, err := call[createAppResponse](ctx, c, http.MethodPost, "app.create", payload, credential)
	if err != nil {
		return "", err
	}
	if resp.AppId != "" {
		return resp.AppId, nil
	}
	return resp.Id, nil
}

// FindAppByName looks up an existing app entry by exact display name.
func (c *Client) FindAppByName(ctx context.Context, credential, name string) (string, error) {
	apps, err := call[[]appSummary](ctx, c, http.MethodGet, "app.search",
		map[string]any{"query": name, "limit": 25}, credential)
	if err != nil {
		return "", err
	}
	for _, app := range apps {
		if app.Name == name {
			return app.Id, nil
		}
	}
	return "", &APIError{Procedure: "app.search", Status: http.StatusNotFound, Kind: FailureNotFound, Message: fmt.Sprintf("no app named %q", name)}
}

// AttachAppToBoard places an app tile on the named board, preserving the
// tiles already there. The tile lands in the board's first section.
func (c *Client) AttachAppToBoard(ctx context.Context, credential, boardName, appId string, placement TilePlacement) error {
	board, err := c.GetBoardByName(ctx, credential, boardName)
	if err != nil {
		return err
	}
	if len(board.Sections) == 0 || len(board.Layouts) == 0 {
		return &APIError{
			Procedure: "board.saveBoard",
			Status:    http.StatusUnprocessableEntity,
			Kind:      FailureValidation,
			Message:   fmt.Sprintf("board %q has no sections or layouts to place a tile in", boardName),
		}
	}

	item := map[string]any{
		"id":      uuid.NewString(),
		"kind":    "app",
		"appId":   appId,
		"options": map[string]any{},
		"layouts": []map[string]any{{
			"layoutId":  board.Layouts[0].Id,
			"sectionId": board.Sections[0].Id,
			"width":     placement.Width,
			"height":    placement.Height,
			"xOffset":   placement.XOffset,
			"yOffset":   placement.YOffset,
		}},
		"integrationIds": []string{},
		"advancedOptions": map[string]any{
			"customCssClasses": []string{},
		},
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding board item: %w", err)
	}

	payload := map[string]any{
		"id":           board.Id,
		"sections":     board.Sections,
		"items":        append(board.Items, raw),
		"integrations": []string{},
	}
	_, err = c.do(ctx, http.MethodPost, "board.saveBoard", payload, credential)
	return err
}

// call issues a request and decodes the tRPC envelope into T.
func call[T any](ctx context.Context, c *Client, method, procedure string, input any, credential string) (T, error) {
	var zero T
	data, err := c.do(ctx, method, procedure, input, credential)
	if err != nil {
		return zero, err
	}
	var envelope trpcResponse[T]
	if err := json.Unmarshal(data, &envelope); err != nil {
		return zero, fmt.Errorf("decoding %s response: %w", procedure, err)
	}
	return envelope.Result.Data.Json, nil
}

// do issues one procedure call with the retry policy applied. Only
// connection-class failures are retried; the dashboard container may still
// be starting when a timer fires.
func (c *Client) do(ctx context.Context, method, procedure string, input any, credential string) ([]byte, error) {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 500 * time.Millisecond
	expo.MaxInterval = 10 * time.Second
	expo.MaxElapsedTime = 0 // bounded by retry count, not wall clock
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, c.maxRetries), ctx)

	return backoff.RetryWithData(func() ([]byte, error) {
		data, err := c.attempt(ctx, method, procedure, input, credential)
		if err != nil {
			var connErr *ConnectionError
			if errors.As(err, &connErr) {
				c.logger.Debug().Err(err).Str("procedure", procedure).Msg("Connection failure, will retry")
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return data, nil
	}, policy)
}

func (c *Client) attempt(ctx context.Context, method, procedure string, input any, credential string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/trpc/%s", c.baseUrl, procedure)
	var body io.Reader
	if method == http.MethodGet {
		if input != nil {
			encoded, err := json.Marshal(trpcRequest{Json: input})
			if err != nil {
				return nil, fmt.Errorf("encoding %s input: %w", procedure, err)
			}
			endpoint += "?input=" + url.QueryEscape(string(encoded))
		}
	} else {
		encoded, err := json.Marshal(trpcRequest{Json: input})
		if err != nil {
			return nil, fmt.Errorf("encoding %s input: %w", procedure, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", procedure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewConnectionError(procedure, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError(procedure, err)
	}

	switch {
	case resp.StatusCode < 400:
		return data, nil
	case resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		// Reverse proxy is up but the dashboard is not: same as unreachable.
		return nil, NewConnectionError(procedure, fmt.Errorf("dashboard not ready (%d)", resp.StatusCode))
	default:
		return nil, &APIError{
			Procedure: procedure,
			Status:    resp.StatusCode,
			Kind:      classifyStatus(resp.StatusCode),
			Message:   errorMessage(data),
		}
	}
}

// errorMessage pulls the human-readable message out of a tRPC error body,
// best effort.
func errorMessage(data []byte) string {
	var body struct {
		Error struct {
			Json struct {
				Message string `json:"message"`
			} `json:"json"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Json.Message != "" {
		return body.Error.Json.Message
	}
	const maxLen = 200
	msg := strings.TrimSpace(string(data))
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
