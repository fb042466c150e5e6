package homarr

import "encoding/json"

// tRPC response envelope: {"result":{"data":{"json":<payload>}}}.
type trpcResponse[T any] struct {
	Result trpcResult[T] `json:"result"`
}

type trpcResult[T any] struct {
	Data trpcData[T] `json:"data"`
}

type trpcData[T any] struct {
	Json T `json:"json"`
}

// trpcRequest is the POST body envelope.
type trpcRequest struct {
	Json any `json:"json"`
}

// Credential is an API key minted by the dashboard. Id is the reference
// used for deletion; Token is the bearer secret used on every call.
type Credential struct {
	Id    string `json:"id"`
	Token string `json:"apiKey"`
}

// KeyId extracts the deletion reference from a bearer token. Dashboard API
// keys are formatted "<id>.<secret>".
func KeyId(token string) string {
	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			return token[:i]
		}
	}
	return token
}

// OnboardingStatus is the dashboard's own report of where first-run setup
// stands.
type OnboardingStatus struct {
	Current  string  `json:"current"`
	Previous *string `json:"previous"`
}

// Complete reports whether the onboarding flow has finished.
func (s OnboardingStatus) Complete() bool {
	return s.Current == "finish"
}

// BoardDetail is the subset of a board the adapter needs for idempotent
// upserts and tile attachment. Items stay opaque so a save round-trips
// tiles the adapter did not create.
type BoardDetail struct {
	Id       string            `json:"id"`
	Name     string            `json:"name"`
	Sections []Section         `json:"sections"`
	Layouts  []Layout          `json:"layouts"`
	Items    []json.RawMessage `json:"items"`
}

type Section struct {
	Id      string `json:"id"`
	Kind    string `json:"kind"`
	XOffset int    `json:"xOffset"`
	YOffset int    `json:"yOffset"`
}

type Layout struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	ColumnCount int    `json:"columnCount"`
	Breakpoint  int    `json:"breakpoint"`
}

// TilePlacement is the size and position of a tile on a board.
type TilePlacement struct {
	Width   int
	Height  int
	XOffset int
	YOffset int
}

// DefaultPlacement is used for auto-discovered app tiles.
func DefaultPlacement() TilePlacement {
	return TilePlacement{Width: 1, Height: 1}
}

// ServerSettings is the initial settings payload applied during onboarding.
type ServerSettings struct {
	Analytics AnalyticsSettings `json:"analytics"`
	Crawling  CrawlingSettings  `json:"crawlingAndIndexing"`
}

type AnalyticsSettings struct {
	EnableGeneral         bool `json:"enableGeneral"`
	EnableWidgetData      bool `json:"enableWidgetData"`
	EnableIntegrationData bool `json:"enableIntegrationData"`
	EnableUserData        bool `json:"enableUserData"`
}

type CrawlingSettings struct {
	NoIndex              bool `json:"noIndex"`
	NoFollow             bool `json:"noFollow"`
	NoTranslate          bool `json:"noTranslate"`
	NoSitelinksSearchBox bool `json:"noSiteLinksSearchBox"`
}

// OidcSettings is the optional federated-login configuration pushed during
// bootstrap.
type OidcSettings struct {
	IssuerUrl    string `json:"issuerUrl"`
	ClientId     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type createBoardResponse struct {
	BoardId string `json:"boardId"`
}

type createAppResponse struct {
	AppId string `json:"appId"`
	Id    string `json:"id"`
}

type appSummary struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}
