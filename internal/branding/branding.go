package branding

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// BrandingConfig is the read-only document supplied by the platform image.
// It carries the dashboard identity, theme, board layout, initial server
// settings, and the one-time bootstrap credential.
type BrandingConfig struct {
	Identity    Identity    `toml:"identity"`
	Theme       Theme       `toml:"theme"`
	Credentials Credentials `toml:"credentials"`
	Board       Board       `toml:"board"`
	Settings    Settings    `toml:"settings"`
}

type Identity struct {
	Name    string `toml:"name"`
	LogoUrl string `toml:"logo_url"`
}

type Theme struct {
	DefaultColorScheme string `toml:"default_color_scheme"`
}

// Credentials holds the initial admin account, the short-lived bootstrap API
// key, and optional federated-login credentials to push to the dashboard.
type Credentials struct {
	AdminUsername   string `toml:"admin_username"`
	AdminPassword   string `toml:"admin_password"`
	BootstrapApiKey string `toml:"bootstrap_api_key"`
	Oidc            *Oidc  `toml:"oidc"`
}

type Oidc struct {
	IssuerUrl    string `toml:"issuer_url"`
	ClientId     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

type Board struct {
	Name        string      `toml:"name"`
	ColumnCount int         `toml:"column_count"`
	IsPublic    bool        `toml:"is_public"`
	Cockpit     CockpitTile `toml:"cockpit"`
}

// CockpitTile is the built-in system-management tile placed on the branded
// board during first boot.
type CockpitTile struct {
	Enabled     bool   `toml:"enabled"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
	IconUrl     string `toml:"icon_url"`
	Href        string `toml:"href"`
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	XOffset     int    `toml:"x_offset"`
	YOffset     int    `toml:"y_offset"`
}

type Settings struct {
	Analytics Analytics `toml:"analytics"`
	Crawling  Crawling  `toml:"crawling"`
}

type Analytics struct {
	EnableGeneral         bool `toml:"enable_general"`
	EnableWidgetData      bool `toml:"enable_widget_data"`
	EnableIntegrationData bool `toml:"enable_integration_data"`
	EnableUserData        bool `toml:"enable_user_data"`
}

type Crawling struct {
	NoIndex              bool `toml:"no_index"`
	NoFollow             bool `toml:"no_follow"`
	NoTranslate          bool `toml:"no_translate"`
	NoSitelinksSearchBox bool `toml:"no_sitelinks_search_box"`
}

// Load reads and validates the branding file. A missing or malformed file is
// fatal for the current command; setup cannot proceed without it.
func Load(path string) (*BrandingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading branding file %s: %w", path, err)
	}

	var cfg BrandingConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing branding file %s: %w", path, err)
	}

	if cfg.Board.Name == "" {
		return nil, fmt.Errorf("branding file %s: board.name is required", path)
	}
	if cfg.Credentials.AdminUsername == "" || cfg.Credentials.AdminPassword == "" {
		return nil, fmt.Errorf("branding file %s: credentials.admin_username and credentials.admin_password are required", path)
	}
	if cfg.Board.ColumnCount <= 0 {
		cfg.Board.ColumnCount = 10
	}
	if cfg.Theme.DefaultColorScheme == "" {
		cfg.Theme.DefaultColorScheme = "dark"
	}
	if cfg.Board.Cockpit.Enabled {
		if cfg.Board.Cockpit.Width <= 0 {
			cfg.Board.Cockpit.Width = 1
		}
		if cfg.Board.Cockpit.Height <= 0 {
			cfg.Board.Cockpit.Height = 1
		}
	}

	return &cfg, nil
}
