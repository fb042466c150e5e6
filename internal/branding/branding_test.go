package branding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBranding = `
[identity]
name = "HaLOS"
logo_url = "https://halos.example/logo.png"

[theme]
default_color_scheme = "dark"

[credentials]
admin_username = "admin"
admin_password = "hunter22hunter22"
bootstrap_api_key = "key-1.bootsecret"

[board]
name = "HaLOS"
column_count = 12
is_public = false

[board.cockpit]
enabled = true
name = "Cockpit"
description = "System management"
icon_url = "https://halos.example/cockpit.png"
href = "https://localhost:9090"
width = 2
height = 1
x_offset = 0
y_offset = 0

[settings.analytics]
enable_general = false

[settings.crawling]
no_index = true
no_follow = true
`

func writeBranding(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "branding.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidBranding(t *testing.T) {
	cfg, err := Load(writeBranding(t, validBranding))
	require.NoError(t, err)

	assert.Equal(t, "HaLOS", cfg.Identity.Name)
	assert.Equal(t, "dark", cfg.Theme.DefaultColorScheme)
	assert.Equal(t, "key-1.bootsecret", cfg.Credentials.BootstrapApiKey)
	assert.Equal(t, 12, cfg.Board.ColumnCount)
	assert.True(t, cfg.Board.Cockpit.Enabled)
	assert.Equal(t, 2, cfg.Board.Cockpit.Width)
	assert.True(t, cfg.Settings.Crawling.NoIndex)
	assert.False(t, cfg.Settings.Analytics.EnableGeneral)
	assert.Nil(t, cfg.Credentials.Oidc)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeBranding(t, `
[credentials]
admin_username = "admin"
admin_password = "pw"

[board]
name = "HaLOS"
`))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Board.ColumnCount)
	assert.Equal(t, "dark", cfg.Theme.DefaultColorScheme)
}

func TestLoadOidcSection(t *testing.T) {
	cfg, err := Load(writeBranding(t, validBranding+`
[credentials.oidc]
issuer_url = "https://sso.example"
client_id = "halos"
client_secret = "secret"
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Credentials.Oidc)
	assert.Equal(t, "https://sso.example", cfg.Credentials.Oidc.IssuerUrl)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.toml")
}

func TestLoadMalformedToml(t *testing.T) {
	_, err := Load(writeBranding(t, "[board\nname ="))
	require.Error(t, err)
}

func TestLoadMissingBoardName(t *testing.T) {
	_, err := Load(writeBranding(t, `
[credentials]
admin_username = "admin"
admin_password = "pw"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "board.name")
}

func TestLoadMissingAdminCredentials(t *testing.T) {
	_, err := Load(writeBranding(t, `
[board]
name = "HaLOS"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin_username")
}
