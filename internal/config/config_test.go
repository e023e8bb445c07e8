package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, `
bot:
  token: "123456789:AAExampleToken"
database:
  host: localhost
  dbname: anonpost
`))
	require.NoError(t, err)
	assert.Equal(t, "polling", cfg.Bot.Mode)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, 10, cfg.Relay.RequestTimeoutSeconds)
}

func TestLoadRejectsShortToken(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
bot:
  token: "abc"
database:
  host: localhost
  dbname: anonpost
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token")
}

func TestLoadRejectsMissingToken(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
database:
  host: localhost
  dbname: anonpost
`))
	require.Error(t, err)
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
bot:
  token: "123456789:AAExampleToken"
  mode: carrier-pigeon
database:
  host: localhost
  dbname: anonpost
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mode")
}

func TestLoadRequiresDatabaseTarget(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
bot:
  token: "123456789:AAExampleToken"
`))
	require.Error(t, err)
}
