package config

import (
	"os"
	"path/filepath"
	"testing"

	"icrelay/internal/constants"
	"icrelay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"TOKEN", "ICINFO", "ICINFOADMIN", "SPNINFO", "SPNINFOADMIN",
	"TESTERROLE", "PLAYERROLE", "MERCYMAINERROLE", "QQUSERID",
	"PORT", "ICRELAY_INGRESS_SECRET", "ICRELAY_LOG_LEVEL", "ICRELAY_ENV",
}

// clearConfigEnv blanks every variable LoadConfig reads so host settings do not leak in
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_JSON(t *testing.T) {
	clearConfigEnv(t)

	path := writeFile(t, "config.json", `{
		"discord": {"token": "bot-token", "command_prefix": "?"},
		"destinations": [
			{"name": "public", "channel_id": "111", "admin_channel_id": "112"},
			{"name": "supernatural", "channel_id": "221"}
		],
		"permissions": {"role_ids": ["900", "901"], "user_id": "42"},
		"relay": {"cleanup_delay_ms": 5000},
		"ingress": {"routes": {"spn": "supernatural"}},
		"log_level": "warn"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "bot-token", cfg.Discord.Token)
	assert.Equal(t, "?", cfg.Discord.CommandPrefix)
	require.Len(t, cfg.Destinations, 2)
	assert.True(t, cfg.Destinations[0].HasMirror())
	assert.False(t, cfg.Destinations[1].HasMirror())
	assert.Equal(t, []string{"900", "901"}, cfg.Permissions.RoleIDs)
	assert.Equal(t, "42", cfg.Permissions.UserID)
	assert.Equal(t, 5000, cfg.Relay.CleanupDelayMs)
	assert.Equal(t, "supernatural", cfg.Ingress.Routes["spn"])
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfig_YAML(t *testing.T) {
	clearConfigEnv(t)

	path := writeFile(t, "config.yaml", `
discord:
  token: yaml-token
destinations:
  - name: public
    channel_id: "111"
    admin_channel_id: "112"
permissions:
  role_ids: ["900"]
media:
  max_image_bytes: 1024
  allow_private_hosts: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "yaml-token", cfg.Discord.Token)
	assert.Equal(t, constants.DefaultCommandPrefix, cfg.Discord.CommandPrefix)
	assert.Equal(t, "112", cfg.Destinations[0].AdminChannelID)
	assert.Equal(t, int64(1024), cfg.Media.MaxImageBytes)
	assert.True(t, cfg.Media.AllowPrivateHosts)
}

func TestLoadConfig_EnvironmentOnly(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TOKEN", "env-token")
	t.Setenv("ICINFO", "111")
	t.Setenv("ICINFOADMIN", "112")
	t.Setenv("SPNINFO", "221")
	t.Setenv("SPNINFOADMIN", "222")
	t.Setenv("TESTERROLE", "900")
	t.Setenv("PLAYERROLE", "901")
	t.Setenv("MERCYMAINERROLE", "900")
	t.Setenv("QQUSERID", "42")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Discord.Token)

	public, ok := cfg.DestinationByName(constants.DestinationPublic)
	require.True(t, ok)
	assert.Equal(t, "111", public.ChannelID)
	assert.Equal(t, "112", public.AdminChannelID)

	spn, ok := cfg.DestinationByName(constants.DestinationSupernatural)
	require.True(t, ok)
	assert.Equal(t, "221", spn.ChannelID)
	assert.Equal(t, "222", spn.AdminChannelID)

	assert.Equal(t, []string{"900", "901"}, cfg.Permissions.RoleIDs, "duplicate role ids are collapsed")
	assert.Equal(t, "42", cfg.Permissions.UserID)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TOKEN", "override")
	t.Setenv("ICINFOADMIN", "999")

	path := writeFile(t, "config.json", `{
		"discord": {"token": "file-token"},
		"destinations": [{"name": "public", "channel_id": "111", "admin_channel_id": "112"}]
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "override", cfg.Discord.Token)
	require.Len(t, cfg.Destinations, 1)
	assert.Equal(t, "111", cfg.Destinations[0].ChannelID)
	assert.Equal(t, "999", cfg.Destinations[0].AdminChannelID)
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TOKEN", "t")
	t.Setenv("ICINFO", "111")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultCleanupDelayMs, cfg.Relay.CleanupDelayMs)
	assert.Equal(t, constants.DefaultAckMessage, cfg.Relay.AckMessage)
	assert.Equal(t, constants.DefaultSendTimeoutSec, cfg.Relay.SendTimeoutSec)
	assert.Equal(t, int64(constants.DefaultMaxImageBytes), cfg.Media.MaxImageBytes)
	assert.Equal(t, constants.DefaultFetchTimeoutSec, cfg.Media.FetchTimeoutSec)
	assert.Equal(t, constants.DefaultIngressChannel, cfg.Ingress.DefaultChannel)
	assert.Equal(t, constants.DefaultIngressAuthorName, cfg.Ingress.AuthorName)
	assert.Equal(t, int64(constants.DefaultIngressBodyBytes), cfg.Ingress.MaxBodyBytes)
	assert.Equal(t, constants.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "icrelay", cfg.Tracing.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		content string
		errMsg  string
	}{
		{
			name:   "missing token",
			env:    map[string]string{"ICINFO": "111"},
			errMsg: "missing Discord bot token",
		},
		{
			name:   "no destinations",
			env:    map[string]string{"TOKEN": "t"},
			errMsg: "no destinations configured",
		},
		{
			name:   "invalid port",
			env:    map[string]string{"TOKEN": "t", "ICINFO": "111", "PORT": "http"},
			errMsg: "invalid PORT value",
		},
		{
			name:   "non-numeric channel id",
			env:    map[string]string{"TOKEN": "t", "ICINFO": "general"},
			errMsg: "channel_id",
		},
		{
			name:    "duplicate destination",
			file:    "config.json",
			content: `{"discord":{"token":"t"},"destinations":[{"name":"public","channel_id":"1"},{"name":"public","channel_id":"2"}]}`,
			errMsg:  "duplicate destination name",
		},
		{
			name:    "route to unknown destination",
			file:    "config.json",
			content: `{"discord":{"token":"t"},"destinations":[{"name":"public","channel_id":"1"}],"ingress":{"routes":{"x":"nowhere"}}}`,
			errMsg:  "unknown destination nowhere",
		},
		{
			name:    "invalid log level",
			file:    "config.json",
			content: `{"discord":{"token":"t"},"destinations":[{"name":"public","channel_id":"1"}],"log_level":"loud"}`,
			errMsg:  "log_level",
		},
		{
			name:    "malformed json",
			file:    "config.json",
			content: `{"discord":`,
			errMsg:  "invalid JSON config",
		},
		{
			name:    "malformed yaml",
			file:    "config.yml",
			content: "discord: [unterminated",
			errMsg:  "invalid YAML config",
		},
		{
			name:   "production without secret",
			env:    map[string]string{"TOKEN": "t", "ICINFO": "111", "ICRELAY_ENV": "production"},
			errMsg: "ingress secret is required in production",
		},
		{
			name:   "production with short secret",
			env:    map[string]string{"TOKEN": "t", "ICINFO": "111", "ICRELAY_ENV": "production", "ICRELAY_INGRESS_SECRET": "short"},
			errMsg: "at least 32 characters",
		},
		{
			name: "production with debug logging",
			env: map[string]string{
				"TOKEN": "t", "ICINFO": "111", "ICRELAY_ENV": "production",
				"ICRELAY_INGRESS_SECRET": "0123456789abcdef0123456789abcdef",
				"ICRELAY_LOG_LEVEL":      "debug",
			},
			errMsg: "debug logging should not be used in production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file, tt.content)
			}

			cfg, err := LoadConfig(path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfig_ConfigErrorType(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ICINFO", "111")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.IsType(t, models.ConfigError{}, err)
}

func TestLoadConfig_PathErrors(t *testing.T) {
	clearConfigEnv(t)

	_, err := LoadConfig("../../etc/icrelay.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config path")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadConfig_ProductionWithStrongSecret(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TOKEN", "t")
	t.Setenv("ICINFO", "111")
	t.Setenv("ICRELAY_ENV", "production")
	t.Setenv("ICRELAY_INGRESS_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.Ingress.Secret)
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("loads variables without overriding existing ones", func(t *testing.T) {
		t.Setenv("ICRELAY_TEST_PRESET", "kept")
		t.Setenv("ICRELAY_TEST_FROM_FILE", "")
		require.NoError(t, os.Unsetenv("ICRELAY_TEST_FROM_FILE"))

		path := writeFile(t, ".env", "ICRELAY_TEST_FROM_FILE=loaded\nICRELAY_TEST_PRESET=replaced\n")
		require.NoError(t, LoadEnvFile(path))

		assert.Equal(t, "loaded", os.Getenv("ICRELAY_TEST_FROM_FILE"))
		assert.Equal(t, "kept", os.Getenv("ICRELAY_TEST_PRESET"))
	})
}
