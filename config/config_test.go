package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmgn-swap/pkg/client"
	"gmgn-swap/pkg/gateway"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, client.DefaultRouterURL, cfg.BaseURL)
	assert.Equal(t, client.DefaultKlineURL, cfg.KlineBaseURL)
	assert.Equal(t, "0.00001", cfg.DefaultFee.String())
	assert.Equal(t, 400*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, time.Minute, cfg.PollTimeout)
	assert.False(t, cfg.HasKey())
	assert.Equal(t, gateway.DefaultUserAgent, cfg.UserAgent)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("GMGN_SWAP_BASE_URL", "http://localhost:8080")
	t.Setenv("GMGN_SWAP_POLL_TIMEOUT", "90s")
	t.Setenv("GMGN_SWAP_DEFAULT_FEE", "0.003")
	t.Setenv("GMGN_SWAP_PRIVATE_KEY", "secret")
	t.Setenv("GMGN_SWAP_LOG_PRETTY", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.PollTimeout)
	assert.Equal(t, "0.003", cfg.DefaultFee.String())
	assert.False(t, cfg.LogPretty)

	secret, err := cfg.Secret()
	require.NoError(t, err)
	assert.Equal(t, "secret", secret)
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	keyFile := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(keyFile, []byte("  from-file\n"), 0o600))

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"private_key_file: "+keyFile+"\n"+
			"poll_interval: 1s\n"+
			"partner: acme\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, "acme", cfg.Partner)
	assert.True(t, cfg.HasKey())

	secret, err := cfg.Secret()
	require.NoError(t, err)
	assert.Equal(t, "from-file", secret)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"fee above max", map[string]string{"GMGN_SWAP_DEFAULT_FEE": "6"}},
		{"fee not a number", map[string]string{"GMGN_SWAP_DEFAULT_FEE": "cheap"}},
		{"zero interval", map[string]string{"GMGN_SWAP_POLL_INTERVAL": "0s"}},
		{"negative timeout", map[string]string{"GMGN_SWAP_HTTP_TIMEOUT": "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestSecretWithoutKey(t *testing.T) {
	cfg := &Config{}
	_, err := cfg.Secret()
	assert.Error(t, err)
}
