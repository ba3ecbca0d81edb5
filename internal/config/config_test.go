package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig(t *testing.T) {
	content := `
serve:
  bind: "0.0.0.0:9000"
  websocket: gobwas
  stdio: true
  max_content_length: 4096
call:
  endpoint: "http://example.com/rpc"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Serve.Bind)
	assert.Equal(t, WebSocketGobwas, cfg.Serve.WebSocket)
	assert.True(t, cfg.Serve.Stdio)
	assert.Equal(t, int64(4096), cfg.Serve.MaxContentLength)
	assert.Equal(t, "http://example.com/rpc", cfg.Call.Endpoint)
	// Unset keys keep their defaults.
	assert.False(t, cfg.Serve.DebugCodec)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("JSONRPC_SERVE_BIND", "127.0.0.1:7000")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Serve.Bind)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serve:\n  websocket: carrier-pigeon\n"), 0600))

	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Serve.AllowOrigin = "*"
	cfg.Serve.TLSHost = "rpc.example.com"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "config.yaml", filepath.Base(DefaultPath()))
}
