package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	cfg := Config{
		Endpoints:   []Endpoint{{Name: "Local", URL: "http://127.0.0.1:8545", Active: true}},
		Logger:      true,
		PollSeconds: 2,
	}
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.Equal(t, cfg, Load(path))
}

func TestLoadMissingOrInvalid(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, Config{}, Load(filepath.Join(dir, "missing.json")))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	assert.Equal(t, Config{}, Load(bad))
	assert.Equal(t, DefaultConfig(), LoadOrCreate(bad))
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	cfg := LoadOrCreate(path)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ETH_RPC_URL", " https://rpc.example ")

	var cfg Config
	cfg.ApplyEnv()
	require.Len(t, cfg.Endpoints, 1)
	assert.Equal(t, Endpoint{Name: "Default", URL: "https://rpc.example", Active: true}, cfg.Endpoints[0])

	// configured endpoints win over the environment
	cfg = Config{Endpoints: []Endpoint{{Name: "Mine", URL: "ws://node:8546"}}}
	cfg.ApplyEnv()
	assert.Equal(t, "ws://node:8546", cfg.ActiveURL())
}

func TestActiveURL(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Config{}.ActiveURL())

	cfg := Config{Endpoints: []Endpoint{
		{Name: "a", URL: "http://a"},
		{Name: "b", URL: "http://b", Active: true},
	}}
	assert.Equal(t, "http://b", cfg.ActiveURL())
}

func TestSetActive(t *testing.T) {
	t.Parallel()

	cfg := Config{Endpoints: []Endpoint{
		{Name: "a", URL: "http://a", Active: true},
		{Name: "b", URL: "http://b"},
	}}

	cfg.SetActive("", "http://b")
	assert.False(t, cfg.Endpoints[0].Active)
	assert.True(t, cfg.Endpoints[1].Active)
	assert.Equal(t, "b", cfg.Endpoints[1].Name)

	cfg.SetActive("", "http://c")
	require.Len(t, cfg.Endpoints, 3)
	assert.Equal(t, Endpoint{Name: "Custom", URL: "http://c", Active: true}, cfg.Endpoints[2])
	assert.Equal(t, "http://c", cfg.ActiveURL())
}

func TestRemove(t *testing.T) {
	t.Parallel()

	cfg := Config{Endpoints: []Endpoint{
		{Name: "a", URL: "http://a", Active: true},
		{Name: "b", URL: "http://b"},
	}}
	cfg.Remove(5)
	require.Len(t, cfg.Endpoints, 2)

	cfg.Remove(0)
	require.Len(t, cfg.Endpoints, 1)
	assert.Equal(t, "http://b", cfg.ActiveURL())
}

func TestPollInterval(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4*time.Second, Config{}.PollInterval())
	assert.Equal(t, 10*time.Second, Config{PollSeconds: 10}.PollInterval())
}
