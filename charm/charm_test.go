package charm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalClientRoundTrip(t *testing.T) {
	c := NewTestClient(t)
	assert.True(t, c.Local())
	assert.False(t, c.IsConnected())

	_, err := c.Get([]byte("missing"))
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, c.Set([]byte("pref:theme"), []byte("dark")))
	require.NoError(t, c.Set([]byte("pref:lang"), []byte("en")))
	require.NoError(t, c.Set([]byte("onboarded"), []byte("true")))

	v, err := c.Get([]byte("pref:theme"))
	require.NoError(t, err)
	assert.Equal(t, "dark", string(v))

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Len(t, keys, 3)

	require.NoError(t, c.Delete([]byte("pref:theme")))
	_, err = c.Get([]byte("pref:theme"))
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, c.Sync())
	require.NoError(t, c.Reset())
	keys, err = c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLocalClientPersists(t *testing.T) {
	dir := t.TempDir()

	c, err := NewLocalClient(dir)
	require.NoError(t, err)
	require.NoError(t, c.Set([]byte("k"), []byte("v")))
	require.NoError(t, c.Close())

	c, err = NewLocalClient(dir)
	require.NoError(t, err)
	defer c.Close()

	v, err := c.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))
}

func TestConfigLoadSave(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultCharmHost, cfg.Host)
	assert.True(t, cfg.AutoSync)

	require.NoError(t, cfg.SetAutoSync(false))
	require.NoError(t, cfg.SetHost("charm.example.com"))

	again, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.False(t, again.AutoSync)
	assert.Equal(t, "charm.example.com", again.Host)
}

func TestSyncCommandsOnLocalClient(t *testing.T) {
	c := NewTestClient(t)
	var out bytes.Buffer

	require.NoError(t, SyncStatusCommand(&out, c, nil))
	assert.Contains(t, out.String(), "local (not linked)")

	out.Reset()
	require.NoError(t, SyncNowCommand(&out, c, nil))
	assert.Contains(t, out.String(), "not linked")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, SetAutoSyncCommand(&out, cfg, []string{"--disable"}))
	assert.Contains(t, out.String(), "Auto-sync disabled")
	assert.False(t, cfg.AutoSync)

	assert.Error(t, SetAutoSyncCommand(&out, cfg, []string{"--enable", "--disable"}))
}

func TestSyncWipeNeedsConfirm(t *testing.T) {
	c := NewTestClient(t)
	require.NoError(t, c.Set([]byte("preferences"), []byte("{}")))
	var out bytes.Buffer

	require.NoError(t, SyncWipeCommand(&out, c, nil))
	assert.Contains(t, out.String(), "--confirm")
	_, err := c.Get([]byte("preferences"))
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, SyncWipeCommand(&out, c, []string{"--confirm"}))
	assert.Contains(t, out.String(), "State wiped")
	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}
