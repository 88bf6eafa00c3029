package discovery

import (
	"testing"

	hosttesting "github.com/redpencil/rpio/internal/host/testing"
	"github.com/redpencil/rpio/internal/inventory"
	sshtesting "github.com/redpencil/rpio/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrRefresh_RefreshesWhenNothingCached(t *testing.T) {
	connector := hosttesting.NewFakeConnector()
	sshtesting.WithApps(connector.AddHost("host1"), "/data", "app-a")
	agent := newTestAgent(t, "Host host1\n", connector, nil)
	snap := inventory.NewFileStore(t.TempDir())

	store, err := agent.LoadOrRefresh(snap, nil, false, false)
	require.NoError(t, err)

	assert.Equal(t, 1, store.FolderCount())
	assert.True(t, snap.Exists())
	assert.Equal(t, store, snap.Load())
}

func TestLoadOrRefresh_UsesCache(t *testing.T) {
	connector := hosttesting.NewFakeConnector()
	agent := newTestAgent(t, "Host host1\n", connector, nil)
	snap := inventory.NewFileStore(t.TempDir())

	cached := inventory.NewStore()
	cached.Servers["cached-host"] = inventory.ServerEntry{LastUpdated: 1}
	require.NoError(t, snap.Save(cached))

	store, err := agent.LoadOrRefresh(snap, nil, false, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"cached-host"}, store.Hosts())
	assert.Empty(t, connector.Dialed(), "no probes when the cache is used")
}

func TestLoadOrRefresh_ForceReplacesCache(t *testing.T) {
	connector := hosttesting.NewFakeConnector()
	sshtesting.WithApps(connector.AddHost("host1"), "/data", "app-a")
	agent := newTestAgent(t, "Host host1\n", connector, nil)
	snap := inventory.NewFileStore(t.TempDir())

	cached := inventory.NewStore()
	cached.Servers["stale"] = inventory.ServerEntry{LastUpdated: 1}
	require.NoError(t, snap.Save(cached))

	store, err := agent.LoadOrRefresh(snap, nil, true, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"host1"}, store.Hosts())
	assert.Equal(t, []string{"host1"}, snap.Load().Hosts(), "refresh replaces, never merges")
}

func TestLoadOrRefresh_DryRunDoesNotSave(t *testing.T) {
	connector := hosttesting.NewFakeConnector()
	sshtesting.WithApps(connector.AddHost("host1"), "/data", "app-a")
	agent := newTestAgent(t, "Host host1\n", connector, nil)
	snap := inventory.NewFileStore(t.TempDir())

	store, err := agent.LoadOrRefresh(snap, nil, true, true)
	require.NoError(t, err)

	assert.Equal(t, 1, store.FolderCount())
	assert.False(t, snap.Exists())
}
