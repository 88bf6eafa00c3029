package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/redpencil/rpio/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func buildStore(hosts, folders int) *Store {
	store := NewStore()
	for h := 0; h < hosts; h++ {
		entry := ServerEntry{LastUpdated: int64(1700000000 + h)}
		for f := 0; f < folders; f++ {
			entry.DataFolders = append(entry.DataFolders, DataFolder{Path: fmt.Sprintf("app-%d", f)})
		}
		store.Servers[fmt.Sprintf("host%d.example.com", h)] = entry
	}
	return store
}

func TestFileStore_RoundTrip(t *testing.T) {
	for hosts := 0; hosts <= 3; hosts++ {
		for folders := 0; folders <= 3; folders++ {
			t.Run(fmt.Sprintf("%d_hosts_%d_folders", hosts, folders), func(t *testing.T) {
				fs := NewFileStore(t.TempDir())
				want := buildStore(hosts, folders)

				require.NoError(t, fs.Save(want))
				assert.Equal(t, want, fs.Load())
			})
		}
	}
}

func TestFileStore_RoundTripContainer(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	want := NewStore()
	want.Servers["host1"] = ServerEntry{
		LastUpdated: 42,
		DataFolders: []DataFolder{
			{Path: "app-a", Container: strPtr("app-a-web-1")},
			{Path: "app-b"},
		},
	}

	require.NoError(t, fs.Save(want))
	got := fs.Load()

	assert.Equal(t, want, got)
	require.NotNil(t, got.Servers["host1"].DataFolders[0].Container)
	assert.Nil(t, got.Servers["host1"].DataFolders[1].Container)
}

func TestFileStore_Format(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	store := NewStore()
	store.Servers["host1"] = ServerEntry{LastUpdated: 1700000000, DataFolders: []DataFolder{{Path: "app-a"}}}

	require.NoError(t, fs.Save(store))

	content, err := os.ReadFile(fs.Path())
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "[servers.host1]")
	assert.Contains(t, text, "last_updated = 1700000000")
	assert.Contains(t, text, "[[servers.host1.data_folders]]")
	assert.Contains(t, text, `path = "app-a"`)
	assert.NotContains(t, text, "container")
}

func TestFileStore_LoadHandWritten(t *testing.T) {
	dir := t.TempDir()
	content := `
[servers.host1]
last_updated = 1700000000

[[servers.host1.data_folders]]
path = "app-a"

[[servers.host1.data_folders]]
path = "app-b"
container = "app-b-db-1"

[servers.host2]
last_updated = 1700000001
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	store := NewFileStore(dir).Load()

	assert.Equal(t, []string{"host1", "host2"}, store.Hosts())
	assert.Equal(t, 2, store.FolderCount())
	assert.Equal(t, "app-b-db-1", *store.Servers["host1"].DataFolders[1].Container)
	assert.Nil(t, store.Servers["host2"].DataFolders)
}

func TestFileStore_LoadMissing(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "never-created"))

	assert.False(t, fs.Exists())
	store := fs.Load()
	require.NotNil(t, store)
	assert.Empty(t, store.Servers)
	assert.NotNil(t, store.Servers)
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	tests := map[string]string{
		"garbage":       "this is {{ not toml",
		"wrong types":   "[servers.host1]\nlast_updated = \"yesterday\"\n",
		"servers array": "servers = [1, 2, 3]\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

			store := NewFileStore(dir).Load()
			assert.Empty(t, store.Servers)
		})
	}
}

func TestFileStore_SaveReplacesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)

	require.NoError(t, fs.Save(buildStore(2, 2)))
	require.NoError(t, fs.Save(buildStore(1, 1)))

	assert.True(t, fs.Exists())
	assert.Equal(t, buildStore(1, 1), fs.Load())
	assertOnlySnapshot(t, dir)
}

func TestFileStore_SaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	fs := NewFileStore(dir)

	require.NoError(t, fs.Save(buildStore(1, 1)))
	assert.True(t, fs.Exists())
}

func TestFileStore_SaveFailsWhenTargetCannotBeReplaced(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)

	// A non-empty directory at the snapshot path can't be renamed over.
	blocker := filepath.Join(fs.Path(), "keep")
	require.NoError(t, os.MkdirAll(blocker, 0o755))

	err := fs.Save(buildStore(1, 1))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInventory))
	assert.DirExists(t, blocker, "existing target is untouched")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file %s left behind", e.Name())
	}
}

func TestFileStore_SaveFailsWhenDirIsAFile(t *testing.T) {
	parent := t.TempDir()
	notADir := filepath.Join(parent, "cache")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0o644))

	err := NewFileStore(notADir).Save(NewStore())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInventory))
}

func TestFileStore_Path(t *testing.T) {
	assert.Equal(t, filepath.Join("/cache", "servers.toml"), NewFileStore("/cache").Path())
}

func assertOnlySnapshot(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}
