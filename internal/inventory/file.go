package inventory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/redpencil/rpio/internal/errors"
)

// FileName is the snapshot file name inside the cache directory.
const FileName = "servers.toml"

// FileStore loads and saves the snapshot in one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created on
// the first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the snapshot file path.
func (f *FileStore) Path() string {
	return filepath.Join(f.dir, FileName)
}

// Exists reports whether a snapshot has been committed.
func (f *FileStore) Exists() bool {
	info, err := os.Stat(f.Path())
	return err == nil && info.Mode().IsRegular()
}

// Load reads the snapshot. A missing, unreadable or corrupt file yields an
// empty store; callers refresh when they need real data.
func (f *FileStore) Load() *Store {
	store := NewStore()
	if _, err := toml.DecodeFile(f.Path(), store); err != nil {
		return NewStore()
	}
	store.normalize()
	return store
}

// Save replaces the snapshot atomically. The store is written to a temp file
// next to the snapshot, synced, and renamed over it, so readers see either
// the old snapshot or the new one.
func (f *FileStore) Save(store *Store) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrInventory,
			fmt.Sprintf("Couldn't create cache directory %s", f.dir),
			"Check permissions, or point cache_dir in your config somewhere writable.")
	}

	tmp, err := os.CreateTemp(f.dir, "."+FileName+".*.tmp")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrInventory,
			"Couldn't write the server inventory",
			fmt.Sprintf("Check that %s is writable.", f.dir))
	}
	tmpPath := tmp.Name()

	if err := writeAndClose(tmp, store); err != nil {
		os.Remove(tmpPath)
		return errors.WrapWithCode(err, errors.ErrInventory,
			"Couldn't write the server inventory",
			"Check free disk space.")
	}

	if err := os.Rename(tmpPath, f.Path()); err != nil {
		os.Remove(tmpPath)
		return errors.WrapWithCode(err, errors.ErrInventory,
			fmt.Sprintf("Couldn't replace %s", f.Path()),
			"Make sure nothing else holds that path.")
	}
	return nil
}

func writeAndClose(tmp *os.File, store *Store) error {
	if err := toml.NewEncoder(tmp).Encode(store); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	return tmp.Close()
}
