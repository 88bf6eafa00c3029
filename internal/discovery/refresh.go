package discovery

import "github.com/redpencil/rpio/internal/inventory"

// Snapshot is the persistence side of an inventory, satisfied by
// *inventory.FileStore.
type Snapshot interface {
	Load() *inventory.Store
	Save(*inventory.Store) error
	Exists() bool
}

// LoadOrRefresh returns the cached inventory, running a discovery pass first
// when force is set or nothing was ever cached. With dryRun the fresh
// inventory is returned without being saved.
func (a *Agent) LoadOrRefresh(snap Snapshot, ignoreHosts []string, force, dryRun bool) (*inventory.Store, error) {
	if !force && snap.Exists() {
		return snap.Load(), nil
	}

	store, err := a.Refresh(ignoreHosts)
	if err != nil {
		return nil, err
	}
	if dryRun {
		a.log.Info("dry run: not saving inventory (%d folders)", store.FolderCount())
		return store, nil
	}
	if err := snap.Save(store); err != nil {
		return nil, err
	}
	return store, nil
}
