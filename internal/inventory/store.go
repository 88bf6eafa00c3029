// Package inventory holds the cached snapshot of which fleet hosts serve which
// application folders, and persists it as servers.toml.
package inventory

import "sort"

// DataFolder is one application root found under a host's apps directory.
type DataFolder struct {
	Path string `toml:"path"`
	// Container is reserved for a per-folder container binding. Nothing sets
	// it yet; it is carried through load and save untouched.
	Container *string `toml:"container,omitempty"`
}

// ServerEntry records what a refresh found on one host.
type ServerEntry struct {
	LastUpdated int64        `toml:"last_updated"`
	DataFolders []DataFolder `toml:"data_folders"`
}

// Store maps host names to their entries.
type Store struct {
	Servers map[string]ServerEntry `toml:"servers"`
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{Servers: make(map[string]ServerEntry)}
}

// Hosts returns the host names in lexical order.
func (s *Store) Hosts() []string {
	hosts := make([]string, 0, len(s.Servers))
	for host := range s.Servers {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

// FolderCount returns the number of folders across all hosts.
func (s *Store) FolderCount() int {
	n := 0
	for _, entry := range s.Servers {
		n += len(entry.DataFolders)
	}
	return n
}

// normalize makes a decoded store match a freshly built one: a non-nil map
// and nil folder lists for hosts without folders.
func (s *Store) normalize() {
	if s.Servers == nil {
		s.Servers = make(map[string]ServerEntry)
	}
	for host, entry := range s.Servers {
		if len(entry.DataFolders) == 0 && entry.DataFolders != nil {
			entry.DataFolders = nil
			s.Servers[host] = entry
		}
	}
}
