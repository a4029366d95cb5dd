// Package store persists a small cache of previously resolved connection
// parameters, keyed by DSN name, to a YAML file — ambient operator
// convenience layered on top of spec §4.3's DSN resolution, not part of
// spec.md itself. Grounded on cowsql-go-cowsql/client/store.go's
// YamlNodeStore: a mutex-guarded in-memory copy backed by an
// atomically-rewritten YAML file.
package store

import (
	"os"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/google/renameio"

	"github.com/mssql-cli/mssqlcli/internal/transport"
)

// Entry is the cached form of a previously resolved DSN (spec §4.3
// Params, persisted so an interactive shell session can offer "last used"
// connections without re-reading .odbc.ini every time).
type Entry struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Encrypt  bool   `yaml:"encrypt"`
}

// DSNStore is a YAML-file-backed cache of Entry records.
type DSNStore struct {
	mu      sync.RWMutex
	path    string
	entries []Entry
}

// Open loads path if it exists, or starts empty if it doesn't.
func Open(path string) (*DSNStore, error) {
	entries := []Entry{}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
	}

	return &DSNStore{path: path, entries: entries}, nil
}

// List returns a snapshot of the cached entries.
func (s *DSNStore) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Lookup returns the cached entry for name, if any.
func (s *DSNStore) Lookup(name string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Remember records params under name, replacing any existing entry of the
// same name, and atomically rewrites the backing file.
func (s *DSNStore) Remember(name string, params transport.Params) error {
	entry := Entry{
		Name:     name,
		Host:     params.Host,
		Port:     params.Port,
		Database: params.Database,
		Username: params.Username,
		Encrypt:  params.Encrypt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i, e := range s.entries {
		if e.Name == name {
			s.entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		s.entries = append(s.entries, entry)
	}

	return s.writeLocked()
}

// Forget removes the cached entry for name, if present.
func (s *DSNStore) Forget(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.entries[:0]
	for _, e := range s.entries {
		if e.Name != name {
			out = append(out, e)
		}
	}
	s.entries = out

	return s.writeLocked()
}

// writeLocked marshals the current entries and atomically replaces the
// backing file (renameio.WriteFile writes to a temp path in the same
// directory and renames over the destination, so a reader never observes
// a partially written file).
func (s *DSNStore) writeLocked() error {
	data, err := yaml.Marshal(s.entries)
	if err != nil {
		return err
	}
	return renameio.WriteFile(s.path, data, 0o600)
}
