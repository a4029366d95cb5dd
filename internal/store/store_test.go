package store_test

import (
	"path/filepath"
	"testing"

	"github.com/mssql-cli/mssqlcli/internal/store"
	"github.com/mssql-cli/mssqlcli/internal/transport"
)

func TestRememberAndLookupRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dsn-cache.yaml")
	s, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	params := transport.Params{Host: "db1.internal", Port: 1433, Database: "analytics", Username: "reporting", Encrypt: true}
	if err := s.Remember("prod", params); err != nil {
		t.Fatal(err)
	}

	entry, ok := s.Lookup("prod")
	if !ok {
		t.Fatal("expected entry to be found")
	}
	if entry.Host != "db1.internal" || entry.Port != 1433 || entry.Database != "analytics" {
		t.Fatalf("got %+v", entry)
	}

	reopened, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reopened.Lookup("prod"); !ok {
		t.Fatal("expected entry to survive reopen")
	}
}

func TestRememberReplacesExistingName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dsn-cache.yaml")
	s, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	_ = s.Remember("prod", transport.Params{Host: "old-host", Port: 1433})
	_ = s.Remember("prod", transport.Params{Host: "new-host", Port: 1433})

	entry, _ := s.Lookup("prod")
	if entry.Host != "new-host" {
		t.Fatalf("expected replaced entry, got %+v", entry)
	}
	if len(s.List()) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(s.List()))
	}
}

func TestForgetRemovesEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dsn-cache.yaml")
	s, _ := store.Open(path)
	_ = s.Remember("prod", transport.Params{Host: "h", Port: 1433})

	if err := s.Forget("prod"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Lookup("prod"); ok {
		t.Fatal("expected entry to be gone")
	}
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.yaml")
	s, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.List()) != 0 {
		t.Fatalf("expected empty store, got %d entries", len(s.List()))
	}
}
