package db

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
)

func TestReadMigrationsOrdersAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/010_add_index.sql":      {Data: []byte("CREATE INDEX x;")},
		"migrations/002_more_tables.sql":    {Data: []byte("CREATE TABLE b();")},
		"migrations/001_initial_schema.sql": {Data: []byte("CREATE TABLE a();")},
		"migrations/README.md":              {Data: []byte("notes")},
		"migrations/draft.sql":              {Data: []byte("nope")},
		"migrations/abc_not_numbered.sql":   {Data: []byte("nope")},
	}
	got, err := readMigrations(fsys)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d migrations, want 3", len(got))
	}
	if got[0].Number != 1 || got[0].Name != "initial_schema" || got[0].SQL != "CREATE TABLE a();" {
		t.Fatalf("unexpected first migration: %+v", got[0])
	}
	if got[1].Number != 2 || got[2].Number != 10 {
		t.Fatalf("not sorted: %d, %d", got[1].Number, got[2].Number)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := readMigrations(Migrations)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || got[0].Number != 1 {
		t.Fatalf("embedded migrations missing: %+v", got)
	}
	for _, table := range []string{"documents", "audit_entries", "vendors"} {
		if !strings.Contains(got[0].SQL, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("first migration does not create %s", table)
		}
	}
}

func TestNewRequiresConnectionString(t *testing.T) {
	if _, err := New(context.Background(), "", zerolog.Nop()); err == nil {
		t.Fatal("expected error for empty connection string")
	}
}

func TestWithSSLDisabled(t *testing.T) {
	if got := withSSLDisabled("postgres://u@h/db"); got != "postgres://u@h/db?sslmode=disable" {
		t.Fatalf("got %q", got)
	}
	if got := withSSLDisabled("postgres://u@h/db?connect_timeout=5"); got != "postgres://u@h/db?connect_timeout=5&sslmode=disable" {
		t.Fatalf("got %q", got)
	}
}
