package mysql

import (
	"context"
	"io/fs"
	"strings"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"0001_init.sql", 1, false},
		{"0042_add_index.sql", 42, false},
		{"init.sql", 0, true},
		{"_init.sql", 0, true},
		{"abc_init.sql", 0, true},
	}
	for _, tt := range tests {
		got, err := parseVersion(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseVersion(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseVersion(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "sql/*.sql")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no migrations embedded")
	}
	seen := make(map[int]bool)
	for _, f := range files {
		v, err := parseVersion(f[len("sql/"):])
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		if seen[v] {
			t.Fatalf("duplicate migration version %d", v)
		}
		seen[v] = true
	}
}

func TestNewClientRequiresDSN(t *testing.T) {
	if _, err := NewClient(context.Background(), "", nil); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestNormalizeDSN(t *testing.T) {
	got, err := normalizeDSN("test:pass@tcp(localhost:3306)/tally")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"parseTime=true", "multiStatements=true", "/tally"} {
		if !strings.Contains(got, want) {
			t.Errorf("normalizeDSN = %q, missing %q", got, want)
		}
	}

	if _, err := normalizeDSN("not a dsn"); err == nil {
		t.Fatal("expected error for malformed DSN")
	}
}
