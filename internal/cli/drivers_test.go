package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cybertec-postgresql/dbal/internal/driver"
)

func TestListDrivers(t *testing.T) {
	var buf bytes.Buffer
	if err := ListDrivers(driver.DefaultRegistry(), &buf); err != nil {
		t.Fatalf("ListDrivers failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	got := make(map[string][]string)
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		got[fields[0]] = fields[1:]
	}

	want := map[string][]string{
		"duckdb": {"duckdb", "no", "no"},
		"mysql":  {"mysql", "yes", "yes"},
		"pgx":    {"pgsql", "yes", "no"},
		"pq":     {"pgsql", "yes", "no"},
		"sqlite": {"sqlite", "yes", "no"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d drivers, got %v", len(want), got)
	}
	for name, fields := range want {
		if strings.Join(got[name], " ") != strings.Join(fields, " ") {
			t.Errorf("%s: got %v, want %v", name, got[name], fields)
		}
	}
}
