package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	var buf bytes.Buffer
	sql := "SELECT * FROM t WHERE a = :a AND b = ? AND c = ':x'"
	if err := Parse(sql, false, "pgsql", &buf); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out := buf.String()

	var rows [][]string
	for _, line := range strings.Split(out, "\n")[1:5] {
		rows = append(rows, strings.Fields(line)[:2])
	}
	want := [][]string{{"0", "other"}, {"26", "named"}, {"28", "other"}, {"37", "positional"}}
	for i := range want {
		if rows[i][0] != want[i][0] || rows[i][1] != want[i][1] {
			t.Errorf("token %d: got %v, want %v", i, rows[i], want[i])
		}
	}

	if !strings.HasSuffix(out, "\npgsql: SELECT * FROM t WHERE a = $1 AND b = $2 AND c = ':x'\nbindings: :a, #1\n") {
		t.Errorf("unexpected conversion output:\n%s", out)
	}
}

func TestParse_NoPlatform(t *testing.T) {
	var buf bytes.Buffer
	if err := Parse("SELECT 1", false, "", &buf); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one token, got %q", buf.String())
	}
	if !strings.Contains(lines[1], `"SELECT 1"`) {
		t.Errorf("unexpected token line %q", lines[1])
	}
}

func TestParse_MySQLEscaping(t *testing.T) {
	var buf bytes.Buffer
	if err := Parse(`SELECT 'it\'s ?', ?`, true, "sqlsrv", &buf); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !strings.Contains(buf.String(), `sqlsrv: SELECT 'it\'s ?', @p1`) {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestParse_UnknownPlatform(t *testing.T) {
	var buf bytes.Buffer
	if err := Parse("SELECT ?", false, "db2", &buf); err == nil {
		t.Error("expected error for unknown platform")
	}
}
