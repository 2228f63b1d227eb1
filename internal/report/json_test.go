package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/cybertec-postgresql/dbal/internal/driver"
)

func testTable() *Table {
	return &Table{
		Columns: []string{"id", "name"},
		Rows: [][]any{
			{int64(1), "alice"},
			{int64(2), nil},
		},
	}
}

func TestJSONReporter_Format(t *testing.T) {
	reporter := NewJSONReporter()

	t.Run("Format", func(t *testing.T) {
		var buf bytes.Buffer
		if err := reporter.Format(testTable(), &buf); err != nil {
			t.Fatalf("Format failed: %v", err)
		}

		want := "[\n  {\"id\": 1, \"name\": \"alice\"},\n  {\"id\": 2, \"name\": null}\n]\n"
		if buf.String() != want {
			t.Errorf("unexpected output:\ngot:  %q\nwant: %q", buf.String(), want)
		}

		var decoded []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("Invalid JSON output: %v", err)
		}
		if len(decoded) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(decoded))
		}
		if decoded[0]["name"] != "alice" {
			t.Errorf("name mismatch: got %v, want alice", decoded[0]["name"])
		}
	})

	t.Run("FormatString", func(t *testing.T) {
		output, err := reporter.FormatString(testTable())
		if err != nil {
			t.Fatalf("FormatString failed: %v", err)
		}
		if strings.HasSuffix(output, "\n") {
			t.Error("FormatString should not add a trailing newline")
		}
	})

	t.Run("Name", func(t *testing.T) {
		if name := reporter.Name(); name != "json" {
			t.Errorf("Name mismatch: got %s, want json", name)
		}
	})
}

func TestJSONReporter_Empty(t *testing.T) {
	output, err := NewJSONReporter().FormatString(&Table{Columns: []string{"id"}})
	if err != nil {
		t.Fatalf("FormatString failed: %v", err)
	}
	if output != "[]" {
		t.Errorf("expected [], got %q", output)
	}
}

func TestJSONReporter_KeepsColumnOrder(t *testing.T) {
	table := &Table{
		Columns: []string{"z", "a", "m"},
		Rows:    [][]any{{1, 2, 3}},
	}
	output, err := NewJSONReporter().FormatString(table)
	if err != nil {
		t.Fatalf("FormatString failed: %v", err)
	}
	if !strings.Contains(output, `{"z": 1, "a": 2, "m": 3}`) {
		t.Errorf("column order not preserved: %s", output)
	}
}

func TestJSONReporter_DisplayValues(t *testing.T) {
	stamp := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
	table := &Table{
		Columns: []string{"text", "blob", "at"},
		Rows:    [][]any{{[]byte("plain"), []byte{0xff, 0x00}, stamp}},
	}
	output, err := NewJSONReporter().FormatString(table)
	if err != nil {
		t.Fatalf("FormatString failed: %v", err)
	}
	want := `{"text": "plain", "blob": "0xff00", "at": "2024-02-29T12:00:00Z"}`
	if !strings.Contains(output, want) {
		t.Errorf("expected %s in %s", want, output)
	}
}

func TestFromResult(t *testing.T) {
	res := driver.NewResult(driver.NewSliceRows([]string{"n"}, [][]any{{1}, {2}}))
	table, err := FromResult(res)
	if err != nil {
		t.Fatalf("FromResult failed: %v", err)
	}
	if len(table.Rows) != 2 || table.Columns[0] != "n" {
		t.Errorf("unexpected table: %+v", table)
	}
	if _, _, err := res.FetchNumeric(); err == nil {
		t.Error("result should be freed")
	}
}

func TestGetFormatter(t *testing.T) {
	for _, name := range SupportedFormats() {
		if !ValidFormat(name) {
			t.Errorf("%s should be valid", name)
		}
		f, err := GetFormatter(FormatType(name))
		if err != nil {
			t.Fatalf("GetFormatter(%s): %v", name, err)
		}
		if f.Name() != name {
			t.Errorf("formatter name %s, want %s", f.Name(), name)
		}
	}

	if ValidFormat("html") {
		t.Error("html should not be valid")
	}
	if _, err := GetFormatter("html"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
