package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("SELECT 1;"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func relPaths(files []DiscoveredFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = filepath.ToSlash(f.RelativePath)
	}
	return out
}

func assertPaths(t *testing.T, got []DiscoveredFile, want ...string) {
	t.Helper()
	paths := relPaths(got)
	if len(paths) != len(want) {
		t.Fatalf("got %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("position %d: got %s, want %s (all: %v)", i, paths[i], want[i], paths)
		}
	}
}

func TestClassifyFile(t *testing.T) {
	tests := []struct {
		name string
		want FileType
	}{
		{"001_init.sql", FileTypeUp},
		{"001_init.up.sql", FileTypeUp},
		{"001_init.down.sql", FileTypeDown},
		{"001_INIT_DOWN.SQL", FileTypeDown},
		{"download.sql", FileTypeUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyFile(tt.name); got != tt.want {
				t.Errorf("ClassifyFile(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b.sql", "a.SQL", "nested/c.sql", "notes.txt")

	files, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 SQL files, got %v", relPaths(files))
	}
	for _, f := range files {
		if !filepath.IsAbs(f.Path) {
			t.Errorf("path should be absolute: %s", f.Path)
		}
		if f.ModTime.IsZero() {
			t.Errorf("mod time missing for %s", f.RelativePath)
		}
	}
}

func TestDiscover_SingleFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "only.down.sql", "readme.md")

	files, err := Discover(filepath.Join(root, "only.down.sql"))
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	assertPaths(t, files, "only.down.sql")
	if files[0].Type != FileTypeDown {
		t.Errorf("expected down script, got %v", files[0].Type)
	}

	if _, err := Discover(filepath.Join(root, "readme.md")); err == nil {
		t.Error("expected error for non-SQL file")
	}
	if _, err := Discover(filepath.Join(root, "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestDiscoverScripts(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"002_users.up.sql", "002_users.down.sql",
		"001_init.sql", "001_init_down.sql",
		"010_data/seed.sql",
	)

	up, err := DiscoverScripts(FileTypeUp, root, filepath.Join(root, "001_init.sql"))
	if err != nil {
		t.Fatalf("DiscoverScripts failed: %v", err)
	}
	assertPaths(t, up, "001_init.sql", "002_users.up.sql", "010_data/seed.sql")

	down, err := DiscoverScripts(FileTypeDown, root)
	if err != nil {
		t.Fatalf("DiscoverScripts failed: %v", err)
	}
	assertPaths(t, down, "002_users.down.sql", "001_init_down.sql")
}
