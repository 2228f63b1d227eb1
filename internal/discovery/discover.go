package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Discover recursively finds all SQL files below rootPath. A rootPath
// naming a single file yields just that file.
func Discover(rootPath string) ([]DiscoveredFile, error) {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("path not found: %s", absRoot)
		}
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		if !IsSQLFile(absRoot) {
			return nil, fmt.Errorf("not a SQL file: %s", absRoot)
		}
		return []DiscoveredFile{{
			Path:         absRoot,
			RelativePath: filepath.Base(absRoot),
			Type:         ClassifyPath(absRoot),
			ModTime:      info.ModTime(),
		}}, nil
	}

	var files []DiscoveredFile

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Skip directories we can't access
			if os.IsPermission(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || !IsSQLFile(path) {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		files = append(files, DiscoveredFile{
			Path:         path,
			RelativePath: relPath,
			Type:         ClassifyFile(filepath.Base(path)),
			ModTime:      info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return files, nil
}

// DiscoverScripts collects the scripts of the given type from every path,
// ordered by relative path within each root. Down scripts come in reverse
// order so they undo the up scripts last-first. A file reached through two
// roots is returned once.
func DiscoverScripts(fileType FileType, paths ...string) ([]DiscoveredFile, error) {
	var scripts []DiscoveredFile
	seen := make(map[string]bool)

	for _, root := range paths {
		files, err := Discover(root)
		if err != nil {
			return nil, err
		}
		sort.Slice(files, func(i, j int) bool {
			return files[i].RelativePath < files[j].RelativePath
		})

		for _, file := range files {
			if file.Type != fileType || seen[file.Path] {
				continue
			}
			seen[file.Path] = true
			scripts = append(scripts, file)
		}
	}

	if fileType == FileTypeDown {
		for i, j := 0, len(scripts)-1; i < j; i, j = i+1, j-1 {
			scripts[i], scripts[j] = scripts[j], scripts[i]
		}
	}
	return scripts, nil
}
