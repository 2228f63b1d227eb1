package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores each entry as a JSON file in a directory.
type FileCache struct {
	dir string
	now func() time.Time
}

var _ Cache = (*FileCache)(nil)

// NewFileCache creates a cache rooted at dir. The directory is created on
// the first write.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir, now: time.Now}
}

// Dir returns the directory entries are stored in
func (c *FileCache) Dir() string {
	return c.dir
}

func (c *FileCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

type fileEntry struct {
	Key       string              `json:"key"`
	ExpiresAt *time.Time          `json:"expires_at,omitempty"`
	Results   map[string]fileRows `json:"results"`
}

type fileRows struct {
	Columns []string `json:"columns"`
	Data    [][]cell `json:"data"`
}

func (c *FileCache) Get(_ context.Context, key string) (Entry, bool, error) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache file: %w", err)
	}

	var stored fileEntry
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, false, fmt.Errorf("failed to parse cache file %s: %w", path, err)
	}
	if stored.Key != key {
		return nil, false, nil
	}
	if stored.ExpiresAt != nil && !c.now().Before(*stored.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}

	entry := make(Entry, len(stored.Results))
	for realKey, rows := range stored.Results {
		out := Rows{Columns: rows.Columns, Data: make([][]any, len(rows.Data))}
		for i, row := range rows.Data {
			out.Data[i] = make([]any, len(row))
			for j, v := range row {
				out.Data[i][j] = v.v
			}
		}
		entry[realKey] = out
	}
	return entry, true, nil
}

func (c *FileCache) Set(_ context.Context, key string, entry Entry, ttl time.Duration) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.dir, err)
	}

	stored := fileEntry{Key: key, Results: make(map[string]fileRows, len(entry))}
	if ttl > 0 {
		expires := c.now().Add(ttl)
		stored.ExpiresAt = &expires
	}
	for realKey, rows := range entry {
		out := fileRows{Columns: rows.Columns, Data: make([][]cell, len(rows.Data))}
		for i, row := range rows.Data {
			out.Data[i] = make([]cell, len(row))
			for j, v := range row {
				out.Data[i][j] = cell{v}
			}
		}
		stored.Results[realKey] = out
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	// Write next to the target and rename so readers never see a partial file
	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// cell keeps the Go type of a column value across a JSON round trip.
// Byte slices and timestamps are tagged; numbers decode as int64 when
// integral and float64 otherwise.
type cell struct {
	v any
}

func (c cell) MarshalJSON() ([]byte, error) {
	switch v := c.v.(type) {
	case []byte:
		return json.Marshal(map[string]string{"$bytes": base64.StdEncoding.EncodeToString(v)})
	case time.Time:
		return json.Marshal(map[string]string{"$time": v.Format(time.RFC3339Nano)})
	}
	return json.Marshal(c.v)
}

func (c *cell) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			c.v = i
			return nil
		}
		f, err := v.Float64()
		c.v = f
		return err
	case map[string]any:
		if len(v) == 1 {
			if s, ok := v["$bytes"].(string); ok {
				b, err := base64.StdEncoding.DecodeString(s)
				c.v = b
				return err
			}
			if s, ok := v["$time"].(string); ok {
				t, err := time.Parse(time.RFC3339Nano, s)
				c.v = t
				return err
			}
		}
	}
	c.v = raw
	return nil
}
