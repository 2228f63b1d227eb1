package discovery

import "time"

// DiscoveredFile represents a SQL script discovered during filesystem traversal
type DiscoveredFile struct {
	Path         string    // Absolute path to file
	RelativePath string    // Path relative to search root
	Type         FileType  // Up or Down
	ModTime      time.Time // Last modification time
}

// FileType tells apart scripts that apply changes from those that revert them
type FileType int

const (
	FileTypeUp   FileType = iota // Any *.sql not matching the down patterns
	FileTypeDown                 // Matches *.down.sql or *_down.sql
)

// String returns a string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case FileTypeUp:
		return "up"
	case FileTypeDown:
		return "down"
	default:
		return "unknown"
	}
}
