package domain

import (
	"fmt"
	"strings"
)

// Asset represents one selectable PDF known to the shelf server.
type Asset struct {
	Name      string // Display name, e.g. "lecture1.pdf"
	Path      string // Server-side identifier used when selecting
	URL       string // Resolved URL the rendering surface loads
	SizeBytes int64  // File size in bytes (0 when the server omits it)
}

// DisplayTitle returns the asset name without its extension
func (a Asset) DisplayTitle() string {
	name := strings.TrimSuffix(a.Name, AllowedExtension)
	name = strings.TrimSuffix(name, strings.ToUpper(AllowedExtension))
	if name == "" {
		return a.Name
	}
	return name
}

// FormattedSize returns the asset size in a human-readable format
func (a Asset) FormattedSize() string {
	return FormatBytes(a.SizeBytes)
}

// FormatBytes renders a byte count in a human-readable format, empty for
// unknown sizes
func FormatBytes(n int64) string {
	if n <= 0 {
		return ""
	}
	const (
		mb = 1024 * 1024
		kb = 1024
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(mb))
	case n >= kb:
		return fmt.Sprintf("%d KB", n/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// SelectionState tracks which asset is current and whether the server
// has acknowledged the latest selection request.
type SelectionState struct {
	Current    *Asset
	PendingAck bool // true between issuing a select request and its response
}
