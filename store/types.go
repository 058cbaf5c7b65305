package store

import (
	"os"
	"strings"
)

// Entry represents one filesystem object as surfaced in a listing.
// Entries are built fresh on every directory read and never mutated
// in place; Path is the identity, unique within a single snapshot.
type Entry struct {
	Name    string      `json:"name"`
	Path    string      `json:"path"`
	IsDir   bool        `json:"isDir"`
	Size    int64       `json:"size"`
	Mode    os.FileMode `json:"mode"`
	ModTime int64       `json:"modTime"`
}

// Listing is the entry set of exactly one directory plus the active
// search filter. Entries holds the unfiltered set so the filter can be
// cleared without a re-read.
type Listing struct {
	Dir     string   `json:"dir"`
	Filter  string   `json:"filter,omitempty"`
	Entries []*Entry `json:"entries"`
}

// Visible returns the entries whose name contains the filter,
// case-insensitive. An empty filter returns every entry.
func (l *Listing) Visible() []*Entry {
	if l.Filter == "" {
		return l.Entries
	}

	needle := strings.ToLower(l.Filter)
	visible := make([]*Entry, 0, len(l.Entries))
	for _, e := range l.Entries {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			visible = append(visible, e)
		}
	}
	return visible
}
