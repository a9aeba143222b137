// internal/manifest/types.go - Release and platform mapping data model.
//
// This file defines the release assets received from the metadata provider
// and the platform mapping built from them. A mapping only ever references
// assets of the release it was resolved from.
package manifest

import "github.com/egoist/bina/internal/platform"

// Asset is a single downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	URL                string `json:"url"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// Release is the subset of provider release metadata needed for resolution.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// FindAsset returns the asset whose name equals name exactly.
func (r *Release) FindAsset(name string) (Asset, bool) {
	for _, a := range r.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return Asset{}, false
}

// Entry binds a platform to the asset to download and the path of the
// binary inside that asset.
type Entry struct {
	Key   platform.Key
	Asset Asset
	File  string
}

// Mapping is an insertion-ordered set of entries keyed by platform.
type Mapping struct {
	entries []Entry
	index   map[platform.Key]int
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{index: make(map[platform.Key]int)}
}

// Add inserts e unless an entry for e.Key already exists. It reports whether
// the entry was inserted.
func (m *Mapping) Add(e Entry) bool {
	if _, exists := m.index[e.Key]; exists {
		return false
	}
	m.index[e.Key] = len(m.entries)
	m.entries = append(m.entries, e)
	return true
}

// Get returns the entry for key.
func (m *Mapping) Get(key platform.Key) (Entry, bool) {
	i, ok := m.index[key]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

// Entries returns the entries in insertion order.
func (m *Mapping) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	return len(m.entries)
}
