// internal/manifest/resolver.go - Platform mapping strategies.
//
// A release is turned into a platform mapping either from an explicit
// bina.json manifest or by classifying every archive asset by name. The
// orchestrator picks the strategy once with a Mode and never branches on it
// again.
package manifest

import (
	"fmt"

	"github.com/egoist/bina/internal/platform"
)

// Mode selects a resolution strategy.
type Mode int

const (
	// ModeHeuristic infers platforms from asset filenames.
	ModeHeuristic Mode = iota
	// ModeExplicit reads platforms from a bina.json manifest.
	ModeExplicit
)

func (m Mode) String() string {
	switch m {
	case ModeHeuristic:
		return "heuristic"
	case ModeExplicit:
		return "explicit"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DetectMode returns ModeExplicit and the manifest asset when the release
// ships a bina.json, ModeHeuristic otherwise.
func DetectMode(release *Release) (Mode, *Asset) {
	if a, ok := release.FindAsset(FileName); ok {
		return ModeExplicit, &a
	}
	return ModeHeuristic, nil
}

// Resolver turns a release into a platform mapping.
type Resolver interface {
	Resolve(ref Ref, release *Release) (*Mapping, error)
}

// NewResolver returns the strategy for mode. ModeExplicit requires a parsed
// manifest.
func NewResolver(mode Mode, file *File) (Resolver, error) {
	switch mode {
	case ModeHeuristic:
		return Heuristic{}, nil
	case ModeExplicit:
		if file == nil {
			return nil, &ManifestParseError{Message: "manifest required for explicit resolution"}
		}
		return Explicit{Manifest: file}, nil
	default:
		return nil, fmt.Errorf("unknown resolution mode %s", mode)
	}
}

// Heuristic classifies each archive asset by filename. The first asset seen
// for a platform wins.
type Heuristic struct{}

// Resolve implements Resolver.
func (Heuristic) Resolve(ref Ref, release *Release) (*Mapping, error) {
	if len(release.Assets) == 0 {
		return nil, &NoAssetsError{Tag: release.TagName}
	}

	m := NewMapping()
	for _, a := range release.Assets {
		if !platform.IsSupportedArchive(a.Name) {
			continue
		}
		m.Add(Entry{Key: platform.KeyOf(a.Name), Asset: a, File: ref.Name})
	}
	return m, nil
}

// Explicit binds each manifest platform to the release asset with the
// declared name.
type Explicit struct {
	Manifest *File
}

// Resolve implements Resolver.
func (e Explicit) Resolve(ref Ref, release *Release) (*Mapping, error) {
	if len(release.Assets) == 0 {
		return nil, &NoAssetsError{Tag: release.TagName}
	}

	m := NewMapping()
	for _, key := range e.Manifest.Keys() {
		decl := e.Manifest.Platforms[string(key)]
		a, ok := release.FindAsset(decl.Asset)
		if !ok {
			return nil, &ManifestAssetMissingError{Platform: key.String(), Asset: decl.Asset}
		}
		file := decl.File
		if file == "" {
			file = ref.Name
		}
		m.Add(Entry{Key: key, Asset: a, File: file})
	}
	return m, nil
}
