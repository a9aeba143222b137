package manifest

import "fmt"

// NoReleaseError is returned when the provider has no release for the
// requested version.
type NoReleaseError struct {
	Repo    string
	Version string
	Status  string
}

func (e *NoReleaseError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("No release found for %s@%s", e.Repo, e.Version)
	}
	return fmt.Sprintf("No release found for %s@%s (%s)", e.Repo, e.Version, e.Status)
}

// NoAssetsError is returned when a release has no assets at all.
type NoAssetsError struct {
	Tag string
}

func (e *NoAssetsError) Error() string {
	return fmt.Sprintf("No assets in this release (tag: %s)", e.Tag)
}

// ManifestParseError is returned when a manifest is not valid JSON or does
// not have the expected shape.
type ManifestParseError struct {
	Message string
	Err     error
}

func (e *ManifestParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Invalid %s: %s: %v", FileName, e.Message, e.Err)
	}
	return fmt.Sprintf("Invalid %s: %s", FileName, e.Message)
}

func (e *ManifestParseError) Unwrap() error {
	return e.Err
}

// ManifestAssetMissingError is returned when a manifest names an asset the
// release does not contain.
type ManifestAssetMissingError struct {
	Platform string
	Asset    string
}

func (e *ManifestAssetMissingError) Error() string {
	return fmt.Sprintf("No asset found for platform %s: %s does not exist", e.Platform, e.Asset)
}
