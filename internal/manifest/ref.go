package manifest

import (
	"fmt"
	"regexp"
)

// LatestVersion is the version used when the identifier has no "@version".
const LatestVersion = "latest"

var refPattern = regexp.MustCompile(`^([^/]+)/([^/@]+)(?:@(.+))?$`)

// Ref identifies a repository and the release version requested for it.
type Ref struct {
	Owner   string
	Name    string
	Version string
}

// ParseRef parses "owner/name[@version]".
func ParseRef(s string) (Ref, error) {
	m := refPattern.FindStringSubmatch(s)
	if m == nil {
		return Ref{}, fmt.Errorf("invalid repository %q, expected owner/name[@version]", s)
	}
	ref := Ref{Owner: m[1], Name: m[2], Version: m[3]}
	if ref.Version == "" {
		ref.Version = LatestVersion
	}
	return ref, nil
}

// Repo returns "owner/name".
func (r Ref) Repo() string {
	return r.Owner + "/" + r.Name
}

func (r Ref) String() string {
	return r.Repo() + "@" + r.Version
}
