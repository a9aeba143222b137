package platform

import "strings"

// ArchiveSuffixes lists the archive formats accepted during heuristic resolution.
var ArchiveSuffixes = []string{
	".zip",
	".tar",
	".tar.gz",
	".tgz",
	".tar.bz2",
	".tbz2",
	".tar.xz",
	".txz",
}

// IsSupportedArchive reports whether filename ends in one of ArchiveSuffixes,
// ignoring case.
func IsSupportedArchive(filename string) bool {
	lower := strings.ToLower(filename)
	for _, suffix := range ArchiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
