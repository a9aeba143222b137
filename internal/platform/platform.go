// internal/platform/platform.go - Asset filename to platform classification.
//
// This file maps a free-form release asset filename to a canonical OS and
// architecture pair. Each classifier walks an ordered rule list and returns
// the first match, so rule order decides the result for names that match
// more than one pattern (for example "x86_64" also contains "x86").
package platform

import (
	"path"
	"regexp"
	"strings"
)

// Unknown is returned when no rule matches.
const Unknown = "unknown"

// Supported OS values for a platform key.
var KnownOS = []string{
	"windows", "linux", "darwin", "dragonfly", "freebsd", "android",
	"nacl", "netbsd", "openbsd", "plan9", "solaris",
}

// Supported architecture values for a platform key.
var KnownArch = []string{
	"amd64", "386", "arm64", "armv5", "armv6", "armv7", "ppc64", "ppc64le",
	"mips", "mipsle", "mips64", "mips64le", "s390x", "amd64p32",
}

// rule pairs a case-insensitive pattern with the value it classifies to.
type rule struct {
	pattern *regexp.Regexp
	value   string
}

func newRule(pattern, value string) rule {
	return rule{pattern: regexp.MustCompile("(?i)" + pattern), value: value}
}

// Evaluated top to bottom; do not reorder.
var osRules = []rule{
	newRule(`windows`, "windows"),
	newRule(`linux`, "linux"),
	newRule(`(mac|darwin|apple)`, "darwin"),
}

// Evaluated top to bottom; do not reorder.
var archRules = []rule{
	newRule(`amd64`, "amd64"),
	newRule(`x64`, "amd64"),
	newRule(`x86_64`, "amd64"),
	newRule(`x86`, "386"),
	newRule(`(arm64|aarch)`, "arm64"),
	newRule(`(386|686)`, "386"),
	newRule(`arm`, "armv7"),
}

func classify(rules []rule, filename string) string {
	name := path.Base(filename)
	for _, r := range rules {
		if r.pattern.MatchString(name) {
			return r.value
		}
	}
	return Unknown
}

// OSOf returns the operating system an asset filename targets, or Unknown.
func OSOf(filename string) string {
	return classify(osRules, filename)
}

// ArchOf returns the CPU architecture an asset filename targets, or Unknown.
func ArchOf(filename string) string {
	return classify(archRules, filename)
}

// Key identifies a platform as "<os>-<arch>".
type Key string

// NewKey joins an OS and architecture into a Key.
func NewKey(os, arch string) Key {
	return Key(os + "-" + arch)
}

// KeyOf classifies filename into a platform Key. It never fails; the result
// may contain Unknown components.
func KeyOf(filename string) Key {
	return NewKey(OSOf(filename), ArchOf(filename))
}

// Split returns the OS and architecture halves of the key. Keys coming from a
// manifest are free-form, so the split happens on the first dash only.
func (k Key) Split() (os, arch string) {
	os, arch, _ = strings.Cut(string(k), "-")
	return os, arch
}

// Known reports whether both halves of the key belong to the supported vocabulary.
func (k Key) Known() bool {
	os, arch := k.Split()
	return contains(KnownOS, os) && contains(KnownArch, arch)
}

func (k Key) String() string {
	return string(k)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
