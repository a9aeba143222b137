// internal/script/script.go - Installer and error script rendering.
//
// This file renders the POSIX sh programs returned to clients. Templates are
// embedded in the binary and parsed once. Every value substituted into a
// template goes through Quote, so no slot can be read back as shell syntax.
package script

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"text/template"

	"github.com/egoist/bina/internal/manifest"
	"github.com/egoist/bina/internal/platform"
)

// DefaultInstallDir is used when Params.InstallDir is empty.
const DefaultInstallDir = "/usr/local/bin"

const (
	installerTemplate = "installer.sh.tmpl"
	errorTemplate     = "error.sh.tmpl"
)

// Returned by RenderError if its template cannot be executed.
const fallbackErrorScript = "#!/bin/sh\necho 'bina: failed to render error script' 1>&2\nexit 1\n"

//go:embed templates/*.sh.tmpl
var templateFS embed.FS

// Params are the installation parameters baked into an installer script.
type Params struct {
	OriginalVersion string
	ResolvedVersion string
	// APIBase is the public bina endpoint, used in the hint printed when
	// the install directory is not writable.
	APIBase    string
	Repo       manifest.Ref
	BinaryName string
	InstallDir string
	// File, when set, replaces the in-archive binary path of every platform.
	File string
	// AuthToken must be the token supplied by the requester, never a
	// server-side credential.
	AuthToken string
	Debug     bool
}

type platformView struct {
	Key      string
	URL      string
	FileName string
	BinFile  string
}

type installerView struct {
	Params
	Repo      string
	KnownOS   []string
	KnownArch []string
	Platforms []platformView
}

type errorView struct {
	Message string
}

// Renderer parses its templates lazily, once.
type Renderer struct {
	fsys      fs.FS
	patterns  []string
	once      sync.Once
	templates *template.Template
	err       error
}

// NewRenderer returns a Renderer reading templates matching patterns from fsys.
func NewRenderer(fsys fs.FS, patterns ...string) (*Renderer, error) {
	if fsys == nil {
		return nil, fmt.Errorf("nil template filesystem")
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no template patterns")
	}
	return &Renderer{fsys: fsys, patterns: append([]string(nil), patterns...)}, nil
}

var defaultRenderer = &Renderer{fsys: templateFS, patterns: []string{"templates/*.sh.tmpl"}}

func (r *Renderer) parse() error {
	r.once.Do(func() {
		t := template.New("root").Funcs(template.FuncMap{"sh": Quote})
		for _, p := range r.patterns {
			var err error
			t, err = t.ParseFS(r.fsys, p)
			if err != nil {
				r.err = fmt.Errorf("parse pattern %q: %w", p, err)
				return
			}
		}
		r.templates = t
	})
	return r.err
}

func (r *Renderer) execute(name string, data any) (string, error) {
	if err := r.parse(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// Render returns the installer script for p and m.
func (r *Renderer) Render(p Params, m *manifest.Mapping) (string, error) {
	if p.BinaryName == "" {
		p.BinaryName = p.Repo.Name
	}
	if p.InstallDir == "" {
		p.InstallDir = DefaultInstallDir
	}

	view := installerView{
		Params:    p,
		Repo:      p.Repo.Repo(),
		KnownOS:   platform.KnownOS,
		KnownArch: platform.KnownArch,
	}
	if m != nil {
		for _, e := range m.Entries() {
			binFile := e.File
			if p.File != "" {
				binFile = p.File
			}
			view.Platforms = append(view.Platforms, platformView{
				Key:      e.Key.String(),
				URL:      e.Asset.URL,
				FileName: e.Asset.Name,
				BinFile:  binFile,
			})
		}
	}
	return r.execute(installerTemplate, view)
}

// RenderError returns a script that prints message to stderr and exits 1.
func (r *Renderer) RenderError(message string) string {
	out, err := r.execute(errorTemplate, errorView{Message: message})
	if err != nil {
		return fallbackErrorScript
	}
	return out
}

// Render renders an installer script with the embedded templates.
func Render(p Params, m *manifest.Mapping) (string, error) {
	return defaultRenderer.Render(p, m)
}

// RenderError renders an error script with the embedded templates.
func RenderError(message string) string {
	return defaultRenderer.RenderError(message)
}

// Quote returns s as a single-quoted POSIX shell word.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
