// Package launcher builds and runs the pipe-to-shell command that installs a
// release through a bina endpoint.
package launcher

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/egoist/bina/internal/manifest"
	"github.com/egoist/bina/internal/script"
)

const (
	// DefaultEndpoint is the public bina service.
	DefaultEndpoint = "https://bina.egoist.sh"
	// DevEndpoint is used when BINA_DEV is set.
	DevEndpoint = "http://localhost:3000"
)

// EndpointFromEnv returns DevEndpoint when BINA_DEV is set, else
// BINA_ENDPOINT, else DefaultEndpoint.
func EndpointFromEnv() string {
	if os.Getenv("BINA_DEV") != "" {
		return DevEndpoint
	}
	if ep := strings.TrimSpace(os.Getenv("BINA_ENDPOINT")); ep != "" {
		return ep
	}
	return DefaultEndpoint
}

// DebugFromEnv reports whether BINA_DEBUG is set.
func DebugFromEnv() bool {
	return os.Getenv("BINA_DEBUG") != ""
}

// Options describe one installation request.
type Options struct {
	Endpoint   string
	Repo       string
	Token      string
	InstallDir string
	Name       string
	File       string
	Debug      bool
}

// URL returns the endpoint URL that serves the installer script.
func (o Options) URL() (string, error) {
	if _, err := manifest.ParseRef(o.Repo); err != nil {
		return "", err
	}
	endpoint := o.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	q := url.Values{}
	setIfNotEmpty(q, "token", o.Token)
	setIfNotEmpty(q, "dir", o.InstallDir)
	setIfNotEmpty(q, "name", o.Name)
	setIfNotEmpty(q, "file", o.File)
	if o.Debug {
		q.Set("debug", "1")
	}

	u := strings.TrimRight(endpoint, "/") + "/" + o.Repo
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u, nil
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// Command returns the shell pipeline that downloads and runs the script at u.
func Command(u string) string {
	return fmt.Sprintf("curl -fsSL %s | sh", script.Quote(u))
}

// Runner executes a shell command line.
type Runner func(ctx context.Context, command string, stdin io.Reader, stdout, stderr io.Writer) error

// ShellRunner runs command with sh -c.
func ShellRunner(ctx context.Context, command string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// ExitCode maps a Runner error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode()
	}
	return 1
}
