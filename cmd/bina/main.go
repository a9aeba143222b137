// main.go - Command line launcher for bina.
//
// bina forwards a repository identifier to a bina endpoint and pipes the
// returned installer script into sh.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/egoist/bina/internal/launcher"
)

var version = "dev"

// exitError carries the exit status of the piped shell.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("installer exited with status %d", e.code)
}

func newRootCommand(run launcher.Runner, copyFn func(string) error) *cobra.Command {
	opts := launcher.Options{}
	var printOnly, copyOnly bool

	cmd := &cobra.Command{
		Use:           "bina <owner/name[@version]>",
		Short:         "Install a binary from a GitHub release",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Repo = args[0]
			opts.Endpoint = launcher.EndpointFromEnv()
			opts.Debug = opts.Debug || launcher.DebugFromEnv()

			u, err := opts.URL()
			if err != nil {
				return err
			}
			line := launcher.Command(u)

			switch {
			case printOnly:
				_, err := fmt.Fprintln(cmd.OutOrStdout(), line)
				return err
			case copyOnly:
				if err := copyFn(line); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Copied install command to clipboard")
				return nil
			}

			if opts.Debug {
				fmt.Fprintf(cmd.ErrOrStderr(), "Running: %s\n", line)
			}
			if err := run(cmd.Context(), line, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
				return &exitError{code: launcher.ExitCode(err)}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Token, "token", "", "GitHub token used to fetch release metadata and assets")
	flags.StringVarP(&opts.InstallDir, "install-dir", "d", "", "directory to install the binary to (default /usr/local/bin)")
	flags.StringVarP(&opts.Name, "name", "n", "", "name of the installed binary (default repository name)")
	flags.StringVar(&opts.File, "file", "", "path of the binary inside the release archive")
	flags.BoolVar(&opts.Debug, "debug", false, "print debug output from the installer")
	flags.BoolVar(&printOnly, "print", false, "print the install command instead of running it")
	flags.BoolVar(&copyOnly, "copy", false, "copy the install command to the clipboard instead of running it")
	cmd.MarkFlagsMutuallyExclusive("print", "copy")

	return cmd
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCommand(launcher.ShellRunner, clipboard.WriteAll)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		fmt.Fprintf(stderr, "bina: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
