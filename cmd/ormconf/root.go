// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/ormconf/ormconf/internal/loader"
	"github.com/ormconf/ormconf/pkg/ormconf"
	"github.com/ormconf/ormconf/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by all commands.
type rootFlagValues struct {
	cwd         string
	contextName string
	loader      string
	configPaths []string
	stopDir     string
	verbose     bool
}

// preference parses --loader. An empty flag keeps the configured loader.
func (f *rootFlagValues) preference() (loader.Preference, error) {
	if f.loader == "" {
		return loader.PreferenceUnset, nil
	}
	return loader.ParsePreference(f.loader)
}

// loadOptions converts the flags into library options.
func (f *rootFlagValues) loadOptions() ([]ormconf.Option, error) {
	pref, err := f.preference()
	if err != nil {
		return nil, err
	}
	opts := []ormconf.Option{
		ormconf.WithContextName(types.ContextName(f.contextName)),
		ormconf.WithConfigPaths(f.configPaths...),
		ormconf.WithStopDir(f.stopDir),
	}
	if pref != loader.PreferenceUnset {
		opts = append(opts, ormconf.WithLoader(pref))
	}
	return opts, nil
}

// NewRootCommand builds the ormconf command tree.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	root := &cobra.Command{
		Use:   "ormconf",
		Short: "Resolve the ORM config of a JavaScript or TypeScript project",
		Long: TitleStyle.Render("ormconf") + SubtitleStyle.Render(" - resolve the ORM config of a JS/TS project") + `

ormconf finds the nearest mikro-orm.config module, imports it with an
installed transpiler (esbuild or swc) or the built-in JavaScript runtime,
and prints the config selected by a context name.

` + SubtitleStyle.Render("Examples:") + `
  ormconf show                       Print the default config as JSON
  ormconf show --context replica -f yaml
  ormconf show --watch               Print again after every change
  ormconf loader                     Show which loader would be used
  ormconf entities 'src/**/*.entity.ts'`,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.cwd, "cwd", "C", ".", "project directory to resolve from")
	pf.StringVar(&flags.contextName, "context", "", "context name to select (default \"default\")")
	pf.StringVar(&flags.loader, "loader", "", "loader override: auto, native, esbuild, swc or false")
	pf.StringArrayVar(&flags.configPaths, "config", nil, "extra config module path, searched first (repeatable)")
	pf.StringVar(&flags.stopDir, "stop-dir", "", "last directory searched for a config module (default: home directory)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug output")

	root.AddCommand(
		newShowCommand(app, flags),
		newLoaderCommand(app, flags),
		newOptionsCommand(app, flags),
		newEntitiesCommand(app, flags),
		newVersionCommand(app),
	)
	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the resulting status.
func Execute() {
	app := NewApp(Dependencies{})
	root := NewRootCommand(app)

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError(root)),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}
