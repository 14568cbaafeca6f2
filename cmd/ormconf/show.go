// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ormconf/ormconf/internal/discovery"
	"github.com/ormconf/ormconf/internal/watch"
	"github.com/ormconf/ormconf/pkg/ormconf"
)

type showFlags struct {
	format string
	watch  bool
}

func newShowCommand(app *App, flags *rootFlagValues) *cobra.Command {
	sf := &showFlags{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved config",
		Long: `Resolve the config module of the project and print the config selected
by --context. The config goes to stdout, the module path and loader to stderr.

With --watch the config is printed again whenever a JavaScript, TypeScript
or package.json file under --cwd changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(sf.format)
			if err != nil {
				return err
			}
			if !sf.watch {
				return app.show(cmd.Context(), flags, format)
			}
			return app.watchShow(cmd.Context(), flags, format)
		},
	}

	cmd.Flags().StringVarP(&sf.format, "format", "f", string(FormatJSON), "output format: json, yaml, toml or cue")
	cmd.Flags().BoolVarP(&sf.watch, "watch", "w", false, "print again when project files change")
	return cmd
}

// show resolves and prints the config once.
func (a *App) show(ctx context.Context, flags *rootFlagValues, format Format) error {
	opts, err := flags.loadOptions()
	if err != nil {
		return wrapError(err, "resolve config", flags.cwd)
	}
	opts = append(opts, ormconf.WithLogger(newLogger(a.stderr, flags.verbose)))

	res, err := ormconf.Load(ctx, flags.cwd, opts...)
	if err != nil {
		return wrapError(err, "resolve config", flags.cwd)
	}

	fmt.Fprintf(a.stderr, "%s %s %s\n",
		SuccessStyle.Render("✓"),
		KeyStyle.Render(res.Filepath),
		SubtitleStyle.Render("("+res.LoaderName.String()+")"))
	return encode(a.stdout, format, res.Config)
}

// watchShow prints the config, then again after every relevant change until
// ctx is cancelled. Failures while watching are reported without stopping.
func (a *App) watchShow(ctx context.Context, flags *rootFlagValues, format Format) error {
	if err := a.show(ctx, flags, format); err != nil {
		a.printWatchError(err, flags.verbose)
	}

	w, err := watch.New(watch.Config{
		Root:     flags.cwd,
		Patterns: watch.PatternsFor(append(append([]string{}, discovery.AllExtnames...), ".json")...),
		Logger:   newLogger(a.stderr, flags.verbose),
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintln(a.stderr, SubtitleStyle.Render(fmt.Sprintf("changed: %v", changed)))
			if err := a.show(ctx, flags, format); err != nil {
				a.printWatchError(err, flags.verbose)
			}
			return nil
		},
	})
	if err != nil {
		return wrapError(err, "watch project", flags.cwd)
	}

	fmt.Fprintln(a.stderr, SubtitleStyle.Render("watching "+w.Root()+" (Ctrl+C to stop)"))
	if err := w.Run(ctx); err != nil {
		return wrapError(err, "watch project", w.Root())
	}
	return nil
}

func (a *App) printWatchError(err error, verbose bool) {
	fmt.Fprintln(a.stderr, WarningStyle.Render("! ")+formatErrorForDisplay(err, verbose))
}
