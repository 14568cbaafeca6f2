// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ormconf/ormconf/internal/loader"
)

// binaryLoader is implemented by loaders backed by an external transpiler.
type binaryLoader interface {
	Binary() string
	Version() string
}

func newLoaderCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "loader",
		Short: "Show which loader would import the config module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, logger, err := app.loadOptions(cmd.Context(), flags)
			if err != nil {
				return wrapError(err, "load options", flags.cwd)
			}

			ld, err := loader.New(cmd.Context(), flags.cwd, opts.LoaderOptions(logger))
			if err != nil {
				return wrapError(err, "select loader", flags.cwd)
			}

			fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render("loader:"), ld.Name())
			fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render("preference:"), displayPreference(opts.Loader))
			if bl, ok := ld.(binaryLoader); ok {
				fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render("binary:"), bl.Binary())
				fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render("version:"), bl.Version())
			}
			return nil
		},
	}
}

func displayPreference(p loader.Preference) string {
	if p == loader.PreferenceUnset {
		return string(loader.PreferenceAuto)
	}
	return string(p)
}
