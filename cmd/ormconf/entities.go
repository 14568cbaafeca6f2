// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ormconf/ormconf/internal/payload"
	"github.com/ormconf/ormconf/pkg/ormconf"
)

func newEntitiesCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var ignore []string

	cmd := &cobra.Command{
		Use:   "entities [pattern...]",
		Short: "Import the entity modules matching the patterns",
		Long: `Import every module under --cwd matching one of the glob patterns and
print its path with the kind of value it exports. Without patterns,
` + fmt.Sprint(ormconf.DefaultEntityPatterns) + ` is used. node_modules is never searched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pref, err := flags.preference()
			if err != nil {
				return wrapError(err, "discover entities", flags.cwd)
			}
			logger := newLogger(app.stderr, flags.verbose)

			root, err := filepath.Abs(flags.cwd)
			if err != nil {
				return wrapError(err, "discover entities", flags.cwd)
			}

			count := 0
			for mod, err := range ormconf.DiscoverEntities(cmd.Context(), args,
				ormconf.WithCwd(root),
				ormconf.WithIgnore(ignore...),
				ormconf.WithEntityLoader(pref),
				ormconf.WithEntityLogger(logger),
			) {
				if err != nil {
					return wrapError(err, "discover entities", root)
				}
				rel, relErr := filepath.Rel(root, mod.Path)
				if relErr != nil {
					rel = mod.Path
				}
				fmt.Fprintf(app.stdout, "%s %s\n", filepath.ToSlash(rel), SubtitleStyle.Render("("+payload.Kind(mod.Exports)+")"))
				count++
			}
			fmt.Fprintln(app.stderr, SuccessStyle.Render(fmt.Sprintf("%d entity module(s)", count)))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&ignore, "ignore", nil, "glob pattern to exclude (repeatable)")
	return cmd
}
