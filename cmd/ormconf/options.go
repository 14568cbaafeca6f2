// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ormconf/ormconf/internal/config"
)

func newOptionsCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Print the loader options merged from package.json, the environment and flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, _, err := app.loadOptions(cmd.Context(), flags)
			if err != nil {
				return wrapError(err, "load options", flags.cwd)
			}
			if format == "" {
				printOptions(app, opts)
				return nil
			}
			f, err := ParseFormat(format)
			if err != nil {
				return err
			}
			return encode(app.stdout, f, optionsMap(opts))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, yaml, toml or cue (default: listing)")
	return cmd
}

// optionsMap flattens opts into the keys used in package.json. Unset
// optional values are left out.
func optionsMap(opts *config.Options) map[string]any {
	m := map[string]any{
		"loader":         displayPreference(opts.Loader),
		"configPaths":    toAny(opts.ConfigPaths),
		"alwaysAllowTs":  opts.AlwaysAllowTS,
		"verbose":        opts.Verbose,
		"tsConfigPath":   opts.TSConfigPath,
		"transpilerArgs": opts.TranspilerArgs,
	}
	if opts.PreferTS != nil {
		m["preferTs"] = *opts.PreferTS
	}
	if opts.UseTSNode != nil {
		m["useTsNode"] = *opts.UseTSNode
	}
	if opts.ManifestPath != "" {
		m["manifest"] = opts.ManifestPath
	}
	return m
}

func printOptions(app *App, opts *config.Options) {
	manifest := opts.ManifestPath
	if manifest == "" {
		manifest = "(none)"
	}
	row := func(key, value string) {
		fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render(fmt.Sprintf("%-15s", key+":")), value)
	}

	row("manifest", manifest)
	row("loader", displayPreference(opts.Loader))
	row("configPaths", strings.Join(opts.ConfigPaths, ", "))
	row("alwaysAllowTs", fmt.Sprint(opts.AlwaysAllowTS))
	row("preferTs", optionalBool(opts.PreferTS))
	row("useTsNode", optionalBool(opts.UseTSNode))
	row("tsConfigPath", opts.TSConfigPath)
	row("transpilerArgs", opts.TranspilerArgs)
	row("verbose", fmt.Sprint(opts.Verbose))
}

func optionalBool(b *bool) string {
	if b == nil {
		return "(unset)"
	}
	return fmt.Sprint(*b)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
