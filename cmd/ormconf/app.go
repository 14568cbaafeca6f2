// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ormconf/ormconf/internal/config"
	"github.com/ormconf/ormconf/pkg/types"
)

type (
	// App wires the services shared by all commands.
	App struct {
		Options config.Provider
		stdout  io.Writer
		stderr  io.Writer
	}

	// Dependencies are the injection points of NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Options config.Provider
		Stdout  io.Writer
		Stderr  io.Writer
	}
)

// NewApp builds an App from deps.
func NewApp(deps Dependencies) *App {
	if deps.Options == nil {
		deps.Options = config.NewProvider()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{
		Options: deps.Options,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
	}
}

// loadOptions loads the project options and applies the loader and
// verbosity flags on top of them.
func (a *App) loadOptions(ctx context.Context, flags *rootFlagValues) (*config.Options, *log.Logger, error) {
	opts, err := a.Options.Load(ctx, config.LoadOptions{
		Root:   types.FilesystemPath(flags.cwd),
		Logger: newLogger(a.stderr, flags.verbose),
	})
	if err != nil {
		return nil, newLogger(a.stderr, flags.verbose), err
	}

	pref, err := flags.preference()
	if err != nil {
		return nil, newLogger(a.stderr, flags.verbose), err
	}
	if pref != "" {
		opts.Loader = pref
	}
	opts.ConfigPaths = append(append([]string{}, flags.configPaths...), opts.ConfigPaths...)
	if flags.verbose {
		opts.Verbose = true
	}
	return opts, newLogger(a.stderr, opts.Verbose), nil
}

// newLogger returns the CLI logger. Debug output is enabled by --verbose or
// the verbose option.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "ormconf",
		Level:  level,
	})
}
