// SPDX-License-Identifier: MPL-2.0

package ormconf

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/ormconf/ormconf/internal/config"
	"github.com/ormconf/ormconf/internal/discovery"
	"github.com/ormconf/ormconf/internal/loader"
	"github.com/ormconf/ormconf/internal/payload"
	"github.com/ormconf/ormconf/internal/resolver"
	"github.com/ormconf/ormconf/pkg/types"
)

type (
	// Config is a resolved configuration object.
	Config = payload.Object

	// LoaderName identifies the loader strategy that imported a module.
	LoaderName = loader.Name

	// LoaderPreference is a requested loader strategy.
	LoaderPreference = loader.Preference

	// Result is a resolved configuration and where it came from.
	Result struct {
		// Filepath is the absolute path of the config module.
		Filepath string `json:"filepath"`
		// LoaderName is the strategy that imported the module.
		LoaderName LoaderName `json:"loader"`
		// Config is the object selected for the requested context.
		Config Config `json:"config"`
	}

	// Option configures Load.
	Option func(*loadOptions)

	loadOptions struct {
		contextName types.ContextName
		configPaths []string
		preference  LoaderPreference
		stopDir     string
		logger      *log.Logger
		provider    config.Provider
	}
)

// Loader preferences accepted by WithLoader.
const (
	LoaderAuto    = loader.PreferenceAuto
	LoaderNative  = loader.PreferenceNative
	LoaderEsbuild = loader.PreferenceEsbuild
	LoaderSwc     = loader.PreferenceSwc
)

// WithContextName selects the config for name instead of "default".
func WithContextName(name types.ContextName) Option {
	return func(o *loadOptions) { o.contextName = name }
}

// WithConfigPaths adds config candidates searched before the configPaths
// option and the built-in names. Relative paths are tried in every directory
// visited.
func WithConfigPaths(paths ...string) Option {
	return func(o *loadOptions) { o.configPaths = append(o.configPaths, paths...) }
}

// WithLoader overrides the loader option of the project.
func WithLoader(pref LoaderPreference) Option {
	return func(o *loadOptions) { o.preference = pref }
}

// WithStopDir sets the last directory searched for a config module.
func WithStopDir(dir string) Option {
	return func(o *loadOptions) { o.stopDir = dir }
}

// WithLogger sets the logger receiving debug output.
func WithLogger(logger *log.Logger) Option {
	return func(o *loadOptions) { o.logger = logger }
}

func newLoadOptions(opts []Option) *loadOptions {
	o := &loadOptions{provider: config.NewProvider()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	return o
}

// Load resolves the configuration of the project at root. Relative roots are
// resolved against the working directory.
//
// Errors wrap discovery.ErrConfigNotFound when no module exists,
// loader.ErrUnknownExtension for TypeScript without a transpiler,
// loader.ErrDependencyNotFound for a named but missing transpiler, and
// resolver.ErrResolve when the export has no config for the context.
func Load(ctx context.Context, root string, opts ...Option) (*Result, error) {
	o := newLoadOptions(opts)
	name := o.contextName.OrDefault()
	if err := name.Validate(); err != nil {
		return nil, err
	}

	ld, cfg, err := newLoader(ctx, root, o.provider, o.preference, o.logger)
	if err != nil {
		return nil, err
	}

	found, err := discovery.Search(ctx, ld, discovery.SearchOptions{
		From:    root,
		Names:   append(append([]string{}, o.configPaths...), cfg.ConfigPaths...),
		StopDir: o.stopDir,
		Logger:  o.logger,
	})
	if err != nil {
		return nil, err
	}

	obj, err := resolver.Resolve(ctx, found.Payload, found.Path, name)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("resolved config", "path", found.Path, "context", name, "loader", ld.Name())

	return &Result{
		Filepath:   found.Path,
		LoaderName: ld.Name(),
		Config:     obj,
	}, nil
}

// newLoader loads the options of the project at root and selects a loader.
func newLoader(ctx context.Context, root string, provider config.Provider, pref LoaderPreference, logger *log.Logger) (loader.Loader, *config.Options, error) {
	cfg, err := provider.Load(ctx, config.LoadOptions{Root: types.FilesystemPath(root), Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	if pref != loader.PreferenceUnset {
		if err := pref.Validate(); err != nil {
			return nil, nil, err
		}
		cfg.Loader = pref
	}

	ld, err := loader.New(ctx, root, cfg.LoaderOptions(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to select loader: %w", err)
	}
	logger.Debug("selected loader", "name", ld.Name(), "preference", cfg.Loader)
	return ld, cfg, nil
}
