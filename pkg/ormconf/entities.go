// SPDX-License-Identifier: MPL-2.0

package ormconf

import (
	"context"
	"io"
	"iter"

	"github.com/charmbracelet/log"

	"github.com/ormconf/ormconf/internal/config"
	"github.com/ormconf/ormconf/internal/discovery"
)

type (
	// EntityModule is an imported entity file.
	EntityModule = discovery.EntityModule

	// EntityOption configures DiscoverEntities.
	EntityOption func(*entityOptions)

	entityOptions struct {
		cwd        string
		ignore     []string
		preference LoaderPreference
		logger     *log.Logger
		provider   config.Provider
	}
)

// DefaultEntityPatterns are matched when DiscoverEntities gets no pattern.
var DefaultEntityPatterns = discovery.DefaultEntityPatterns

// WithCwd sets the directory patterns are relative to and whose options
// select the loader. It defaults to the working directory.
func WithCwd(dir string) EntityOption {
	return func(o *entityOptions) { o.cwd = dir }
}

// WithIgnore excludes modules matching any of patterns.
func WithIgnore(patterns ...string) EntityOption {
	return func(o *entityOptions) { o.ignore = append(o.ignore, patterns...) }
}

// WithEntityLoader overrides the loader option used to import entities.
func WithEntityLoader(pref LoaderPreference) EntityOption {
	return func(o *entityOptions) { o.preference = pref }
}

// WithEntityLogger sets the logger receiving debug output.
func WithEntityLogger(logger *log.Logger) EntityOption {
	return func(o *entityOptions) { o.logger = logger }
}

// DiscoverEntities imports every module under the working directory that
// matches one of the doublestar patterns, in sorted path order, as the
// sequence is consumed. Modules under node_modules are never matched. The
// sequence ends after the first error.
func DiscoverEntities(ctx context.Context, patterns []string, opts ...EntityOption) iter.Seq2[EntityModule, error] {
	o := &entityOptions{cwd: ".", provider: config.NewProvider()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	return func(yield func(EntityModule, error) bool) {
		ld, _, err := newLoader(ctx, o.cwd, o.provider, o.preference, o.logger)
		if err != nil {
			yield(EntityModule{}, err)
			return
		}

		for mod, err := range discovery.Entities(ctx, ld, discovery.EntityOptions{
			Cwd:      o.cwd,
			Patterns: patterns,
			Ignore:   o.ignore,
			Logger:   o.logger,
		}) {
			if !yield(mod, err) || err != nil {
				return
			}
		}
	}
}
