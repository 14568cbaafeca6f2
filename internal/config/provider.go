// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/ormconf/ormconf/pkg/types"
)

// ErrInvalidLoadOptions is returned when LoadOptions fail validation.
var ErrInvalidLoadOptions = errors.New("invalid load options")

type (
	// LoadOptions are the inputs of an options load.
	LoadOptions struct {
		// Root is the project directory; the nearest package.json at or
		// above it supplies the manifest options.
		Root types.FilesystemPath
		// Logger receives debug output. Nil discards it.
		Logger *log.Logger
	}

	// InvalidLoadOptionsError lists the fields that failed validation.
	InvalidLoadOptionsError struct {
		FieldErrors []error
	}

	// Provider loads loader options for a project.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Options, error)
	}

	manifestProvider struct{}
)

// Error implements the error interface.
func (e *InvalidLoadOptionsError) Error() string {
	return fmt.Sprintf("invalid load options: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidLoadOptions together with the field errors.
func (e *InvalidLoadOptionsError) Unwrap() []error {
	return append([]error{ErrInvalidLoadOptions}, e.FieldErrors...)
}

// Validate checks the load options.
func (o LoadOptions) Validate() error {
	var errs []error
	if err := o.Root.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidLoadOptionsError{FieldErrors: errs}
	}
	return nil
}

// NewProvider returns a Provider reading package.json and the environment.
func NewProvider() Provider {
	return &manifestProvider{}
}

// Load validates opts and merges the option sources.
func (p *manifestProvider) Load(ctx context.Context, opts LoadOptions) (*Options, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return loadWithOptions(ctx, opts)
}
