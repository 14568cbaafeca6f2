// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/ormconf/ormconf/internal/payload"
)

const (
	// NameNative identifies the in-process JavaScript strategy.
	NameNative Name = "native"
	// NameEsbuild identifies the esbuild-backed strategy.
	NameEsbuild Name = "esbuild"
	// NameSwc identifies the swc-backed strategy.
	NameSwc Name = "swc"

	// PreferenceUnset means no loader was configured; it behaves like auto.
	PreferenceUnset Preference = ""
	// PreferenceAuto selects the first installed transpiler, else native.
	PreferenceAuto Preference = "auto"
	// PreferenceNative selects the native strategy.
	PreferenceNative Preference = "native"
	// PreferenceFalse is the manifest spelling of `"loader": false` and
	// selects the native strategy.
	PreferenceFalse Preference = "false"
	// PreferenceEsbuild selects esbuild with no fallback.
	PreferenceEsbuild Preference = "esbuild"
	// PreferenceSwc selects swc with no fallback.
	PreferenceSwc Preference = "swc"
)

// ErrInvalidPreference is the sentinel error wrapped by InvalidPreferenceError.
var ErrInvalidPreference = errors.New("invalid loader preference")

type (
	// Name identifies a loader strategy.
	Name string

	// Loader imports a module file and returns its exported value with a
	// "default" export unwrapped. A Loader is immutable once constructed.
	Loader interface {
		Name() Name
		Import(ctx context.Context, specifier string) (payload.Payload, error)
	}

	// Preference is the user's requested loader strategy.
	Preference string

	// InvalidPreferenceError is returned when a configured loader value is
	// not one of the supported preferences.
	InvalidPreferenceError struct {
		Value any
	}

	// Options configure loader selection.
	Options struct {
		Preference Preference
		// AlwaysAllowTS, PreferTS == false and UseTSNode == false are legacy
		// overrides that force the native strategy regardless of Preference.
		AlwaysAllowTS bool
		PreferTS      *bool
		UseTSNode     *bool
		// TSConfigPath is passed to esbuild as --tsconfig when set.
		TSConfigPath string
		// TranspilerArgs holds extra shell-quoted transpiler arguments.
		TranspilerArgs string
		Logger         *log.Logger
	}

	constructor func(ctx context.Context, root string, opts Options) (Loader, error)

	candidate struct {
		name      Name
		construct constructor
	}
)

// defaultCandidates is the auto-detection priority list.
var defaultCandidates = []candidate{
	{name: NameEsbuild, construct: newEsbuild},
	{name: NameSwc, construct: newSwc},
}

// String returns the string representation of the Name.
func (n Name) String() string { return string(n) }

// String returns the string representation of the Preference.
func (p Preference) String() string { return string(p) }

// Validate returns an error if the preference is not a supported value.
func (p Preference) Validate() error {
	switch p {
	case PreferenceUnset, PreferenceAuto, PreferenceNative, PreferenceFalse, PreferenceEsbuild, PreferenceSwc:
		return nil
	default:
		return &InvalidPreferenceError{Value: string(p)}
	}
}

// Error implements the error interface.
func (e *InvalidPreferenceError) Error() string {
	return fmt.Sprintf("invalid loader preference %v (valid: auto, native, esbuild, swc, false)", e.Value)
}

// Unwrap returns ErrInvalidPreference for errors.Is() compatibility.
func (e *InvalidPreferenceError) Unwrap() error { return ErrInvalidPreference }

// ParsePreference converts a decoded manifest or environment value into a
// Preference. nil is unset and the boolean false is PreferenceFalse.
func ParsePreference(v any) (Preference, error) {
	switch val := v.(type) {
	case nil:
		return PreferenceUnset, nil
	case bool:
		if !val {
			return PreferenceFalse, nil
		}
	case string:
		p := Preference(val)
		if err := p.Validate(); err != nil {
			return PreferenceUnset, err
		}
		return p, nil
	case Preference:
		if err := val.Validate(); err != nil {
			return PreferenceUnset, err
		}
		return val, nil
	}
	return PreferenceUnset, &InvalidPreferenceError{Value: v}
}

// New selects the loader for the project rooted at root. Relative roots are
// resolved against the working directory.
func New(ctx context.Context, root string, opts Options) (Loader, error) {
	return selectLoader(ctx, root, opts, defaultCandidates)
}

func selectLoader(ctx context.Context, root string, opts Options, candidates []candidate) (Loader, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve loader root: %w", err)
	}
	logger := opts.logger()

	if opts.forcesNative() {
		logger.Debug("legacy TypeScript override set, using native loader")
		return newNative(opts), nil
	}

	switch opts.Preference {
	case PreferenceEsbuild:
		return newEsbuild(ctx, root, opts)
	case PreferenceSwc:
		return newSwc(ctx, root, opts)
	case PreferenceFalse, PreferenceNative:
		return newNative(opts), nil
	default:
		return detect(ctx, root, opts, candidates)
	}
}

func (o Options) forcesNative() bool {
	return o.AlwaysAllowTS ||
		(o.PreferTS != nil && !*o.PreferTS) ||
		(o.UseTSNode != nil && !*o.UseTSNode)
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}
