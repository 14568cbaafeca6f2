// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"

	"github.com/ormconf/ormconf/pkg/types"
)

// ErrResolve is wrapped by every error that reports a config module whose
// exported shape does not provide the requested context.
var ErrResolve = errors.New("unable to resolve config")

type (
	// MismatchError is returned when a factory result is not an object, or is
	// an object naming a different context.
	MismatchError struct {
		ContextName types.ContextName
		Path        string
	}

	// NotInListError is returned when no element of an exported array
	// provides the requested context.
	NotInListError struct {
		ContextName types.ContextName
		Path        string
	}

	// ShapeError is returned when the export is neither a matching object, a
	// function nor an array.
	ShapeError struct {
		ContextName types.ContextName
		Path        string
	}
)

// Error implements the error interface.
func (e *MismatchError) Error() string {
	return fmt.Sprintf(
		"config '%s' was not what the function exported from '%s' provided. "+
			"Ensure it returns a config object with no contextName, or with contextName matching the requested one",
		e.ContextName, e.Path)
}

// Unwrap returns ErrResolve for errors.Is() compatibility.
func (e *MismatchError) Unwrap() error { return ErrResolve }

// Error implements the error interface.
func (e *NotInListError) Error() string {
	return fmt.Sprintf(
		"unable to find config '%s' within the array exported from '%s'. "+
			"Either add a config with this contextName to the array, or add a function that, "+
			"given this name, returns a config object with contextName set to it",
		e.ContextName, e.Path)
}

// Unwrap returns ErrResolve for errors.Is() compatibility.
func (e *NotInListError) Unwrap() error { return ErrResolve }

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf(
		"unable to resolve '%s' config from '%s'. The module should default export a function "+
			"returning a config object with a matching contextName, an array of objects/functions, "+
			"or a single config object",
		e.ContextName, e.Path)
}

// Unwrap returns ErrResolve for errors.Is() compatibility.
func (e *ShapeError) Unwrap() error { return ErrResolve }
