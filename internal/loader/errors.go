// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrDependencyNotFound is wrapped by errors reporting that the
	// executable backing a strategy is not installed.
	ErrDependencyNotFound = errors.New("loader dependency not found")

	// ErrUnknownExtension is wrapped by errors reporting a TypeScript config
	// that the native strategy cannot import.
	ErrUnknownExtension = errors.New("unknown config file extension")
)

type (
	// DependencyNotFoundError is returned when constructing a
	// transpiler-backed loader whose executable is not installed.
	DependencyNotFoundError struct {
		Name Name
		Err  error
	}

	// UnknownExtensionError is returned when the native loader is asked to
	// import a TypeScript file.
	UnknownExtensionError struct {
		Path string
		Err  error
	}

	// TranspileError is returned when a transpiler exits unsuccessfully.
	TranspileError struct {
		Name   Name
		Path   string
		Stderr string
		Err    error
	}
)

// Error implements the error interface.
func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("%s is not installed: %v", e.Name, e.Err)
}

// Unwrap returns the sentinel and the lookup failure.
func (e *DependencyNotFoundError) Unwrap() []error {
	return []error{ErrDependencyNotFound, e.Err}
}

// Error implements the error interface.
func (e *UnknownExtensionError) Error() string {
	return fmt.Sprintf(
		"cannot import %s with the native loader: %v. "+
			"TypeScript configs need a transpiler: install esbuild or swc in the project "+
			"(npm install -D esbuild, or npm install -D @swc/cli @swc/core), "+
			"or set the loader option to the one you have",
		e.Path, e.Err)
}

// Unwrap returns the sentinel and the runtime error.
func (e *UnknownExtensionError) Unwrap() []error {
	return []error{ErrUnknownExtension, e.Err}
}

// Error implements the error interface.
func (e *TranspileError) Error() string {
	msg := fmt.Sprintf("%s failed to transpile %s: %v", e.Name, e.Path, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\n" + stderr
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *TranspileError) Unwrap() error { return e.Err }

// classify turns a failed executable lookup into a DependencyNotFoundError.
// A binary reachable only through a relative PATH entry (exec.ErrDot) is
// refused by os/exec, so it counts as not installed too. Other errors are
// returned unchanged.
func classify(name Name, err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, exec.ErrDot) {
		return &DependencyNotFoundError{Name: name, Err: err}
	}
	return err
}
