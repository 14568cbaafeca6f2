// SPDX-License-Identifier: MPL-2.0

package jsmodule

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// ErrUnknownFileExtension is the runtime signal that a module file has an
// extension the active transform cannot execute.
var ErrUnknownFileExtension = errors.New("unknown file extension")

// NativeExtensions lists the extensions the native transform accepts.
var NativeExtensions = []string{".js", ".mjs", ".cjs"}

type (
	// Transform turns the source of the module at path into CommonJS that the
	// runtime can execute.
	Transform func(ctx context.Context, path string, src []byte) ([]byte, error)

	// UnknownFileExtensionError is returned when a module file cannot be
	// executed because of its extension.
	UnknownFileExtensionError struct {
		Path string
	}

	// TransformError is returned when module source fails to convert.
	TransformError struct {
		Path     string
		Messages []string
	}
)

// Error implements the error interface.
func (e *UnknownFileExtensionError) Error() string {
	return fmt.Sprintf("unknown file extension %q for %s", filepath.Ext(e.Path), e.Path)
}

// Unwrap returns ErrUnknownFileExtension for errors.Is() compatibility.
func (e *UnknownFileExtensionError) Unwrap() error { return ErrUnknownFileExtension }

// Error implements the error interface.
func (e *TransformError) Error() string {
	return fmt.Sprintf("failed to transform %s:\n%s", e.Path, strings.TrimRight(strings.Join(e.Messages, ""), "\n"))
}

// NativeTransform converts ES module syntax in plain JavaScript files to
// CommonJS targeting ES2017. Files with any other extension are rejected with
// an UnknownFileExtensionError.
func NativeTransform(_ context.Context, path string, src []byte) ([]byte, error) {
	if !slices.Contains(NativeExtensions, filepath.Ext(path)) {
		return nil, &UnknownFileExtensionError{Path: path}
	}

	result := api.Transform(string(src), api.TransformOptions{
		Loader:     api.LoaderJS,
		Format:     api.FormatCommonJS,
		Platform:   api.PlatformNode,
		Target:     api.ES2017,
		Sourcefile: path,
	})
	if len(result.Errors) > 0 {
		return nil, &TransformError{
			Path:     path,
			Messages: api.FormatMessages(result.Errors, api.FormatMessagesOptions{Kind: api.ErrorMessage}),
		}
	}
	return result.Code, nil
}
