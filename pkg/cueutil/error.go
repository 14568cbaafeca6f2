// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// ValidationError is a document that failed to compile or validate.
type ValidationError struct {
	// FilePath is the document being validated.
	FilePath string
	// Path is the JSON path of the first invalid value, e.g.
	// "mikro-orm.configPaths[0]". Empty when the failure has no location.
	Path string
	// Message describes every failure, one per line.
	Message string

	err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" && !strings.Contains(e.Message, "\n") {
		return fmt.Sprintf("%s: %s: %s", e.FilePath, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Unwrap returns the underlying CUE error, if any.
func (e *ValidationError) Unwrap() error {
	return e.err
}

// FormatError converts a CUE error into a *ValidationError that names the
// JSON path of each failure. Non-CUE errors are wrapped with the file path.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	verr := &ValidationError{FilePath: filePath, err: err}
	lines := make([]string, 0, len(cueErrors))
	for i, e := range cueErrors {
		pathStr := formatPath(errors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path at the start of the message.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}

		if i == 0 {
			verr.Path = pathStr
		}
		if len(cueErrors) == 1 {
			lines = append(lines, msg)
			continue
		}
		if pathStr != "" {
			msg = pathStr + ": " + msg
		}
		lines = append(lines, msg)
	}

	if len(lines) == 1 {
		verr.Message = lines[0]
	} else {
		verr.Message = "validation failed:\n  " + strings.Join(lines, "\n  ")
	}
	return verr
}

// formatPath renders a CUE error path such as ["a", "0", "b"] as "a[0].b".
func formatPath(path []string) string {
	var result strings.Builder
	for i, part := range path {
		switch {
		case i > 0 && isIndex(part):
			result.WriteString("[" + part + "]")
		case i > 0:
			result.WriteString("." + part)
		default:
			result.WriteString(part)
		}
	}
	return result.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize reports an error when data is larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
