// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultContextName is the context selected when the caller does not ask for one.
const DefaultContextName ContextName = "default"

// ErrInvalidContextName is the sentinel error wrapped by InvalidContextNameError.
var ErrInvalidContextName = errors.New("invalid context name")

type (
	// ContextName selects one configuration out of a module that exposes
	// several of them (a list, or a factory called with the name).
	// The zero value is treated as DefaultContextName by OrDefault.
	ContextName string

	// InvalidContextNameError is returned when a ContextName is whitespace-only
	// or carries surrounding whitespace.
	InvalidContextNameError struct {
		Value ContextName
	}
)

// String returns the string representation of the ContextName.
func (n ContextName) String() string { return string(n) }

// OrDefault returns n, or DefaultContextName when n is empty.
func (n ContextName) OrDefault() ContextName {
	if n == "" {
		return DefaultContextName
	}
	return n
}

// IsDefault reports whether n names the default context.
func (n ContextName) IsDefault() bool { return n.OrDefault() == DefaultContextName }

// Validate returns an error if the name is whitespace-only or padded with
// whitespace. The empty name is valid and means "default".
func (n ContextName) Validate() error {
	if n == "" {
		return nil
	}
	if strings.TrimSpace(string(n)) != string(n) || strings.TrimSpace(string(n)) == "" {
		return &InvalidContextNameError{Value: n}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidContextNameError) Error() string {
	return fmt.Sprintf("invalid context name %q: must not be blank or padded with whitespace", e.Value)
}

// Unwrap returns ErrInvalidContextName for errors.Is() compatibility.
func (e *InvalidContextNameError) Unwrap() error { return ErrInvalidContextName }
