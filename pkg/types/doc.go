// SPDX-License-Identifier: MPL-2.0

// Package types defines small value types shared by the loader, resolver and
// CLI packages. Each type carries its own validation and has no dependency on
// domain packages.
//
// This package is a leaf dependency: it imports only the standard library.
package types
