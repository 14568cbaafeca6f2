// SPDX-License-Identifier: MPL-2.0

// Package resolver turns the raw value exported by a config module into one
// concrete configuration for a requested context name.
//
// A module may export a single object, a factory called with the context
// name, or an array mixing both. Resolve checks those shapes in that order and
// returns exactly one object or a typed error that wraps ErrResolve.
package resolver
