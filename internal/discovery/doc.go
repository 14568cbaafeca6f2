// SPDX-License-Identifier: MPL-2.0

// Package discovery locates config and entity modules on disk and imports them
// through a caller-supplied Importer.
//
// File organization:
//   - variants.go: extension and file name variants for config candidates
//   - search.go: upward config search (Search, Candidates, NotFoundError)
//   - entities.go: glob-based entity module discovery
package discovery
