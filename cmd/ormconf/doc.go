// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the ormconf CLI commands.
//
// Every command handler receives an App, the composition root holding the
// options provider and output writers, so tests can run commands against
// in-memory buffers.
package cmd
