// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown
// guidance rendered with glamour for the failures users most often hit:
// missing config modules, TypeScript without a transpiler, and contexts that
// match no exported config.
package issue
