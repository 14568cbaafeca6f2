// SPDX-License-Identifier: MPL-2.0

// Package config loads the loader options of a project using Viper, with the
// "mikro-orm" field of the nearest package.json as the file source.
//
// Options are layered: built-in defaults, then the manifest field (validated
// against the CUE schema in options_schema.cue), then MIKRO_ORM_CLI_*
// environment variables. Command-line flags are applied on top by callers.
package config
