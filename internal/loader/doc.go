// SPDX-License-Identifier: MPL-2.0

// Package loader selects and implements the strategies used to import config
// modules.
//
// The native strategy runs plain JavaScript in-process. Transpiler-backed
// strategies (esbuild, swc) pipe every module source through a transpiler
// executable installed in the project, which is what makes TypeScript configs
// importable. When no strategy is named, New tries the transpilers in priority
// order and falls back to native when none is installed.
package loader
