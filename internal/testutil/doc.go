// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Helpers cover environment and home directory overrides (MustSetenv,
// SetHomeDir), directory creation (MustMkdirAll), project fixtures (WriteFile,
// WriteManifest) and fake transpiler executables (WriteFakeTranspiler).
package testutil
