// SPDX-License-Identifier: MPL-2.0

// Package watch reports debounced changes to the modules of a project so a
// resolved config can be shown again after every edit.
//
// Directories under the root are watched recursively with fsnotify. Events
// are filtered through doublestar patterns and coalesced: the callback fires
// once per quiet period with every changed path.
package watch
