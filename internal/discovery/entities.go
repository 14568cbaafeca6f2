// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/ormconf/ormconf/internal/payload"
)

var (
	// DefaultEntityPatterns is used when no entity pattern is given.
	DefaultEntityPatterns = []string{"**/*.{ts,mts,js,mjs}"}

	// defaultEntityIgnores are always excluded from entity discovery.
	defaultEntityIgnores = []string{"**/node_modules/**"}
)

type (
	// EntityOptions configure entity discovery.
	EntityOptions struct {
		// Cwd is the directory patterns are relative to.
		Cwd string
		// Patterns are doublestar glob patterns selecting entity modules.
		// Empty means DefaultEntityPatterns.
		Patterns []string
		// Ignore are doublestar glob patterns excluded from the result.
		Ignore []string
		Logger *log.Logger
	}

	// EntityModule is an imported entity file.
	EntityModule struct {
		// Path is the absolute path of the module.
		Path string
		// Exports is the module's exported value.
		Exports payload.Payload
	}
)

// Entities matches entity modules and imports them one at a time, in sorted
// path order, as the sequence is consumed. Iteration stops at the first error.
func Entities(ctx context.Context, imp Importer, opts EntityOptions) iter.Seq2[EntityModule, error] {
	return func(yield func(EntityModule, error) bool) {
		logger := opts.Logger
		if logger == nil {
			logger = log.New(io.Discard)
		}

		paths, err := MatchEntities(opts.Cwd, opts.Patterns, opts.Ignore)
		if err != nil {
			yield(EntityModule{}, err)
			return
		}
		logger.Debug("matched entity modules", "count", len(paths))

		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				yield(EntityModule{Path: path}, err)
				return
			}
			exports, err := imp.Import(ctx, path)
			if err != nil {
				yield(EntityModule{Path: path}, fmt.Errorf("failed to import entity module %s: %w", path, err))
				return
			}
			if !yield(EntityModule{Path: path, Exports: exports}, nil) {
				return
			}
		}
	}
}

// MatchEntities returns the sorted absolute paths of regular files under cwd
// matching any of patterns and none of ignore.
func MatchEntities(cwd string, patterns, ignore []string) ([]string, error) {
	root, err := filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entity directory: %w", err)
	}
	if len(patterns) == 0 {
		patterns = DefaultEntityPatterns
	}

	ignores := make([]string, 0, len(defaultEntityIgnores)+len(ignore))
	ignores = append(ignores, defaultEntityIgnores...)
	for _, pattern := range ignore {
		normalized, err := normalizePattern(root, pattern)
		if err != nil {
			return nil, err
		}
		ignores = append(ignores, normalized)
	}

	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var out []string

	for _, pattern := range patterns {
		normalized, err := normalizePattern(root, pattern)
		if err != nil {
			return nil, err
		}
		matches, err := doublestar.Glob(fsys, normalized, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if seen[match] || isIgnored(match, ignores) {
				continue
			}
			seen[match] = true
			out = append(out, filepath.Join(root, filepath.FromSlash(match)))
		}
	}

	slices.Sort(out)
	return out, nil
}

// normalizePattern converts pattern to a slash-separated pattern relative to
// root, as io/fs requires.
func normalizePattern(root, pattern string) (string, error) {
	if filepath.IsAbs(pattern) {
		rel, err := filepath.Rel(root, pattern)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("pattern %q is outside %s", pattern, root)
		}
		pattern = rel
	}
	pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
	if !doublestar.ValidatePattern(pattern) {
		return "", fmt.Errorf("invalid glob pattern %q", pattern)
	}
	return pattern, nil
}

func isIgnored(path string, ignores []string) bool {
	for _, pattern := range ignores {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
