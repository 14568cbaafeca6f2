// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ormconf/ormconf/internal/payload"
)

// ErrConfigNotFound is the sentinel error wrapped by NotFoundError.
var ErrConfigNotFound = errors.New("config not found")

type (
	// Importer imports a module file and returns its exported value.
	Importer interface {
		Import(ctx context.Context, specifier string) (payload.Payload, error)
	}

	// SearchOptions configure Search.
	SearchOptions struct {
		// From is the directory the search starts in. Relative paths are
		// resolved against the working directory.
		From string
		// Names are extra candidate paths checked before the built-in ones.
		// Relative names are joined to every directory visited.
		Names []string
		// StopDir is the last directory visited. It defaults to the user's
		// home directory, or the filesystem root when From is outside it.
		StopDir string
		Logger  *log.Logger
	}

	// Found is the first config module located by Search.
	Found struct {
		// Path is the absolute path of the imported file.
		Path string
		// Payload is the module's exported value.
		Payload payload.Payload
	}

	// NotFoundError is returned when no candidate exists in any visited
	// directory.
	NotFoundError struct {
		Root     string
		StopDir  string
		Searched []string
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unable to find a config file searching from %s", e.Root)
}

// Unwrap returns ErrConfigNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrConfigNotFound }

// Candidates returns the file names probed in every directory, highest
// priority first: extra names, then mikro-orm.config with every extension,
// then build-layout fallbacks (src/ for TypeScript, dist/ and build/ for
// compiled JavaScript).
func Candidates(extra []string) []string {
	out := make([]string, 0, len(extra)+len(AllExtnames)+len(TSExtnames)+2*len(JSExtnames))
	out = append(out, extra...)
	out = append(out, ConfigNames(ConfigBaseName, AllExtnames)...)
	out = append(out, ConfigNames(filepath.Join("src", ConfigBaseName), TSExtnames)...)
	out = append(out, ConfigNames(filepath.Join("dist", ConfigBaseName), JSExtnames)...)
	out = append(out, ConfigNames(filepath.Join("build", ConfigBaseName), JSExtnames)...)
	return out
}

// Search walks from opts.From up to opts.StopDir probing every candidate in
// each directory. The first existing non-empty regular file is imported with
// imp and returned; its import error, if any, is returned instead.
func Search(ctx context.Context, imp Importer, opts SearchOptions) (*Found, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	from, err := filepath.Abs(opts.From)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve search root: %w", err)
	}
	stop := stopDir(from, opts.StopDir)

	candidates := Candidates(opts.Names)
	var searched []string

	for dir := from; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		searched = append(searched, dir)

		for _, name := range candidates {
			path := name
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, name)
			}
			if !isConfigFile(path) {
				continue
			}

			logger.Debug("found config file", "path", path)
			p, err := imp.Import(ctx, path)
			if err != nil {
				return nil, err
			}
			return &Found{Path: path, Payload: p}, nil
		}

		parent := filepath.Dir(dir)
		if dir == stop || parent == dir {
			break
		}
		dir = parent
	}

	return nil, &NotFoundError{Root: from, StopDir: stop, Searched: searched}
}

// stopDir returns the explicit stop directory when set. Otherwise it returns
// the user's home directory when from lies inside it, or "" to walk up to the
// filesystem root.
func stopDir(from, explicit string) string {
	if explicit != "" {
		if abs, err := filepath.Abs(explicit); err == nil {
			return abs
		}
		return explicit
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(home, from)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return home
}

// isConfigFile reports whether path is a regular file with content other
// than whitespace. A leading byte order mark counts as whitespace.
func isConfigFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))
	return len(bytes.TrimSpace(data)) > 0
}
