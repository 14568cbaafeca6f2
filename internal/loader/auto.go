// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"errors"
)

// detect constructs each candidate in order and returns the first that is
// installed. A missing dependency moves on to the next candidate; any other
// construction error is returned as-is. With no candidate installed the
// native loader is used.
func detect(ctx context.Context, root string, opts Options, candidates []candidate) (Loader, error) {
	logger := opts.logger()

	for _, c := range candidates {
		ld, err := c.construct(ctx, root, opts)
		if err == nil {
			logger.Debug("detected loader", "loader", c.name)
			return ld, nil
		}
		if !errors.Is(err, ErrDependencyNotFound) {
			return nil, err
		}
		logger.Debug("loader not installed, trying next", "loader", c.name, "error", err)
	}

	logger.Debug("no transpiler installed, using native loader")
	return newNative(opts), nil
}
