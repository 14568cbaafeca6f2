// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"errors"

	"github.com/ormconf/ormconf/internal/discovery"
	"github.com/ormconf/ormconf/internal/jsmodule"
	"github.com/ormconf/ormconf/internal/payload"
)

// Native imports plain JavaScript modules in-process.
type Native struct {
	runtime *jsmodule.Runtime
}

func newNative(opts Options) *Native {
	return &Native{
		runtime: jsmodule.New(jsmodule.NativeTransform, jsmodule.WithLogger(opts.logger())),
	}
}

// Name returns NameNative.
func (n *Native) Name() Name { return NameNative }

// Import executes the module at specifier. A TypeScript specifier fails with
// an UnknownExtensionError; other failures are returned unchanged.
func (n *Native) Import(ctx context.Context, specifier string) (payload.Payload, error) {
	p, err := n.runtime.Import(ctx, specifier)
	if err != nil {
		if errors.Is(err, jsmodule.ErrUnknownFileExtension) && discovery.IsTS(specifier) {
			return nil, &UnknownExtensionError{Path: specifier, Err: err}
		}
		return nil, err
	}
	return p, nil
}
