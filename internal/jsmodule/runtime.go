// SPDX-License-Identifier: MPL-2.0

package jsmodule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/process"
	"github.com/dop251/goja_nodejs/require"

	"github.com/ormconf/ormconf/internal/payload"
)

type (
	// Runtime imports module files. It holds no per-import state and may be
	// reused across imports.
	Runtime struct {
		transform   Transform
		resolveExts []string
		logger      *log.Logger
	}

	// Option configures a Runtime.
	Option func(*Runtime)

	// consolePrinter routes console output of executed modules to the logger.
	consolePrinter struct {
		logger *log.Logger
	}
)

// WithLogger sets the logger used for debug events and module console output.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithResolveExtensions adds extensions tried, in order, when a relative
// require names a file that does not exist as written.
func WithResolveExtensions(exts ...string) Option {
	return func(r *Runtime) {
		r.resolveExts = append(r.resolveExts, exts...)
	}
}

// New creates a Runtime that passes every module source through transform.
func New(transform Transform, opts ...Option) *Runtime {
	r := &Runtime{
		transform: transform,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Import executes the module at path and returns its exported value with a
// "default" export unwrapped. Function values in the result stay bound to the
// runtime that executed the module.
func (r *Runtime) Import(ctx context.Context, path string) (payload.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve module path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", abs, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to import %s: is a directory", abs)
	}

	vm := goja.New()
	registry := require.NewRegistry(require.WithLoader(r.sourceLoader(ctx)))
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(consolePrinter{logger: r.logger}))
	req := registry.Enable(vm)
	console.Enable(vm)
	process.Enable(vm)

	r.logger.Debug("importing module", "path", abs)

	stop := context.AfterFunc(ctx, func() { vm.Interrupt(ctx.Err()) })
	exports, err := req.Require(filepath.ToSlash(abs))
	stop()
	if err != nil {
		return nil, runError(ctx, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vm.ClearInterrupt()

	m := &module{vm: vm}
	return m.export(exports, true)
}

// sourceLoader reads and transforms module files for the require registry.
// The returned error for a missing file must be ModuleFileDoesNotExistError so
// the registry goes on to try the next resolution candidate.
func (r *Runtime) sourceLoader(ctx context.Context) require.SourceLoader {
	return func(p string) ([]byte, error) {
		name, ok := r.locate(filepath.FromSlash(p))
		if !ok {
			return nil, require.ModuleFileDoesNotExistError
		}
		src, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if filepath.Ext(name) == ".json" {
			return src, nil
		}
		r.logger.Debug("transforming module source", "path", name)
		return r.transform(ctx, name, src)
	}
}

func (r *Runtime) locate(name string) (string, bool) {
	if isFile(name) {
		return name, true
	}
	for _, ext := range r.resolveExts {
		if isFile(name + ext) {
			return name + ext, true
		}
	}
	return "", false
}

func isFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.Mode().IsRegular()
}

// runError reports an interrupted execution as the context error.
func runError(ctx context.Context, err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (p consolePrinter) Log(s string)   { p.logger.Info(s) }
func (p consolePrinter) Warn(s string)  { p.logger.Warn(s) }
func (p consolePrinter) Error(s string) { p.logger.Error(s) }
