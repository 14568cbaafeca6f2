// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/ormconf/ormconf/internal/discovery"
	"github.com/ormconf/ormconf/internal/jsmodule"
	"github.com/ormconf/ormconf/internal/payload"
)

// tsResolveExtensions are tried for extensionless relative requires so that
// TypeScript modules can import each other the way tsc resolves them.
var tsResolveExtensions = []string{".ts", ".tsx", ".mts", ".cts"}

type (
	// Transpiler imports modules after converting each source file to
	// CommonJS with an external transpiler executable.
	Transpiler struct {
		name    Name
		bin     string
		version string
		extra   []string
		runtime *jsmodule.Runtime
	}

	// argsFunc builds the transpiler arguments for one source file.
	argsFunc func(file string, opts Options) []string
)

func newEsbuild(ctx context.Context, root string, opts Options) (Loader, error) {
	t, err := newTranspiler(ctx, root, NameEsbuild, esbuildArgs, opts)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func newSwc(ctx context.Context, root string, opts Options) (Loader, error) {
	t, err := newTranspiler(ctx, root, NameSwc, swcArgs, opts)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func esbuildArgs(file string, opts Options) []string {
	args := []string{file, "--format=cjs", "--platform=node", "--target=es2017", "--log-level=error"}
	if opts.TSConfigPath != "" {
		args = append(args, "--tsconfig="+opts.TSConfigPath)
	}
	return args
}

func swcArgs(file string, _ Options) []string {
	args := []string{file, "-C", "module.type=commonjs", "-C", "jsc.target=es2017"}
	if discovery.IsTS(file) {
		args = append(args, "-C", "jsc.parser.syntax=typescript")
	}
	return args
}

// newTranspiler locates the executable for name, probes it and builds the
// loader. A missing executable is reported as a DependencyNotFoundError.
func newTranspiler(ctx context.Context, root string, name Name, args argsFunc, opts Options) (*Transpiler, error) {
	logger := opts.logger()

	bin, err := locateBinary(root, string(name))
	if err != nil {
		return nil, classify(name, err)
	}

	version, err := probe(ctx, bin)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s --version: %w", bin, err)
	}

	extra, err := shell.Fields(opts.TranspilerArgs, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid transpiler arguments %q: %w", opts.TranspilerArgs, err)
	}

	logger.Debug("found transpiler", "loader", name, "path", bin, "version", version)

	t := &Transpiler{
		name:    name,
		bin:     bin,
		version: version,
		extra:   extra,
	}
	t.runtime = jsmodule.New(
		func(ctx context.Context, file string, _ []byte) ([]byte, error) {
			return t.transpile(ctx, file, append(args(file, opts), t.extra...))
		},
		jsmodule.WithLogger(logger),
		jsmodule.WithResolveExtensions(tsResolveExtensions...),
	)
	return t, nil
}

// Name returns the transpiler's strategy name.
func (t *Transpiler) Name() Name { return t.name }

// Binary returns the path of the transpiler executable.
func (t *Transpiler) Binary() string { return t.bin }

// Version returns the output of the transpiler's --version probe.
func (t *Transpiler) Version() string { return t.version }

// Import transpiles and executes the module at specifier.
func (t *Transpiler) Import(ctx context.Context, specifier string) (payload.Payload, error) {
	return t.runtime.Import(ctx, specifier)
}

func (t *Transpiler) transpile(ctx context.Context, file string, args []string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.bin, args...)
	cmd.Dir = filepath.Dir(file)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &TranspileError{Name: t.name, Path: file, Stderr: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}

func probe(ctx context.Context, bin string) (string, error) {
	out, err := exec.CommandContext(ctx, bin, "--version").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// locateBinary looks for a project-installed executable in node_modules/.bin
// of root and each of its ancestors, then on PATH.
func locateBinary(root, bin string) (string, error) {
	names := []string{bin}
	if runtime.GOOS == "windows" {
		names = []string{bin + ".cmd", bin + ".exe"}
	}

	for dir := root; ; {
		for _, n := range names {
			candidate := filepath.Join(dir, "node_modules", ".bin", n)
			if isExecutable(candidate) {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return exec.LookPath(bin)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return runtime.GOOS == "windows" || info.Mode().Perm()&0o111 != 0
}
