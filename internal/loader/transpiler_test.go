// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ormconf/ormconf/internal/payload"
	"github.com/ormconf/ormconf/internal/testutil"
)

func TestEsbuildArgs(t *testing.T) {
	t.Parallel()

	got := esbuildArgs("/p/config.ts", Options{})
	want := []string{"/p/config.ts", "--format=cjs", "--platform=node", "--target=es2017", "--log-level=error"}
	if !slices.Equal(got, want) {
		t.Errorf("esbuildArgs() = %v, want %v", got, want)
	}

	got = esbuildArgs("/p/config.ts", Options{TSConfigPath: "tsconfig.build.json"})
	if got[len(got)-1] != "--tsconfig=tsconfig.build.json" {
		t.Errorf("esbuildArgs() = %v, want trailing --tsconfig", got)
	}
}

func TestSwcArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file string
		want []string
	}{
		{"/p/config.ts", []string{"/p/config.ts", "-C", "module.type=commonjs", "-C", "jsc.target=es2017", "-C", "jsc.parser.syntax=typescript"}},
		{"/p/config.mjs", []string{"/p/config.mjs", "-C", "module.type=commonjs", "-C", "jsc.target=es2017"}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()
			if got := swcArgs(tt.file, Options{}); !slices.Equal(got, tt.want) {
				t.Errorf("swcArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocateBinary_Ancestor(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	bin := testutil.WriteFakeTranspiler(t, root, testutil.FakeTranspiler{Name: "esbuild"})
	nested := filepath.Join(root, "packages", "api")
	testutil.MustMkdirAll(t, nested, 0o755)

	got, err := locateBinary(nested, "esbuild")
	if err != nil {
		t.Fatalf("locateBinary() returned error: %v", err)
	}
	if got != bin {
		t.Errorf("locateBinary() = %s, want %s", got, bin)
	}
}

func TestLocateBinary_SkipsNonExecutable(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "node_modules", ".bin", "ormconf-test-missing-tool"), "not executable")

	_, err := locateBinary(root, "ormconf-test-missing-tool")
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("locateBinary() error = %v, want exec.ErrNotFound", err)
	}
}

// The tests below replace PATH so that transpilers installed on the host do
// not leak into the lookup; they cannot run in parallel.

func TestNewTranspiler_NotInstalled(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	root := t.TempDir()

	for _, construct := range []constructor{newEsbuild, newSwc} {
		_, err := construct(context.Background(), root, Options{})
		if !errors.Is(err, ErrDependencyNotFound) {
			t.Errorf("constructor error = %v, want ErrDependencyNotFound", err)
		}
	}
}

func TestNew_NamedTranspilerHasNoFallback(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	root := t.TempDir()
	testutil.WriteFakeTranspiler(t, root, testutil.FakeTranspiler{Name: "esbuild"})

	_, err := New(context.Background(), root, Options{Preference: PreferenceSwc})
	var depErr *DependencyNotFoundError
	if !errors.As(err, &depErr) || depErr.Name != NameSwc {
		t.Fatalf("New(swc) error = %v, want DependencyNotFoundError for swc", err)
	}
}

func TestNew_AutoDetection(t *testing.T) {
	tests := []struct {
		name      string
		installed []string
		want      Name
	}{
		{"nothing installed", nil, NameNative},
		{"only swc", []string{"swc"}, NameSwc},
		{"both installed", []string{"swc", "esbuild"}, NameEsbuild},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PATH", t.TempDir())
			root := t.TempDir()
			for _, name := range tt.installed {
				testutil.WriteFakeTranspiler(t, root, testutil.FakeTranspiler{Name: name})
			}

			ld, err := New(context.Background(), root, Options{Preference: PreferenceAuto})
			if err != nil {
				t.Fatalf("New() returned error: %v", err)
			}
			if ld.Name() != tt.want {
				t.Errorf("New() = %s, want %s", ld.Name(), tt.want)
			}
		})
	}
}

func TestNew_ProbeFailureIsNotRecovered(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	root := t.TempDir()
	testutil.WriteFakeTranspiler(t, root, testutil.FakeTranspiler{Name: "esbuild", FailProbe: true})
	testutil.WriteFakeTranspiler(t, root, testutil.FakeTranspiler{Name: "swc"})

	_, err := New(context.Background(), root, Options{})
	if err == nil {
		t.Fatal("New() should fail when an installed transpiler is broken")
	}
	if errors.Is(err, ErrDependencyNotFound) {
		t.Errorf("probe failure must not be classified as missing: %v", err)
	}
}

func TestTranspiler_Import(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	argsLog := filepath.Join(root, "args.log")
	testutil.WriteFakeTranspiler(t, root, testutil.FakeTranspiler{Name: "esbuild", Version: "0.25.0", ArgsLog: argsLog})
	testutil.WriteFile(t, filepath.Join(root, "db.ts"), "module.exports = { name: ':memory:' };\n")
	path := testutil.WriteFile(t, filepath.Join(root, "mikro-orm.config.ts"),
		"const db = require('./db');\nexport default { dbName: db.name };\n")

	ld, err := New(context.Background(), root, Options{
		Preference:     PreferenceEsbuild,
		TSConfigPath:   "tsconfig.json",
		TranspilerArgs: `--define:DEBUG=false "--banner:js=// generated"`,
	})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	tr, ok := ld.(*Transpiler)
	if !ok {
		t.Fatalf("New() = %T, want *Transpiler", ld)
	}
	if tr.Version() != "0.25.0" {
		t.Errorf("Version() = %q, want 0.25.0", tr.Version())
	}

	got, err := ld.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import() returned error: %v", err)
	}
	obj, ok := got.(payload.Object)
	if !ok || obj["dbName"] != ":memory:" {
		t.Errorf("Import() = %#v, want the config object", got)
	}

	logged, err := os.ReadFile(argsLog)
	if err != nil {
		t.Fatalf("args log missing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(logged)), "\n")
	if len(lines) != 2 {
		t.Fatalf("transpiler ran %d times, want 2 (config and required module): %q", len(lines), lines)
	}
	wantArgs := path + " --format=cjs --platform=node --target=es2017 --log-level=error " +
		"--tsconfig=tsconfig.json --define:DEBUG=false --banner:js=// generated"
	if lines[0] != wantArgs {
		t.Errorf("transpiler args =\n%s\nwant\n%s", lines[0], wantArgs)
	}
	if !strings.HasPrefix(lines[1], filepath.Join(root, "db.ts")+" ") {
		t.Errorf("second transpile = %q, want db.ts", lines[1])
	}
}

func TestTranspiler_TranspileError(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	testutil.WriteFakeTranspiler(t, root, testutil.FakeTranspiler{Name: "swc", FailTranspile: true})
	path := testutil.WriteFile(t, filepath.Join(root, "mikro-orm.config.ts"), "export default {};\n")

	ld, err := New(context.Background(), root, Options{Preference: PreferenceSwc})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	_, err = ld.Import(context.Background(), path)
	var transpileErr *TranspileError
	if !errors.As(err, &transpileErr) {
		t.Fatalf("Import() error = %v, want *TranspileError", err)
	}
	if transpileErr.Name != NameSwc || !strings.Contains(transpileErr.Stderr, "cannot transpile") {
		t.Errorf("TranspileError = %+v", transpileErr)
	}
}

func TestTranspiler_InvalidArgs(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	testutil.WriteFakeTranspiler(t, root, testutil.FakeTranspiler{Name: "esbuild"})

	_, err := New(context.Background(), root, Options{Preference: PreferenceEsbuild, TranspilerArgs: `"unterminated`})
	if err == nil {
		t.Fatal("New() should reject unparsable transpiler arguments")
	}
}
