// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// FakeTranspiler describes a stand-in for a project-installed transpiler
// executable.
//
// The fake prints Version for --version. Otherwise it writes the file named by
// its first argument to stdout with a leading `export default ` rewritten to
// `module.exports = `, which is enough for fixtures free of type annotations.
type FakeTranspiler struct {
	// Name is the executable name, e.g. "esbuild".
	Name string
	// Version is printed for --version. Defaults to "0.0.0-fake".
	Version string
	// FailProbe makes --version exit with status 1.
	FailProbe bool
	// FailTranspile makes every transpile call exit with status 1.
	FailTranspile bool
	// ArgsLog, when set, receives one line with the arguments of every
	// transpile call.
	ArgsLog string
}

// WriteFakeTranspiler installs fake into dir/node_modules/.bin and returns
// the executable path. Tests using it are skipped on Windows.
func WriteFakeTranspiler(t testing.TB, dir string, fake FakeTranspiler) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake transpilers are POSIX shell scripts")
	}

	version := fake.Version
	if version == "" {
		version = "0.0.0-fake"
	}

	var script strings.Builder
	script.WriteString("#!/bin/sh\n")
	// Tests may empty PATH to hide real transpilers.
	script.WriteString("PATH=/usr/bin:/bin:$PATH\n")
	script.WriteString("if [ \"$1\" = \"--version\" ]; then\n")
	if fake.FailProbe {
		script.WriteString("  echo 'probe failed' >&2\n  exit 1\n")
	} else {
		fmt.Fprintf(&script, "  echo %q\n  exit 0\n", version)
	}
	script.WriteString("fi\n")
	if fake.ArgsLog != "" {
		fmt.Fprintf(&script, "echo \"$*\" >> %q\n", fake.ArgsLog)
	}
	if fake.FailTranspile {
		script.WriteString("echo \"cannot transpile $1\" >&2\nexit 1\n")
	} else {
		script.WriteString("sed -e 's/^export default /module.exports = /' \"$1\"\n")
	}

	bin := filepath.Join(dir, "node_modules", ".bin", fake.Name)
	MustMkdirAll(t, filepath.Dir(bin), 0o755)
	if err := os.WriteFile(bin, []byte(script.String()), 0o755); err != nil {
		t.Fatalf("failed to write fake transpiler %s: %v", bin, err)
	}
	return bin
}
