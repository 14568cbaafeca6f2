// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"testing"
)

// runCLI executes the command tree with args and returns what was written
// to stdout and stderr.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	app := NewApp(Dependencies{Stdout: &out, Stderr: &errOut})
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&errOut)
	root.SetErr(&errOut)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}
