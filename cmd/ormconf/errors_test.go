// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ormconf/ormconf/internal/discovery"
	"github.com/ormconf/ormconf/internal/issue"
	"github.com/ormconf/ormconf/internal/jsmodule"
	"github.com/ormconf/ormconf/internal/loader"
	"github.com/ormconf/ormconf/internal/resolver"
	"github.com/ormconf/ormconf/pkg/cueutil"
	"github.com/ormconf/ormconf/pkg/types"
)

func TestIssueFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		want     issue.Id
		wantCode types.ExitCode
	}{
		{"not found", fmt.Errorf("search: %w", discovery.ErrConfigNotFound), issue.ConfigNotFoundId, types.ExitConfigNotFound},
		{"unknown extension", fmt.Errorf("import: %w", loader.ErrUnknownExtension), issue.UnknownExtensionId, types.ExitFailure},
		{"missing transpiler", loader.ErrDependencyNotFound, issue.TranspilerNotFoundId, types.ExitFailure},
		{"resolve", fmt.Errorf("%w: no config", resolver.ErrResolve), issue.ConfigResolveFailedId, types.ExitConfigInvalid},
		{"invalid loader", &loader.InvalidPreferenceError{Value: "webpack"}, issue.InvalidLoaderId, types.ExitConfigInvalid},
		{"invalid manifest", &cueutil.ValidationError{FilePath: "package.json", Message: "bad"}, issue.OptionsLoadFailedId, types.ExitConfigInvalid},
		{"throwing getter", &jsmodule.ExportError{Err: errors.New("DB unset")}, issue.ConfigImportFailedId, types.ExitFailure},
		{"pending promise", fmt.Errorf("await: %w", jsmodule.ErrPendingPromise), issue.ConfigImportFailedId, types.ExitFailure},
		{
			"actionable issue wins",
			issue.NewErrorContext().WithOperation("load").WithIssue(issue.EntityDiscoveryFailedId).Wrap(discovery.ErrConfigNotFound).BuildError(),
			issue.EntityDiscoveryFailedId,
			types.ExitFailure,
		},
		{"unrelated", errors.New("boom"), 0, types.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := issueFor(tt.err); got != tt.want {
				t.Errorf("issueFor() = %d, want %d", got, tt.want)
			}
			if got := exitCodeFor(tt.err); got != tt.wantCode {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	if wrapError(nil, "resolve config", ".") != nil {
		t.Error("wrapError(nil) should be nil")
	}

	err := wrapError(fmt.Errorf("search: %w", discovery.ErrConfigNotFound), "resolve config", "/project")
	if !errors.Is(err, discovery.ErrConfigNotFound) {
		t.Errorf("wrapped error lost its cause: %v", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %T, want an actionable error inside", err)
	}
	if ae.Operation != "resolve config" || ae.Resource != "/project" {
		t.Errorf("context = %q %q", ae.Operation, ae.Resource)
	}

	// An actionable error keeps its own context.
	inner := issue.NewErrorContext().WithOperation("load loader options").Wrap(errors.New("bad")).BuildError()
	rewrapped := wrapError(inner, "resolve config", "/project")
	if !errors.As(rewrapped, &ae) || ae.Operation != "load loader options" {
		t.Errorf("rewrapped operation = %q, want the inner one", ae.Operation)
	}
}

func TestPrintError(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{})
	err := wrapError(discovery.ErrConfigNotFound, "resolve config", "/project")

	var quiet bytes.Buffer
	app.printError(&quiet, err, false)
	if !strings.Contains(quiet.String(), "Error:") || !strings.Contains(quiet.String(), "/project") {
		t.Errorf("output = %q", quiet.String())
	}

	var verbose bytes.Buffer
	app.printError(&verbose, err, true)
	if verbose.Len() <= quiet.Len() {
		t.Errorf("verbose output should include the issue guidance:\n%s", verbose.String())
	}
}
