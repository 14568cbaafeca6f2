// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/ormconf/ormconf/internal/discovery"
	"github.com/ormconf/ormconf/internal/issue"
	"github.com/ormconf/ormconf/internal/jsmodule"
	"github.com/ormconf/ormconf/internal/loader"
	"github.com/ormconf/ormconf/internal/resolver"
	"github.com/ormconf/ormconf/pkg/cueutil"
	"github.com/ormconf/ormconf/pkg/types"
)

// issueFor returns the catalog issue describing err, or 0 when none applies.
func issueFor(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return ae.Issue
	}

	var (
		transformErr  *jsmodule.TransformError
		transpileErr  *loader.TranspileError
		rejectedErr   *jsmodule.RejectedError
		exportErr     *jsmodule.ExportError
		validationErr *cueutil.ValidationError
	)
	switch {
	case errors.Is(err, discovery.ErrConfigNotFound):
		return issue.ConfigNotFoundId
	case errors.Is(err, loader.ErrUnknownExtension):
		return issue.UnknownExtensionId
	case errors.Is(err, loader.ErrDependencyNotFound):
		return issue.TranspilerNotFoundId
	case errors.Is(err, resolver.ErrResolve):
		return issue.ConfigResolveFailedId
	case errors.Is(err, loader.ErrInvalidPreference):
		return issue.InvalidLoaderId
	case errors.As(err, &validationErr):
		return issue.OptionsLoadFailedId
	case errors.As(err, &transformErr), errors.As(err, &transpileErr),
		errors.As(err, &rejectedErr), errors.As(err, &exportErr),
		errors.Is(err, jsmodule.ErrPendingPromise):
		return issue.ConfigImportFailedId
	default:
		return 0
	}
}

// exitCodeFor maps err to the process exit code.
func exitCodeFor(err error) types.ExitCode {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	switch issueFor(err) {
	case issue.ConfigNotFoundId:
		return types.ExitConfigNotFound
	case issue.ConfigResolveFailedId, issue.OptionsLoadFailedId, issue.InvalidLoaderId:
		return types.ExitConfigInvalid
	default:
		return types.ExitFailure
	}
}

// wrapError attaches the operation and resource to err and converts it into
// an ExitError carrying the matching exit code.
func wrapError(err error, operation, resource string) error {
	if err == nil {
		return nil
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return &ExitError{Code: exitCodeFor(err), Err: err}
	}
	ctx := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithIssue(issueFor(err))

	switch {
	case errors.Is(err, discovery.ErrConfigNotFound):
		ctx.WithSuggestions(
			"Create mikro-orm.config.ts or mikro-orm.config.js in the project",
			"Pass --config <path> or set configPaths in package.json",
		)
	case errors.Is(err, loader.ErrUnknownExtension):
		ctx.WithSuggestion("Install esbuild or @swc/cli as a dev dependency")
	case errors.Is(err, loader.ErrDependencyNotFound):
		ctx.WithSuggestion("Run 'ormconf loader --loader auto' to see what is installed")
	case errors.Is(err, resolver.ErrResolve):
		ctx.WithSuggestion("Check --context against the contextName values the module exports")
	}

	return &ExitError{Code: exitCodeFor(err), Err: ctx.Wrap(err).BuildError()}
}

// formatErrorForDisplay renders err for the terminal. Actionable errors list
// their suggestions, and the full chain in verbose mode.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// handleError returns the fang error handler. Usage errors keep fang's
// default rendering; everything else is printed with its suggestions and, in
// verbose mode, the long-form issue guidance.
func (a *App) handleError(root *cobra.Command) fang.ErrorHandler {
	return func(w io.Writer, styles fang.Styles, err error) {
		var ae *issue.ActionableError
		if !errors.As(err, &ae) {
			fang.DefaultErrorHandler(w, styles, err)
			return
		}
		verbose, _ := root.PersistentFlags().GetBool("verbose")
		a.printError(w, err, verbose)
	}
}

func (a *App) printError(w io.Writer, err error, verbose bool) {
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	if !verbose {
		return
	}
	if i := issue.Get(issueFor(err)); i != nil {
		if rendered, renderErr := i.Render("auto"); renderErr == nil {
			fmt.Fprint(w, rendered)
		}
	}
}
