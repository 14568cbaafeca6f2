// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

type (
	// ActionableError tells the user what failed, on which file or
	// directory, and what to try next. Issue optionally links a catalog
	// entry with long-form guidance.
	//
	//	return issue.NewErrorContext().
	//		WithOperation("import config module").
	//		WithResource(path).
	//		WithSuggestion("Install esbuild or @swc/cli").
	//		WithIssue(issue.UnknownExtensionId).
	//		Wrap(err).
	//		BuildError()
	ActionableError struct {
		Operation   string
		Resource    string
		Suggestions []string
		Cause       error
		Issue       Id
	}

	// ErrorContext accumulates the fields of an ActionableError.
	ErrorContext struct {
		operation   string
		resource    string
		suggestions []string
		cause       error
		issue       Id
	}
)

// NewErrorContext starts an empty ErrorContext.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error returns "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the error for a terminal. Suggestions follow as bullets,
// then a pointer to the linked issue's documentation. Verbose output lists
// every cause in the chain instead of the pointer.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		b.WriteString("\n")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • " + s)
		}
	}

	if !verbose {
		if i := Get(e.Issue); i != nil && len(i.docLinks) > 0 {
			fmt.Fprintf(&b, "\n\nSee %s", i.docLinks[0])
		}
		return b.String()
	}

	if causes := chain(e.Cause); len(causes) > 0 {
		b.WriteString("\n\nError chain:")
		for n, msg := range causes {
			fmt.Fprintf(&b, "\n  %d. %s", n+1, msg)
		}
	}
	return b.String()
}

// chain returns the messages of err and each error it wraps. For errors
// joining several (Unwrap() []error) the last one is followed, since the
// loader and resolver errors list their sentinel first and the cause last.
func chain(err error) []string {
	var out []string
	for err != nil {
		out = append(out, err.Error())
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			errs := u.Unwrap()
			if len(errs) == 0 {
				return out
			}
			err = errs[len(errs)-1]
		default:
			err = errors.Unwrap(err)
		}
	}
	return out
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion appends one suggestion; suggestions keep insertion order.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

func (c *ErrorContext) WithSuggestions(sugs ...string) *ErrorContext {
	c.suggestions = append(c.suggestions, sugs...)
	return c
}

// WithIssue links the catalog entry rendered in verbose output.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.issue = id
	return c
}

func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build returns nil when no operation was set. The result does not share
// state with c.
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: slices.Clone(c.suggestions),
		Cause:       c.cause,
		Issue:       c.issue,
	}
}

// BuildError is Build returning a plain error, nil when Build is nil.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
