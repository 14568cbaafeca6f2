// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates JSON and CUE documents against an embedded CUE
// schema and decodes them into Go values.
//
// Parsing follows three steps: compile the schema, compile the document and
// unify it with a schema definition, then validate and decode. JSON is a
// subset of CUE, so the same flow checks package.json fields:
//
//	//go:embed options_schema.cue
//	var schema []byte
//
//	result, err := cueutil.ParseAndDecode[manifest](schema, data, "#Manifest",
//	    cueutil.WithFilename("package.json"),
//	    cueutil.WithConcrete(false),
//	)
//
// Validation failures are reported as *ValidationError values whose message
// carries the JSON path of the offending field.
package cueutil
