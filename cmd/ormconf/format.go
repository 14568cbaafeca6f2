// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/format"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ormconf/ormconf/internal/payload"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown output format")

// Format is an output encoding.
type Format string

// Supported output formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatCUE  Format = "cue"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatYAML, FormatTOML, FormatCUE:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q (valid: json, yaml, toml, cue)", ErrUnknownFormat, s)
	}
}

// encode writes v to w in format f. Config values are first converted to
// plain maps, slices and scalars.
func encode(w io.Writer, f Format, v any) error {
	plain := normalize(v)

	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plain)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plain); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(withoutNulls(plain))
	case FormatCUE:
		val := cuecontext.New().Encode(plain)
		if err := val.Err(); err != nil {
			return fmt.Errorf("failed to encode as CUE: %w", err)
		}
		out, err := format.Node(val.Syntax())
		if err != nil {
			return fmt.Errorf("failed to format CUE: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		return err
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, f)
	}
}

// normalize converts config values into types every encoder understands.
// Functions become their console rendering and dates RFC 3339 strings.
func normalize(v any) any {
	switch val := v.(type) {
	case payload.Object:
		return normalize(map[string]any(val))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case payload.Function:
		return val.String()
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}

// withoutNulls drops null map entries, which TOML cannot represent. Null
// array elements become empty strings.
func withoutNulls(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if item != nil {
				out[k] = withoutNulls(item)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			if item == nil {
				out[i] = ""
				continue
			}
			out[i] = withoutNulls(item)
		}
		return out
	default:
		return v
	}
}
