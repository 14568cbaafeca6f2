// SPDX-License-Identifier: MPL-2.0

// Package payload models the raw value a config module exports once its
// default export has been unwrapped.
//
// A Payload is one of three shapes the resolver understands (Object, Factory,
// List) or Opaque for anything else. The set is closed: the payload method is
// unexported, so only this package can add variants.
package payload

import (
	"context"
	"fmt"

	"github.com/ormconf/ormconf/pkg/types"
)

// ContextNameKey is the object field that names the context a config belongs to.
const ContextNameKey = "contextName"

type (
	// Payload is the sealed union of exported module values.
	Payload interface {
		payload()
	}

	// Object is a plain key/value mapping exported by a module.
	Object map[string]any

	// Factory produces a config for the requested context name. It wraps a
	// module function; an asynchronous function is awaited before returning.
	Factory func(ctx context.Context, name types.ContextName) (Payload, error)

	// List is an ordered sequence of objects and factories.
	List []Payload

	// Opaque holds any exported value that is neither an object, a function
	// nor an array (strings, numbers, null, undefined).
	Opaque struct {
		Value any
	}

	// Function stands in for a function value nested inside an Object, such
	// as an entity class in an "entities" list.
	Function struct {
		Name string
	}
)

func (Object) payload()  {}
func (Factory) payload() {}
func (List) payload()    {}
func (Opaque) payload()  {}

// ContextName returns the object's contextName field and whether it is set.
// A field holding a non-string value is reported as set with an empty name,
// so it never equals a requested context.
func (o Object) ContextName() (types.ContextName, bool) {
	v, ok := o[ContextNameKey]
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return types.ContextName(s), true
}

// Kind returns a short description of the payload shape for error messages.
func Kind(p Payload) string {
	switch v := p.(type) {
	case Object:
		return "object"
	case Factory:
		return "function"
	case List:
		return "array"
	case Opaque:
		if v.Value == nil {
			return "null"
		}
		return fmt.Sprintf("%T", v.Value)
	case nil:
		return "undefined"
	default:
		return fmt.Sprintf("%T", p)
	}
}

// String renders the function the way a JS console would.
func (f Function) String() string {
	if f.Name == "" {
		return "[Function (anonymous)]"
	}
	return "[Function: " + f.Name + "]"
}

// MarshalText implements encoding.TextMarshaler.
func (f Function) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
