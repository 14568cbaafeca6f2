// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"

	"github.com/ormconf/ormconf/internal/payload"
	"github.com/ormconf/ormconf/pkg/types"
)

// Resolve selects the configuration for name out of p, which was exported
// by the module at path. An empty name selects the default context.
//
// The shapes are checked in order:
//
//  1. an object without contextName (default context only) or with a
//     matching contextName is returned as-is;
//  2. a function is called once with name; its result must be an object whose
//     contextName, when present, equals name;
//  3. an array is scanned front to back, returning the first object that
//     passes rule 1, calling function elements and returning the first
//     result that passes rule 1;
//  4. anything else is a ShapeError.
//
// Errors returned by a factory are passed through unchanged.
func Resolve(ctx context.Context, p payload.Payload, path string, name types.ContextName) (payload.Object, error) {
	name = name.OrDefault()

	switch v := p.(type) {
	case payload.Object:
		if matchesObject(v, name) {
			return v, nil
		}
	case payload.Factory:
		return fromFactory(ctx, v, path, name)
	case payload.List:
		return fromList(ctx, v, path, name)
	}

	return nil, &ShapeError{ContextName: name, Path: path}
}

// matchesObject applies rule 1: an unnamed object only serves the default
// context; a named object serves exactly its own context.
func matchesObject(obj payload.Object, name types.ContextName) bool {
	got, ok := obj.ContextName()
	if !ok {
		return name == types.DefaultContextName
	}
	return got == name
}

// matchesFactoryResult applies the rule for factory results: the factory was
// given the name, so an unnamed result is accepted for any context.
func matchesFactoryResult(result payload.Payload, name types.ContextName) (payload.Object, bool) {
	obj, ok := result.(payload.Object)
	if !ok {
		return nil, false
	}
	if got, named := obj.ContextName(); named && got != name {
		return nil, false
	}
	return obj, true
}

func fromFactory(ctx context.Context, fn payload.Factory, path string, name types.ContextName) (payload.Object, error) {
	result, err := fn(ctx, name)
	if err != nil {
		return nil, err
	}

	obj, ok := matchesFactoryResult(result, name)
	if !ok {
		return nil, &MismatchError{ContextName: name, Path: path}
	}
	return obj, nil
}

func fromList(ctx context.Context, list payload.List, path string, name types.ContextName) (payload.Object, error) {
	for _, candidate := range list {
		switch v := candidate.(type) {
		case payload.Object:
			if matchesObject(v, name) {
				return v, nil
			}
		case payload.Factory:
			result, err := v(ctx, name)
			if err != nil {
				return nil, err
			}
			if obj, ok := result.(payload.Object); ok && matchesObject(obj, name) {
				return obj, nil
			}
		}
	}

	return nil, &NotInListError{ContextName: name, Path: path}
}
