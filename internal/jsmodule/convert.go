// SPDX-License-Identifier: MPL-2.0

package jsmodule

import (
	"context"
	"errors"
	"reflect"
	"strconv"

	"github.com/dop251/goja"

	"github.com/ormconf/ormconf/internal/payload"
	"github.com/ormconf/ormconf/pkg/types"
)

const (
	classArray  = "Array"
	classObject = "Object"
	classRegExp = "RegExp"
	classError  = "Error"

	// circularRef replaces a value that refers back to one of its ancestors.
	circularRef = "[Circular]"
)

// ErrPendingPromise is returned when an exported or returned promise has not
// settled once the runtime has run all queued jobs.
var ErrPendingPromise = errors.New("promise did not settle")

var promiseType = reflect.TypeOf((*goja.Promise)(nil))

type (
	// RejectedError carries the reason of a rejected promise.
	RejectedError struct {
		Reason string
	}

	// ExportError reports an exception thrown while reading an exported
	// value, for example by a getter or a Proxy trap.
	ExportError struct {
		Err error
	}
)

// Error implements the error interface.
func (e *RejectedError) Error() string {
	return "promise rejected: " + e.Reason
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return "failed to read exported value: " + e.Err.Error()
}

// Unwrap returns the JavaScript exception.
func (e *ExportError) Unwrap() error { return e.Err }

// module holds the runtime that executed an imported file. Factories created
// from its exports call back into that runtime.
type module struct {
	vm *goja.Runtime
}

// unwrapDefault returns the "default" property when the module defines one,
// even when it holds undefined.
func unwrapDefault(v goja.Value) goja.Value {
	obj, ok := v.(*goja.Object)
	if !ok {
		return v
	}
	if d := obj.Get("default"); d != nil {
		return d
	}
	return v
}

// export unwraps, settles and converts an exported value. Property reads may
// run module code, so they happen inside the runtime's exception boundary.
func (m *module) export(v goja.Value, unwrap bool) (payload.Payload, error) {
	if unwrap {
		if exc := m.vm.Try(func() { v = unwrapDefault(v) }); exc != nil {
			return nil, &ExportError{Err: exc}
		}
	}

	settled, err := settle(v)
	if err != nil {
		return nil, err
	}

	var out payload.Payload
	if exc := m.vm.Try(func() { out = m.toPayload(settled) }); exc != nil {
		return nil, &ExportError{Err: exc}
	}
	return out, nil
}

// settle resolves a promise value to its fulfilled result. Non-promise values
// are returned as-is.
func settle(v goja.Value) (goja.Value, error) {
	obj, ok := v.(*goja.Object)
	if !ok || obj.ExportType() != promiseType {
		return v, nil
	}
	p, ok := obj.Export().(*goja.Promise)
	if !ok {
		return v, nil
	}

	switch p.State() {
	case goja.PromiseStateFulfilled:
		return p.Result(), nil
	case goja.PromiseStateRejected:
		reason := p.Result()
		if err, ok := reason.Export().(error); ok {
			return nil, err
		}
		return nil, &RejectedError{Reason: reason.String()}
	default:
		return nil, ErrPendingPromise
	}
}

// toPayload classifies a top-level exported value.
func (m *module) toPayload(v goja.Value) payload.Payload {
	if fn, ok := goja.AssertFunction(v); ok {
		return m.factory(fn)
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return payload.Opaque{Value: exportPrimitive(v)}
	}

	switch obj.ClassName() {
	case classArray:
		n := arrayLength(obj)
		list := make(payload.List, 0, n)
		for i := range n {
			list = append(list, m.toPayload(obj.Get(strconv.Itoa(i))))
		}
		return list
	case classObject:
		return payload.Object(m.toMap(obj, map[*goja.Object]bool{}))
	default:
		return payload.Opaque{Value: m.toGo(obj, map[*goja.Object]bool{})}
	}
}

// factory wraps a module function. The function receives the context name as
// its only argument; a returned promise is settled before conversion.
func (m *module) factory(fn goja.Callable) payload.Factory {
	return func(ctx context.Context, name types.ContextName) (payload.Payload, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m.vm.ClearInterrupt()
		stop := context.AfterFunc(ctx, func() { m.vm.Interrupt(ctx.Err()) })
		ret, err := fn(goja.Undefined(), m.vm.ToValue(string(name)))
		stop()
		if err != nil {
			return nil, runError(ctx, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.vm.ClearInterrupt()
		return m.export(ret, false)
	}
}

// toGo converts a value nested inside an exported object.
func (m *module) toGo(v goja.Value, seen map[*goja.Object]bool) any {
	obj, ok := v.(*goja.Object)
	if !ok {
		return exportPrimitive(v)
	}
	if _, ok := goja.AssertFunction(obj); ok {
		return payload.Function{Name: functionName(obj)}
	}
	if seen[obj] {
		return circularRef
	}
	seen[obj] = true
	defer delete(seen, obj)

	switch obj.ClassName() {
	case classArray:
		n := arrayLength(obj)
		out := make([]any, 0, n)
		for i := range n {
			out = append(out, m.toGo(obj.Get(strconv.Itoa(i)), seen))
		}
		return out
	case classObject:
		return m.toMap(obj, seen)
	case classRegExp, classError:
		return obj.String()
	default:
		return obj.Export()
	}
}

func (m *module) toMap(obj *goja.Object, seen map[*goja.Object]bool) map[string]any {
	seen[obj] = true
	keys := obj.Keys()
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k] = m.toGo(obj.Get(k), seen)
	}
	return out
}

func exportPrimitive(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.Export()
}

func arrayLength(obj *goja.Object) int {
	l := obj.Get("length")
	if l == nil {
		return 0
	}
	return int(l.ToInteger())
}

func functionName(obj *goja.Object) string {
	name := obj.Get("name")
	if name == nil || goja.IsUndefined(name) {
		return ""
	}
	return name.String()
}

