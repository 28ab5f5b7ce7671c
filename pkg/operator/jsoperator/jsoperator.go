// Copyright © 2024 Meroxa, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package jsoperator builds operators from inline JavaScript. Two shapes are
// supported: a class whose instances expose a process method, and a closure
// that is called directly for every tuple.
package jsoperator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/log"
	"github.com/teknek/teknek/pkg/operator"
)

const entrypoint = "process"

var (
	ErrNotCallable    = cerrors.New("script result is not callable")
	ErrNotConstructor = cerrors.New("script result is not a constructor")
	ErrEmptyScript    = cerrors.New("script is empty")
)

// openLoaders counts module loaders that were attached to a runtime and not
// yet released.
var openLoaders atomic.Int64

// loader makes require() available to a script while it is being compiled and
// constructed. It must be released before the resolving call returns.
type loader struct {
	rt       *goja.Runtime
	registry *require.Registry
}

func openLoader(rt *goja.Runtime) *loader {
	registry := require.NewRegistry()
	registry.Enable(rt)
	openLoaders.Add(1)
	return &loader{rt: rt, registry: registry}
}

func (l *loader) Close() {
	if l.registry == nil {
		return
	}
	_ = l.rt.GlobalObject().Delete("require")
	l.registry = nil
	openLoaders.Add(-1)
}

// Operator runs a JavaScript callable for every tuple. The runtime is not safe
// for concurrent use, calls are serialized.
type Operator struct {
	runtime *goja.Runtime
	this    goja.Value
	fn      goja.Callable

	m sync.Mutex
}

var _ operator.Operator = (*Operator)(nil)

// NewClass evaluates src, which must complete with a constructor. The
// constructor is invoked without arguments and the resulting object must
// have a process method.
func NewClass(src string, logger log.CtxLogger) (*Operator, error) {
	rt, err := newRuntime(logger)
	if err != nil {
		return nil, err
	}
	l := openLoader(rt)
	defer l.Close()

	v, err := run(rt, src)
	if err != nil {
		return nil, err
	}
	if _, ok := goja.AssertConstructor(v); !ok {
		return nil, cerrors.Errorf("%w: script evaluated to %s", ErrNotConstructor, TypeName(v))
	}
	obj, err := rt.New(v)
	if err != nil {
		return nil, cerrors.Errorf("failed to instantiate script class: %w", err)
	}
	fn, ok := goja.AssertFunction(obj.Get(entrypoint))
	if !ok {
		return nil, cerrors.Errorf("%w: instance has no %s method", ErrNotCallable, entrypoint)
	}

	return &Operator{runtime: rt, this: obj, fn: fn}, nil
}

// NewClosure evaluates src, which must complete with a function. The
// function is called with the tuple as its only argument.
func NewClosure(src string, logger log.CtxLogger) (*Operator, error) {
	rt, err := newRuntime(logger)
	if err != nil {
		return nil, err
	}
	l := openLoader(rt)
	defer l.Close()

	v, err := run(rt, src)
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, cerrors.Errorf("%w: script evaluated to %s", ErrNotCallable, TypeName(v))
	}

	return &Operator{runtime: rt, this: goja.Undefined(), fn: fn}, nil
}

func newRuntime(logger log.CtxLogger) (*goja.Runtime, error) {
	rt := goja.New()

	zl := logger.ZerologWithComponent()
	if err := rt.Set("logger", &zl); err != nil {
		return nil, cerrors.Errorf("failed to set helper %q: %w", "logger", err)
	}
	return rt, nil
}

func run(rt *goja.Runtime, src string) (goja.Value, error) {
	if src == "" {
		return nil, ErrEmptyScript
	}
	prg, err := goja.Compile("", src, false)
	if err != nil {
		return nil, cerrors.Errorf("failed to compile script: %w", err)
	}
	v, err := rt.RunProgram(prg)
	if err != nil {
		return nil, cerrors.Errorf("failed to run program: %w", err)
	}
	return v, nil
}

// TypeName describes the type of a JavaScript value for error messages.
func TypeName(v goja.Value) string {
	switch {
	case v == nil || goja.IsUndefined(v):
		return "undefined"
	case goja.IsNull(v):
		return "null"
	}
	if t := v.ExportType(); t != nil {
		return t.String()
	}
	return "unknown"
}

func (o *Operator) Process(_ context.Context, in operator.Tuple) ([]operator.Tuple, error) {
	o.m.Lock()
	defer o.m.Unlock()

	arg := o.runtime.ToValue(map[string]any(in.Clone()))
	result, err := o.fn(o.this, arg)
	if err != nil {
		return nil, cerrors.Errorf("failed to execute JS operator function: %w", err)
	}
	return toTuples(result)
}

func toTuples(v goja.Value) ([]operator.Tuple, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	switch raw := v.Export().(type) {
	case map[string]any:
		return []operator.Tuple{raw}, nil
	case []any:
		out := make([]operator.Tuple, 0, len(raw))
		for i, e := range raw {
			switch t := e.(type) {
			case nil:
			case map[string]any:
				out = append(out, t)
			default:
				return nil, cerrors.Errorf("js function returned %T at index %d, expected an object", e, i)
			}
		}
		return out, nil
	default:
		return nil, cerrors.Errorf("js function expected to return an object or array, but returned %T", raw)
	}
}
