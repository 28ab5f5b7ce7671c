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

package operator

import (
	"slices"
	"sync"

	"github.com/teknek/teknek/pkg/foundation/cerrors"
)

// ErrNotFound is returned when no constructor is registered under a reference.
var ErrNotFound = cerrors.New("operator not found")

// GlobalRegistry is a global registry of operator constructors. Builtin
// operators register themselves in it. It should be treated as a read only
// variable.
var GlobalRegistry = NewRegistry()

// Constructor returns a fresh operator instance. Every compiled node gets its
// own instance.
type Constructor func() (Operator, error)

// Registry is a registry for registering or looking up operator constructors
// by their reference. The methods are safe for concurrent use.
type Registry struct {
	constructors map[string]Constructor

	lock sync.RWMutex
}

// NewRegistry returns an empty *Registry.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// MustRegister tries to register a constructor and panics on error.
func (r *Registry) MustRegister(ref string, c Constructor) {
	err := r.Register(ref, c)
	if err != nil {
		panic(cerrors.Errorf("register operator failed: %w", err))
	}
}

// Register registers an operator constructor under the specified reference.
// If a constructor is already registered under that reference it returns an
// error.
func (r *Registry) Register(ref string, c Constructor) error {
	if ref == "" {
		return cerrors.Errorf("can't register operator: %w", cerrors.ErrEmptyName)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.constructors[ref]; ok {
		return cerrors.Errorf("operator with reference %q already registered", ref)
	}
	r.constructors[ref] = c
	return nil
}

// Get returns the constructor registered under the specified reference.
func (r *Registry) Get(ref string) (Constructor, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	c, ok := r.constructors[ref]
	if !ok {
		return nil, cerrors.Errorf("%q: %w", ref, ErrNotFound)
	}
	return c, nil
}

// New looks up the constructor registered under ref and invokes it.
func (r *Registry) New(ref string) (Operator, error) {
	c, err := r.Get(ref)
	if err != nil {
		return nil, err
	}
	op, err := c()
	if err != nil {
		return nil, cerrors.Errorf("could not construct operator %q: %w", ref, err)
	}
	if op == nil {
		return nil, cerrors.Errorf("constructor for operator %q returned nil", ref)
	}
	return op, nil
}

// List returns the sorted references of all registered operators.
func (r *Registry) List() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	refs := make([]string, 0, len(r.constructors))
	for ref := range r.constructors {
		refs = append(refs, ref)
	}
	slices.Sort(refs)
	return refs
}
