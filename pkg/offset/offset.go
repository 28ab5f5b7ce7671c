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

//go:generate mockgen -destination=mock/offset.go -package=mock -mock_names=Offset=Offset,Storage=Storage . Offset,Storage

// Package offset persists and recovers the positions of feed partitions.
package offset

import (
	"context"
	"slices"
	"sync"

	"github.com/teknek/teknek/pkg/feed"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/plan"
)

var ErrNotFound = cerrors.New("offset storage not found")

// Offset is an opaque checkpoint produced by a Storage.
type Offset interface {
	Serialize() []byte
}

// Bytes is the Offset implementation returned by the builtin storages.
type Bytes []byte

func (b Bytes) Serialize() []byte { return b }

// Storage persists the offset of a single partition of a plan.
type Storage interface {
	// FindLatestPersistedOffset returns the last persisted offset or nil if
	// nothing was persisted yet.
	FindLatestPersistedOffset(ctx context.Context) (Offset, error)
	// PersistOffset stores the current offset of the partition.
	PersistOffset(ctx context.Context) error
}

// Constructor builds a storage bound to one partition of a plan.
type Constructor func(ctx context.Context, p feed.Partition, pl *plan.Plan, props plan.Properties) (Storage, error)

// Registry maps offset storage references to constructors. The methods are
// safe for concurrent use.
type Registry struct {
	constructors map[string]Constructor

	lock sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// MustRegister tries to register a constructor and panics on error.
func (r *Registry) MustRegister(ref string, c Constructor) {
	if err := r.Register(ref, c); err != nil {
		panic(cerrors.Errorf("register offset storage failed: %w", err))
	}
}

// Register registers a storage constructor under ref. If a constructor is
// already registered under that reference it returns an error.
func (r *Registry) Register(ref string, c Constructor) error {
	if ref == "" {
		return cerrors.Errorf("can't register offset storage: %w", cerrors.ErrEmptyName)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.constructors[ref]; ok {
		return cerrors.Errorf("offset storage with reference %q already registered", ref)
	}
	r.constructors[ref] = c
	return nil
}

// Get returns the constructor registered under ref.
func (r *Registry) Get(ref string) (Constructor, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	c, ok := r.constructors[ref]
	if !ok {
		return nil, cerrors.Errorf("%q: %w", ref, ErrNotFound)
	}
	return c, nil
}

// List returns the sorted references of all registered storages.
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
