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

//go:generate mockgen -destination=mock/feed.go -package=mock -mock_names=Feed=Feed,Partition=Partition . Feed,Partition

// Package feed defines the sources of tuples of a plan. A feed is split into
// partitions, every partition is compiled into its own execution tree.
package feed

import (
	"context"
	"slices"
	"sync"

	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/operator"
	"github.com/teknek/teknek/pkg/plan"
)

var (
	ErrNotFound        = cerrors.New("feed not found")
	ErrEndOfPartition  = cerrors.New("end of partition")
	ErrOffsetsDisabled = cerrors.New("partition does not support offset management")
)

// Feed produces the partitions of a stream.
type Feed interface {
	Partitions(ctx context.Context) ([]Partition, error)
}

// Partition is an addressable shard of a feed.
type Partition interface {
	// ID uniquely identifies the partition within its feed. It is stable
	// across restarts so persisted offsets can be found again.
	ID() string
	// SupportsOffsetManagement reports whether the partition can resume from
	// a checkpoint.
	SupportsOffsetManagement() bool
	// SetOffset seeds the position the partition resumes from.
	SetOffset(offset string) error
	// Offset returns the current position of the partition.
	Offset() string
	// Next returns the next tuple or ErrEndOfPartition.
	Next(ctx context.Context) (operator.Tuple, error)
}

// GlobalRegistry holds the builtin feeds. It should be treated as a read only
// variable.
var GlobalRegistry = NewRegistry()

// Constructor builds a feed from the properties of its descriptor.
type Constructor func(props plan.Properties) (Feed, error)

// Registry maps feed references to constructors. The methods are safe for
// concurrent use.
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
		panic(cerrors.Errorf("register feed failed: %w", err))
	}
}

// Register registers a feed constructor under ref. If a constructor is
// already registered under that reference it returns an error.
func (r *Registry) Register(ref string, c Constructor) error {
	if ref == "" {
		return cerrors.Errorf("can't register feed: %w", cerrors.ErrEmptyName)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.constructors[ref]; ok {
		return cerrors.Errorf("feed with reference %q already registered", ref)
	}
	r.constructors[ref] = c
	return nil
}

// New builds the feed described by d.
func (r *Registry) New(d *plan.FeedDesc) (Feed, error) {
	if d == nil {
		return nil, cerrors.New("plan has no feed")
	}

	r.lock.RLock()
	c, ok := r.constructors[d.FeedRef]
	r.lock.RUnlock()
	if !ok {
		return nil, cerrors.Errorf("%q: %w", d.FeedRef, ErrNotFound)
	}

	f, err := c(d.Properties)
	if err != nil {
		return nil, cerrors.Errorf("could not construct feed %q: %w", d.FeedRef, err)
	}
	return f, nil
}

// List returns the sorted references of all registered feeds.
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
