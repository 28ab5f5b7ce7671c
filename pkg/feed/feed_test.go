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

package feed

import (
	"context"
	"testing"

	"github.com/matryer/is"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/operator"
	"github.com/teknek/teknek/pkg/plan"
)

func drain(t *testing.T, p Partition) []operator.Tuple {
	t.Helper()
	is := is.New(t)

	var out []operator.Tuple
	for {
		tup, err := p.Next(context.Background())
		if cerrors.Is(err, ErrEndOfPartition) {
			return out
		}
		is.NoErr(err)
		out = append(out, tup)
	}
}

func TestRegistry_New(t *testing.T) {
	is := is.New(t)

	f, err := GlobalRegistry.New(&plan.FeedDesc{FeedRef: MemoryRef})
	is.NoErr(err)
	_, ok := f.(*Memory)
	is.True(ok)

	_, err = GlobalRegistry.New(&plan.FeedDesc{FeedRef: "does.not.Exist"})
	is.True(cerrors.Is(err, ErrNotFound))

	_, err = GlobalRegistry.New(nil)
	is.True(err != nil)
}

func TestRegistry_List(t *testing.T) {
	is := is.New(t)
	is.Equal(GlobalRegistry.List(), []string{MemoryRef, StaticRef})
}

func TestMemory_Partitions(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	f, err := NewMemory(plan.Properties{"topic": "words", "partitions": float64(3), "limit": float64(2)})
	is.NoErr(err)

	parts, err := f.Partitions(ctx)
	is.NoErr(err)
	is.Equal(len(parts), 3)

	ids := make(map[string]bool)
	for _, p := range parts {
		ids[p.ID()] = true
		is.True(p.SupportsOffsetManagement())
	}
	is.Equal(len(ids), 3) // unique

	again, err := f.Partitions(ctx)
	is.NoErr(err)
	is.Equal(again[0].ID(), parts[0].ID()) // stable

	is.Equal(drain(t, parts[1]), []operator.Tuple{
		{"partition": 1, "seq": 0},
		{"partition": 1, "seq": 1},
	})
	is.Equal(parts[1].Offset(), "2")
}

func TestMemory_SetOffset(t *testing.T) {
	is := is.New(t)

	f, err := NewMemory(plan.Properties{"limit": 5})
	is.NoErr(err)
	parts, err := f.Partitions(context.Background())
	is.NoErr(err)

	p := parts[0]
	is.NoErr(p.SetOffset("3"))
	is.Equal(drain(t, p), []operator.Tuple{
		{"partition": 0, "seq": 3},
		{"partition": 0, "seq": 4},
	})

	is.True(p.SetOffset("abc") != nil)
	is.True(p.SetOffset("-1") != nil)
}

func TestMemory_InvalidProperties(t *testing.T) {
	is := is.New(t)

	_, err := NewMemory(plan.Properties{"partitions": 0})
	is.True(err != nil)
	_, err = NewMemory(plan.Properties{"limit": -1})
	is.True(err != nil)
}

func TestStatic(t *testing.T) {
	is := is.New(t)

	f, err := NewStatic(plan.Properties{"line": "hello world", "limit": 2})
	is.NoErr(err)
	parts, err := f.Partitions(context.Background())
	is.NoErr(err)
	is.Equal(len(parts), 1)

	p := parts[0]
	is.True(!p.SupportsOffsetManagement())
	is.True(cerrors.Is(p.SetOffset("1"), ErrOffsetsDisabled))
	is.Equal(drain(t, p), []operator.Tuple{{"line": "hello world"}, {"line": "hello world"}})
}

func TestMemory_NextCanceled(t *testing.T) {
	is := is.New(t)

	f, err := NewMemory(nil)
	is.NoErr(err)
	parts, err := f.Partitions(context.Background())
	is.NoErr(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = parts[0].Next(ctx)
	is.True(cerrors.Is(err, context.Canceled))
}
