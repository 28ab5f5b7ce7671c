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

package driver

import (
	"context"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/teknek/teknek/pkg/feed"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/database/inmemory"
	"github.com/teknek/teknek/pkg/foundation/log"
	"github.com/teknek/teknek/pkg/offset"
	"github.com/teknek/teknek/pkg/operator"
	"github.com/teknek/teknek/pkg/plan"
)

// flaky fails the first n calls.
type flaky struct {
	n     int
	calls int
}

func (f *flaky) Process(_ context.Context, in operator.Tuple) ([]operator.Tuple, error) {
	f.calls++
	if f.calls <= f.n {
		return nil, cerrors.New("flaky")
	}
	return []operator.Tuple{in}, nil
}

func TestCollector_Retry(t *testing.T) {
	testCases := []struct {
		name      string
		retry     int
		failures  int
		wantErr   bool
		wantCalls int
	}{
		{name: "no failure", retry: 0, failures: 0, wantCalls: 1},
		{name: "no retry", retry: 0, failures: 1, wantErr: true, wantCalls: 1},
		{name: "recovers", retry: 2, failures: 2, wantCalls: 3},
		{name: "gives up", retry: 2, failures: 3, wantErr: true, wantCalls: 3},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)

			c := &Collector{
				TupleRetry: tc.retry,
				MinBackoff: time.Millisecond,
				MaxBackoff: time.Millisecond,
				logger:     log.Test(t),
			}
			op := &flaky{n: tc.failures}
			out, err := c.deliver(context.Background(), op, operator.Tuple{"a": 1})
			is.Equal(op.calls, tc.wantCalls)
			if tc.wantErr {
				is.True(err != nil)
				return
			}
			is.NoErr(err)
			is.Equal(out, []operator.Tuple{{"a": 1}})
		})
	}
}

func TestCollector_RetryCanceled(t *testing.T) {
	is := is.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &Collector{TupleRetry: 5, MinBackoff: time.Minute, MaxBackoff: time.Minute, logger: log.Test(t)}
	_, err := c.deliver(ctx, &flaky{n: 10}, operator.Tuple{})
	is.True(cerrors.Is(err, context.Canceled))
}

func TestWait(t *testing.T) {
	is := is.New(t)

	is.NoErr(wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	is.True(cerrors.Is(wait(ctx, time.Hour), context.Canceled))
	is.True(time.Since(start) < time.Minute)
}

func TestNode_ProcessFansOut(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	left, right := &sink{}, &sink{}
	ops := operator.NewRegistry()
	operator.RegisterBuiltins(ops)
	ops.MustRegister("left", func() (operator.Operator, error) { return left, nil })
	ops.MustRegister("right", func() (operator.Operator, error) { return right, nil })

	pl := plan.New("fanout")
	pl.RootOperator = native(operator.TokenizerRef, native("left"), native("right"))

	c := NewCompiler(log.Test(t), ops, offset.NewRegistry())
	f, err := feed.NewStatic(plan.Properties{"line": "a b", "limit": 1})
	is.NoErr(err)
	parts, err := f.Partitions(ctx)
	is.NoErr(err)

	d, err := c.Compile(ctx, parts[0], pl)
	is.NoErr(err)
	n, err := d.Run(ctx)
	is.NoErr(err)
	is.Equal(n, 1)

	want := []operator.Tuple{{"word": "a"}, {"word": "b"}}
	is.Equal(left.tuples, want)
	is.Equal(right.tuples, want)
}

func TestDriver_RunPersistsAndRecovers(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	db := &inmemory.DB{}

	out := &sink{}
	ops := operator.NewRegistry()
	ops.MustRegister("sink", func() (operator.Operator, error) { return out, nil })
	offsets := offset.NewRegistry()
	offsets.MustRegister(offset.DBRef, offset.NewDBConstructor(db))
	c := NewCompiler(log.Test(t), ops, offsets)

	pl := plan.New("counter")
	pl.RootOperator = &plan.OperatorDesc{
		Kind:     plan.KindJavaScriptClosure,
		Script:   `(t) => t.seq % 2 == 0 ? t : null`,
		Children: []*plan.OperatorDesc{native("sink")},
	}
	pl.OffsetStorageDesc = &plan.OffsetStorageDesc{StorageRef: offset.DBRef}

	f, err := feed.NewMemory(plan.Properties{"limit": 5})
	is.NoErr(err)

	parts, err := f.Partitions(ctx)
	is.NoErr(err)
	d, err := c.Compile(ctx, parts[0], pl)
	is.NoErr(err)
	n, err := d.Run(ctx)
	is.NoErr(err)
	is.Equal(n, 5)
	is.Equal(len(out.tuples), 3) // seq 0, 2, 4

	// a fresh partition resumes where the previous run stopped
	parts, err = f.Partitions(ctx)
	is.NoErr(err)
	d, err = c.Compile(ctx, parts[0], pl)
	is.NoErr(err)
	is.Equal(parts[0].Offset(), "5")
	n, err = d.Run(ctx)
	is.NoErr(err)
	is.Equal(n, 0)
}

func TestDriver_RunOperatorError(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	ops := operator.NewRegistry()
	ops.MustRegister("broken", func() (operator.Operator, error) { return &flaky{n: 100}, nil })
	c := NewCompiler(log.Test(t), ops, offset.NewRegistry())
	c.MinBackoff, c.MaxBackoff = time.Millisecond, time.Millisecond

	pl := plan.New("broken")
	pl.TupleRetry = 1
	pl.RootOperator = native("broken")

	f, err := feed.NewMemory(nil)
	is.NoErr(err)
	parts, err := f.Partitions(ctx)
	is.NoErr(err)

	d, err := c.Compile(ctx, parts[0], pl)
	is.NoErr(err)
	n, err := d.Run(ctx)
	is.True(err != nil)
	is.Equal(n, 1)
}

func TestNode_String(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	pl := plan.New("print")
	pl.TupleRetry = 3
	pl.RootOperator = native("a", native("b"))

	c := newTestCompiler(t, nil, "a", "b")
	f, err := feed.NewMemory(nil)
	is.NoErr(err)
	parts, err := f.Partitions(ctx)
	is.NoErr(err)

	d, err := c.Compile(ctx, parts[0], pl)
	is.NoErr(err)
	is.Equal(d.Root.String(), "- a [native] retry=3\n  - b [native] retry=3\n")
}
