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

package teknek

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/teknek/teknek/pkg/feed"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/database/inmemory"
	"github.com/teknek/teknek/pkg/offset"
	"github.com/teknek/teknek/pkg/operator"
	"github.com/teknek/teknek/pkg/plan"
	"github.com/teknek/teknek/pkg/shell"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DB.Type = DBTypeInMemory
	cfg.Log.Level = "debug"
	return cfg
}

func TestNewRuntime(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	var logs bytes.Buffer
	r, err := NewRuntime(ctx, testConfig(), &logs)
	is.NoErr(err)
	t.Cleanup(func() { _ = r.Close() })

	is.True(r.PlanStore != nil)
	is.Equal(r.Offsets.List(), []string{offset.DBRef})
	is.True(strings.Contains(logs.String(), "in-memory store"))

	mfs, err := r.Metrics.Gather()
	is.NoErr(err)
	var found bool
	for _, mf := range mfs {
		if mf.GetName() == "teknek_info" {
			found = true
		}
	}
	is.True(found) // teknek_info not registered
}

func TestRuntime_WriteMetrics(t *testing.T) {
	is := is.New(t)

	r, err := NewRuntime(context.Background(), testConfig(), &bytes.Buffer{})
	is.NoErr(err)
	t.Cleanup(func() { _ = r.Close() })

	var out bytes.Buffer
	is.NoErr(r.WriteMetrics(&out))
	is.True(strings.Contains(out.String(), "# TYPE teknek_info gauge"))
}

func TestNewRuntime_InvalidConfig(t *testing.T) {
	is := is.New(t)

	cfg := testConfig()
	cfg.Log.Level = "who"
	_, err := NewRuntime(context.Background(), cfg, &bytes.Buffer{})
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "invalid config"))
}

func TestNewRuntime_S3Registered(t *testing.T) {
	is := is.New(t)

	cfg := testConfig()
	cfg.S3.Endpoint = "localhost:9000"
	r, err := NewRuntime(context.Background(), cfg, &bytes.Buffer{})
	is.NoErr(err)
	t.Cleanup(func() { _ = r.Close() })

	is.Equal(r.Offsets.List(), []string{offset.DBRef, offset.S3Ref})
}

func TestNewRuntime_Driver(t *testing.T) {
	is := is.New(t)

	db := &inmemory.DB{}
	cfg := testConfig()
	cfg.DB.Type = "ignored"
	cfg.DB.Driver = db
	r, err := NewRuntime(context.Background(), cfg, &bytes.Buffer{})
	is.NoErr(err)
	is.Equal(r.DB, db)
}

func countingPlan(name string) *plan.Plan {
	root := &plan.OperatorDesc{Name: "root", OperatorRef: operator.IdentityRef}
	root.AddChild(&plan.OperatorDesc{Name: "sink", OperatorRef: operator.DropRef})
	return &plan.Plan{
		Name: name,
		FeedDesc: &plan.FeedDesc{
			FeedRef:    feed.MemoryRef,
			Properties: plan.Properties{"partitions": 2, "limit": 3},
		},
		RootOperator:      root,
		OffsetStorageDesc: &plan.OffsetStorageDesc{StorageRef: offset.DBRef},
		TupleRetry:        1,
	}
}

func TestRuntime_CompileRunRecover(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	r, err := NewRuntime(ctx, testConfig(), &bytes.Buffer{})
	is.NoErr(err)
	t.Cleanup(func() { _ = r.Close() })

	pl := countingPlan("counting")
	drivers, err := r.Compile(ctx, pl)
	is.NoErr(err)
	is.Equal(len(drivers), 2)
	for _, d := range drivers {
		is.True(d.OffsetStorage != nil)
		is.Equal(d.Root.Count(), 2)
	}

	n, err := r.Run(ctx, drivers)
	is.NoErr(err)
	is.Equal(n, 6)

	// a second compilation resumes from the persisted offsets
	drivers, err = r.Compile(ctx, pl)
	is.NoErr(err)
	for _, d := range drivers {
		is.Equal(d.Partition.Offset(), "3")
	}
	n, err = r.Run(ctx, drivers)
	is.NoErr(err)
	is.Equal(n, 0)
}

func TestRuntime_CompileUnknownFeed(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	r, err := NewRuntime(ctx, testConfig(), &bytes.Buffer{})
	is.NoErr(err)
	t.Cleanup(func() { _ = r.Close() })

	pl := countingPlan("broken")
	pl.FeedDesc.FeedRef = "teknek.feed.Unknown"
	_, err = r.Compile(ctx, pl)
	is.True(cerrors.Is(err, feed.ErrNotFound))
}

func TestRuntime_ShellSavesPlan(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	r, err := NewRuntime(ctx, testConfig(), &bytes.Buffer{})
	is.NoErr(err)
	t.Cleanup(func() { _ = r.Close() })

	b := r.NewShell()
	for _, cmd := range []string{
		"CREATE words",
		"CREATE FEED lines USING " + feed.StaticRef,
		"SET PROPERTY line AS 'to be or not'",
		"SET PROPERTY limit AS 2",
		"EXIT",
		"CREATE OPERATOR tok AS " + operator.TokenizerRef,
		"EXIT",
		"CREATE OPERATOR count AS " + operator.WordCountRef,
		"EXIT",
		"SET ROOT tok",
		"FOR tok ADD CHILD count",
		"SAVE",
	} {
		resp := b.Send(ctx, cmd)
		is.Equal(resp.Message, "") // unexpected message
	}
	is.Equal(b.State(), shell.StatePlan)

	pl, err := r.PlanStore.Get(ctx, "words")
	is.NoErr(err)

	drivers, err := r.Compile(ctx, pl)
	is.NoErr(err)
	is.Equal(len(drivers), 1)
	is.True(drivers[0].OffsetStorage == nil)

	n, err := r.Run(ctx, drivers)
	is.NoErr(err)
	is.Equal(n, 2)
}
