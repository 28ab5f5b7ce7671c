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

	"github.com/teknek/teknek/pkg/feed"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/ctxutil"
	"github.com/teknek/teknek/pkg/foundation/log"
	"github.com/teknek/teknek/pkg/foundation/metrics/measure"
	"github.com/teknek/teknek/pkg/offset"
	"github.com/teknek/teknek/pkg/plan"
)

// Driver binds a compiled execution tree to the partition it reads from.
type Driver struct {
	Plan      *plan.Plan
	Partition feed.Partition
	Root      *Node
	// OffsetStorage is nil when the plan declares no offset storage or the
	// partition does not support offset management.
	OffsetStorage offset.Storage

	logger log.CtxLogger
}

// Run reads tuples from the partition and pushes them through the tree until
// the partition is exhausted or ctx is canceled. The offset is persisted after
// every processed tuple. It returns the number of tuples read.
func (d *Driver) Run(ctx context.Context) (int, error) {
	ctx = ctxutil.ContextWithPartitionID(ctxutil.ContextWithPlanName(ctx, d.Plan.Name), d.Partition.ID())
	var n int
	for {
		t, err := d.Partition.Next(ctx)
		if cerrors.Is(err, feed.ErrEndOfPartition) {
			d.logger.Debug(ctx).
				Int("tuples", n).
				Msg("partition exhausted")
			return n, nil
		}
		if err != nil {
			return n, cerrors.Errorf("partition %s: %w", d.Partition.ID(), err)
		}
		n++
		measure.TuplesProcessedCounter.WithLabelValues(d.Plan.Name).Inc()

		if err := d.Root.Process(ctx, t); err != nil {
			return n, err
		}
		if d.OffsetStorage != nil {
			if err := d.OffsetStorage.PersistOffset(ctx); err != nil {
				return n, cerrors.Errorf("partition %s: %w", d.Partition.ID(), err)
			}
		}
	}
}
