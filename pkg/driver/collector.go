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
	"time"

	"github.com/jpillora/backoff"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/log"
	"github.com/teknek/teknek/pkg/foundation/metrics/measure"
	"github.com/teknek/teknek/pkg/operator"
)

const (
	defaultMinBackoff = 10 * time.Millisecond
	defaultMaxBackoff = time.Second
)

// Collector delivers tuples to the operator of a node. A failing operator is
// retried up to TupleRetry times before the error is returned.
type Collector struct {
	TupleRetry int

	MinBackoff time.Duration
	MaxBackoff time.Duration

	planName string
	logger   log.CtxLogger
}

func (c *Collector) deliver(ctx context.Context, op operator.Operator, in operator.Tuple) ([]operator.Tuple, error) {
	b := &backoff.Backoff{
		Factor: 2,
		Jitter: true,
		Min:    c.MinBackoff,
		Max:    c.MaxBackoff,
	}
	if b.Min == 0 {
		b.Min = defaultMinBackoff
	}
	if b.Max == 0 {
		b.Max = defaultMaxBackoff
	}

	for {
		out, err := op.Process(ctx, in)
		if err == nil {
			return out, nil
		}
		attempt := int(b.Attempt())
		if attempt >= c.TupleRetry {
			return nil, cerrors.Errorf("operator failed after %d attempts: %w", attempt+1, err)
		}

		d := b.Duration()
		measure.TupleRetriesCounter.WithLabelValues(c.planName).Inc()
		c.logger.Debug(ctx).
			Err(err).
			Int(log.AttemptField, attempt+1).
			Dur(log.DurationField, d).
			Msg("operator failed, retrying")

		if err := wait(ctx, d); err != nil {
			return nil, err
		}
	}
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
