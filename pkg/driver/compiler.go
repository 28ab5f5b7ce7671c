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

// Package driver compiles plans into execution trees bound to feed
// partitions and recovers the partitions from their persisted offsets.
package driver

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/teknek/teknek/pkg/feed"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/ctxutil"
	"github.com/teknek/teknek/pkg/foundation/log"
	"github.com/teknek/teknek/pkg/foundation/metrics/measure"
	"github.com/teknek/teknek/pkg/offset"
	"github.com/teknek/teknek/pkg/operator"
	"github.com/teknek/teknek/pkg/operator/jsoperator"
	"github.com/teknek/teknek/pkg/plan"
)

const (
	DefaultMaxDepth = 1000
	DefaultMaxNodes = 100000
)

// Compiler turns plans into execution trees. A Compiler holds no state
// between compilations and is safe for concurrent use as long as the
// registries are.
type Compiler struct {
	Operators *operator.Registry
	Offsets   *offset.Registry

	// MaxDepth is the deepest operator tree that is compiled, zero means
	// DefaultMaxDepth.
	MaxDepth int
	// MaxNodes is the largest number of runtime nodes in one execution tree,
	// zero means DefaultMaxNodes. Shared subtrees count once per parent.
	MaxNodes int
	// MinBackoff and MaxBackoff bound the delay between tuple retries.
	MinBackoff time.Duration
	MaxBackoff time.Duration

	logger log.CtxLogger
}

func NewCompiler(logger log.CtxLogger, operators *operator.Registry, offsets *offset.Registry) *Compiler {
	return &Compiler{
		Operators: operators,
		Offsets:   offsets,
		MaxDepth:  DefaultMaxDepth,
		MaxNodes:  DefaultMaxNodes,
		logger:    logger.WithComponent("driver.Compiler"),
	}
}

// Compile builds the execution tree of pl for partition p. The root operator
// is resolved first, then the partition is seeded with the latest persisted
// offset, then the children are resolved depth first in declaration order.
// Any failure aborts the compilation.
func (c *Compiler) Compile(ctx context.Context, p feed.Partition, pl *plan.Plan) (*Driver, error) {
	start := time.Now()
	defer func() {
		measure.CompileDurationTimer.WithLabelValues(pl.Name).Observe(time.Since(start).Seconds())
	}()

	if pl.RootOperator == nil {
		return nil, cerrors.Errorf("plan %q: %w", pl.Name, ErrNoRootOperator)
	}
	ctx = ctxutil.ContextWithPartitionID(ctxutil.ContextWithPlanName(ctx, pl.Name), p.ID())

	rootOp, err := c.ResolveOperator(ctx, pl.RootOperator)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		Plan:      pl,
		Partition: p,
		logger:    c.logger,
	}

	if pl.OffsetStorageDesc != nil {
		if p.SupportsOffsetManagement() {
			d.OffsetStorage, err = c.recover(ctx, p, pl)
			if err != nil {
				return nil, err
			}
		} else {
			c.logger.Warn(ctx).
				Str(log.OffsetStorageField, pl.OffsetStorageDesc.StorageRef).
				Msg("partition does not support offset management, ignoring offset storage")
		}
	}

	d.Root = newNode(pl.RootOperator, rootOp, c.newCollector(pl.Name, pl.TupleRetry))
	path := map[*plan.OperatorDesc]bool{pl.RootOperator: true}
	budget := c.maxNodes() - 1
	if err := c.compileChildren(ctx, pl.Name, d.Root, path, &budget); err != nil {
		return nil, err
	}

	measure.NodesCompiledCounter.WithLabelValues(pl.Name).Add(float64(d.Root.Count()))
	c.logger.Debug(ctx).
		Int("nodes", d.Root.Count()).
		Dur(log.DurationField, time.Since(start)).
		Msg("plan compiled")
	return d, nil
}

// compileChildren resolves the children of parent.Desc and attaches them.
// path holds the descriptors on the way from the root to parent, a
// descriptor showing up twice on a path means the tree is cyclic. budget is
// the number of nodes that may still be created.
func (c *Compiler) compileChildren(ctx context.Context, planName string, parent *Node, path map[*plan.OperatorDesc]bool, budget *int) error {
	if len(path) > c.maxDepth() {
		return cerrors.Errorf("%w (%d)", ErrMaxDepthExceeded, c.maxDepth())
	}
	for _, desc := range parent.Desc.Children {
		if path[desc] {
			return cerrors.Errorf("%q: %w", desc.Ref(), ErrOperatorCycle)
		}
		if *budget <= 0 {
			return cerrors.Errorf("%w (%d)", ErrMaxNodesExceeded, c.maxNodes())
		}
		*budget--
		op, err := c.ResolveOperator(ctx, desc)
		if err != nil {
			return err
		}
		child := newNode(desc, op, c.newCollector(planName, parent.Collector.TupleRetry))
		parent.AddChild(child)

		path[desc] = true
		err = c.compileChildren(ctx, planName, child, path, budget)
		delete(path, desc)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) recover(ctx context.Context, p feed.Partition, pl *plan.Plan) (offset.Storage, error) {
	storage, err := c.ResolveOffsetStorage(ctx, p, pl, pl.OffsetStorageDesc)
	if err != nil {
		return nil, err
	}

	off, err := storage.FindLatestPersistedOffset(ctx)
	if err != nil {
		return nil, &RecoveryError{PartitionID: p.ID(), Err: err}
	}
	if off == nil {
		c.logger.Debug(ctx).
			Msg("no persisted offset found, partition starts from its initial position")
		return storage, nil
	}

	serialized := string(off.Serialize())
	if err := p.SetOffset(serialized); err != nil {
		return nil, &RecoveryError{PartitionID: p.ID(), Err: err}
	}
	measure.OffsetsRecoveredCounter.WithLabelValues(pl.Name).Inc()
	c.logger.Info(ctx).
		Str(log.OffsetField, serialized).
		Msg("partition recovered from persisted offset")
	return storage, nil
}

func (c *Compiler) newCollector(planName string, retry int) *Collector {
	return &Collector{
		TupleRetry: retry,
		MinBackoff: c.MinBackoff,
		MaxBackoff: c.MaxBackoff,
		planName:   planName,
		logger:     c.logger,
	}
}

func (c *Compiler) maxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

func (c *Compiler) maxNodes() int {
	if c.MaxNodes <= 0 {
		return DefaultMaxNodes
	}
	return c.MaxNodes
}

// ResolveOperator instantiates the operator described by d according to its
// script kind.
func (c *Compiler) ResolveOperator(ctx context.Context, d *plan.OperatorDesc) (operator.Operator, error) {
	var (
		op  operator.Operator
		err error
	)
	switch kind := d.ResolvedKind(); kind {
	case plan.KindNative:
		switch {
		case d.OperatorRef == "":
			err = ErrMissingReference
		case d.Script != "":
			err = cerrors.Errorf("%w: native operator carries a script", ErrAmbiguousOperator)
		default:
			op, err = c.Operators.New(d.OperatorRef)
		}
	case plan.KindJavaScript, plan.KindJavaScriptClosure:
		if d.OperatorRef != "" {
			err = cerrors.Errorf("%w: %s script also names %q", ErrAmbiguousOperator, kind, d.OperatorRef)
			break
		}
		if kind == plan.KindJavaScript {
			op, err = jsoperator.NewClass(d.Script, c.logger)
		} else {
			op, err = jsoperator.NewClosure(d.Script, c.logger)
		}
	default:
		err = cerrors.Errorf("%w %q", ErrUnsupportedKind, kind)
	}
	if err != nil {
		measure.ResolutionFailuresCounter.WithLabelValues(KindOperator).Inc()
		c.logger.Err(ctx, err).
			Str(log.OperatorRefField, d.Ref()).
			Str(log.ScriptKindField, string(d.ResolvedKind())).
			Msg("could not resolve operator")
		return nil, &ComponentResolutionError{Kind: KindOperator, Ref: d.Ref(), Err: err}
	}
	return op, nil
}

// ResolveOffsetStorage instantiates the offset storage described by d for
// partition p of plan pl.
func (c *Compiler) ResolveOffsetStorage(ctx context.Context, p feed.Partition, pl *plan.Plan, d *plan.OffsetStorageDesc) (offset.Storage, error) {
	storage, err := c.newOffsetStorage(ctx, p, pl, d)
	if err != nil {
		measure.ResolutionFailuresCounter.WithLabelValues(KindOffsetStorage).Inc()
		c.logger.Err(ctx, err).
			Str(log.OffsetStorageField, d.StorageRef).
			Msg("could not resolve offset storage")
		return nil, &ComponentResolutionError{Kind: KindOffsetStorage, Ref: d.StorageRef, Err: err}
	}
	return storage, nil
}

func (c *Compiler) newOffsetStorage(ctx context.Context, p feed.Partition, pl *plan.Plan, d *plan.OffsetStorageDesc) (offset.Storage, error) {
	if d.StorageRef == "" {
		return nil, ErrMissingReference
	}
	ctor, err := c.Offsets.Get(d.StorageRef)
	if err != nil {
		return nil, err
	}
	storage, err := ctor(ctx, p, pl, d.Properties)
	if err != nil {
		return nil, err
	}
	if storage == nil {
		return nil, cerrors.New("constructor returned nil")
	}
	return storage, nil
}

// CompileAll compiles pl for every partition of f concurrently. The drivers
// are returned in partition order. The first failure cancels the remaining
// compilations.
func (c *Compiler) CompileAll(ctx context.Context, f feed.Feed, pl *plan.Plan) ([]*Driver, error) {
	parts, err := f.Partitions(ctx)
	if err != nil {
		return nil, cerrors.Errorf("could not list partitions: %w", err)
	}

	drivers := make([]*Driver, len(parts))
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	for i, part := range parts {
		p.Go(func(ctx context.Context) error {
			d, err := c.Compile(ctx, part, pl)
			if err != nil {
				return cerrors.Errorf("partition %s: %w", part.ID(), err)
			}
			drivers[i] = d
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return drivers, nil
}
