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

// Package teknek wires the components of teknek together based on a Config.
package teknek

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"github.com/teknek/teknek/pkg/driver"
	"github.com/teknek/teknek/pkg/feed"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/ctxutil"
	"github.com/teknek/teknek/pkg/foundation/database"
	"github.com/teknek/teknek/pkg/foundation/database/badger"
	"github.com/teknek/teknek/pkg/foundation/database/inmemory"
	"github.com/teknek/teknek/pkg/foundation/database/postgres"
	"github.com/teknek/teknek/pkg/foundation/database/sqlite"
	"github.com/teknek/teknek/pkg/foundation/log"
	"github.com/teknek/teknek/pkg/foundation/metrics/measure"
	"github.com/teknek/teknek/pkg/offset"
	"github.com/teknek/teknek/pkg/operator"
	"github.com/teknek/teknek/pkg/plan"
	"github.com/teknek/teknek/pkg/shell"
)

// Runtime sets up all services for compiling and running plans.
type Runtime struct {
	Config Config

	DB        database.DB
	PlanStore *plan.Store
	Operators *operator.Registry
	Feeds     *feed.Registry
	Offsets   *offset.Registry
	Compiler  *driver.Compiler
	Metrics   *prometheus.Registry

	logger log.CtxLogger
}

// NewRuntime sets up a teknek runtime, logs are written to w.
func NewRuntime(ctx context.Context, cfg Config, w io.Writer) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, cerrors.Errorf("invalid config: %w", err)
	}

	logger := newLogger(w, cfg.Log.Level, cfg.Log.Format)

	db, err := newDB(ctx, logger, cfg)
	if err != nil {
		return nil, cerrors.Errorf("failed to create a DB instance: %w", err)
	}

	offsets, err := newOffsetRegistry(cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	metrics := measure.NewRegistry()
	measure.TeknekInfo.WithLabelValues(Version(true)).Set(1)

	compiler := driver.NewCompiler(logger, cfg.OperatorRegistry, offsets)
	compiler.MaxDepth = cfg.Compiler.MaxDepth
	compiler.MaxNodes = cfg.Compiler.MaxNodes

	return &Runtime{
		Config:    cfg,
		DB:        db,
		PlanStore: plan.NewStore(db),
		Operators: cfg.OperatorRegistry,
		Feeds:     cfg.FeedRegistry,
		Offsets:   offsets,
		Compiler:  compiler,
		Metrics:   metrics,
		logger:    logger.WithComponent("teknek.Runtime"),
	}, nil
}

func newLogger(w io.Writer, level string, format string) log.CtxLogger {
	l, _ := zerolog.ParseLevel(level)
	f, _ := log.ParseFormat(format)
	return log.InitLogger(w, l, f, ctxutil.Hooks()...)
}

func newDB(ctx context.Context, logger log.CtxLogger, cfg Config) (database.DB, error) {
	if cfg.DB.Driver != nil {
		return cfg.DB.Driver, nil
	}
	switch cfg.DB.Type {
	case DBTypeBadger:
		return badger.New(logger.Logger, cfg.DB.Badger.Path)
	case DBTypePostgres:
		return postgres.New(ctx, logger, cfg.DB.Postgres.ConnectionString, cfg.DB.Postgres.Table)
	case DBTypeSQLite:
		return sqlite.New(ctx, logger.Logger, cfg.DB.SQLite.Path, cfg.DB.SQLite.Table)
	case DBTypeInMemory:
		logger.Warn(ctx).Msg("Using in-memory store, all plans and offsets will be lost when teknek stops.")
		return &inmemory.DB{}, nil
	default:
		return nil, cerrors.Errorf("invalid DB type %q", cfg.DB.Type)
	}
}

func newOffsetRegistry(cfg Config, db database.DB) (*offset.Registry, error) {
	r := offset.NewRegistry()
	r.MustRegister(offset.DBRef, offset.NewDBConstructor(db))

	if cfg.S3.Endpoint == "" {
		return r, nil
	}
	s3cfg := offset.S3Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
		Bucket:    cfg.S3.Bucket,
	}
	client, err := offset.NewMinIOClient(s3cfg)
	if err != nil {
		return nil, cerrors.Errorf("failed to create s3 client: %w", err)
	}
	r.MustRegister(offset.S3Ref, offset.NewS3Constructor(client, s3cfg))
	return r, nil
}

// NewShell returns a plan builder that saves plans in the plan store.
func (r *Runtime) NewShell() *shell.Builder {
	return shell.New(r.logger, r.PlanStore)
}

// Compile builds the feed of pl and compiles pl for all its partitions.
func (r *Runtime) Compile(ctx context.Context, pl *plan.Plan) ([]*driver.Driver, error) {
	f, err := r.Feeds.New(pl.FeedDesc)
	if err != nil {
		return nil, cerrors.Errorf("plan %q: %w", pl.Name, err)
	}
	return r.Compiler.CompileAll(ctx, f, pl)
}

// Run runs all drivers concurrently until their partitions are exhausted. It
// returns the total number of tuples read.
func (r *Runtime) Run(ctx context.Context, drivers []*driver.Driver) (int, error) {
	p := pool.NewWithResults[int]().WithErrors().WithContext(ctx).WithCancelOnError()
	for _, d := range drivers {
		p.Go(func(ctx context.Context) (int, error) {
			return d.Run(ctx)
		})
	}
	counts, err := p.Wait()
	var total int
	for _, n := range counts {
		total += n
	}
	if err != nil {
		return total, err
	}
	r.logger.Info(ctx).
		Int("drivers", len(drivers)).
		Int("tuples", total).
		Msg("all partitions exhausted")
	return total, nil
}

// WriteMetrics writes the current value of all teknek metrics to w in the
// prometheus text format.
func (r *Runtime) WriteMetrics(w io.Writer) error {
	mfs, err := r.Metrics.Gather()
	if err != nil {
		return cerrors.Errorf("could not gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return cerrors.Errorf("could not encode metric %q: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Close releases the resources held by the runtime.
func (r *Runtime) Close() error {
	return r.DB.Close()
}
