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

// Package ctxutil stores the plan and partition being worked on in a context
// so that log entries can be tagged with them.
package ctxutil

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/teknek/teknek/pkg/foundation/log"
)

type (
	planNameCtxKey    struct{}
	partitionIDCtxKey struct{}
)

// ContextWithPlanName wraps ctx and returns a context that contains the plan
// name.
func ContextWithPlanName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, planNameCtxKey{}, name)
}

// PlanNameFromContext returns the plan name stored in ctx or an empty string.
func PlanNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(planNameCtxKey{}).(string)
	return name
}

// ContextWithPartitionID wraps ctx and returns a context that contains the
// feed partition ID.
func ContextWithPartitionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, partitionIDCtxKey{}, id)
}

// PartitionIDFromContext returns the partition ID stored in ctx or an empty
// string.
func PartitionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(partitionIDCtxKey{}).(string)
	return id
}

// PlanNameLogCtxHook adds the plan name found in the event context to the log
// output.
type PlanNameLogCtxHook struct{}

func (PlanNameLogCtxHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	if name := PlanNameFromContext(e.GetCtx()); name != "" {
		e.Str(log.PlanNameField, name)
	}
}

// PartitionIDLogCtxHook adds the partition ID found in the event context to
// the log output.
type PartitionIDLogCtxHook struct{}

func (PartitionIDLogCtxHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	if id := PartitionIDFromContext(e.GetCtx()); id != "" {
		e.Str(log.PartitionIDField, id)
	}
}

// Hooks returns all log hooks of this package.
func Hooks() []zerolog.Hook {
	return []zerolog.Hook{PlanNameLogCtxHook{}, PartitionIDLogCtxHook{}}
}
