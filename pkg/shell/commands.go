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

package shell

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/log"
	"github.com/teknek/teknek/pkg/plan"
)

// keyword reports whether args[i] equals kw, ignoring case.
func keyword(args []string, i int, kw string) bool {
	return i < len(args) && strings.EqualFold(args[i], kw)
}

// CREATE <planName>
func (b *Builder) createPlan(_ context.Context, args []string) (State, error) {
	if len(args) != 2 {
		return 0, usage("CREATE <planName>")
	}
	b.plan.Name = args[1]
	return StatePlan, nil
}

// CREATE FEED <name> USING <ref>
// CREATE OPERATOR <name> AS <ref>
// CREATE OFFSETSTORAGE <name> USING <ref>
func (b *Builder) create(_ context.Context, args []string) (State, error) {
	switch {
	case keyword(args, 1, "FEED"):
		if len(args) != 5 || !keyword(args, 3, "USING") {
			return 0, usage("CREATE FEED <name> USING <feedRef>")
		}
		b.plan.FeedDesc = &plan.FeedDesc{
			Name:       args[2],
			FeedRef:    args[4],
			Properties: plan.Properties{},
		}
		return StateFeed, nil
	case keyword(args, 1, "OPERATOR"):
		if len(args) != 5 || !keyword(args, 3, "AS") {
			return 0, usage("CREATE OPERATOR <name> AS <operatorRef>")
		}
		err := b.symbols.add(&plan.OperatorDesc{
			Name:        args[2],
			OperatorRef: args[4],
		})
		if err != nil {
			return 0, err
		}
		return StateOperator, nil
	case keyword(args, 1, "OFFSETSTORAGE"):
		if len(args) != 5 || !keyword(args, 3, "USING") {
			return 0, usage("CREATE OFFSETSTORAGE <name> USING <storageRef>")
		}
		b.plan.OffsetStorageDesc = &plan.OffsetStorageDesc{
			Name:       args[2],
			StorageRef: args[4],
			Properties: plan.Properties{},
		}
		return StateOffsetStorage, nil
	default:
		return 0, usage("CREATE FEED|OPERATOR|OFFSETSTORAGE ...")
	}
}

// SET ROOT <name>
// SET RETRY <n>
func (b *Builder) setPlanField(_ context.Context, args []string) (State, error) {
	switch {
	case keyword(args, 1, "ROOT"):
		if len(args) != 3 {
			return 0, usage("SET ROOT <operatorName>")
		}
		d, ok := b.symbols.get(args[2])
		if !ok {
			return 0, notAnOperator(args[2])
		}
		b.plan.RootOperator = d
		return StatePlan, nil
	case keyword(args, 1, "RETRY"):
		if len(args) != 3 {
			return 0, usage("SET RETRY <n>")
		}
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 0 {
			return 0, commandErrorf("retry must be a non-negative integer, got %s", args[2])
		}
		b.plan.TupleRetry = n
		return StatePlan, nil
	default:
		return 0, usage("SET ROOT <operatorName> | SET RETRY <n>")
	}
}

// FOR <parent> ADD CHILD <child>
func (b *Builder) addChild(_ context.Context, args []string) (State, error) {
	if len(args) != 5 || !keyword(args, 2, "ADD") || !keyword(args, 3, "CHILD") {
		return 0, usage("FOR <operatorName> ADD CHILD <operatorName>")
	}
	parent, child := args[1], args[4]
	if _, ok := b.symbols.get(parent); !ok {
		return 0, notAnOperator(parent)
	}
	if _, ok := b.symbols.get(child); !ok {
		return 0, notAnOperator(child)
	}
	if err := b.symbols.link(parent, child); err != nil {
		return 0, err
	}
	return StatePlan, nil
}

// SAVE
func (b *Builder) save(ctx context.Context, args []string) (State, error) {
	if len(args) != 1 {
		return 0, usage("SAVE")
	}
	if b.store == nil {
		return 0, commandErrorf("no plan store configured")
	}
	if err := b.store.Set(ctx, b.plan); err != nil {
		return 0, cerrors.Errorf("could not save plan: %w", err)
	}
	b.logger.Info(ctx).Str(log.PlanNameField, b.plan.Name).Msg("plan saved")
	return StatePlan, nil
}

// EXIT
func (b *Builder) exit(_ context.Context, args []string) (State, error) {
	if len(args) != 1 {
		return 0, usage("EXIT")
	}
	return StatePlan, nil
}

func (b *Builder) setFeedProperty(_ context.Context, args []string) (State, error) {
	if err := setProperty(b.plan.FeedDesc.Properties, args); err != nil {
		return 0, err
	}
	return StateFeed, nil
}

func (b *Builder) setOffsetStorageProperty(_ context.Context, args []string) (State, error) {
	if err := setProperty(b.plan.OffsetStorageDesc.Properties, args); err != nil {
		return 0, err
	}
	return StateOffsetStorage, nil
}

// setProperty handles SET PROPERTY <name> AS <value>. A value starting with a
// quote is stored as a string without its quotes and may contain spaces,
// anything else must be a number.
func setProperty(props plan.Properties, args []string) error {
	if len(args) < 5 || !keyword(args, 1, "PROPERTY") || !keyword(args, 3, "AS") {
		return usage("SET PROPERTY <name> AS <value>")
	}
	name, value := args[2], args[4]
	if strings.HasPrefix(value, "'") {
		props[name] = strings.ReplaceAll(strings.Join(args[4:], " "), "'", "")
		return nil
	}
	if len(args) != 5 {
		return usage("SET PROPERTY <name> AS <value>")
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return commandErrorf("problem setting property %s: %s is neither a quoted string nor a number", name, value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return commandErrorf("problem setting property %s: %s is not a finite number", name, value)
	}
	props[name] = f
	return nil
}

func notAnOperator(name string) *CommandError {
	return commandErrorf("%s is not the name of an operator", name)
}
