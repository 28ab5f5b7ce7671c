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

package root

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/conduitio/ecdysis"
	"github.com/teknek/teknek/pkg/plan"
)

var (
	_ ecdysis.CommandWithExecute = (*PlansCommand)(nil)
	_ ecdysis.CommandWithDocs    = (*PlansCommand)(nil)
	_ ecdysis.CommandWithAliases = (*PlansCommand)(nil)
)

type PlansCommand struct {
	root *RootCommand
}

func (c *PlansCommand) Usage() string { return "plans" }

func (c *PlansCommand) Aliases() []string { return []string{"ls"} }

func (c *PlansCommand) Docs() ecdysis.Docs {
	return ecdysis.Docs{
		Short: "List stored plans",
	}
}

func (c *PlansCommand) Execute(ctx context.Context) error {
	r, err := c.root.runtime(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	plans, err := r.PlanStore.GetAll(ctx)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if cmd := ecdysis.CobraCmdFromContext(ctx); cmd != nil {
		out = cmd.OutOrStdout()
	}
	printPlans(out, plans)
	return nil
}

func printPlans(out io.Writer, plans map[string]*plan.Plan) {
	names := make([]string, 0, len(plans))
	for name := range plans {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		pl := plans[name]
		feedRef := "-"
		if pl.FeedDesc != nil {
			feedRef = pl.FeedDesc.FeedRef
		}
		_, _ = fmt.Fprintf(out, "%s\tfeed=%s\toperators=%d\tretry=%d\n", name, feedRef, pl.RootOperator.Count(), pl.TupleRetry)
	}
}
