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

	"github.com/conduitio/ecdysis"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/plan"
)

var (
	_ ecdysis.CommandWithFlags   = (*CompileCommand)(nil)
	_ ecdysis.CommandWithExecute = (*CompileCommand)(nil)
	_ ecdysis.CommandWithDocs    = (*CompileCommand)(nil)
	_ ecdysis.CommandWithArgs    = (*CompileCommand)(nil)
)

type CompileFlags struct {
	Stored  bool `long:"stored" usage:"load the plan from the plan store instead of a file"`
	Run     bool `long:"run" usage:"run the compiled plan until all partitions are exhausted"`
	Metrics bool `long:"metrics" usage:"print compiler and driver metrics in the prometheus text format when done"`
}

type CompileArgs struct {
	Plan string
}

type CompileCommand struct {
	root  *RootCommand
	flags CompileFlags
	args  CompileArgs
}

func (c *CompileCommand) Usage() string { return "compile" }

func (c *CompileCommand) Flags() []ecdysis.Flag {
	return ecdysis.BuildFlags(&c.flags)
}

func (c *CompileCommand) Docs() ecdysis.Docs {
	return ecdysis.Docs{
		Short: "Compile a plan",
		Long: `Compiles a plan for every partition of its feed and prints the resulting
operator trees. The plan is read from a YAML file, or from the plan store when
--stored is set.`,
		Example: "teknek compile plan.yaml\n" +
			"teknek compile --stored --run wordcount\n" +
			"teknek compile --run --metrics plan.yaml",
	}
}

func (c *CompileCommand) Args(args []string) error {
	if len(args) == 0 {
		return cerrors.Errorf("requires a plan file or name")
	}
	if len(args) > 1 {
		return cerrors.Errorf("too many arguments")
	}
	c.args.Plan = args[0]
	return nil
}

func (c *CompileCommand) Execute(ctx context.Context) error {
	r, err := c.root.runtime(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	var pl *plan.Plan
	if c.flags.Stored {
		pl, err = r.PlanStore.Get(ctx, c.args.Plan)
	} else {
		pl, err = readPlan(c.args.Plan)
	}
	if err != nil {
		return err
	}

	drivers, err := r.Compile(ctx, pl)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if cmd := ecdysis.CobraCmdFromContext(ctx); cmd != nil {
		out = cmd.OutOrStdout()
	}
	for _, d := range drivers {
		_, _ = fmt.Fprintf(out, "partition %s (offset %q)\n%s", d.Partition.ID(), d.Partition.Offset(), d.Root)
	}

	if c.flags.Run {
		n, err := r.Run(ctx, drivers)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "processed %d tuples\n", n)
	}
	if c.flags.Metrics {
		return r.WriteMetrics(out)
	}
	return nil
}

func readPlan(path string) (*plan.Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.Errorf("could not read plan file: %w", err)
	}
	pl, err := plan.UnmarshalYAML(raw)
	if err != nil {
		return nil, cerrors.Errorf("could not parse plan file %q: %w", path, err)
	}
	return pl, nil
}
