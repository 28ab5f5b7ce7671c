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
	"io"
	"os"

	"github.com/conduitio/ecdysis"
)

var (
	_ ecdysis.CommandWithExecute = (*ShellCommand)(nil)
	_ ecdysis.CommandWithDocs    = (*ShellCommand)(nil)
)

type ShellCommand struct {
	root *RootCommand
}

func (c *ShellCommand) Usage() string { return "shell" }

func (c *ShellCommand) Docs() ecdysis.Docs {
	return ecdysis.Docs{
		Short: "Build a plan interactively",
		Long: `Starts an interactive session for building a plan. Saved plans are stored in
the configured database and can be compiled with 'teknek compile --stored'.`,
		Example: "teknek shell --db.type sqlite",
	}
}

func (c *ShellCommand) Execute(ctx context.Context) error {
	r, err := c.root.runtime(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	var in io.Reader = os.Stdin
	var out io.Writer = os.Stdout
	if cmd := ecdysis.CobraCmdFromContext(ctx); cmd != nil {
		in, out = cmd.InOrStdin(), cmd.OutOrStdout()
	}
	return r.NewShell().Run(ctx, in, out)
}
