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
	"bufio"
	"context"
	"io"

	"github.com/teknek/teknek/pkg/foundation/cerrors"
)

// Run reads commands line by line from in and writes the message of every
// response, if any, followed by the next prompt to out. It returns when in is
// exhausted or ctx is canceled.
func (b *Builder) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if _, err := io.WriteString(out, b.state.Prompt()); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp := b.Send(ctx, scanner.Text())
		if resp.Message != "" {
			if _, err := io.WriteString(out, resp.Message+"\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(out, resp.Prompt); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return cerrors.Errorf("failed reading commands: %w", err)
	}
	return nil
}
