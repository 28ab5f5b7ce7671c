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
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/operator"
	"github.com/teknek/teknek/pkg/plan"
)

// Node is a runtime node of an execution tree. It owns one operator instance
// and the collector delivering tuples to it.
type Node struct {
	ID        string
	Desc      *plan.OperatorDesc
	Operator  operator.Operator
	Collector *Collector
	Children  []*Node
}

func newNode(desc *plan.OperatorDesc, op operator.Operator, c *Collector) *Node {
	return &Node{
		ID:        uuid.NewString(),
		Desc:      desc,
		Operator:  op,
		Collector: c,
	}
}

// AddChild appends child to the children of the node.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// Process passes the tuple to the operator and forwards every emitted tuple
// to all children, in order.
func (n *Node) Process(ctx context.Context, in operator.Tuple) error {
	out, err := n.Collector.deliver(ctx, n.Operator, in)
	if err != nil {
		return cerrors.Errorf("node %s (%s): %w", n.ID, n.Desc.Ref(), err)
	}
	for _, t := range out {
		for _, c := range n.Children {
			// children receive a copy of the tuple
			if err := c.Process(ctx, t.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.Children {
		count += c.Count()
	}
	return count
}

// Walk calls fn for every node in the subtree in depth first order.
func (n *Node) Walk(fn func(n *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(n *Node, depth int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// String renders the subtree as an indented list.
func (n *Node) String() string {
	var sb strings.Builder
	n.Walk(func(n *Node, depth int) {
		fmt.Fprintf(&sb, "%s- %s [%s] retry=%d\n",
			strings.Repeat("  ", depth), n.Desc.Ref(), n.Desc.ResolvedKind(), n.Collector.TupleRetry)
	})
	return sb.String()
}
