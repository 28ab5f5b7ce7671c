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
	"slices"

	"github.com/dominikbraun/graph"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/plan"
)

// symbols is the table of operators created in a session. Descriptors live in
// an arena and are addressed by index, links between them are mirrored in a
// directed graph that refuses cycles.
type symbols struct {
	arena []*plan.OperatorDesc
	index map[string]int
	links graph.Graph[string, string]
}

func newSymbols() *symbols {
	return &symbols{
		index: make(map[string]int),
		links: graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles()),
	}
}

func (s *symbols) add(d *plan.OperatorDesc) error {
	if _, ok := s.index[d.Name]; ok {
		return commandErrorf("%s is already the name of an operator", d.Name)
	}
	if err := s.links.AddVertex(d.Name); err != nil {
		return cerrors.Errorf("could not add operator %s: %w", d.Name, err)
	}
	s.index[d.Name] = len(s.arena)
	s.arena = append(s.arena, d)
	return nil
}

func (s *symbols) get(name string) (*plan.OperatorDesc, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.arena[i], true
}

// link makes child a child of parent. The same child may be linked under
// several parents, the descriptor is then shared.
func (s *symbols) link(parent, child string) error {
	if parent == child {
		return commandErrorf("%s can't be a child of itself", child)
	}
	err := s.links.AddEdge(parent, child)
	switch {
	case cerrors.Is(err, graph.ErrEdgeCreatesCycle):
		return commandErrorf("adding %s as a child of %s would create a cycle", child, parent)
	case cerrors.Is(err, graph.ErrEdgeAlreadyExists):
		// linking the same pair twice duplicates the child, the graph only
		// tracks that a link exists
	case err != nil:
		return cerrors.Errorf("could not link %s to %s: %w", child, parent, err)
	}
	p, _ := s.get(parent)
	c, _ := s.get(child)
	p.AddChild(c)
	return nil
}

func (s *symbols) parents(name string) []string {
	preds, err := s.links.PredecessorMap()
	if err != nil {
		return nil
	}
	var out []string
	for p := range preds[name] {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
