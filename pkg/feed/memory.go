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

package feed

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/operator"
	"github.com/teknek/teknek/pkg/plan"
)

const (
	MemoryRef = "teknek.feed.Memory"
	StaticRef = "teknek.feed.Static"

	defaultPartitions = 1
	defaultLimit      = 10
)

// partitionNamespace is the namespace of the name based UUIDs identifying
// builtin partitions.
var partitionNamespace = uuid.MustParse("6f1c4c52-6b0d-4e36-9a3c-0a6e5d1a2b7f")

func init() {
	GlobalRegistry.MustRegister(MemoryRef, NewMemory)
	GlobalRegistry.MustRegister(StaticRef, NewStatic)
}

// Memory is a feed producing a fixed number of sequence tuples per partition.
// Partitions track their position and support offset management.
//
// Properties:
//   - topic: name used to derive partition IDs (default "memory")
//   - partitions: number of partitions (default 1)
//   - limit: tuples per partition (default 10)
type Memory struct {
	topic      string
	partitions int
	limit      int
}

func NewMemory(props plan.Properties) (Feed, error) {
	m := &Memory{
		topic:      props.StringOr("topic", "memory"),
		partitions: props.Int("partitions", defaultPartitions),
		limit:      props.Int("limit", defaultLimit),
	}
	if m.partitions < 1 {
		return nil, cerrors.Errorf("invalid partitions %d, must be at least 1", m.partitions)
	}
	if m.limit < 0 {
		return nil, cerrors.Errorf("invalid limit %d, must not be negative", m.limit)
	}
	return m, nil
}

func (m *Memory) Partitions(context.Context) ([]Partition, error) {
	out := make([]Partition, m.partitions)
	for i := range out {
		out[i] = &MemoryPartition{
			id:    partitionID(m.topic, i),
			index: i,
			limit: m.limit,
		}
	}
	return out, nil
}

// MemoryPartition emits tuples {"partition": index, "seq": n} for n in
// [offset, limit).
type MemoryPartition struct {
	id    string
	index int
	limit int

	m   sync.Mutex
	pos int
}

func (p *MemoryPartition) ID() string                     { return p.id }
func (p *MemoryPartition) SupportsOffsetManagement() bool { return true }

func (p *MemoryPartition) SetOffset(offset string) error {
	pos, err := strconv.Atoi(offset)
	if err != nil {
		return cerrors.Errorf("invalid offset %q: %w", offset, err)
	}
	if pos < 0 {
		return cerrors.Errorf("invalid offset %q: must not be negative", offset)
	}
	p.m.Lock()
	defer p.m.Unlock()
	p.pos = pos
	return nil
}

func (p *MemoryPartition) Offset() string {
	p.m.Lock()
	defer p.m.Unlock()
	return strconv.Itoa(p.pos)
}

func (p *MemoryPartition) Next(ctx context.Context) (operator.Tuple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.m.Lock()
	defer p.m.Unlock()
	if p.pos >= p.limit {
		return nil, ErrEndOfPartition
	}
	t := operator.Tuple{"partition": p.index, "seq": p.pos}
	p.pos++
	return t, nil
}

// Static is a feed with a single partition repeating one line. It does not
// support offset management.
//
// Properties:
//   - line: the emitted line, stored under "line" (default "")
//   - limit: number of tuples (default 10)
type Static struct {
	line  string
	limit int
}

func NewStatic(props plan.Properties) (Feed, error) {
	s := &Static{
		line:  props.StringOr("line", ""),
		limit: props.Int("limit", defaultLimit),
	}
	if s.limit < 0 {
		return nil, cerrors.Errorf("invalid limit %d, must not be negative", s.limit)
	}
	return s, nil
}

func (s *Static) Partitions(context.Context) ([]Partition, error) {
	return []Partition{&staticPartition{id: partitionID("static", 0), line: s.line, limit: s.limit}}, nil
}

type staticPartition struct {
	id    string
	line  string
	limit int

	m    sync.Mutex
	sent int
}

func (p *staticPartition) ID() string                     { return p.id }
func (p *staticPartition) SupportsOffsetManagement() bool { return false }
func (p *staticPartition) Offset() string                 { return "" }

func (p *staticPartition) SetOffset(string) error {
	return ErrOffsetsDisabled
}

func (p *staticPartition) Next(ctx context.Context) (operator.Tuple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.m.Lock()
	defer p.m.Unlock()
	if p.sent >= p.limit {
		return nil, ErrEndOfPartition
	}
	p.sent++
	return operator.Tuple{"line": p.line}, nil
}

func partitionID(topic string, i int) string {
	return uuid.NewSHA1(partitionNamespace, []byte(fmt.Sprintf("%s/%d", topic, i))).String()
}
