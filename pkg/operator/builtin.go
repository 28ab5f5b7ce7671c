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

package operator

import (
	"context"
	"strings"
	"sync"
)

// References of the builtin operators.
const (
	IdentityRef  = "teknek.operator.Identity"
	TokenizerRef = "teknek.operator.Tokenizer"
	WordCountRef = "teknek.operator.WordCount"
	DropRef      = "teknek.operator.Drop"
)

func init() {
	RegisterBuiltins(GlobalRegistry)
}

// RegisterBuiltins registers all builtin operators in r.
func RegisterBuiltins(r *Registry) {
	r.MustRegister(IdentityRef, func() (Operator, error) { return Identity{}, nil })
	r.MustRegister(TokenizerRef, func() (Operator, error) { return &Tokenizer{Field: "line", Out: "word"}, nil })
	r.MustRegister(WordCountRef, func() (Operator, error) { return NewWordCount("word"), nil })
	r.MustRegister(DropRef, func() (Operator, error) { return Drop{}, nil })
}

// Identity emits every tuple it receives unchanged.
type Identity struct{}

func (Identity) Process(_ context.Context, in Tuple) ([]Tuple, error) {
	return []Tuple{in}, nil
}

// Drop swallows every tuple.
type Drop struct{}

func (Drop) Process(context.Context, Tuple) ([]Tuple, error) {
	return nil, nil
}

// Tokenizer splits the string in Field on whitespace and emits one tuple per
// token, stored in Out. Tuples without a string Field are dropped.
type Tokenizer struct {
	Field string
	Out   string
}

func (t *Tokenizer) Process(_ context.Context, in Tuple) ([]Tuple, error) {
	s, ok := in[t.Field].(string)
	if !ok {
		return nil, nil
	}
	fields := strings.Fields(s)
	out := make([]Tuple, len(fields))
	for i, f := range fields {
		out[i] = Tuple{t.Out: f}
	}
	return out, nil
}

// WordCount keeps a running count per value of Field and emits the updated
// count for every tuple it receives.
type WordCount struct {
	Field string

	m      sync.Mutex
	counts map[string]int
}

func NewWordCount(field string) *WordCount {
	return &WordCount{
		Field:  field,
		counts: make(map[string]int),
	}
}

func (w *WordCount) Process(_ context.Context, in Tuple) ([]Tuple, error) {
	word, ok := in[w.Field].(string)
	if !ok {
		return nil, nil
	}
	w.m.Lock()
	defer w.m.Unlock()
	w.counts[word]++
	return []Tuple{{w.Field: word, "count": w.counts[word]}}, nil
}
