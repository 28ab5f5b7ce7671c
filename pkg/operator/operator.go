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

// Package operator defines the unit of work of a teknek plan. An operator
// receives one tuple at a time and returns zero or more tuples that are
// forwarded to the operator's children.
package operator

import (
	"context"
	"maps"
)

// Tuple is a single piece of data flowing through a plan.
type Tuple map[string]any

// Clone returns a shallow copy of the tuple.
func (t Tuple) Clone() Tuple {
	if t == nil {
		return nil
	}
	return maps.Clone(t)
}

// Operator processes tuples. Implementations are not required to be safe for
// concurrent use, a compiled plan owns each operator instance exclusively.
type Operator interface {
	Process(ctx context.Context, in Tuple) ([]Tuple, error)
}

// Func is an adapter that allows an ordinary function to be used as an
// Operator.
type Func func(ctx context.Context, in Tuple) ([]Tuple, error)

func (f Func) Process(ctx context.Context, in Tuple) ([]Tuple, error) {
	return f(ctx, in)
}
