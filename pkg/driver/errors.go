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
	"fmt"

	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/operator/jsoperator"
)

// Component kinds reported in ComponentResolutionError.
const (
	KindOperator      = "operator"
	KindOffsetStorage = "offset storage"
)

var (
	ErrUnsupportedKind   = cerrors.New("unsupported specification kind")
	ErrNoRootOperator    = cerrors.New("plan has no root operator")
	ErrOperatorCycle     = cerrors.New("operator tree contains a cycle")
	ErrMaxDepthExceeded  = cerrors.New("operator tree exceeds maximum depth")
	ErrMaxNodesExceeded  = cerrors.New("operator tree exceeds maximum number of nodes")
	ErrMissingReference  = cerrors.New("missing implementation reference")
	ErrAmbiguousOperator = cerrors.New("operator has both an implementation reference and a script")
	ErrNotCallable       = jsoperator.ErrNotCallable
)

// ComponentResolutionError is returned when an operator or offset storage
// named in a plan can't be located or instantiated.
type ComponentResolutionError struct {
	Kind string
	Ref  string
	Err  error
}

func (e *ComponentResolutionError) Error() string {
	return fmt.Sprintf("could not resolve %s %q: %v", e.Kind, e.Ref, e.Err)
}

func (e *ComponentResolutionError) Unwrap() error {
	return e.Err
}

// RecoveryError is returned when the persisted offset of a partition can't be
// read or applied.
type RecoveryError struct {
	PartitionID string
	Err         error
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("could not recover partition %s: %v", e.PartitionID, e.Err)
}

func (e *RecoveryError) Unwrap() error {
	return e.Err
}
