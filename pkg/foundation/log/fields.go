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

package log

const (
	ComponentField = "component"
	AttemptField   = "attempt"
	DurationField  = "duration"

	PlanNameField      = "plan_name"
	PartitionIDField   = "partition_id"
	NodeIDField        = "node_id"
	OperatorRefField   = "operator_ref"
	ScriptKindField    = "script_kind"
	OffsetStorageField = "offset_storage"
	OffsetField        = "offset"
	DepthField         = "depth"
	TupleRetryField    = "tuple_retry"

	PromptField  = "prompt"
	CommandField = "command"
)
