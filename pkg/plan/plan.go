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

// Package plan contains the declarative description of a teknek pipeline: one
// feed, a tree of operators, an optional offset storage and the tuple retry
// policy.
package plan

import (
	"strings"
)

// ScriptKind selects how an OperatorDesc is turned into a live operator.
type ScriptKind string

const (
	// KindNative resolves OperatorRef in the operator registry.
	KindNative ScriptKind = "native"
	// KindJavaScript compiles Script into a class and constructs it.
	KindJavaScript ScriptKind = "javascript"
	// KindJavaScriptClosure evaluates Script into a function and adapts it.
	KindJavaScriptClosure ScriptKind = "javascriptclosure"
)

// Plan is the declarative description of a pipeline. A Plan is built by the
// shell or loaded from a file and must not be mutated once compilation starts.
type Plan struct {
	Name              string             `json:"name" yaml:"name"`
	FeedDesc          *FeedDesc          `json:"feedDesc,omitempty" yaml:"feed,omitempty"`
	RootOperator      *OperatorDesc      `json:"rootOperator,omitempty" yaml:"root,omitempty"`
	OffsetStorageDesc *OffsetStorageDesc `json:"offsetStorageDesc,omitempty" yaml:"offsetStorage,omitempty"`
	TupleRetry        int                `json:"tupleRetry" yaml:"tupleRetry"`
}

// New returns an empty plan with the given name.
func New(name string) *Plan {
	return &Plan{Name: name}
}

// OperatorDesc describes one processing unit and the operators downstream of
// it. Either OperatorRef or Script together with a script Kind is populated.
type OperatorDesc struct {
	Name        string          `json:"name,omitempty" yaml:"name,omitempty"`
	OperatorRef string          `json:"operatorRef,omitempty" yaml:"operatorRef,omitempty"`
	Kind        ScriptKind      `json:"kind,omitempty" yaml:"kind,omitempty"`
	Script      string          `json:"script,omitempty" yaml:"script,omitempty"`
	Children    []*OperatorDesc `json:"children" yaml:"children,omitempty"`
}

// ResolvedKind returns the lower-cased kind of the descriptor, an empty kind
// is native.
func (d *OperatorDesc) ResolvedKind() ScriptKind {
	if d.Kind == "" {
		return KindNative
	}
	return ScriptKind(strings.ToLower(string(d.Kind)))
}

// Ref returns the string used to identify the descriptor in errors and logs.
func (d *OperatorDesc) Ref() string {
	switch {
	case d.OperatorRef != "":
		return d.OperatorRef
	case d.Name != "":
		return d.Name
	default:
		return "<" + string(d.ResolvedKind()) + " script>"
	}
}

// AddChild appends child to the children of d.
func (d *OperatorDesc) AddChild(child *OperatorDesc) {
	d.Children = append(d.Children, child)
}

// Count returns the number of descriptors in the tree rooted at d, counting a
// shared subtree once per parent.
func (d *OperatorDesc) Count() int {
	if d == nil {
		return 0
	}
	n := 1
	for _, c := range d.Children {
		n += c.Count()
	}
	return n
}

// FeedDesc names the feed implementation and its configuration.
type FeedDesc struct {
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	FeedRef    string     `json:"feedRef" yaml:"feedRef"`
	Properties Properties `json:"properties" yaml:"properties,omitempty"`
}

// OffsetStorageDesc names the offset storage implementation and its
// configuration. It is only used when the feed partition manages offsets.
type OffsetStorageDesc struct {
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	StorageRef string     `json:"storageRef" yaml:"storageRef"`
	Properties Properties `json:"properties" yaml:"properties,omitempty"`
}
