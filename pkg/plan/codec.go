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

package plan

import (
	"bytes"

	"github.com/conduitio/yaml/v3"
	"github.com/goccy/go-json"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
)

// MarshalJSON returns the indented, human readable JSON form of the plan.
func MarshalJSON(p *Plan) ([]byte, error) {
	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, cerrors.Errorf("could not encode plan %q: %w", p.Name, err)
	}
	return out, nil
}

// UnmarshalJSON decodes a plan from its JSON form.
func UnmarshalJSON(raw []byte) (*Plan, error) {
	var p Plan
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, cerrors.Errorf("could not decode plan: %w", err)
	}
	return &p, nil
}

// MarshalYAML returns the YAML form of the plan.
func MarshalYAML(p *Plan) ([]byte, error) {
	out, err := yaml.Marshal(p)
	if err != nil {
		return nil, cerrors.Errorf("could not encode plan %q: %w", p.Name, err)
	}
	return out, nil
}

// UnmarshalYAML decodes a plan from a YAML document, unknown fields are
// rejected.
func UnmarshalYAML(raw []byte) (*Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, cerrors.Errorf("could not decode plan: %w", err)
	}
	return &p, nil
}
