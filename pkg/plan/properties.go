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
	"math"
	"strconv"
)

// Properties holds configuration values of feeds and offset storages. Values
// are either strings or numbers.
type Properties map[string]any

// String returns the string stored under key.
func (p Properties) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

// Number returns the numeric value stored under key. Values decoded from YAML
// or JSON may be any integer or float type, all are converted to float64.
func (p Properties) Number(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Int returns the numeric value stored under key truncated to an int, or def
// if the key is missing or not a number.
func (p Properties) Int(key string, def int) int {
	f, ok := p.Number(key)
	if !ok || math.IsNaN(f) {
		return def
	}
	return int(f)
}

// StringOr returns the string under key or def. Numbers are formatted.
func (p Properties) StringOr(key string, def string) string {
	if s, ok := p.String(key); ok {
		return s
	}
	if f, ok := p.Number(key); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return def
}
