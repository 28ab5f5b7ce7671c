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

package inmemory

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/teknek/teknek/pkg/foundation/database"
)

// DB keeps plans and offsets in a map. Everything is lost when the process
// stops, use it for tests and throwaway sessions. The zero value is ready to
// use.
type DB struct {
	m      sync.RWMutex
	values map[string][]byte
}

var _ database.DB = (*DB)(nil)

func (d *DB) Ping(context.Context) error { return nil }
func (d *DB) Close() error               { return nil }

func (d *DB) Set(_ context.Context, key string, value []byte) error {
	d.m.Lock()
	defer d.m.Unlock()

	if value == nil {
		delete(d.values, key)
		return nil
	}
	if d.values == nil {
		d.values = make(map[string][]byte)
	}
	d.values[key] = bytes.Clone(value)
	return nil
}

func (d *DB) Get(_ context.Context, key string) ([]byte, error) {
	d.m.RLock()
	defer d.m.RUnlock()

	if v, ok := d.values[key]; ok {
		return bytes.Clone(v), nil
	}
	return nil, database.ErrKeyNotExist
}

func (d *DB) GetKeys(_ context.Context, prefix string) ([]string, error) {
	d.m.RLock()
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	d.m.RUnlock()

	slices.Sort(keys)
	return keys, nil
}
