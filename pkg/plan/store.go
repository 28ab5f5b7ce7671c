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
	"context"
	"strings"

	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/database"
)

const (
	// storeKeyPrefix is added to all keys before storing them in store. Do not
	// change unless you know what you're doing and you have a migration plan in
	// place.
	storeKeyPrefix = "plan:"
)

// ErrPlanNotFound is returned when the store holds no plan with a name.
var ErrPlanNotFound = cerrors.New("plan not found")

// Store handles the persistence and fetching of plans.
type Store struct {
	db database.DB
}

func NewStore(db database.DB) *Store {
	return &Store{db: db}
}

// Set stores the plan under its name.
func (s *Store) Set(ctx context.Context, p *Plan) error {
	if p.Name == "" {
		return cerrors.Errorf("can't store plan: %w", cerrors.ErrEmptyName)
	}

	raw, err := MarshalJSON(p)
	if err != nil {
		return err
	}

	err = s.db.Set(ctx, s.addKeyPrefix(p.Name), raw)
	if err != nil {
		return cerrors.Errorf("failed to store plan %q: %w", p.Name, err)
	}
	return nil
}

// Delete removes the plan stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if name == "" {
		return cerrors.Errorf("can't delete plan: %w", cerrors.ErrEmptyName)
	}

	err := s.db.Set(ctx, s.addKeyPrefix(name), nil)
	if err != nil {
		return cerrors.Errorf("failed to delete plan %q: %w", name, err)
	}
	return nil
}

// Get returns the plan stored under name.
func (s *Store) Get(ctx context.Context, name string) (*Plan, error) {
	raw, err := s.db.Get(ctx, s.addKeyPrefix(name))
	if cerrors.Is(err, database.ErrKeyNotExist) {
		return nil, cerrors.Errorf("plan %q: %w", name, ErrPlanNotFound)
	}
	if err != nil {
		return nil, cerrors.Errorf("failed to get plan %q: %w", name, err)
	}
	return UnmarshalJSON(raw)
}

// GetAll returns all plans keyed by name.
func (s *Store) GetAll(ctx context.Context) (map[string]*Plan, error) {
	keys, err := s.db.GetKeys(ctx, storeKeyPrefix)
	if err != nil {
		return nil, cerrors.Errorf("failed to retrieve keys: %w", err)
	}
	plans := make(map[string]*Plan, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, storeKeyPrefix)
		p, err := s.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		plans[name] = p
	}
	return plans, nil
}

func (*Store) addKeyPrefix(name string) string {
	return storeKeyPrefix + name
}
