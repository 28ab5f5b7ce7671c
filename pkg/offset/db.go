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

package offset

import (
	"context"

	"github.com/teknek/teknek/pkg/feed"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/database"
	"github.com/teknek/teknek/pkg/plan"
)

const (
	DBRef = "teknek.offset.DB"

	// dbKeyPrefix is added to all keys before storing them in the database.
	// Do not change unless you have a migration plan in place.
	dbKeyPrefix = "offset:"
)

// DBStorage keeps offsets in a database.DB under
// "offset:<plan>:<partition>".
type DBStorage struct {
	db        database.DB
	key       string
	partition feed.Partition
}

// NewDBConstructor returns a Constructor building storages backed by db.
func NewDBConstructor(db database.DB) Constructor {
	return func(_ context.Context, p feed.Partition, pl *plan.Plan, _ plan.Properties) (Storage, error) {
		return NewDBStorage(db, p, pl)
	}
}

func NewDBStorage(db database.DB, p feed.Partition, pl *plan.Plan) (*DBStorage, error) {
	if pl.Name == "" {
		return nil, cerrors.Errorf("can't create offset storage: %w", cerrors.ErrEmptyName)
	}
	return &DBStorage{
		db:        db,
		key:       dbKeyPrefix + pl.Name + ":" + p.ID(),
		partition: p,
	}, nil
}

func (s *DBStorage) FindLatestPersistedOffset(ctx context.Context) (Offset, error) {
	raw, err := s.db.Get(ctx, s.key)
	if cerrors.Is(err, database.ErrKeyNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, cerrors.Errorf("failed to get offset %q: %w", s.key, err)
	}
	return Bytes(raw), nil
}

func (s *DBStorage) PersistOffset(ctx context.Context) error {
	err := s.db.Set(ctx, s.key, []byte(s.partition.Offset()))
	if err != nil {
		return cerrors.Errorf("failed to store offset %q: %w", s.key, err)
	}
	return nil
}
