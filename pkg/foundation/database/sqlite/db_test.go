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

package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/database"
)

func TestDB(t *testing.T) {
	is := is.New(t)
	db, err := New(context.Background(), zerolog.Nop(), t.TempDir(), "teknek_kv_store")
	is.NoErr(err)
	t.Cleanup(func() {
		is.NoErr(db.Close())
	})
	database.AcceptanceTest(t, db)
}

func TestDB_Reopen(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "dir")

	db, err := New(ctx, zerolog.Nop(), dir, "kv")
	is.NoErr(err)
	is.NoErr(db.Set(ctx, "plan:wordcount", []byte(`{"name":"wordcount"}`)))
	is.NoErr(db.Close())

	_, err = os.Stat(filepath.Join(dir, fileName))
	is.NoErr(err)

	db, err = New(ctx, zerolog.Nop(), dir, "kv")
	is.NoErr(err)
	defer db.Close()

	got, err := db.Get(ctx, "plan:wordcount")
	is.NoErr(err)
	is.Equal(string(got), `{"name":"wordcount"}`)
}

func TestNew_EmptyTable(t *testing.T) {
	is := is.New(t)
	_, err := New(context.Background(), zerolog.Nop(), t.TempDir(), "")
	is.True(cerrors.Is(err, cerrors.ErrEmptyName))
}
