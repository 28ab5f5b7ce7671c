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

package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/teknek/teknek/pkg/foundation/database"
)

func TestDB(t *testing.T) {
	is := is.New(t)
	db, err := New(zerolog.Nop(), filepath.Join(t.TempDir(), "badger.db"))
	is.NoErr(err)
	t.Cleanup(func() {
		is.NoErr(db.Close())
	})
	database.AcceptanceTest(t, db)
}

func TestDB_Reopen(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "badger.db")

	db, err := New(zerolog.Nop(), path)
	is.NoErr(err)
	is.NoErr(db.Set(ctx, "offset:wordcount:p-0", []byte("42")))
	is.NoErr(db.Close())

	db, err = New(zerolog.Nop(), path)
	is.NoErr(err)
	defer db.Close()

	got, err := db.Get(ctx, "offset:wordcount:p-0")
	is.NoErr(err)
	is.Equal(string(got), "42")
}
