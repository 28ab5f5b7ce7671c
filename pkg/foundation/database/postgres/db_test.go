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

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/teknek/teknek/pkg/foundation/database"
	"github.com/teknek/teknek/pkg/foundation/log"
)

// TestDB runs only when TEKNEK_TEST_POSTGRES points to a reachable database.
func TestDB(t *testing.T) {
	connString := os.Getenv("TEKNEK_TEST_POSTGRES")
	if connString == "" {
		t.Skip("TEKNEK_TEST_POSTGRES not set")
	}

	is := is.New(t)
	ctx := context.Background()
	db, err := New(ctx, log.Test(t), connString, "teknek_kv_store_test")
	is.NoErr(err)
	t.Cleanup(func() {
		_, err := db.pool.Exec(ctx, `DROP TABLE IF EXISTS "teknek_kv_store_test"`)
		is.NoErr(err)
		is.NoErr(db.Close())
	})
	database.AcceptanceTest(t, db)
}
