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

package database

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matryer/is"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
)

// AcceptanceTest runs the checks every DB implementation must pass. The keys
// mirror the ones written by the plan store and the offset storage. Call it
// from the tests of each implementation:
//
//	func TestDB(t *testing.T) {
//	    database.AcceptanceTest(t, NewDB())
//	}
func AcceptanceTest(t *testing.T, db DB) {
	tests := []struct {
		name string
		run  func(*testing.T, DB)
	}{
		{"Ping", acceptPing},
		{"MissingKey", acceptMissingKey},
		{"SetGet", acceptSetGet},
		{"EmptyValue", acceptEmptyValue},
		{"Delete", acceptDelete},
		{"OffsetOverwrites", acceptOffsetOverwrites},
		{"GetKeysSorted", acceptGetKeysSorted},
		{"ConcurrentPartitions", acceptConcurrentPartitions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, db)
		})
	}
}

func cleanup(t *testing.T, db DB, keys ...string) {
	t.Cleanup(func() {
		for _, k := range keys {
			_ = db.Set(context.Background(), k, nil)
		}
	})
}

func acceptPing(t *testing.T, db DB) {
	is.New(t).NoErr(db.Ping(context.Background()))
}

func acceptMissingKey(t *testing.T, db DB) {
	is := is.New(t)
	got, err := db.Get(context.Background(), "plan:does-not-exist")
	is.True(cerrors.Is(err, ErrKeyNotExist))
	is.Equal(got, nil)
}

func acceptSetGet(t *testing.T, db DB) {
	is := is.New(t)
	ctx := context.Background()
	key := "plan:wordcount"
	cleanup(t, db, key)

	want := []byte(`{"name":"wordcount","tupleRetry":3}`)
	is.NoErr(db.Set(ctx, key, want))

	got, err := db.Get(ctx, key)
	is.NoErr(err)
	is.Equal(got, want)
}

func acceptEmptyValue(t *testing.T, db DB) {
	is := is.New(t)
	ctx := context.Background()
	key := "offset:empty:p-0"
	cleanup(t, db, key)

	is.NoErr(db.Set(ctx, key, []byte{}))
	got, err := db.Get(ctx, key)
	is.NoErr(err)
	is.Equal(len(got), 0)
}

func acceptDelete(t *testing.T, db DB) {
	is := is.New(t)
	ctx := context.Background()
	key := "plan:deleted"

	is.NoErr(db.Set(ctx, key, []byte("x")))
	is.NoErr(db.Set(ctx, key, nil))
	_, err := db.Get(ctx, key)
	is.True(cerrors.Is(err, ErrKeyNotExist))

	// deleting a missing key is not an error
	is.NoErr(db.Set(ctx, key, nil))
}

func acceptOffsetOverwrites(t *testing.T, db DB) {
	is := is.New(t)
	ctx := context.Background()
	key := "offset:overwrite:p-0"
	cleanup(t, db, key)

	for i := 0; i < 100; i++ {
		is.NoErr(db.Set(ctx, key, []byte(fmt.Sprint(i))))
	}
	got, err := db.Get(ctx, key)
	is.NoErr(err)
	is.Equal(string(got), "99")
}

func acceptGetKeysSorted(t *testing.T, db DB) {
	is := is.New(t)
	ctx := context.Background()

	want := []string{
		"offset:sorted:p-00",
		"offset:sorted:p-03",
		"offset:sorted:p-07",
		"offset:sorted:p-11",
	}
	others := []string{"offset:sortedx:p-00", "plan:sorted"}
	cleanup(t, db, append(want, others...)...)

	// insert out of order
	for _, k := range []string{want[2], others[0], want[0], want[3], others[1], want[1]} {
		is.NoErr(db.Set(ctx, k, []byte(k)))
	}

	got, err := db.GetKeys(ctx, "offset:sorted:")
	is.NoErr(err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	got, err = db.GetKeys(ctx, "offset:missing:")
	is.NoErr(err)
	is.Equal(len(got), 0)

	got, err = db.GetKeys(ctx, "")
	is.NoErr(err)
	is.True(len(got) >= len(want)+len(others))
}

func acceptConcurrentPartitions(t *testing.T, db DB) {
	const partitions = 16
	is := is.New(t)
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < partitions; i++ {
		key := fmt.Sprintf("offset:concurrent:p-%02d", i)
		cleanup(t, db, key)

		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			for n := 0; n < 10 && err == nil; n++ {
				err = db.Set(ctx, key, []byte(fmt.Sprint(n)))
			}
			if err == nil {
				var got []byte
				got, err = db.Get(ctx, key)
				if err == nil && string(got) != "9" {
					err = cerrors.Errorf("%s: got %q, want \"9\"", key, got)
				}
			}
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	is.NoErr(cerrors.Join(errs...))

	keys, err := db.GetKeys(ctx, "offset:concurrent:")
	is.NoErr(err)
	is.Equal(len(keys), partitions)
}
