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
	"testing"

	"github.com/matryer/is"
	"github.com/teknek/teknek/pkg/feed"
	feedmock "github.com/teknek/teknek/pkg/feed/mock"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/database/inmemory"
	"github.com/teknek/teknek/pkg/plan"
	"go.uber.org/mock/gomock"
)

func TestRegistry(t *testing.T) {
	is := is.New(t)

	r := NewRegistry()
	is.NoErr(r.Register(DBRef, NewDBConstructor(&inmemory.DB{})))
	is.True(r.Register(DBRef, NewDBConstructor(&inmemory.DB{})) != nil)
	is.True(cerrors.Is(r.Register("", nil), cerrors.ErrEmptyName))

	_, err := r.Get(DBRef)
	is.NoErr(err)
	_, err = r.Get("does.not.Exist")
	is.True(cerrors.Is(err, ErrNotFound))

	is.Equal(r.List(), []string{DBRef})
}

func TestDBStorage_PersistAndRecover(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	db := &inmemory.DB{}

	f, err := feed.NewMemory(plan.Properties{"limit": 10})
	is.NoErr(err)
	parts, err := f.Partitions(ctx)
	is.NoErr(err)
	p := parts[0]

	pl := plan.New("words")
	s, err := NewDBConstructor(db)(ctx, p, pl, nil)
	is.NoErr(err)

	got, err := s.FindLatestPersistedOffset(ctx)
	is.NoErr(err)
	is.True(got == nil) // nothing persisted yet

	for i := 0; i < 4; i++ {
		_, err = p.Next(ctx)
		is.NoErr(err)
	}
	is.NoErr(s.PersistOffset(ctx))

	// a storage built for the same plan and partition sees the offset
	s2, err := NewDBConstructor(db)(ctx, p, pl, nil)
	is.NoErr(err)
	got, err = s2.FindLatestPersistedOffset(ctx)
	is.NoErr(err)
	is.Equal(string(got.Serialize()), "4")

	// another plan does not
	s3, err := NewDBConstructor(db)(ctx, p, plan.New("other"), nil)
	is.NoErr(err)
	got, err = s3.FindLatestPersistedOffset(ctx)
	is.NoErr(err)
	is.True(got == nil)
}

func TestDBStorage_Key(t *testing.T) {
	is := is.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	db := &inmemory.DB{}

	p := feedmock.NewPartition(ctrl)
	p.EXPECT().ID().Return("p-1").AnyTimes()
	p.EXPECT().Offset().Return("42")

	s, err := NewDBStorage(db, p, plan.New("firehose"))
	is.NoErr(err)
	is.NoErr(s.PersistOffset(ctx))

	raw, err := db.Get(ctx, "offset:firehose:p-1")
	is.NoErr(err)
	is.Equal(string(raw), "42")
}

func TestDBStorage_EmptyPlanName(t *testing.T) {
	is := is.New(t)
	ctrl := gomock.NewController(t)

	p := feedmock.NewPartition(ctrl)
	_, err := NewDBStorage(&inmemory.DB{}, p, plan.New(""))
	is.True(cerrors.Is(err, cerrors.ErrEmptyName))
}

func TestS3Config_Validate(t *testing.T) {
	is := is.New(t)

	is.True(S3Config{}.Validate() != nil)
	is.NoErr(S3Config{Endpoint: "localhost:9000", Bucket: "offsets"}.Validate())

	_, err := NewMinIOClient(S3Config{Bucket: "offsets"})
	is.True(err != nil)
}
