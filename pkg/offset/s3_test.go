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
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/matryer/is"
	"github.com/teknek/teknek/pkg/feed"
	"github.com/teknek/teknek/pkg/plan"
)

// TestS3Storage runs against a live S3 compatible store, it is skipped unless
// TEKNEK_TEST_S3_ENDPOINT is set.
func TestS3Storage(t *testing.T) {
	endpoint := os.Getenv("TEKNEK_TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("TEKNEK_TEST_S3_ENDPOINT not set")
	}
	is := is.New(t)
	ctx := context.Background()

	cfg := S3Config{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("TEKNEK_TEST_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("TEKNEK_TEST_S3_SECRET_KEY"),
		Bucket:    "teknek-test",
	}
	client, err := NewMinIOClient(cfg)
	is.NoErr(err)

	f, err := feed.NewMemory(plan.Properties{"limit": 5})
	is.NoErr(err)
	parts, err := f.Partitions(ctx)
	is.NoErr(err)
	p := parts[0]

	pl := plan.New(uuid.NewString())
	s, err := NewS3Constructor(client, cfg)(ctx, p, pl, plan.Properties{"prefix": "offsets/"})
	is.NoErr(err)

	got, err := s.FindLatestPersistedOffset(ctx)
	is.NoErr(err)
	is.True(got == nil)

	_, err = p.Next(ctx)
	is.NoErr(err)
	is.NoErr(s.PersistOffset(ctx))

	got, err = s.FindLatestPersistedOffset(ctx)
	is.NoErr(err)
	is.Equal(string(got.Serialize()), "1")
}
