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
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/teknek/teknek/pkg/feed"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/plan"
)

const S3Ref = "teknek.offset.S3"

// S3Config configures the S3 compatible object store holding offsets.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	Bucket    string
}

func (c S3Config) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, cerrors.New("endpoint is required"))
	}
	if c.Bucket == "" {
		errs = append(errs, cerrors.New("bucket is required"))
	}
	return cerrors.Join(errs...)
}

// NewMinIOClient returns a client for the object store described by cfg.
func NewMinIOClient(cfg S3Config) (*minio.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, cerrors.Errorf("invalid s3 config: %w", err)
	}
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			MaxIdleConns:        16,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		},
	})
}

// S3Storage keeps the offset of a partition in the object
// "<prefix><plan>/<partition>". The properties "bucket" and "prefix" of the
// descriptor override the configured bucket and the empty prefix.
type S3Storage struct {
	client    *minio.Client
	bucket    string
	object    string
	partition feed.Partition
}

// NewS3Constructor returns a Constructor building storages that share client.
// The bucket is created if it does not exist.
func NewS3Constructor(client *minio.Client, cfg S3Config) Constructor {
	return func(ctx context.Context, p feed.Partition, pl *plan.Plan, props plan.Properties) (Storage, error) {
		if pl.Name == "" {
			return nil, cerrors.Errorf("can't create offset storage: %w", cerrors.ErrEmptyName)
		}
		s := &S3Storage{
			client:    client,
			bucket:    props.StringOr("bucket", cfg.Bucket),
			object:    props.StringOr("prefix", "") + pl.Name + "/" + p.ID(),
			partition: p,
		}
		if err := s.ensureBucket(ctx, cfg.Region); err != nil {
			return nil, cerrors.Errorf("ensure bucket %q: %w", s.bucket, err)
		}
		return s, nil
	}
}

func (s *S3Storage) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region})
}

func (s *S3Storage) FindLatestPersistedOffset(ctx context.Context) (Offset, error) {
	_, err := s.client.StatObject(ctx, s.bucket, s.object, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, cerrors.Errorf("failed to stat offset %q: %w", s.object, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, cerrors.Errorf("failed to get offset %q: %w", s.object, err)
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		return nil, cerrors.Errorf("failed to read offset %q: %w", s.object, err)
	}
	return Bytes(raw), nil
}

func (s *S3Storage) PersistOffset(ctx context.Context) error {
	raw := []byte(s.partition.Offset())
	_, err := s.client.PutObject(ctx, s.bucket, s.object, bytes.NewReader(raw), int64(len(raw)),
		minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		return cerrors.Errorf("failed to store offset %q: %w", s.object, err)
	}
	return nil
}
