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

package teknek

import (
	"github.com/rs/zerolog"
	"github.com/teknek/teknek/pkg/feed"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/database"
	"github.com/teknek/teknek/pkg/foundation/log"
	"github.com/teknek/teknek/pkg/operator"
)

const (
	DBTypeBadger   = "badger"
	DBTypePostgres = "postgres"
	DBTypeInMemory = "inmemory"
	DBTypeSQLite   = "sqlite"
)

// Config holds all configurable values for teknek.
type Config struct {
	DB struct {
		// When Driver is specified it takes precedence over other DB related
		// fields.
		Driver database.DB

		Type   string
		Badger struct {
			Path string
		}
		Postgres struct {
			ConnectionString string
			Table            string
		}
		SQLite struct {
			Path  string
			Table string
		}
	}

	Log struct {
		Level  string
		Format string
	}

	// S3 configures the object store used by the teknek.offset.S3 offset
	// storage. The storage is only available if an endpoint is set.
	S3 struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Region    string
		UseSSL    bool
		Bucket    string
	}

	Compiler struct {
		MaxDepth int
		MaxNodes int
	}

	OperatorRegistry *operator.Registry
	FeedRegistry     *feed.Registry
}

func DefaultConfig() Config {
	var cfg Config
	cfg.DB.Type = DBTypeBadger
	cfg.DB.Badger.Path = "teknek.db"
	cfg.DB.Postgres.Table = "teknek_kv_store"
	cfg.DB.SQLite.Path = "teknek.sqlite"
	cfg.DB.SQLite.Table = "teknek_kv_store"
	cfg.Log.Level = "info"
	cfg.Log.Format = "cli"
	cfg.S3.Bucket = "teknek-offsets"
	cfg.Compiler.MaxDepth = 1000
	cfg.Compiler.MaxNodes = 100000

	cfg.OperatorRegistry = operator.GlobalRegistry
	cfg.FeedRegistry = feed.GlobalRegistry
	return cfg
}

func (c Config) Validate() error {
	if c.DB.Driver == nil {
		switch c.DB.Type {
		case DBTypeBadger:
			if c.DB.Badger.Path == "" {
				return requiredConfigFieldErr("db.badger.path")
			}
		case DBTypePostgres:
			if c.DB.Postgres.ConnectionString == "" {
				return requiredConfigFieldErr("db.postgres.connection-string")
			}
			if c.DB.Postgres.Table == "" {
				return requiredConfigFieldErr("db.postgres.table")
			}
		case DBTypeSQLite:
			if c.DB.SQLite.Path == "" {
				return requiredConfigFieldErr("db.sqlite.path")
			}
			if c.DB.SQLite.Table == "" {
				return requiredConfigFieldErr("db.sqlite.table")
			}
		case DBTypeInMemory:
			// all good
		default:
			return invalidConfigFieldErr("db.type")
		}
	}

	if c.Log.Level == "" {
		return requiredConfigFieldErr("log.level")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return invalidConfigFieldErr("log.level")
	}

	if c.Log.Format == "" {
		return requiredConfigFieldErr("log.format")
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		return invalidConfigFieldErr("log.format")
	}

	if c.S3.Endpoint != "" && c.S3.Bucket == "" {
		return requiredConfigFieldErr("s3.bucket")
	}

	if c.Compiler.MaxDepth < 1 {
		return invalidConfigFieldErr("compiler.max-depth")
	}
	if c.Compiler.MaxNodes < 1 {
		return invalidConfigFieldErr("compiler.max-nodes")
	}

	if c.OperatorRegistry == nil {
		return requiredConfigFieldErr("operator registry")
	}
	if c.FeedRegistry == nil {
		return requiredConfigFieldErr("feed registry")
	}
	return nil
}

func invalidConfigFieldErr(name string) error {
	return cerrors.Errorf("%q config value is invalid", name)
}

func requiredConfigFieldErr(name string) error {
	return cerrors.Errorf("%q config value is required", name)
}
