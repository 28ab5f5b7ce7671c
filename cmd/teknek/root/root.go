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

package root

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/conduitio/ecdysis"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/teknek"
)

var (
	_ ecdysis.CommandWithFlags       = (*RootCommand)(nil)
	_ ecdysis.CommandWithExecute     = (*RootCommand)(nil)
	_ ecdysis.CommandWithDocs        = (*RootCommand)(nil)
	_ ecdysis.CommandWithSubCommands = (*RootCommand)(nil)
)

const TeknekPrefix = "TEKNEK"

type RootFlags struct {
	// teknek configuration file
	ConfigPath string `long:"config.path" usage:"global teknek configuration file" persistent:"true"`

	// Database configuration
	DBType                     string `long:"db.type" usage:"database type; accepts badger,postgres,inmemory,sqlite" persistent:"true"`
	DBBadgerPath               string `long:"db.badger.path" usage:"path to badger DB" persistent:"true"`
	DBPostgresConnectionString string `long:"db.postgres.connection-string" usage:"postgres connection string, may be a database URL or in PostgreSQL keyword/value format" persistent:"true"`
	DBPostgresTable            string `long:"db.postgres.table" usage:"postgres table in which to store data (will be created if it does not exist)" persistent:"true"`
	DBSQLitePath               string `long:"db.sqlite.path" usage:"path to sqlite3 DB" persistent:"true"`
	DBSQLiteTable              string `long:"db.sqlite.table" usage:"sqlite3 table in which to store data (will be created if it does not exist)" persistent:"true"`

	// Logging configuration
	LogLevel  string `long:"log.level" usage:"sets logging level; accepts debug, info, warn, error, trace" persistent:"true"`
	LogFormat string `long:"log.format" usage:"sets the format of the logging; accepts json, cli" persistent:"true"`

	// S3 offset storage
	S3Endpoint  string `long:"s3.endpoint" usage:"S3 endpoint used by the teknek.offset.S3 offset storage; the storage is disabled if empty" persistent:"true"`
	S3AccessKey string `long:"s3.access-key" usage:"S3 access key" persistent:"true"`
	S3SecretKey string `long:"s3.secret-key" usage:"S3 secret key" persistent:"true"`
	S3Region    string `long:"s3.region" usage:"S3 region" persistent:"true"`
	S3UseSSL    bool   `long:"s3.use-ssl" usage:"connect to the S3 endpoint using TLS" persistent:"true"`
	S3Bucket    string `long:"s3.bucket" usage:"default bucket for persisted offsets" persistent:"true"`

	// Compiler
	CompilerMaxDepth int `long:"compiler.max-depth" usage:"maximum depth of a compiled operator tree" persistent:"true"`
	CompilerMaxNodes int `long:"compiler.max-nodes" usage:"maximum number of nodes in a compiled operator tree" persistent:"true"`

	// Version
	Version bool `long:"version" short:"v" usage:"show current teknek version" persistent:"true"`
}

type RootCommand struct {
	flags RootFlags
}

// config returns the teknek configuration. Values are taken from flags,
// environment variables prefixed with TEKNEK_, the configuration file and
// the defaults, in that order.
func (c *RootCommand) config(flags *pflag.FlagSet) (teknek.Config, error) {
	v := viper.New()
	cfg := teknek.DefaultConfig()

	configMap := map[string]interface{}{
		"db.type":                       cfg.DB.Type,
		"db.badger.path":                cfg.DB.Badger.Path,
		"db.postgres.connection-string": cfg.DB.Postgres.ConnectionString,
		"db.postgres.table":             cfg.DB.Postgres.Table,
		"db.sqlite.path":                cfg.DB.SQLite.Path,
		"db.sqlite.table":               cfg.DB.SQLite.Table,
		"log.level":                     cfg.Log.Level,
		"log.format":                    cfg.Log.Format,
		"s3.endpoint":                   cfg.S3.Endpoint,
		"s3.access-key":                 cfg.S3.AccessKey,
		"s3.secret-key":                 cfg.S3.SecretKey,
		"s3.region":                     cfg.S3.Region,
		"s3.use-ssl":                    cfg.S3.UseSSL,
		"s3.bucket":                     cfg.S3.Bucket,
		"compiler.max-depth":            cfg.Compiler.MaxDepth,
		"compiler.max-nodes":            cfg.Compiler.MaxNodes,
	}

	for key, value := range configMap {
		v.SetDefault(key, value)
	}

	if c.flags.ConfigPath != "" {
		v.SetConfigFile(c.flags.ConfigPath)
		if err := v.ReadInConfig(); err != nil {
			return cfg, cerrors.Errorf("could not read config file %q: %w", c.flags.ConfigPath, err)
		}
	} else {
		v.SetConfigName("teknek")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		// ignore if the file doesn't exist in the working directory
		_ = v.ReadInConfig()
	}

	v.SetEnvPrefix(TeknekPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key := range configMap {
		if err := v.BindEnv(key); err != nil {
			return cfg, cerrors.Errorf("error binding environment variable for key %q: %w", key, err)
		}
	}

	if flags != nil {
		for key := range configMap {
			// only flags set explicitly override other sources
			if f := flags.Lookup(key); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return cfg, cerrors.Errorf("error binding flag %q: %w", key, err)
				}
			}
		}
	}

	cfg.DB.Type = v.GetString("db.type")
	cfg.DB.Badger.Path = v.GetString("db.badger.path")
	cfg.DB.Postgres.ConnectionString = v.GetString("db.postgres.connection-string")
	cfg.DB.Postgres.Table = v.GetString("db.postgres.table")
	cfg.DB.SQLite.Path = v.GetString("db.sqlite.path")
	cfg.DB.SQLite.Table = v.GetString("db.sqlite.table")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.S3.Endpoint = v.GetString("s3.endpoint")
	cfg.S3.AccessKey = v.GetString("s3.access-key")
	cfg.S3.SecretKey = v.GetString("s3.secret-key")
	cfg.S3.Region = v.GetString("s3.region")
	cfg.S3.UseSSL = v.GetBool("s3.use-ssl")
	cfg.S3.Bucket = v.GetString("s3.bucket")
	cfg.Compiler.MaxDepth = v.GetInt("compiler.max-depth")
	cfg.Compiler.MaxNodes = v.GetInt("compiler.max-nodes")

	return cfg, nil
}

// runtime builds a teknek runtime writing logs to stderr.
func (c *RootCommand) runtime(ctx context.Context) (*teknek.Runtime, error) {
	var flags *pflag.FlagSet
	if cmd := ecdysis.CobraCmdFromContext(ctx); cmd != nil {
		flags = cmd.Flags()
	}
	cfg, err := c.config(flags)
	if err != nil {
		return nil, err
	}
	r, err := teknek.NewRuntime(ctx, cfg, os.Stderr)
	if err != nil {
		return nil, cerrors.Errorf("failed to setup teknek runtime: %w", err)
	}
	return r, nil
}

func (c *RootCommand) Execute(ctx context.Context) error {
	if c.flags.Version {
		_, _ = fmt.Fprintf(os.Stdout, "%s\n", teknek.Version(true))
		return nil
	}
	if cmd := ecdysis.CobraCmdFromContext(ctx); cmd != nil {
		return cmd.Help()
	}
	return nil
}

func (c *RootCommand) Usage() string { return "teknek" }
func (c *RootCommand) Flags() []ecdysis.Flag {
	flags := ecdysis.BuildFlags(&c.flags)

	cfg := teknek.DefaultConfig()
	flags.SetDefault("db.type", cfg.DB.Type)
	flags.SetDefault("db.badger.path", cfg.DB.Badger.Path)
	flags.SetDefault("db.postgres.table", cfg.DB.Postgres.Table)
	flags.SetDefault("db.sqlite.path", cfg.DB.SQLite.Path)
	flags.SetDefault("db.sqlite.table", cfg.DB.SQLite.Table)
	flags.SetDefault("log.level", cfg.Log.Level)
	flags.SetDefault("log.format", cfg.Log.Format)
	flags.SetDefault("s3.bucket", cfg.S3.Bucket)
	flags.SetDefault("compiler.max-depth", cfg.Compiler.MaxDepth)
	flags.SetDefault("compiler.max-nodes", cfg.Compiler.MaxNodes)
	return flags
}

func (c *RootCommand) Docs() ecdysis.Docs {
	return ecdysis.Docs{
		Short: "teknek plan compiler",
		Long: `teknek builds stream processing plans interactively and compiles them into
operator trees, one per feed partition.`,
	}
}

func (c *RootCommand) SubCommands() []ecdysis.Command {
	return []ecdysis.Command{
		&ShellCommand{root: c},
		&CompileCommand{root: c},
		&PlansCommand{root: c},
		&VersionCommand{},
	}
}
