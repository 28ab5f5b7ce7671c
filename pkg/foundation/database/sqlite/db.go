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
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/database"
	"github.com/teknek/teknek/pkg/foundation/log"
	_ "modernc.org/sqlite"
)

// fileName is the name of the database file created in the configured
// directory.
const fileName = "teknek.db"

// DB stores plans and offsets in a sqlite table. Statements are prepared when
// the database is opened.
type DB struct {
	db     *sql.DB
	logger log.CtxLogger

	get, upsert, del, keys *sql.Stmt
}

var _ database.DB = (*DB)(nil)

// New opens the sqlite database in directory dir, creating both if needed.
func New(ctx context.Context, l zerolog.Logger, dir, table string) (*DB, error) {
	if table == "" {
		return nil, cerrors.Errorf("sqlite: %w", cerrors.ErrEmptyName)
	}
	dsn, err := dataSourceName(dir)
	if err != nil {
		return nil, cerrors.Errorf("sqlite: %w", err)
	}
	sdb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, cerrors.Errorf("sqlite: could not open %q: %w", dsn, err)
	}

	d := &DB{db: sdb, logger: log.New(l).WithComponent("sqlite.DB")}
	if err := d.prepare(ctx, table); err != nil {
		_ = d.Close()
		return nil, err
	}
	d.logger.Debug(ctx).Str("table", table).Str("path", dsn).Msg("sqlite ready")
	return d, nil
}

func (d *DB) prepare(ctx context.Context, table string) error {
	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		key TEXT NOT NULL PRIMARY KEY CHECK(key != ''),
		value BLOB,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`, table)
	if _, err := d.db.ExecContext(ctx, create); err != nil {
		return cerrors.Errorf("sqlite: could not create table %q: %w", table, err)
	}

	stmts := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&d.get, `SELECT value FROM %q WHERE key = ?`},
		{&d.upsert, `INSERT INTO %q (key, value, updated_at) VALUES (?1, ?2, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`},
		{&d.del, `DELETE FROM %q WHERE key = ?`},
		{&d.keys, `SELECT key FROM %q WHERE substr(key, 1, length(?1)) = ?1 ORDER BY key`},
	}
	for _, s := range stmts {
		stmt, err := d.db.PrepareContext(ctx, fmt.Sprintf(s.query, table))
		if err != nil {
			return cerrors.Errorf("sqlite: could not prepare statement: %w", err)
		}
		*s.dst = stmt
	}
	return nil
}

func (d *DB) Close() error {
	var errs []error
	for _, s := range []*sql.Stmt{d.get, d.upsert, d.del, d.keys} {
		if s != nil {
			errs = append(errs, s.Close())
		}
	}
	errs = append(errs, d.db.Close())
	return cerrors.Join(errs...)
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Set(ctx context.Context, key string, value []byte) error {
	var err error
	if value == nil {
		_, err = d.del.ExecContext(ctx, key)
	} else {
		_, err = d.upsert.ExecContext(ctx, key, value)
	}
	if err != nil {
		return cerrors.Errorf("sqlite: could not set key %q: %w", key, err)
	}
	return nil
}

func (d *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := d.get.QueryRowContext(ctx, key).Scan(&value)
	switch {
	case cerrors.Is(err, sql.ErrNoRows):
		return nil, database.ErrKeyNotExist
	case err != nil:
		return nil, cerrors.Errorf("sqlite: could not get key %q: %w", key, err)
	}
	return value, nil
}

func (d *DB) GetKeys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := d.keys.QueryContext(ctx, prefix)
	if err != nil {
		return nil, cerrors.Errorf("sqlite: could not list keys with prefix %q: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, cerrors.Errorf("sqlite: could not scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// dataSourceName creates dir and returns the URL of the database file in it,
// opened in WAL mode.
func dataSourceName(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	return (&url.URL{Scheme: "file", Path: filepath.Join(abs, fileName), RawQuery: q.Encode()}).String(), nil
}
