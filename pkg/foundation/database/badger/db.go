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
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/database"
	"github.com/teknek/teknek/pkg/foundation/log"
)

const (
	// gcInterval is how often value log garbage collection is attempted.
	// Offsets are rewritten after every tuple which leaves a lot of stale
	// values behind.
	gcInterval = 5 * time.Minute
	// gcDiscardRatio is the share of stale data a value log file needs
	// before it is rewritten.
	gcDiscardRatio = 0.5
)

// DB stores plans and offsets in an embedded badger store.
type DB struct {
	db     *badger.DB
	logger log.CtxLogger

	stop chan struct{}
	done sync.WaitGroup
}

var _ database.DB = (*DB)(nil)

// New opens the badger store in directory path, creating it if needed, and
// starts collecting garbage in the background.
func New(l zerolog.Logger, path string) (*DB, error) {
	logger := log.New(l).WithComponent("badger.DB")

	opt := badger.DefaultOptions(path)
	opt.Logger = badgerLogger{logger.ZerologWithComponent()}

	db, err := badger.Open(opt)
	if err != nil {
		return nil, cerrors.Errorf("badger: could not open %q: %w", path, err)
	}

	d := &DB{db: db, logger: logger, stop: make(chan struct{})}
	d.done.Add(1)
	go d.collectGarbage(gcInterval)
	return d, nil
}

func (d *DB) collectGarbage(interval time.Duration) {
	defer d.done.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			// rewrite files until nothing is left to collect
			var n int
			for d.db.RunValueLogGC(gcDiscardRatio) == nil {
				n++
			}
			if n > 0 {
				d.logger.Debug(context.Background()).Int("files", n).Msg("value log garbage collected")
			}
		}
	}
}

func (d *DB) Ping(ctx context.Context) error {
	key := "ping:" + uuid.NewString()
	if err := d.Set(ctx, key, []byte{}); err != nil {
		return err
	}
	return d.Set(ctx, key, nil)
}

// Close stops the garbage collection and flushes pending writes.
func (d *DB) Close() error {
	close(d.stop)
	d.done.Wait()
	return d.db.Close()
}

func (d *DB) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case cerrors.Is(err, badger.ErrKeyNotFound):
		return nil, database.ErrKeyNotExist
	case err != nil:
		return nil, cerrors.Errorf("badger: could not get key %q: %w", key, err)
	}
	return value, nil
}

func (d *DB) Set(_ context.Context, key string, value []byte) error {
	err := d.db.Update(func(txn *badger.Txn) error {
		if value == nil {
			return txn.Delete([]byte(key))
		}
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return cerrors.Errorf("badger: could not set key %q: %w", key, err)
	}
	return nil
}

// GetKeys iterates keys only, badger keeps them sorted.
func (d *DB) GetKeys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := d.db.View(func(txn *badger.Txn) error {
		opt := badger.DefaultIteratorOptions
		opt.Prefix = []byte(prefix)
		opt.PrefetchValues = false
		it := txn.NewIterator(opt)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, cerrors.Errorf("badger: could not list keys with prefix %q: %w", prefix, err)
	}
	return keys, nil
}

// badgerLogger routes badger logs to zerolog one level lower than badger
// reports them.
type badgerLogger struct {
	zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any)   { l.log(zerolog.ErrorLevel, format, args) }
func (l badgerLogger) Warningf(format string, args ...any) { l.log(zerolog.InfoLevel, format, args) }
func (l badgerLogger) Infof(format string, args ...any)    { l.log(zerolog.DebugLevel, format, args) }
func (l badgerLogger) Debugf(format string, args ...any)   { l.log(zerolog.TraceLevel, format, args) }

func (l badgerLogger) log(level zerolog.Level, format string, args []any) {
	l.WithLevel(level).Msgf(strings.TrimSuffix(format, "\n"), args...)
}
