package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/bryanwahyu/automaton-ready/internal/domain/analyst"
	"github.com/bryanwahyu/automaton-ready/internal/domain/session"
)

// Config controls how the database is opened.
type Config struct {
	Path       string
	InMemory   bool
	SyncWrites bool
	Logger     *slog.Logger
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store keeps session snapshots and analysis records in one badger database.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the database described by cfg.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

func snapshotKey(key string) []byte { return []byte("snapshot/" + key) }

// Get implements session.SnapshotStore.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, session.ErrSnapshotNotFound
	}
	return out, err
}

// Put implements session.SnapshotStore.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(key), data)
	})
}

// Delete implements session.SnapshotStore. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(snapshotKey(key))
	})
}

func analysisPrefix(sessionID string) []byte { return []byte("analysis/" + sessionID + "/") }

// analysisKey sorts records of a session by creation time.
func analysisKey(a *analyst.Analysis) []byte {
	return append(analysisPrefix(a.SessionID),
		[]byte(fmt.Sprintf("%020d/%s", a.CreatedAt.UnixNano(), a.ID))...)
}

// Save implements analyst.Repository.
func (s *Store) Save(ctx context.Context, a *analyst.Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(analysisKey(a), data)
	})
}

// Paginate implements analyst.Repository, newest first.
func (s *Store) Paginate(ctx context.Context, sessionID string, page, pageSize int) ([]*analyst.Analysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	skip := (page - 1) * pageSize

	var out []*analyst.Analysis
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := analysisPrefix(sessionID)
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// reverse iteration starts past the last key of the prefix
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if skip > 0 {
				skip--
				continue
			}
			var a analyst.Analysis
			if err := it.Item().Value(func(v []byte) error { return json.Unmarshal(v, &a) }); err != nil {
				return err
			}
			out = append(out, &a)
			if len(out) == pageSize {
				break
			}
		}
		return nil
	})
	return out, err
}

// Latest implements analyst.Repository. It returns nil when none exist.
func (s *Store) Latest(ctx context.Context, sessionID string) (*analyst.Analysis, error) {
	list, err := s.Paginate(ctx, sessionID, 1, 1)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}
