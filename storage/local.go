// Package storage persists small client-side values between runs in the
// local_storage table, mirroring the getItem/setItem/removeItem surface of
// browser local storage.
package storage

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/jobtrack/db"
	"github.com/teranos/jobtrack/errors"
)

// LocalStorage is a string key/value store backed by SQLite.
type LocalStorage struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// New wraps a migrated database. logger may be nil.
func New(conn *sql.DB, logger *zap.SugaredLogger) *LocalStorage {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &LocalStorage{db: conn, logger: logger}
}

// GetItem returns the value stored under key and whether it exists.
func (s *LocalStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageError(err, "get", key)
	}
	return value, true, nil
}

// SetItem stores value under key, replacing any previous value.
func (s *LocalStorage) SetItem(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return storageError(err, "set", key)
	}
	s.logger.Debugw("Stored local item", "key", key)
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (s *LocalStorage) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return storageError(err, "remove", key)
	}
	s.logger.Debugw("Removed local item", "key", key)
	return nil
}

// storageError wraps err for op on key and marks a closed database so
// callers can test for db.ErrDatabaseClosed.
func storageError(err error, op, key string) error {
	wrapped := errors.Wrapf(err, "%s %s", op, key)
	if db.IsDatabaseClosed(err) {
		return errors.WithHint(errors.Mark(wrapped, db.ErrDatabaseClosed), "local storage was closed before the command finished")
	}
	return wrapped
}
