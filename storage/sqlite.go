package storage

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

type sqliteStore struct {
	db *sql.DB
}

// NewSQLite returns a Store over the kv table of an opened local database.
// Update runs inside a transaction, so processes sharing the file do not
// lose each other's writes.
func NewSQLite(db *sql.DB) Store {
	return &sqliteStore{db}
}

func (s *sqliteStore) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, errors.Wrap(err, "storage.get")
	}
	return value, true, nil
}

func (s *sqliteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO kv (key, value) VALUES (?, ?)
	ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key,
		value,
	)
	return errors.Wrap(err, "storage.set")
}

func (s *sqliteStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	return errors.Wrap(err, "storage.remove")
}

func (s *sqliteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, errors.Wrap(err, "storage.keys")
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		err = rows.Scan(&key)
		if err != nil {
			return nil, errors.Wrap(err, "storage.keys.scan")
		}
		keys = append(keys, key)
	}
	return keys, errors.Wrap(rows.Err(), "storage.keys.rows")
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv")
	return errors.Wrap(err, "storage.clear")
}

func (s *sqliteStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "storage.update.begin_tx")
	}
	defer tx.Rollback()

	var old string
	ok := true
	err = tx.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&old)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		ok = false
	case err != nil:
		return errors.Wrap(err, "storage.update.get")
	}

	value, keep, err := fn(old, ok)
	if err != nil {
		return err
	}

	if keep {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			key,
			value,
		)
	} else {
		_, err = tx.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	}
	if err != nil {
		return errors.Wrap(err, "storage.update.write")
	}

	return errors.Wrap(tx.Commit(), "storage.update.commit")
}
