package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrVersionChanged is returned by an operation that found the database upgraded
// by another process. The connection yields and the next call reopens.
var ErrVersionChanged = errors.New("schema version changed by another process")

// ErrVersionTooNew is returned by Open when the file was upgraded past the
// version this process understands.
var ErrVersionTooNew = errors.New("schema version is newer than supported")

// sqliteMigrations holds one statement block per schema version (index 0 = version 1).
var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`,
}

// LatestSchemaVersion returns the highest schema version known to this build.
func LatestSchemaVersion() int {
	return len(sqliteMigrations)
}

// SQLiteOpener opens a SQLite file as the key-value backend.
type SQLiteOpener struct {
	// Path is a file path or ":memory:".
	Path string
	// Version is the schema version to open with. Zero means LatestSchemaVersion.
	Version int
}

// NewSQLiteOpener returns an opener for the SQLite file at path.
func NewSQLiteOpener(path string) *SQLiteOpener {
	return &SQLiteOpener{Path: path}
}

func (o *SQLiteOpener) version() int {
	if o.Version > 0 {
		return o.Version
	}
	return LatestSchemaVersion()
}

func (o *SQLiteOpener) dsn() string {
	if o.Path == ":memory:" || strings.HasPrefix(o.Path, "file:") {
		return o.Path
	}
	return o.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
}

// Open opens the database and applies pending schema upgrades.
// PRE: Path is writable or ":memory:"
// POST: Returns a Conn whose schema version equals o.Version
func (o *SQLiteOpener) Open(ctx context.Context, events Events) (Conn, error) {
	db, err := sql.Open("sqlite", o.dsn())
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", o.Path, err)
	}
	// One connection: every transaction of this process serializes through it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", o.Path, err)
	}
	if err := upgradeSQLite(ctx, db, o.version()); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteConn{db: db, version: o.version(), events: events}, nil
}

// upgradeSQLite brings the file to want, running each missing migration once.
func upgradeSQLite(ctx context.Context, db *sql.DB, want int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upgrade: %w", err)
	}
	defer tx.Rollback()

	var current int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current > want {
		return fmt.Errorf("%w: file is at %d, want %d", ErrVersionTooNew, current, want)
	}
	if current == want {
		return nil
	}
	for v := current + 1; v <= want; v++ {
		if v <= len(sqliteMigrations) {
			if _, err := tx.ExecContext(ctx, sqliteMigrations[v-1]); err != nil {
				return fmt.Errorf("apply schema version %d: %w", v, err)
			}
		}
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", want)); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return tx.Commit()
}

type sqliteConn struct {
	db      *sql.DB
	version int
	events  Events

	closeOnce sync.Once
	closeErr  error
}

// withTx runs fn in a transaction after checking that no other process has
// upgraded the schema since this connection opened.
func (c *sqliteConn) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return c.classify(err)
	}
	defer tx.Rollback()

	var current int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return c.classify(err)
	}
	if current > c.version {
		tx.Rollback()
		c.events.versionChange()
		return fmt.Errorf("%w: now %d, opened at %d", ErrVersionChanged, current, c.version)
	}
	if err := fn(tx); err != nil {
		return c.classify(err)
	}
	if err := tx.Commit(); err != nil {
		return c.classify(err)
	}
	return nil
}

// classify reports an unexpected close to the owner.
func (c *sqliteConn) classify(err error) error {
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		c.events.closed()
	}
	return err
}

func (c *sqliteConn) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	found := true
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

func (c *sqliteConn) Put(ctx context.Context, key string, value []byte) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO kv_store (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
		return err
	})
}

func (c *sqliteConn) Delete(ctx context.Context, key string) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key)
		return err
	})
}

func (c *sqliteConn) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT key FROM kv_store WHERE instr(key, ?) = 1 ORDER BY key`, prefix)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var k string
			if err := rows.Scan(&k); err != nil {
				return err
			}
			keys = append(keys, k)
		}
		return rows.Err()
	})
	return keys, err
}

func (c *sqliteConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.db.Close()
	})
	return c.closeErr
}
