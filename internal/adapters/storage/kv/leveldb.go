package kv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB keeps user records and backend metadata in separate key ranges.
var (
	levelDataPrefix    = []byte("d/")
	levelSchemaVersion = []byte("m/schema_version")
)

// LevelDBOpener opens a LevelDB directory as the key-value backend.
// LevelDB holds an exclusive file lock, so a second process cannot open the
// same directory; the schema marker is checked on open only.
type LevelDBOpener struct {
	// Path is the database directory. Empty means an in-memory database.
	Path string
	// Version is the schema version to open with. Zero means LatestSchemaVersion.
	Version int
	// Sync forces an fsync on every write.
	Sync bool
}

// NewLevelDBOpener returns an opener for the LevelDB directory at path.
func NewLevelDBOpener(path string) *LevelDBOpener {
	return &LevelDBOpener{Path: path, Sync: true}
}

func (o *LevelDBOpener) version() int {
	if o.Version > 0 {
		return o.Version
	}
	return LatestSchemaVersion()
}

// Open opens the database and records the schema version on first use.
// PRE: Path is a writable directory or empty
// POST: Returns a Conn; the schema marker equals o.Version
func (o *LevelDBOpener) Open(_ context.Context, events Events) (Conn, error) {
	var (
		db  *leveldb.DB
		err error
	)
	if o.Path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(o.Path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open leveldb %q: %w", o.Path, err)
	}

	want := o.version()
	raw, err := db.Get(levelSchemaVersion, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		if err := db.Put(levelSchemaVersion, []byte(strconv.Itoa(want)), &opt.WriteOptions{Sync: true}); err != nil {
			db.Close()
			return nil, fmt.Errorf("write schema version: %w", err)
		}
	case err != nil:
		db.Close()
		return nil, fmt.Errorf("read schema version: %w", err)
	default:
		current, convErr := strconv.Atoi(string(raw))
		if convErr != nil {
			db.Close()
			return nil, fmt.Errorf("parse schema version %q: %w", raw, convErr)
		}
		if current > want {
			db.Close()
			return nil, fmt.Errorf("%w: directory is at %d, want %d", ErrVersionTooNew, current, want)
		}
		if current < want {
			if err := db.Put(levelSchemaVersion, []byte(strconv.Itoa(want)), &opt.WriteOptions{Sync: true}); err != nil {
				db.Close()
				return nil, fmt.Errorf("write schema version: %w", err)
			}
		}
	}

	return &levelConn{db: db, events: events, sync: o.Sync}, nil
}

type levelConn struct {
	db     *leveldb.DB
	events Events
	sync   bool

	closeOnce sync.Once
	closeErr  error
}

func dataKey(key string) []byte {
	return append(append([]byte{}, levelDataPrefix...), key...)
}

func (c *levelConn) classify(err error) error {
	if errors.Is(err, leveldb.ErrClosed) {
		c.events.closed()
	}
	return err
}

func (c *levelConn) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	value, err := c.db.Get(dataKey(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, c.classify(err)
	}
	return value, true, nil
}

func (c *levelConn) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.classify(c.db.Put(dataKey(key), value, &opt.WriteOptions{Sync: c.sync}))
}

func (c *levelConn) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.classify(c.db.Delete(dataKey(key), &opt.WriteOptions{Sync: c.sync}))
}

func (c *levelConn) Keys(ctx context.Context, prefix string) ([]string, error) {
	iter := c.db.NewIterator(util.BytesPrefix(dataKey(prefix)), nil)
	defer iter.Release()
	var keys []string
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		keys = append(keys, string(iter.Key()[len(levelDataPrefix):]))
	}
	if err := iter.Error(); err != nil {
		return nil, c.classify(err)
	}
	return keys, nil
}

func (c *levelConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.db.Close()
	})
	return c.closeErr
}
