package kv

import (
	"context"
	"fmt"
)

// Events carries the lifecycle callbacks a Conn reports back to its owner.
// Either callback may be nil.
type Events struct {
	// OnVersionChange fires when another process asks for a newer schema
	// version. The owner must stop using the Conn and close it.
	OnVersionChange func()
	// OnClose fires when the backend closed the handle without being asked to.
	OnClose func()
}

func (e Events) versionChange() {
	if e.OnVersionChange != nil {
		e.OnVersionChange()
	}
}

func (e Events) closed() {
	if e.OnClose != nil {
		e.OnClose()
	}
}

// Opener opens a backend connection. The first open of a fresh backend runs the
// schema upgrade that creates the single container used for all keys.
type Opener interface {
	Open(ctx context.Context, events Events) (Conn, error)
}

// Conn is one open handle to a backend. Every call runs in its own transaction.
type Conn interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Backend names accepted by NewOpener.
const (
	BackendSQLite  = "sqlite"
	BackendLevelDB = "leveldb"
)

// NewOpener returns the Opener for a named backend.
// PRE: backend is one of BackendSQLite, BackendLevelDB
// POST: Returns an opener bound to path; nothing is opened yet
func NewOpener(backend, path string) (Opener, error) {
	switch backend {
	case BackendSQLite, "":
		return NewSQLiteOpener(path), nil
	case BackendLevelDB:
		return NewLevelDBOpener(path), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
