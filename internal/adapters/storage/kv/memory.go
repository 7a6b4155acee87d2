package kv

// NewMemoryStore returns a Store over an in-memory LevelDB.
// Data lives as long as the connection; a reopen starts empty.
func NewMemoryStore() *Store {
	return NewStore(&LevelDBOpener{})
}
