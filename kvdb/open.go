package kvdb

import (
	"fmt"
)

// storage engines
const (
	EngineLevelDB = "leveldb"
	EngineBolt    = "bolt"
	EngineBadger  = "badger"
	EngineMemory  = "memory"
)

// Engines lists the supported engine names.
var Engines = []string{EngineLevelDB, EngineBolt, EngineBadger, EngineMemory}

// Open opens the store for the named engine. cache and handles only apply
// to leveldb.
func Open(engine, path string, cache, handles int) (Store, error) {
	switch engine {
	case EngineLevelDB, "":
		return NewLevelDB(path, cache, handles, false)
	case EngineBolt:
		return NewBolt(path)
	case EngineBadger:
		return NewBadger(path)
	case EngineMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}
