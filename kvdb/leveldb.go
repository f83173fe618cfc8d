package kvdb

import (
	"github.com/pakana/projector/common"
	"github.com/pakana/projector/log"
	goleveldb "github.com/syndtr/goleveldb/leveldb"
	dberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	// minCache is the minimum amount of memory in megabytes to allocate to leveldb
	// read and write caching, split half and half.
	minCache = 16

	// minHandles is the minimum number of files handles to allocate to the open
	// database files.
	minHandles = 16
)

var _ Store = &LevelDB{}

// LevelDB is a Store backed by goleveldb. Update uses leveldb's own
// transaction, which holds the write lock until commit or discard, so
// concurrent writers are serialized.
type LevelDB struct {
	path  string
	lvldb *goleveldb.DB
}

// NewLevelDB opens (or creates) a leveldb store at path.
func NewLevelDB(path string, cache int, handles int, readonly bool) (*LevelDB, error) {
	if cache < minCache {
		cache = minCache
	}
	if handles < minHandles {
		handles = minHandles
	}
	options := configureOptions(func(options *opt.Options) {
		options.OpenFilesCacheCapacity = handles
		options.BlockCacheCapacity = cache / 2 * opt.MiB
		options.WriteBuffer = cache / 4 * opt.MiB // Two of these are used internally
		options.ReadOnly = readonly
	})
	usedCache := options.GetBlockCacheCapacity() + options.GetWriteBuffer()*2
	logCtx := []interface{}{"database", path, "cache", common.StorageSize(usedCache), "handles", options.GetOpenFilesCacheCapacity()}
	if options.ReadOnly {
		logCtx = append(logCtx, "readonly", "true")
	}
	log.Info("Allocated cache and file handles", logCtx...)

	// Open the db and recover any potential corruptions
	db, err := goleveldb.OpenFile(path, options)
	if dberrors.IsCorrupted(err) {
		db, err = goleveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, err
	}
	return &LevelDB{path: path, lvldb: db}, nil
}

// NewLevelDBMemory returns a leveldb store kept entirely in memory.
func NewLevelDBMemory() (*LevelDB, error) {
	db, err := goleveldb.Open(storage.NewMemStorage(), configureOptions(nil))
	if err != nil {
		return nil, err
	}
	return &LevelDB{path: ":memory:", lvldb: db}, nil
}

// configureOptions sets some default options, then runs the provided setter.
func configureOptions(customizeFn func(*opt.Options)) *opt.Options {
	options := &opt.Options{
		Filter:                 filter.NewBloomFilter(10),
		DisableSeeksCompaction: true,
	}
	if customizeFn != nil {
		customizeFn(options)
	}
	return options
}

// Path returns the path to the database directory.
func (db *LevelDB) Path() string {
	return db.path
}

// Close flushes any pending data to disk and closes
// all io accesses to the underlying key-value store.
func (db *LevelDB) Close() error {
	return db.lvldb.Close()
}

// Update implements Store.
func (db *LevelDB) Update(f func(tx Tx) error) (err error) {
	tr, err := db.lvldb.OpenTransaction()
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tr.Discard()
		}
	}()
	if err = f(&levelTx{levelReader{src: tr}, tr}); err != nil {
		return err
	}
	if err = tr.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// View implements Store.
func (db *LevelDB) View(f func(r Reader) error) error {
	snap, err := db.lvldb.GetSnapshot()
	if err != nil {
		return err
	}
	defer snap.Release()
	return f(&levelReader{src: snap})
}

// levelSource is what a leveldb transaction and a snapshot have in common.
type levelSource interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

type levelReader struct {
	src levelSource
}

func (r *levelReader) Get(key Key) (string, bool, error) {
	if err := key.validate(); err != nil {
		return "", false, err
	}
	dat, err := r.src.Get(encodeKey(key), nil)
	if err == dberrors.ErrNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(dat), true, nil
}

func (r *levelReader) Children(key Key) ([]string, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	prefix := encodeKey(key)
	c := &childCollector{prefix: prefix}
	iter := r.src.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		c.add(iter.Key())
	}
	return c.children, iter.Error()
}

func (r *levelReader) HasTree(key Key) (bool, error) {
	if err := key.validate(); err != nil {
		return false, err
	}
	iter := r.src.NewIterator(util.BytesPrefix(encodeKey(key)), nil)
	defer iter.Release()
	found := iter.Next()
	return found, iter.Error()
}

type levelTx struct {
	levelReader
	tr *goleveldb.Transaction
}

func (tx *levelTx) Set(key Key, value string) error {
	if err := key.validate(); err != nil {
		return err
	}
	return tx.tr.Put(encodeKey(key), []byte(value), nil)
}

func (tx *levelTx) DeleteTree(key Key) error {
	if err := key.validate(); err != nil {
		return err
	}
	var doomed [][]byte
	iter := tx.tr.NewIterator(util.BytesPrefix(encodeKey(key)), nil)
	for iter.Next() {
		doomed = append(doomed, append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}
	for _, k := range doomed {
		if err := tx.tr.Delete(k, nil); err != nil {
			return err
		}
	}
	return nil
}
