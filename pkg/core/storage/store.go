package storage

import (
	"errors"
	"fmt"

	"github.com/lobsterdao/mintreveal/pkg/core/storage/dbconfig"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// KeyPrefix constants.
const (
	// STRoot holds the entitlement commitment root.
	STRoot KeyPrefix = 0x01
	// STRootLock is set once the root can't be changed anymore.
	STRootLock KeyPrefix = 0x02
	// STClaimed maps recipients to the number of units claimed so far.
	STClaimed KeyPrefix = 0x10
	// STQuota maps collections to their remaining quotas.
	STQuota KeyPrefix = 0x20
	// STTokenGuard marks external (collection, id) pairs that were already
	// used for a claim.
	STTokenGuard KeyPrefix = 0x21
	STSeed       KeyPrefix = 0x30
	STSupply     KeyPrefix = 0x40
	STOwner      KeyPrefix = 0x41
	STBalance    KeyPrefix = 0x42
	STMinter     KeyPrefix = 0x43
	STURIs       KeyPrefix = 0x44
	SYSVersion   KeyPrefix = 0xf0
)

// SeekRange represents options for Store.Seek operation.
type SeekRange struct {
	// Prefix denotes the Seek's lookup key.
	Prefix []byte
	// Start denotes value appended to the Prefix to start Seek from.
	// Seeking starting from some key includes this key to the result;
	// if no matching key was found then next suitable key is picked up.
	// Start may be empty. Empty Start means seeking through all keys in
	// the DB with matching Prefix.
	Start []byte
	// Backwards denotes whether Seek direction should be reversed, i.e.
	// whether seeking should be performed in a descending way.
	Backwards bool
}

// ErrKeyNotFound is an error returned by Store implementations
// when a certain key is not found.
var ErrKeyNotFound = errors.New("key not found")

type (
	// Store is the underlying KV backend for the ledger state, it's not
	// intended to be used directly, you wrap it with some memory cache layer
	// most of the time.
	Store interface {
		Get([]byte) ([]byte, error)
		// PutChangeSet allows to push prepared changeset to the Store. A nil
		// value means the key is to be deleted.
		PutChangeSet(puts map[string][]byte) error
		// Seek can guarantee that provided key (k) and value (v) are the only valid until the next call to f.
		// Seek continues iteration until false is returned from f.
		// Key and value slices should not be modified.
		// Seek can guarantee that key-value items are sorted by key in ascending way.
		Seek(rng SeekRange, f func(k, v []byte) bool)
		Close() error
	}

	// KeyPrefix is a constant byte added as a prefix for each key
	// stored.
	KeyPrefix uint8
)

// Bytes returns the bytes representation of KeyPrefix.
func (k KeyPrefix) Bytes() []byte {
	return []byte{byte(k)}
}

// AppendPrefix appends byteslice b to the given KeyPrefix.
func AppendPrefix(k KeyPrefix, b ...[]byte) []byte {
	size := 1
	for i := range b {
		size += len(b[i])
	}
	dest := make([]byte, 1, size)
	dest[0] = byte(k)
	for i := range b {
		dest = append(dest, b[i]...)
	}
	return dest
}

func seekRangeToPrefixes(sr SeekRange) *util.Range {
	var (
		rang  *util.Range
		start = make([]byte, len(sr.Prefix)+len(sr.Start))
	)
	copy(start, sr.Prefix)
	copy(start[len(sr.Prefix):], sr.Start)

	if !sr.Backwards {
		rang = util.BytesPrefix(sr.Prefix)
		rang.Start = start
	} else {
		rang = util.BytesPrefix(start)
		rang.Start = sr.Prefix
	}
	return rang
}

// NewStore creates storage with preselected in configuration database type.
func NewStore(cfg dbconfig.DBConfiguration) (Store, error) {
	var store Store
	var err error
	switch cfg.Type {
	case dbconfig.LevelDB:
		store, err = NewLevelDBStore(cfg.LevelDBOptions)
	case dbconfig.InMemoryDB:
		store = NewMemoryStore()
	case dbconfig.BoltDB:
		store, err = NewBoltDBStore(cfg.BoltDBOptions)
	default:
		return nil, fmt.Errorf("unknown storage: %s", cfg.Type)
	}
	return store, err
}
