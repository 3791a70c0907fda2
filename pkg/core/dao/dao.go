/*
Package dao provides typed access to the ledger state kept in a
storage.Store. Every DAO works over its own MemCachedStore layer, so changes
can be stacked with GetWrapped and either persisted or thrown away as a whole.
*/
package dao

import (
	"encoding/binary"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/lobsterdao/mintreveal/pkg/core/state"
	"github.com/lobsterdao/mintreveal/pkg/core/storage"
	"github.com/lobsterdao/mintreveal/pkg/io"
)

// ErrVersionMismatch is returned when the stored schema version differs from
// the supported one.
var ErrVersionMismatch = errors.New("storage schema version mismatch")

// Version is the current storage schema version.
const Version = "0.1.0"

// Simple is memCached wrapper around DB, simple DAO implementation.
type Simple struct {
	Store *storage.MemCachedStore
}

// NewSimple creates new simple dao using provided backend store.
func NewSimple(backend storage.Store) *Simple {
	return &Simple{Store: storage.NewMemCachedStore(backend)}
}

// GetBatch returns currently accumulated DB changeset.
func (dao *Simple) GetBatch() *storage.MemBatch {
	return dao.Store.GetBatch()
}

// GetWrapped returns new DAO instance with another layer of wrapped
// MemCachedStore around the current DAO Store.
func (dao *Simple) GetWrapped() *Simple {
	return NewSimple(dao.Store)
}

// Persist flushes all the changes made into the (supposedly) persistent
// underlying store. It doesn't block accesses to DAO from other threads.
func (dao *Simple) Persist() (int, error) {
	return dao.Store.Persist()
}

// GetAndDecode performs get operation and decoding with serializable structures.
func (dao *Simple) GetAndDecode(entity io.Serializable, key []byte) error {
	entityBytes, err := dao.Store.Get(key)
	if err != nil {
		return err
	}
	reader := io.NewBinReaderFromBuf(entityBytes)
	entity.DecodeBinary(reader)
	return reader.Err
}

// Put performs put operation with serializable structures.
func (dao *Simple) Put(entity io.Serializable, key []byte) error {
	buf := io.NewBufBinWriter()
	entity.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return buf.Err
	}
	dao.Store.Put(key, buf.Bytes())
	return nil
}

func (dao *Simple) getU64(key []byte) (uint64, error) {
	b, err := dao.Store.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(b) != 8 {
		return 0, errors.New("invalid uint64 value")
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (dao *Simple) putU64(key []byte, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	dao.Store.Put(key, b[:])
}

// -- start root.

// GetRoot returns the stored entitlement root, zero hash if there is none.
func (dao *Simple) GetRoot() (common.Hash, error) {
	b, err := dao.Store.Get(storage.STRoot.Bytes())
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return common.Hash{}, nil
		}
		return common.Hash{}, err
	}
	return common.BytesToHash(b), nil
}

// PutRoot stores the entitlement root.
func (dao *Simple) PutRoot(root common.Hash) {
	dao.Store.Put(storage.STRoot.Bytes(), root[:])
}

// IsRootLocked tells whether the root can't be changed anymore.
func (dao *Simple) IsRootLocked() bool {
	_, err := dao.Store.Get(storage.STRootLock.Bytes())
	return err == nil
}

// LockRoot makes the root immutable.
func (dao *Simple) LockRoot() {
	dao.Store.Put(storage.STRootLock.Bytes(), []byte{1})
}

// -- end root.

// GetClaimed returns the number of units claimed by the recipient so far.
func (dao *Simple) GetClaimed(recipient common.Address) (uint64, error) {
	return dao.getU64(storage.AppendPrefix(storage.STClaimed, recipient[:]))
}

// PutClaimed stores the number of units claimed by the recipient.
func (dao *Simple) PutClaimed(recipient common.Address, n uint64) {
	dao.putU64(storage.AppendPrefix(storage.STClaimed, recipient[:]), n)
}

// -- start collections.

// GetQuota returns the quota of the given collection. storage.ErrKeyNotFound
// is returned for unconfigured collections.
func (dao *Simple) GetQuota(collection common.Address) (*state.Quota, error) {
	q := new(state.Quota)
	err := dao.GetAndDecode(q, storage.AppendPrefix(storage.STQuota, collection[:]))
	if err != nil {
		return nil, err
	}
	return q, nil
}

// PutQuota stores the collection quota.
func (dao *Simple) PutQuota(q *state.Quota) error {
	return dao.Put(q, storage.AppendPrefix(storage.STQuota, q.Collection[:]))
}

// SeekQuotas iterates over all collection quotas in the ascending order of
// collection addresses until f returns false.
func (dao *Simple) SeekQuotas(f func(q *state.Quota) bool) error {
	var err error
	dao.Store.Seek(storage.SeekRange{Prefix: storage.STQuota.Bytes()}, func(k, v []byte) bool {
		q := new(state.Quota)
		r := io.NewBinReaderFromBuf(v)
		q.DecodeBinary(r)
		if r.Err != nil {
			err = r.Err
			return false
		}
		return f(q)
	})
	return err
}

func makeTokenGuardKey(collection common.Address, id *uint256.Int) []byte {
	b := id.Bytes32()
	return storage.AppendPrefix(storage.STTokenGuard, collection[:], b[:])
}

// IsTokenClaimed tells whether the external token was already used for a
// claim.
func (dao *Simple) IsTokenClaimed(collection common.Address, id *uint256.Int) bool {
	_, err := dao.Store.Get(makeTokenGuardKey(collection, id))
	return err == nil
}

// PutTokenClaimed marks the external token as used.
func (dao *Simple) PutTokenClaimed(collection common.Address, id *uint256.Int) {
	dao.Store.Put(makeTokenGuardKey(collection, id), []byte{1})
}

// -- end collections.

// GetSeed returns the randomness request state.
func (dao *Simple) GetSeed() (*state.Seed, error) {
	s := new(state.Seed)
	err := dao.GetAndDecode(s, storage.STSeed.Bytes())
	if err != nil {
		return nil, err
	}
	return s, nil
}

// PutSeed stores the randomness request state.
func (dao *Simple) PutSeed(s *state.Seed) error {
	return dao.Put(s, storage.STSeed.Bytes())
}

// -- start token.

// GetSupply returns minted and maximum supply.
func (dao *Simple) GetSupply() (*state.Supply, error) {
	s := new(state.Supply)
	err := dao.GetAndDecode(s, storage.STSupply.Bytes())
	if err != nil {
		return nil, err
	}
	return s, nil
}

// PutSupply stores minted and maximum supply.
func (dao *Simple) PutSupply(s *state.Supply) error {
	return dao.Put(s, storage.STSupply.Bytes())
}

func makeOwnerKey(id uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return storage.AppendPrefix(storage.STOwner, b[:])
}

// GetOwner returns the owner of the unit, storage.ErrKeyNotFound if it's
// not minted.
func (dao *Simple) GetOwner(id uint64) (common.Address, error) {
	b, err := dao.Store.Get(makeOwnerKey(id))
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(b), nil
}

// PutOwner stores the owner of the unit.
func (dao *Simple) PutOwner(id uint64, owner common.Address) {
	dao.Store.Put(makeOwnerKey(id), owner[:])
}

// GetBalance returns the number of units held by owner.
func (dao *Simple) GetBalance(owner common.Address) (uint64, error) {
	return dao.getU64(storage.AppendPrefix(storage.STBalance, owner[:]))
}

// PutBalance stores the number of units held by owner.
func (dao *Simple) PutBalance(owner common.Address, n uint64) {
	dao.putU64(storage.AppendPrefix(storage.STBalance, owner[:]), n)
}

// GetMinter returns the address allowed to mint, storage.ErrKeyNotFound if
// it's not set yet.
func (dao *Simple) GetMinter() (common.Address, error) {
	b, err := dao.Store.Get(storage.STMinter.Bytes())
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(b), nil
}

// PutMinter stores the address allowed to mint.
func (dao *Simple) PutMinter(minter common.Address) {
	dao.Store.Put(storage.STMinter.Bytes(), minter[:])
}

// GetURIs returns metadata URIs, empty ones if nothing was set.
func (dao *Simple) GetURIs() (*state.URIs, error) {
	u := new(state.URIs)
	err := dao.GetAndDecode(u, storage.STURIs.Bytes())
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		return nil, err
	}
	return u, nil
}

// PutURIs stores metadata URIs.
func (dao *Simple) PutURIs(u *state.URIs) error {
	return dao.Put(u, storage.STURIs.Bytes())
}

// -- end token.

// GetVersion returns the storage schema version.
func (dao *Simple) GetVersion() (string, error) {
	b, err := dao.Store.Get(storage.SYSVersion.Bytes())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PutVersion stores the storage schema version.
func (dao *Simple) PutVersion(v string) {
	dao.Store.Put(storage.SYSVersion.Bytes(), []byte(v))
}
