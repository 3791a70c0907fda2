package native

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/lobsterdao/mintreveal/pkg/core/dao"
	"github.com/lobsterdao/mintreveal/pkg/core/state"
	"github.com/lobsterdao/mintreveal/pkg/core/storage"
)

// OwnershipReader answers who currently holds a token of an external
// collection.
type OwnershipReader interface {
	OwnerOf(collection common.Address, id *uint256.Int) (common.Address, error)
}

// Collections handles claims made by holders of external collection tokens.
// Every external token can be used once and every collection has a fixed
// quota of claims.
type Collections struct {
	Token     *Token
	Ownership OwnershipReader
}

// NewCollections creates Collections minting through token.
func NewCollections(token *Token, ownership OwnershipReader) *Collections {
	return &Collections{
		Token:     token,
		Ownership: ownership,
	}
}

// Initialize stores the quotas. Collections missing from the list have zero
// quota.
func (c *Collections) Initialize(d *dao.Simple, quotas []state.Quota) error {
	for i := range quotas {
		q := quotas[i]
		q.Remaining = q.Initial
		if err := d.PutQuota(&q); err != nil {
			return err
		}
	}
	return nil
}

// RemainingQuota returns the number of claims still allowed for the
// collection.
func (c *Collections) RemainingQuota(d *dao.Simple, collection common.Address) (uint64, error) {
	q, err := d.GetQuota(collection)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return q.Remaining, nil
}

// Collections returns quotas of all configured collections.
func (c *Collections) Collections(d *dao.Simple) ([]state.Quota, error) {
	var res []state.Quota
	err := d.SeekQuotas(func(q *state.Quota) bool {
		res = append(res, *q)
		return true
	})
	return res, err
}

// IsClaimed tells whether the external token was already used.
func (c *Collections) IsClaimed(d *dao.Simple, collection common.Address, id *uint256.Int) bool {
	return d.IsTokenClaimed(collection, id)
}

// Owners is the result of ownership lookups made ahead of a claim, so that
// the claim itself doesn't call out of the ledger.
type Owners map[uint256.Int]OwnerLookup

// OwnerLookup is a single ownership answer.
type OwnerLookup struct {
	Owner common.Address
	Err   error
}

// FetchOwners asks the ownership reader about every distinct id. It returns
// nil if there is no reader. Lookup failures are kept and reported by
// ClaimWithOwners.
func (c *Collections) FetchOwners(collection common.Address, ids []*uint256.Int) Owners {
	if c.Ownership == nil {
		return nil
	}
	owners := make(Owners, len(ids))
	for _, id := range ids {
		if id == nil {
			continue
		}
		if _, ok := owners[*id]; ok {
			continue
		}
		owner, err := c.Ownership.OwnerOf(collection, id)
		owners[*id] = OwnerLookup{Owner: owner, Err: err}
	}
	return owners
}

// ClaimByCollection mints one unit to caller per external token id. Every
// token must be owned by caller and not used before, and the whole batch
// must fit into the remaining collection quota, otherwise nothing is
// minted.
func (c *Collections) ClaimByCollection(d *dao.Simple, caller, collection common.Address, ids []*uint256.Int) ([]uint64, error) {
	return c.ClaimWithOwners(d, caller, collection, ids, c.FetchOwners(collection, ids))
}

// ClaimWithOwners is ClaimByCollection with ownership already looked up.
// Ids missing from owners are rejected.
func (c *Collections) ClaimWithOwners(d *dao.Simple, caller, collection common.Address, ids []*uint256.Int, owners Owners) ([]uint64, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyInput
	}
	seen := make(map[uint256.Int]struct{}, len(ids))
	for _, id := range ids {
		if id == nil {
			return nil, fmt.Errorf("%w: nil token id", ErrEmptyInput)
		}
		if _, dup := seen[*id]; dup || d.IsTokenClaimed(collection, id) {
			return nil, fmt.Errorf("%w: %s #%s", ErrAlreadyClaimedByToken, collection.Hex(), id.Dec())
		}
		seen[*id] = struct{}{}
		if owners == nil {
			return nil, fmt.Errorf("ownership reader: %w", ErrNoCollaborator)
		}
		res, ok := owners[*id]
		if !ok {
			return nil, fmt.Errorf("%w: %s #%s: ownership unknown", ErrNotOwner, collection.Hex(), id.Dec())
		}
		if res.Err != nil {
			return nil, fmt.Errorf("%w: %s #%s: %w", ErrNotOwner, collection.Hex(), id.Dec(), res.Err)
		}
		if res.Owner != caller {
			return nil, fmt.Errorf("%w: %s #%s", ErrNotOwner, collection.Hex(), id.Dec())
		}
	}
	remaining, err := c.RemainingQuota(d, collection)
	if err != nil {
		return nil, err
	}
	n := uint64(len(ids))
	if remaining < n {
		return nil, fmt.Errorf("%w: %d requested, %d left for %s", ErrQuotaExceeded, n, remaining, collection.Hex())
	}
	if err := c.Token.CheckSupply(d, n); err != nil {
		return nil, err
	}
	for _, id := range ids {
		d.PutTokenClaimed(collection, id)
	}
	q, err := d.GetQuota(collection)
	if err != nil {
		return nil, err
	}
	q.Remaining -= n
	if err := d.PutQuota(q); err != nil {
		return nil, err
	}
	return c.Token.Mint(d, EngineAddress, caller, n)
}
