package native

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/lobsterdao/mintreveal/pkg/core/state"
	"github.com/stretchr/testify/require"
)

func TestCollectionScenarioC(t *testing.T) {
	e := newTestEnv(t, 100)

	minted, err := e.colls.ClaimByCollection(e.d, alice, allowedColl, ids(1))
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, minted)
	q, err := e.colls.RemainingQuota(e.d, allowedColl)
	require.NoError(t, err)
	require.EqualValues(t, 3, q)
	require.EqualValues(t, 1, e.supply(t))
	require.True(t, e.colls.IsClaimed(e.d, allowedColl, uint256.NewInt(1)))

	_, err = e.colls.ClaimByCollection(e.d, alice, allowedColl, ids(1))
	require.ErrorIs(t, err, ErrAlreadyClaimedByToken)

	// Alice's second token takes the quota down to 2.
	_, err = e.colls.ClaimByCollection(e.d, alice, allowedColl, ids(2))
	require.NoError(t, err)

	// The whole batch is rejected if it doesn't fit.
	_, err = e.colls.ClaimByCollection(e.d, bob, allowedColl, ids(3, 4, 5))
	require.ErrorIs(t, err, ErrQuotaExceeded)
	q, err = e.colls.RemainingQuota(e.d, allowedColl)
	require.NoError(t, err)
	require.EqualValues(t, 2, q)
	require.EqualValues(t, 2, e.supply(t))
	for _, id := range ids(3, 4, 5) {
		require.False(t, e.colls.IsClaimed(e.d, allowedColl, id))
	}

	// A batch that fits the rest goes through.
	minted, err = e.colls.ClaimByCollection(e.d, bob, allowedColl, ids(3, 4))
	require.NoError(t, err)
	require.Equal(t, []uint64{2, 3}, minted)
	q, err = e.colls.RemainingQuota(e.d, allowedColl)
	require.NoError(t, err)
	require.EqualValues(t, 0, q)

	_, err = e.colls.ClaimByCollection(e.d, bob, allowedColl, ids(5))
	require.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestCollectionRejects(t *testing.T) {
	e := newTestEnv(t, 100)

	testCases := map[string]struct {
		caller     common.Address
		collection common.Address
		ids        []*uint256.Int
		err        error
	}{
		"empty":              {alice, allowedColl, nil, ErrEmptyInput},
		"not owner":          {alice, allowedColl, ids(3), ErrNotOwner},
		"nonexistent token":  {alice, allowedColl, ids(42), ErrNotOwner},
		"partially owned":    {alice, allowedColl, ids(1, 3), ErrNotOwner},
		"duplicate in batch": {alice, allowedColl, ids(1, 2, 1), ErrAlreadyClaimedByToken},
		"unconfigured":       {bob, otherColl, ids(1), ErrQuotaExceeded},
		"nil id":             {alice, allowedColl, []*uint256.Int{nil}, ErrEmptyInput},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := e.colls.ClaimByCollection(e.d, tc.caller, tc.collection, tc.ids)
			require.ErrorIs(t, err, tc.err)
		})
	}
	require.EqualValues(t, 0, e.supply(t))
	q, err := e.colls.RemainingQuota(e.d, otherColl)
	require.NoError(t, err)
	require.EqualValues(t, 0, q)
}

func TestCollectionGuardPerCollection(t *testing.T) {
	e := newTestEnv(t, 100)
	require.NoError(t, e.colls.Initialize(e.d, []state.Quota{{Collection: otherColl, Initial: 1}}))

	_, err := e.colls.ClaimByCollection(e.d, alice, allowedColl, ids(1))
	require.NoError(t, err)
	// Same id in another collection is a different token.
	_, err = e.colls.ClaimByCollection(e.d, bob, otherColl, ids(1))
	require.NoError(t, err)
}

func TestCollectionOwnershipError(t *testing.T) {
	e := newTestEnv(t, 100)
	failure := errors.New("node is down")
	e.colls.Ownership = failingOwnership{failure}

	_, err := e.colls.ClaimByCollection(e.d, alice, allowedColl, ids(1))
	require.ErrorIs(t, err, ErrNotOwner)
	require.ErrorIs(t, err, failure)

	e.colls.Ownership = nil
	_, err = e.colls.ClaimByCollection(e.d, alice, allowedColl, ids(1))
	require.ErrorIs(t, err, ErrNoCollaborator)
}

type failingOwnership struct{ err error }

func (f failingOwnership) OwnerOf(common.Address, *uint256.Int) (common.Address, error) {
	return common.Address{}, f.err
}

func TestCollectionsList(t *testing.T) {
	e := newTestEnv(t, 100)
	require.NoError(t, e.colls.Initialize(e.d, []state.Quota{{Collection: otherColl, Initial: 7}}))

	list, err := e.colls.Collections(e.d)
	require.NoError(t, err)
	require.Equal(t, []state.Quota{
		{Collection: allowedColl, Initial: 4, Remaining: 4},
		{Collection: otherColl, Initial: 7, Remaining: 7},
	}, list)
}

func TestCollectionClaimWithOwners(t *testing.T) {
	e := newTestEnv(t, 100)

	owners := e.colls.FetchOwners(allowedColl, ids(1, 2, 1))
	require.Len(t, owners, 2)
	require.Equal(t, alice, owners[*uint256.NewInt(1)].Owner)

	// Lookups made for another batch don't cover new ids.
	_, err := e.colls.ClaimWithOwners(e.d, alice, allowedColl, ids(1, 2, 3), owners)
	require.ErrorIs(t, err, ErrNotOwner)

	minted, err := e.colls.ClaimWithOwners(e.d, alice, allowedColl, ids(1), owners)
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, minted)

	// The guard is checked against the current state, not the lookup time.
	_, err = e.colls.ClaimWithOwners(e.d, alice, allowedColl, ids(1, 2), owners)
	require.ErrorIs(t, err, ErrAlreadyClaimedByToken)
	left, err := e.colls.RemainingQuota(e.d, allowedColl)
	require.NoError(t, err)
	require.EqualValues(t, 3, left)

	e.colls.Ownership = nil
	require.Nil(t, e.colls.FetchOwners(allowedColl, ids(2)))
	_, err = e.colls.ClaimWithOwners(e.d, alice, allowedColl, ids(2), nil)
	require.ErrorIs(t, err, ErrNoCollaborator)
}
