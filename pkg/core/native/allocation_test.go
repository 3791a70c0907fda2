package native

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lobsterdao/mintreveal/pkg/crypto/merkle"
	"github.com/stretchr/testify/require"
)

func TestAllocationScenarioA(t *testing.T) {
	e := newTestEnv(t, 6)
	tr := e.setTree(t, []merkle.Entitlement{{Address: alice, Count: 1}, {Address: bob, Count: 2}, {Address: dan, Count: 3}})

	minted, err := e.alloc.Claim(e.d, alice, 1, 1, e.proof(t, tr, alice))
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, minted)
	require.EqualValues(t, 1, e.supply(t))

	_, err = e.alloc.Claim(e.d, alice, 1, 1, e.proof(t, tr, alice))
	require.ErrorIs(t, err, ErrQuotaExceeded)

	minted, err = e.alloc.Claim(e.d, bob, 2, 2, e.proof(t, tr, bob))
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2}, minted)
	require.EqualValues(t, 3, e.supply(t))

	minted, err = e.alloc.Claim(e.d, dan, 3, 3, e.proof(t, tr, dan))
	require.NoError(t, err)
	require.Equal(t, []uint64{3, 4, 5}, minted)
	require.EqualValues(t, 6, e.supply(t))

	// Supply is exhausted even for a holder with quota left.
	e.owners[allowedColl][9] = eve
	_, err = e.colls.ClaimByCollection(e.d, eve, allowedColl, ids(9))
	require.ErrorIs(t, err, ErrSupplyExceeded)

	owner, err := e.token.OwnerOf(e.d, 0)
	require.NoError(t, err)
	require.Equal(t, alice, owner)
	for _, a := range []common.Address{alice, bob, dan} {
		bal, err := e.token.BalanceOf(e.d, a)
		require.NoError(t, err)
		claimed, err := e.alloc.ClaimedCount(e.d, a)
		require.NoError(t, err)
		require.Equal(t, claimed, bal)
	}
}

func TestAllocationSupplyBeforeQuota(t *testing.T) {
	e := newTestEnv(t, 2)
	tr := e.setTree(t, []merkle.Entitlement{{Address: alice, Count: 5}, {Address: bob, Count: 2}})

	_, err := e.alloc.Claim(e.d, alice, 5, 3, e.proof(t, tr, alice))
	require.ErrorIs(t, err, ErrSupplyExceeded)
	claimed, err := e.alloc.ClaimedCount(e.d, alice)
	require.NoError(t, err)
	require.EqualValues(t, 0, claimed)
	require.False(t, e.alloc.RootLocked(e.d))
}

func TestAllocationScenarioB(t *testing.T) {
	e := newTestEnv(t, 610)
	tr := e.setTree(t, []merkle.Entitlement{{Address: alice, Count: 560}})
	proof := e.proof(t, tr, alice)
	require.Empty(t, proof)

	for i := 0; i < 5; i++ {
		minted, err := e.alloc.Claim(e.d, alice, 560, 100, proof)
		require.NoError(t, err)
		require.Len(t, minted, 100)
		require.EqualValues(t, i*100, minted[0])
	}
	_, err := e.alloc.Claim(e.d, alice, 560, 100, proof)
	require.ErrorIs(t, err, ErrQuotaExceeded)

	_, err = e.alloc.Claim(e.d, alice, 560, 60, proof)
	require.NoError(t, err)
	claimed, err := e.alloc.ClaimedCount(e.d, alice)
	require.NoError(t, err)
	require.EqualValues(t, 560, claimed)

	for _, n := range []uint64{1, 60, 100} {
		_, err = e.alloc.Claim(e.d, alice, 560, n, proof)
		require.ErrorIs(t, err, ErrQuotaExceeded)
	}
	require.EqualValues(t, 560, e.supply(t))
}

func TestAllocationRejects(t *testing.T) {
	e := newTestEnv(t, 100)
	tr := e.setTree(t, []merkle.Entitlement{{Address: alice, Count: 1}, {Address: bob, Count: 2}, {Address: dan, Count: 3}})

	testCases := map[string]struct {
		recipient common.Address
		maxCount  uint64
		requested uint64
		proof     []common.Hash
		err       error
	}{
		"zero requested":   {bob, 2, 0, e.proof(t, tr, bob), ErrEmptyInput},
		"inflated count":   {bob, 3, 1, e.proof(t, tr, bob), ErrInvalidProof},
		"foreign proof":    {eve, 2, 1, e.proof(t, tr, bob), ErrInvalidProof},
		"swapped proof":    {alice, 1, 1, e.proof(t, tr, bob), ErrInvalidProof},
		"no proof":         {dan, 3, 1, nil, ErrInvalidProof},
		"over entitlement": {bob, 2, 3, e.proof(t, tr, bob), ErrQuotaExceeded},
		"huge requested":   {bob, 2, ^uint64(0), e.proof(t, tr, bob), ErrQuotaExceeded},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := e.alloc.Claim(e.d, tc.recipient, tc.maxCount, tc.requested, tc.proof)
			require.ErrorIs(t, err, tc.err)
		})
	}
	require.EqualValues(t, 0, e.supply(t))
	require.False(t, e.alloc.RootLocked(e.d))
}

func TestAllocationVerifyClaim(t *testing.T) {
	e := newTestEnv(t, 100)
	tr := e.setTree(t, []merkle.Entitlement{{Address: alice, Count: 1}, {Address: bob, Count: 2}})

	ok, err := e.alloc.VerifyClaim(e.d, bob, 2, e.proof(t, tr, bob))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = e.alloc.VerifyClaim(e.d, bob, 1, e.proof(t, tr, bob))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAllocationAnyoneSubmits(t *testing.T) {
	e := newTestEnv(t, 100)
	tr := e.setTree(t, []merkle.Entitlement{{Address: alice, Count: 1}, {Address: bob, Count: 2}})

	// Units go to the recipient, whoever pays for the call.
	_, err := e.alloc.Claim(e.d, bob, 2, 2, e.proof(t, tr, bob))
	require.NoError(t, err)
	bal, err := e.token.BalanceOf(e.d, bob)
	require.NoError(t, err)
	require.EqualValues(t, 2, bal)
}

func TestAllocationRoot(t *testing.T) {
	e := newTestEnv(t, 100)
	tr := e.setTree(t, []merkle.Entitlement{{Address: alice, Count: 1}, {Address: bob, Count: 2}})
	root, err := e.alloc.Root(e.d)
	require.NoError(t, err)
	require.Equal(t, tr.Root(), root)

	require.ErrorIs(t, e.alloc.UpdateRoot(e.d, alice, common.Hash{}), ErrUnauthorized)
	require.ErrorIs(t, e.alloc.LockRoot(e.d, alice), ErrUnauthorized)

	_, err = e.alloc.Claim(e.d, alice, 1, 1, e.proof(t, tr, alice))
	require.NoError(t, err)
	require.True(t, e.alloc.RootLocked(e.d))
	require.ErrorIs(t, e.alloc.UpdateRoot(e.d, operator, common.HexToHash("0x01")), ErrRootLocked)

	e2 := newTestEnv(t, 100)
	require.NoError(t, e2.alloc.LockRoot(e2.d, operator))
	require.ErrorIs(t, e2.alloc.UpdateRoot(e2.d, operator, common.HexToHash("0x01")), ErrRootLocked)
}
