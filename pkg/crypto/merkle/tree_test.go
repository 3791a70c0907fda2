package merkle

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	bob   = common.HexToAddress("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
	dan   = common.HexToAddress("0x90f79bf6eb2c4f870365e785982e1f101e93b906")
	eve   = common.HexToAddress("0x15d34aaf54267db7d7c367839aaf71a00a2c6a65")
)

func testEntitlements() []Entitlement {
	return []Entitlement{
		{Address: alice, Count: 1},
		{Address: bob, Count: 2},
		{Address: dan, Count: 3},
	}
}

func TestLeafHash(t *testing.T) {
	require.Equal(t, common.HexToHash("0x3f68e79174daf15b50e15833babc8eb7743e730bb9606f922c48e95314c3905c"), LeafHash(alice, 1))
	require.Equal(t, common.HexToHash("0xd0583fe73ce94e513e73539afcb4db4c1ed1834a418c3f0ef2d5cff7c8bb1dee"), LeafHash(bob, 2))
	require.Equal(t, common.HexToHash("0x8d1187a2c5d69d9d0f6e6c8baf49c9549b9573585daef9b8634509e0cb8d99ae"), LeafHash(dan, 3))
	require.NotEqual(t, LeafHash(alice, 1), LeafHash(alice, 2))
}

func TestNewTree(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := NewTree(nil)
		require.ErrorIs(t, err, ErrEmptyTree)
	})
	t.Run("duplicate", func(t *testing.T) {
		_, err := NewTree([]Entitlement{{alice, 1}, {bob, 1}, {alice, 2}})
		require.ErrorIs(t, err, ErrDuplicateAddress)
	})
	t.Run("single leaf", func(t *testing.T) {
		tr, err := NewTree([]Entitlement{{alice, 5}})
		require.NoError(t, err)
		root := common.HexToHash("0x81153aa1dd3241905eabdd87dfedf6b5f99983cc923512307c025520a7b51cf2")
		require.Equal(t, root, tr.Root())
		require.Equal(t, 1, tr.Depth())

		proof, err := tr.Proof(alice)
		require.NoError(t, err)
		require.Empty(t, proof)
		require.True(t, VerifyEntitlement(proof, root, alice, 5))
	})
	t.Run("three leaves", func(t *testing.T) {
		tr, err := NewTree(testEntitlements())
		require.NoError(t, err)
		require.Equal(t, common.HexToHash("0x352aa36dadfdc3d71eb69608d833935fdea1188aa899451b9f256b2898cd6c4e"), tr.Root())
		require.Equal(t, 3, tr.Len())
		require.Equal(t, 3, tr.Depth())
	})
}

func TestTreeProof(t *testing.T) {
	tr, err := NewTree(testEntitlements())
	require.NoError(t, err)

	var (
		aliceLeaf = common.HexToHash("0x3f68e79174daf15b50e15833babc8eb7743e730bb9606f922c48e95314c3905c")
		bobLeaf   = common.HexToHash("0xd0583fe73ce94e513e73539afcb4db4c1ed1834a418c3f0ef2d5cff7c8bb1dee")
		danLeaf   = common.HexToHash("0x8d1187a2c5d69d9d0f6e6c8baf49c9549b9573585daef9b8634509e0cb8d99ae")
		aliceDan  = common.HexToHash("0x3c796d3f1fb5030d1d09ecb20dddc5da2479c52d99d12aef90b27fea8d7e6f45")
	)
	testCases := []struct {
		addr  common.Address
		count uint64
		proof []common.Hash
	}{
		{alice, 1, []common.Hash{danLeaf, bobLeaf}},
		{bob, 2, []common.Hash{aliceDan}},
		{dan, 3, []common.Hash{aliceLeaf, bobLeaf}},
	}
	for _, tc := range testCases {
		proof, err := tr.Proof(tc.addr)
		require.NoError(t, err)
		require.Equal(t, tc.proof, proof)
		require.True(t, VerifyEntitlement(proof, tr.Root(), tc.addr, tc.count))

		leaf, err := tr.Leaf(tc.addr)
		require.NoError(t, err)
		require.Equal(t, LeafHash(tc.addr, tc.count), leaf)
	}

	_, err = tr.Proof(eve)
	require.ErrorIs(t, err, ErrUnknownAddress)
	_, err = tr.Leaf(eve)
	require.ErrorIs(t, err, ErrUnknownAddress)
}

func TestVerifyRejects(t *testing.T) {
	tr, err := NewTree(testEntitlements())
	require.NoError(t, err)
	proof, err := tr.Proof(bob)
	require.NoError(t, err)

	assert.False(t, VerifyEntitlement(proof, tr.Root(), bob, 3), "inflated count")
	assert.False(t, VerifyEntitlement(proof, tr.Root(), eve, 2), "foreign address")
	assert.False(t, VerifyEntitlement(nil, tr.Root(), bob, 2), "missing proof")
	assert.False(t, VerifyEntitlement(proof, common.Hash{}, bob, 2), "wrong root")

	aliceProof, err := tr.Proof(alice)
	require.NoError(t, err)
	assert.False(t, VerifyEntitlement(aliceProof, tr.Root(), bob, 2), "alice proof for bob")
	assert.False(t, VerifyEntitlement(proof, tr.Root(), alice, 1), "bob proof for alice")

	bad := append([]common.Hash{}, proof...)
	bad[0][0] ^= 0xff
	assert.False(t, VerifyEntitlement(bad, tr.Root(), bob, 2), "corrupted proof")
}

func TestTreeOrderIndependence(t *testing.T) {
	list := testEntitlements()
	tr1, err := NewTree(list)
	require.NoError(t, err)
	tr2, err := NewTree([]Entitlement{list[2], list[0], list[1]})
	require.NoError(t, err)
	require.Equal(t, tr1.Root(), tr2.Root())
}

func TestTreeAllProofs(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 7, 8, 9, 16, 33} {
		list := make([]Entitlement, n)
		for i := range list {
			var a common.Address
			a[0] = byte(i + 1)
			a[19] = byte(i * 7)
			list[i] = Entitlement{Address: a, Count: uint64(i)}
		}
		tr, err := NewTree(list)
		require.NoError(t, err)
		for _, e := range list {
			proof, err := tr.Proof(e.Address)
			require.NoError(t, err)
			require.True(t, VerifyEntitlement(proof, tr.Root(), e.Address, e.Count), "n=%d addr=%s", n, e.Address)
			require.False(t, VerifyEntitlement(proof, tr.Root(), e.Address, e.Count+1))
		}
		require.Equal(t, list, tr.Entitlements())
	}
}
