package native

import (
	"testing"

	"github.com/lobsterdao/mintreveal/pkg/core/dao"
	"github.com/lobsterdao/mintreveal/pkg/core/state"
	"github.com/lobsterdao/mintreveal/pkg/core/storage"
	"github.com/stretchr/testify/require"
)

func TestTokenSetMinter(t *testing.T) {
	d := dao.NewSimple(storage.NewMemoryStore())
	tok := NewToken(operator)
	require.NoError(t, tok.Initialize(d, 10, &state.URIs{}))

	require.ErrorIs(t, tok.SetMinter(d, alice, alice), ErrUnauthorized)
	_, err := tok.Mint(d, alice, alice, 1)
	require.ErrorIs(t, err, ErrNotMinter)

	require.NoError(t, tok.SetMinter(d, operator, alice))
	require.ErrorIs(t, tok.SetMinter(d, operator, bob), ErrMinterAlreadySet)
	m, err := tok.Minter(d)
	require.NoError(t, err)
	require.Equal(t, alice, m)

	_, err = tok.Mint(d, bob, bob, 1)
	require.ErrorIs(t, err, ErrNotMinter)
}

func TestTokenMint(t *testing.T) {
	e := newTestEnv(t, 5)

	minted, err := e.token.Mint(e.d, EngineAddress, alice, 2)
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1}, minted)
	minted, err = e.token.Mint(e.d, EngineAddress, bob, 3)
	require.NoError(t, err)
	require.Equal(t, []uint64{2, 3, 4}, minted)

	_, err = e.token.Mint(e.d, EngineAddress, bob, 1)
	require.ErrorIs(t, err, ErrSupplyExceeded)
	_, err = e.token.Mint(e.d, EngineAddress, bob, 0)
	require.ErrorIs(t, err, ErrEmptyInput)

	owner, err := e.token.OwnerOf(e.d, 1)
	require.NoError(t, err)
	require.Equal(t, alice, owner)
	owner, err = e.token.OwnerOf(e.d, 4)
	require.NoError(t, err)
	require.Equal(t, bob, owner)
	_, err = e.token.OwnerOf(e.d, 5)
	require.ErrorIs(t, err, ErrUnknownUnit)

	bal, err := e.token.BalanceOf(e.d, bob)
	require.NoError(t, err)
	require.EqualValues(t, 3, bal)
	bal, err = e.token.BalanceOf(e.d, eve)
	require.NoError(t, err)
	require.EqualValues(t, 0, bal)

	maxSupply, err := e.token.MaxSupply(e.d)
	require.NoError(t, err)
	require.EqualValues(t, 5, maxSupply)
	require.EqualValues(t, 5, e.supply(t))
}

func TestTokenURIs(t *testing.T) {
	e := newTestEnv(t, 5)

	require.ErrorIs(t, e.token.SetDefaultURI(e.d, alice, "x"), ErrUnauthorized)
	require.ErrorIs(t, e.token.SetBaseURI(e.d, alice, "x", false), ErrUnauthorized)

	require.NoError(t, e.token.SetDefaultURI(e.d, operator, "ipfs://default"))
	require.NoError(t, e.token.SetBaseURI(e.d, operator, "ipfs://base1/", false))
	require.NoError(t, e.token.SetBaseURI(e.d, operator, "ipfs://base2/", true))
	require.ErrorIs(t, e.token.SetBaseURI(e.d, operator, "ipfs://base3/", false), ErrBaseURIFinal)
	// The default one can still be changed.
	require.NoError(t, e.token.SetDefaultURI(e.d, operator, "ipfs://default2"))

	u, err := e.token.URIs(e.d)
	require.NoError(t, err)
	require.Equal(t, &state.URIs{Default: "ipfs://default2", Base: "ipfs://base2/", Final: true}, u)

	long := make([]byte, state.MaxURILength+1)
	require.Error(t, e.token.SetDefaultURI(e.d, operator, string(long)))
}
