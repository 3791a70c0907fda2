package native

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/lobsterdao/mintreveal/pkg/core/dao"
	"github.com/lobsterdao/mintreveal/pkg/core/state"
	"github.com/lobsterdao/mintreveal/pkg/core/storage"
	"github.com/lobsterdao/mintreveal/pkg/crypto/merkle"
	"github.com/stretchr/testify/require"
)

var (
	operator    = common.HexToAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	alice       = common.HexToAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	bob         = common.HexToAddress("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
	dan         = common.HexToAddress("0x90f79bf6eb2c4f870365e785982e1f101e93b906")
	eve         = common.HexToAddress("0x15d34aaf54267db7d7c367839aaf71a00a2c6a65")
	coordAddr   = common.HexToAddress("0x9965507d1a55bcc2695c58ba16fb37d819b0a4dc")
	allowedColl = common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	otherColl   = common.HexToAddress("0xe7f1725e7734ce288f8367e1bb143e90bb3f0512")
	keyHash     = common.HexToHash("0x2ed0feb3e7fd2022120aa84fab1945545a9f2ffc9076fd6156fa96eaff4c1311")
)

type ownership map[common.Address]map[uint64]common.Address

func (o ownership) OwnerOf(collection common.Address, id *uint256.Int) (common.Address, error) {
	owners, ok := o[collection]
	if !ok || !id.IsUint64() {
		return common.Address{}, errors.New("nonexistent token")
	}
	owner, ok := owners[id.Uint64()]
	if !ok {
		return common.Address{}, errors.New("nonexistent token")
	}
	return owner, nil
}

type feeToken struct {
	balance *uint256.Int
	err     error
}

func (f *feeToken) BalanceOf(owner common.Address) (*uint256.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	if owner != EngineAddress {
		return new(uint256.Int), nil
	}
	return f.balance, nil
}

type coordinator struct {
	calls   int
	next    common.Hash
	err     error
	paid    *uint256.Int
	onCall  func()
	keyHash common.Hash
}

func (c *coordinator) RequestRandomness(kh common.Hash, fee *uint256.Int) (common.Hash, error) {
	c.calls++
	if c.onCall != nil {
		c.onCall()
	}
	if c.err != nil {
		return common.Hash{}, c.err
	}
	c.paid = fee
	c.keyHash = kh
	return c.next, nil
}

type testEnv struct {
	d      *dao.Simple
	token  *Token
	alloc  *Allocation
	colls  *Collections
	seed   *Seed
	reveal *Reveal
	owners ownership
	fee    *feeToken
	coord  *coordinator
}

func newTestEnv(t *testing.T, maxSupply uint64) *testEnv {
	e := &testEnv{
		d: dao.NewSimple(storage.NewMemoryStore()),
		owners: ownership{
			allowedColl: {1: alice, 2: alice, 3: bob, 4: bob, 5: bob},
			otherColl:   {1: bob},
		},
		fee:   &feeToken{balance: uint256.NewInt(2_000_000_000_000_000_000)},
		coord: &coordinator{next: common.HexToHash("0x01")},
	}
	e.token = NewToken(operator)
	e.alloc = NewAllocation(operator, e.token)
	e.colls = NewCollections(e.token, e.owners)
	e.seed = NewSeed(operator, coordAddr, e.coord, e.fee)
	e.reveal = NewReveal(e.token, e.seed, 0)

	require.NoError(t, e.token.Initialize(e.d, maxSupply, &state.URIs{}))
	require.NoError(t, e.token.SetMinter(e.d, operator, EngineAddress))
	require.NoError(t, e.colls.Initialize(e.d, []state.Quota{{Collection: allowedColl, Initial: 4}}))
	require.NoError(t, e.seed.Initialize(e.d, uint256.NewInt(2_000_000_000_000_000_000), keyHash))
	return e
}

func (e *testEnv) setTree(t *testing.T, list []merkle.Entitlement) *merkle.Tree {
	tr, err := merkle.NewTree(list)
	require.NoError(t, err)
	require.NoError(t, e.alloc.UpdateRoot(e.d, operator, tr.Root()))
	return tr
}

func (e *testEnv) proof(t *testing.T, tr *merkle.Tree, addr common.Address) []common.Hash {
	p, err := tr.Proof(addr)
	require.NoError(t, err)
	return p
}

func (e *testEnv) supply(t *testing.T) uint64 {
	n, err := e.token.TotalMinted(e.d)
	require.NoError(t, err)
	return n
}

func (e *testEnv) fulfill(t *testing.T, value *uint256.Int) {
	id, err := e.seed.RequestSeed(e.d, operator)
	require.NoError(t, err)
	require.NoError(t, e.seed.Fulfill(e.d, coordAddr, id, value))
}

func ids(vals ...uint64) []*uint256.Int {
	res := make([]*uint256.Int, len(vals))
	for i, v := range vals {
		res[i] = uint256.NewInt(v)
	}
	return res
}
