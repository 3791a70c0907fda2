package ownership

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	allowed = common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	other   = common.HexToAddress("0xe7f1725e7734ce288f8367e1bb143e90bb3f0512")
	alice   = common.HexToAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	bob     = common.HexToAddress("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
)

func TestLoad(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "snapshot.yml"), zaptest.NewLogger(t))
	require.NoError(t, err)

	owner, err := s.OwnerOf(allowed, uint256.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, alice, owner)

	maxID := new(uint256.Int).SetAllOne()
	owner, err = s.OwnerOf(allowed, maxID)
	require.NoError(t, err)
	require.Equal(t, bob, owner)

	owner, err = s.OwnerOf(other, uint256.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, bob, owner)

	_, err = s.OwnerOf(other, uint256.NewInt(2))
	require.ErrorIs(t, err, ErrNonexistentToken)
	_, err = s.OwnerOf(alice, uint256.NewInt(1))
	require.ErrorIs(t, err, ErrNonexistentToken)
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
collections:
  "0x5fbdb2315678afecb367f032d93f642f64180aa3":
    1: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
`), 0o644))
	s, err := Load(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`
collections:
  "0x5fbdb2315678afecb367f032d93f642f64180aa3":
    1: "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"
`), 0o644))
	require.NoError(t, s.Reload())
	owner, err := s.OwnerOf(allowed, uint256.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, bob, owner)

	require.NoError(t, os.WriteFile(path, []byte(`collections: [`), 0o644))
	require.Error(t, s.Reload())
	owner, err = s.OwnerOf(allowed, uint256.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, bob, owner)
}

func TestParseErrors(t *testing.T) {
	for name, data := range map[string]string{
		"bad collection": `
collections:
  "0x1234":
    1: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
`,
		"bad id": `
collections:
  "0x5fbdb2315678afecb367f032d93f642f64180aa3":
    "one": "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
`,
		"bad owner": `
collections:
  "0x5fbdb2315678afecb367f032d93f642f64180aa3":
    1: "alice"
`,
		"duplicate collection": `
collections:
  "0x5fbdb2315678afecb367f032d93f642f64180aa3": {}
  "0x5FbDB2315678afecb367f032d93F642f64180aa3": {}
`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			require.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"), zaptest.NewLogger(t))
	require.Error(t, err)
}
