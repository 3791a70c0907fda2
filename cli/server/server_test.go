package server

import (
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/lobsterdao/mintreveal/pkg/config"
	"github.com/lobsterdao/mintreveal/pkg/core/native"
	"github.com/lobsterdao/mintreveal/pkg/core/storage/dbconfig"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	testCollection = common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	testHolder     = common.HexToAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
)

func testConfig(snapshot string) config.Config {
	return config.Config{
		Ledger: config.Ledger{
			Operator:    "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
			MaxSupply:   10,
			Collections: []config.Collection{{Address: testCollection.Hex(), Quota: 5}},
			Seed:        config.Seed{Fee: "1"},
		},
		ApplicationConfiguration: config.ApplicationConfiguration{
			DBConfiguration: dbconfig.DBConfiguration{Type: dbconfig.InMemoryDB},
			Ownership:       config.Ownership{SnapshotPath: snapshot},
		},
	}
}

func TestInitLedger(t *testing.T) {
	ids := []*uint256.Int{uint256.NewInt(1), uint256.NewInt(2)}

	t.Run("with snapshot", func(t *testing.T) {
		cfg := testConfig(filepath.Join("..", "..", "config", "ownership.yml"))
		l, snapshot, err := initLedger(cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		require.NotNil(t, snapshot)
		t.Cleanup(func() { require.NoError(t, l.Close()) })

		units, err := l.ClaimByCollection(testHolder, testCollection, ids)
		require.NoError(t, err)
		require.Equal(t, []uint64{0, 1}, units)
		left, err := l.RemainingQuota(testCollection)
		require.NoError(t, err)
		require.Equal(t, uint64(3), left)
	})

	t.Run("without snapshot", func(t *testing.T) {
		l, snapshot, err := initLedger(testConfig(""), zaptest.NewLogger(t))
		require.NoError(t, err)
		require.Nil(t, snapshot)
		t.Cleanup(func() { require.NoError(t, l.Close()) })

		_, err = l.ClaimByCollection(testHolder, testCollection, ids)
		require.ErrorIs(t, err, native.ErrNoCollaborator)
	})

	t.Run("missing snapshot", func(t *testing.T) {
		_, _, err := initLedger(testConfig(filepath.Join(t.TempDir(), "none.yml")), zaptest.NewLogger(t))
		require.Error(t, err)
	})

	t.Run("unknown storage", func(t *testing.T) {
		cfg := testConfig("")
		cfg.ApplicationConfiguration.DBConfiguration.Type = "redis"
		_, _, err := initLedger(cfg, zaptest.NewLogger(t))
		require.Error(t, err)
	})
}
