package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeNodeConfig(t *testing.T) string {
	d := t.TempDir()
	snapshot, err := filepath.Abs(filepath.Join("..", "..", "config", "ownership.yml"))
	require.NoError(t, err)
	cfg := `
Ledger:
  Operator: "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
  MaxSupply: 100
  Collections:
    - Address: "0x5fbdb2315678afecb367f032d93f642f64180aa3"
      Quota: 10
  Seed:
    Fee: "5"
  DefaultURI: "ipfs://hidden"
ApplicationConfiguration:
  DBConfiguration:
    Type: "boltdb"
    BoltDBOptions:
      FilePath: "` + filepath.Join(d, "ledger.bolt") + `"
  LogLevel: "warn"
  Ownership:
    SnapshotPath: "` + snapshot + `"
`
	path := filepath.Join(d, "node.yml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

func TestDBDump(t *testing.T) {
	cfgPath := writeNodeConfig(t)
	e := newExecutor(t)

	e.RunWithError(t, "mintreveal", "db", "dump", "--config-file", filepath.Join(t.TempDir(), "missing.yml"))
	e.RunWithError(t, "mintreveal", "db", "dump", "--config-file", cfgPath, "extra")

	check := func(t *testing.T, data []byte) {
		var d struct {
			Supply struct {
				TotalMinted uint64 `json:"totalminted"`
				MaxSupply   uint64 `json:"maxsupply"`
			} `json:"supply"`
			Quotas []struct {
				Remaining uint64 `json:"remaining"`
			} `json:"quotas"`
			Seed struct {
				Status string `json:"status"`
				Fee    string `json:"fee"`
				Value  string `json:"value"`
			} `json:"seed"`
			Owners  []string `json:"owners"`
			Default string   `json:"defaulturi"`
		}
		require.NoError(t, json.Unmarshal(data, &d))
		require.Equal(t, uint64(0), d.Supply.TotalMinted)
		require.Equal(t, uint64(100), d.Supply.MaxSupply)
		require.Len(t, d.Quotas, 1)
		require.Equal(t, uint64(10), d.Quotas[0].Remaining)
		require.Equal(t, "unrequested", d.Seed.Status)
		require.Equal(t, "5", d.Seed.Fee)
		require.Empty(t, d.Seed.Value)
		require.Empty(t, d.Owners)
		require.Equal(t, "ipfs://hidden", d.Default)
	}

	// Genesis first, restored state second.
	e.Run(t, "mintreveal", "db", "dump", "--config-file", cfgPath)
	check(t, e.Out.Bytes())
	out := filepath.Join(t.TempDir(), "dump.json")
	e.Run(t, "mintreveal", "db", "dump", "--config-file", cfgPath, "-o", out)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	check(t, data)
}

func TestNodeArgs(t *testing.T) {
	e := newExecutor(t)
	e.RunWithError(t, "mintreveal", "node", "extra")
	e.RunWithError(t, "mintreveal", "node", "--config-file", filepath.Join(t.TempDir(), "missing.yml"))
}
