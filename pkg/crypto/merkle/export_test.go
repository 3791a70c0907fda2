package merkle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	tr, err := NewTree(testEntitlements())
	require.NoError(t, err)

	e := tr.Export()
	require.Equal(t, tr.Root(), e.Root)
	require.Len(t, e.Leaves, 3)
	require.Equal(t, alice, e.Leaves[0].Address)
	require.NoError(t, e.Verify())

	l, ok := e.Find(dan)
	require.True(t, ok)
	require.EqualValues(t, 3, l.Count)
	_, ok = e.Find(eve)
	require.False(t, ok)

	path := filepath.Join(t.TempDir(), "out", "export.json")
	require.NoError(t, WriteExport(path, e))
	actual, err := ReadExport(path)
	require.NoError(t, err)
	require.Equal(t, e, actual)

	actual.Leaves[1].Count++
	require.Error(t, actual.Verify())
	require.ErrorIs(t, (&Export{}).Verify(), ErrEmptyTree)
}

func TestReadExportFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	data := `{
  "treeRoot": "0x81153aa1dd3241905eabdd87dfedf6b5f99983cc923512307c025520a7b51cf2",
  "treeLeaves": [
    {"address": "0x70997970c51812dc3a010c7d01b50e0d17dc79c8", "count": 5, "proof": []}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	e, err := ReadExport(path)
	require.NoError(t, err)
	require.NoError(t, e.Verify())
	require.Equal(t, alice, e.Leaves[0].Address)

	_, err = ReadExport(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadEntitlements(t *testing.T) {
	dir := t.TempDir()

	yml := filepath.Join(dir, "list.yml")
	require.NoError(t, os.WriteFile(yml, []byte(`
- address: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
  count: 1
- address: "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"
  count: 2
- address: "0x90f79bf6eb2c4f870365e785982e1f101e93b906"
  count: 3
`), 0644))
	list, err := LoadEntitlements(yml)
	require.NoError(t, err)
	require.Equal(t, testEntitlements(), list)

	js := filepath.Join(dir, "list.json")
	require.NoError(t, os.WriteFile(js, []byte(`[{"address": "0x70997970c51812dc3a010c7d01b50e0d17dc79c8", "count": 1}]`), 0644))
	list, err = LoadEntitlements(js)
	require.NoError(t, err)
	require.Equal(t, []Entitlement{{Address: alice, Count: 1}}, list)

	_, err = ParseEntitlements([]byte(`[{"address": "0x1234", "count": 1}]`))
	require.Error(t, err)
	_, err = ParseEntitlements([]byte(`[{"address": "0x70997970c51812dc3a010c7d01b50e0d17dc79c8", "count": -1}]`))
	require.Error(t, err)

	tr, err := NewTree(list)
	require.NoError(t, err)
	require.Equal(t, common.HexToHash("0x3f68e79174daf15b50e15833babc8eb7743e730bb9606f922c48e95314c3905c"), tr.Root())
}
