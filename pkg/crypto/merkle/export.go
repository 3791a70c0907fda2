package merkle

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
)

// Export is the distributable form of a tree: the root and every
// entitlement with its proof, ready to be handed to claimants.
type Export struct {
	Root   common.Hash  `json:"treeRoot"`
	Leaves []ExportLeaf `json:"treeLeaves"`
}

// ExportLeaf is a single entitlement with its inclusion proof.
type ExportLeaf struct {
	Address common.Address `json:"address"`
	Count   uint64         `json:"count"`
	Proof   []common.Hash  `json:"proof"`
}

// Export returns the export of t, leaves follow the order of the list the tree
// was built from.
func (t *Tree) Export() *Export {
	e := &Export{
		Root:   t.Root(),
		Leaves: make([]ExportLeaf, len(t.list)),
	}
	for i, ent := range t.list {
		proof, _ := t.Proof(ent.Address) // Every listed address is indexed.
		e.Leaves[i] = ExportLeaf{
			Address: ent.Address,
			Count:   ent.Count,
			Proof:   proof,
		}
	}
	return e
}

// Find returns the leaf for the given address.
func (e *Export) Find(addr common.Address) (ExportLeaf, bool) {
	for _, l := range e.Leaves {
		if l.Address == addr {
			return l, true
		}
	}
	return ExportLeaf{}, false
}

// Verify recomputes every leaf and checks its proof against the root.
func (e *Export) Verify() error {
	if len(e.Leaves) == 0 {
		return ErrEmptyTree
	}
	var errs []error
	for i, l := range e.Leaves {
		if !VerifyEntitlement(l.Proof, e.Root, l.Address, l.Count) {
			errs = append(errs, fmt.Errorf("leaf #%d (%s, %d): invalid proof", i, l.Address.Hex(), l.Count))
		}
	}
	return errors.Join(errs...)
}

// ReadExport reads an Export from the JSON file.
func ReadExport(path string) (*Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export file: %w", err)
	}
	e := new(Export)
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("failed to parse export file: %w", err)
	}
	return e, nil
}

// WriteExport writes e into the JSON file at path creating the directory if
// needed.
func WriteExport(path string, e *Export) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create dir for export: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}
