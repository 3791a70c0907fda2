/*
Package ownership provides the holders of external collection tokens read
from a YAML snapshot file:

	collections:
	  "0x5fbdb2315678afecb367f032d93f642f64180aa3":
	    1: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
*/
package ownership

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNonexistentToken is returned for tokens missing from the snapshot.
var ErrNonexistentToken = errors.New("nonexistent token")

type (
	// Snapshot is a point-in-time view of external collection holders. It's
	// safe for concurrent use and can be reloaded from its file.
	Snapshot struct {
		path string
		log  *zap.Logger

		lock   sync.RWMutex
		owners map[common.Address]map[uint256.Int]common.Address
	}

	snapshotFile struct {
		Collections map[string]map[string]string `yaml:"collections"`
	}
)

// Load reads the snapshot from the given file.
func Load(path string, log *zap.Logger) (*Snapshot, error) {
	s := &Snapshot{path: path, log: log}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Parse decodes snapshot data.
func Parse(data []byte) (*Snapshot, error) {
	owners, err := parse(data)
	if err != nil {
		return nil, err
	}
	return &Snapshot{owners: owners, log: zap.NewNop()}, nil
}

// Reload rereads the snapshot file, the old data is kept if it fails.
func (s *Snapshot) Reload() error {
	if s.path == "" {
		return errors.New("snapshot has no file to reload from")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read ownership snapshot: %w", err)
	}
	owners, err := parse(data)
	if err != nil {
		return fmt.Errorf("invalid ownership snapshot %s: %w", s.path, err)
	}
	s.lock.Lock()
	s.owners = owners
	s.lock.Unlock()
	s.log.Info("ownership snapshot loaded",
		zap.String("path", s.path),
		zap.Int("collections", len(owners)))
	return nil
}

func parse(data []byte) (map[common.Address]map[uint256.Int]common.Address, error) {
	var f snapshotFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	owners := make(map[common.Address]map[uint256.Int]common.Address, len(f.Collections))
	for coll, tokens := range f.Collections {
		if !common.IsHexAddress(coll) {
			return nil, fmt.Errorf("invalid collection address '%s'", coll)
		}
		addr := common.HexToAddress(coll)
		if _, ok := owners[addr]; ok {
			return nil, fmt.Errorf("duplicate collection %s", addr)
		}
		m := make(map[uint256.Int]common.Address, len(tokens))
		for id, owner := range tokens {
			v, err := uint256.FromDecimal(id)
			if err != nil {
				return nil, fmt.Errorf("invalid token id '%s' in %s: %w", id, addr, err)
			}
			if !common.IsHexAddress(owner) {
				return nil, fmt.Errorf("invalid owner of token %s in %s: '%s'", id, addr, owner)
			}
			m[*v] = common.HexToAddress(owner)
		}
		owners[addr] = m
	}
	return owners, nil
}

// OwnerOf returns the holder of the token.
func (s *Snapshot) OwnerOf(collection common.Address, id *uint256.Int) (common.Address, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	owner, ok := s.owners[collection][*id]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s #%s", ErrNonexistentToken, collection, id.Dec())
	}
	return owner, nil
}
