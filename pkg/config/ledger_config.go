package config

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

type (
	// Ledger contains the claim engine parameters fixed at genesis. Addresses
	// and hashes are hex strings, amounts are decimal strings.
	Ledger struct {
		// Operator is the account allowed to manage the root, URIs and the
		// randomness request.
		Operator string `yaml:"Operator"`
		// MaxSupply is the total number of units that can ever be minted.
		MaxSupply uint64 `yaml:"MaxSupply"`
		// Root is the initial allocation Merkle root, zero if omitted.
		Root        string       `yaml:"Root"`
		Collections []Collection `yaml:"Collections"`
		Seed        Seed         `yaml:"Seed"`
		DefaultURI  string       `yaml:"DefaultURI"`
		BaseURI     string       `yaml:"BaseURI"`
		// AttributeCacheSize is the number of resolved attributes kept in
		// memory.
		AttributeCacheSize int `yaml:"AttributeCacheSize"`
	}

	// Collection is an external collection whose holders can claim units.
	Collection struct {
		Address string `yaml:"Address"`
		Quota   uint64 `yaml:"Quota"`
	}

	// Seed configures the randomness request.
	Seed struct {
		Coordinator string `yaml:"Coordinator"`
		FeeToken    string `yaml:"FeeToken"`
		Fee         string `yaml:"Fee"`
		KeyHash     string `yaml:"KeyHash"`
	}
)

// Validate checks Ledger for internal consistency.
func (l *Ledger) Validate() error {
	if !common.IsHexAddress(l.Operator) {
		return fmt.Errorf("invalid Operator '%s'", l.Operator)
	}
	if l.MaxSupply == 0 {
		return errors.New("MaxSupply must be positive")
	}
	if l.Root != "" {
		if _, err := parseHash(l.Root); err != nil {
			return fmt.Errorf("invalid Root: %w", err)
		}
	}
	seen := make(map[common.Address]bool, len(l.Collections))
	for i, c := range l.Collections {
		if !common.IsHexAddress(c.Address) {
			return fmt.Errorf("invalid address of collection #%d: '%s'", i, c.Address)
		}
		addr := common.HexToAddress(c.Address)
		if seen[addr] {
			return fmt.Errorf("duplicate collection %s", addr)
		}
		seen[addr] = true
	}
	if l.AttributeCacheSize < 0 {
		return fmt.Errorf("negative AttributeCacheSize %d", l.AttributeCacheSize)
	}
	return l.Seed.Validate()
}

// Validate checks Seed for internal consistency.
func (s *Seed) Validate() error {
	for name, addr := range map[string]string{"Coordinator": s.Coordinator, "FeeToken": s.FeeToken} {
		if addr != "" && !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid %s '%s'", name, addr)
		}
	}
	if _, err := uint256.FromDecimal(s.Fee); err != nil {
		return fmt.Errorf("invalid Fee '%s': %w", s.Fee, err)
	}
	if s.KeyHash != "" {
		if _, err := parseHash(s.KeyHash); err != nil {
			return fmt.Errorf("invalid KeyHash: %w", err)
		}
	}
	return nil
}

// OperatorAddress returns the operator account.
func (l *Ledger) OperatorAddress() common.Address {
	return common.HexToAddress(l.Operator)
}

// RootHash returns the initial Merkle root.
func (l *Ledger) RootHash() common.Hash {
	h, _ := parseHash(l.Root)
	return h
}

// CollectionAddress returns the collection account.
func (c Collection) CollectionAddress() common.Address {
	return common.HexToAddress(c.Address)
}

// CoordinatorAddress returns the account randomness is accepted from.
func (s *Seed) CoordinatorAddress() common.Address {
	return common.HexToAddress(s.Coordinator)
}

// FeeTokenAddress returns the fee token contract account.
func (s *Seed) FeeTokenAddress() common.Address {
	return common.HexToAddress(s.FeeToken)
}

// FeeAmount returns the randomness fee.
func (s *Seed) FeeAmount() *uint256.Int {
	fee, err := uint256.FromDecimal(s.Fee)
	if err != nil {
		return new(uint256.Int)
	}
	return fee
}

// KeyHashValue returns the randomness key hash.
func (s *Seed) KeyHashValue() common.Hash {
	h, _ := parseHash(s.KeyHash)
	return h
}

func parseHash(s string) (common.Hash, error) {
	if s == "" {
		return common.Hash{}, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("expected %d bytes, got %d", common.HashLength, len(b))
	}
	return common.BytesToHash(b), nil
}
