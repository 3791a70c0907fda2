package merkle

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

type entitlementRecord struct {
	Address string `yaml:"address"`
	Count   uint64 `yaml:"count"`
}

// LoadEntitlements reads the entitlement list from a YAML (or JSON) file
// containing an array of {address, count} objects.
func LoadEntitlements(path string) ([]Entitlement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entitlement list: %w", err)
	}
	return ParseEntitlements(data)
}

// ParseEntitlements decodes an entitlement list.
func ParseEntitlements(data []byte) ([]Entitlement, error) {
	var records []entitlementRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entitlement list: %w", err)
	}
	res := make([]Entitlement, len(records))
	for i, r := range records {
		if !common.IsHexAddress(r.Address) {
			return nil, fmt.Errorf("entry #%d: invalid address %q", i, r.Address)
		}
		res[i] = Entitlement{
			Address: common.HexToAddress(r.Address),
			Count:   r.Count,
		}
	}
	return res, nil
}
