package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Param represents an RPC parameter.
type Param struct {
	json.RawMessage
}

var errMissingParameter = errors.New("parameter is missing")

func (p *Param) String() string {
	str, _ := p.GetString()
	return str
}

// IsNull returns whether the parameter represents JSON nil value.
func (p *Param) IsNull() bool {
	return string(p.RawMessage) == "null"
}

// GetStringStrict returns a string value of the parameter.
func (p *Param) GetStringStrict() (string, error) {
	if p == nil {
		return "", errMissingParameter
	}
	var s string
	if err := json.Unmarshal(p.RawMessage, &s); err != nil {
		return "", fmt.Errorf("not a string: %w", err)
	}
	return s, nil
}

// GetString returns a string value of the parameter, numbers and booleans
// are rendered as is.
func (p *Param) GetString() (string, error) {
	if p == nil {
		return "", errMissingParameter
	}
	if s, err := p.GetStringStrict(); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(p.RawMessage, &n); err == nil {
		return n.String(), nil
	}
	var b bool
	if err := json.Unmarshal(p.RawMessage, &b); err == nil {
		return strconv.FormatBool(b), nil
	}
	return "", errors.New("not a string")
}

// GetBoolean returns a boolean value of the parameter.
func (p *Param) GetBoolean() (bool, error) {
	if p == nil {
		return false, errMissingParameter
	}
	var b bool
	if err := json.Unmarshal(p.RawMessage, &b); err != nil {
		return false, fmt.Errorf("not a boolean: %w", err)
	}
	return b, nil
}

// GetUint64 returns an unsigned integer value of the parameter, it can be
// given either as a JSON number or as a decimal string.
func (p *Param) GetUint64() (uint64, error) {
	s, err := p.GetString()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer: %w", err)
	}
	return v, nil
}

// GetUint256 returns a 256-bit unsigned integer value of the parameter given
// as a decimal string or a JSON number.
func (p *Param) GetUint256() (*uint256.Int, error) {
	s, err := p.GetString()
	if err != nil {
		return nil, err
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("not a 256-bit integer: %w", err)
	}
	return v, nil
}

// GetAddress returns an account address value of the parameter given as a
// hex string.
func (p *Param) GetAddress() (common.Address, error) {
	s, err := p.GetStringStrict()
	if err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("not an address: %s", s)
	}
	return common.HexToAddress(s), nil
}

// GetHash returns a 32-byte hash value of the parameter given as a 0x
// prefixed hex string.
func (p *Param) GetHash() (common.Hash, error) {
	b, err := p.GetBytesHex()
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("expected %d bytes hash, got %d", common.HashLength, len(b))
	}
	return common.BytesToHash(b), nil
}

// GetBytesHex returns a []byte value of the parameter given as a 0x
// prefixed hex string.
func (p *Param) GetBytesHex() ([]byte, error) {
	s, err := p.GetStringStrict()
	if err != nil {
		return nil, err
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("not a hex string: %w", err)
	}
	return b, nil
}

// GetArray returns a slice of Params stored in the parameter.
func (p *Param) GetArray() ([]Param, error) {
	if p == nil {
		return nil, errMissingParameter
	}
	a := []Param{}
	err := json.Unmarshal(p.RawMessage, &a)
	if err != nil {
		return nil, fmt.Errorf("not an array: %w", err)
	}
	return a, nil
}

// GetHashes returns an array of 32-byte hashes stored in the parameter.
func (p *Param) GetHashes() ([]common.Hash, error) {
	arr, err := p.GetArray()
	if err != nil {
		return nil, err
	}
	res := make([]common.Hash, len(arr))
	for i := range arr {
		res[i], err = arr[i].GetHash()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return res, nil
}

// GetUint256s returns an array of 256-bit integers stored in the parameter.
func (p *Param) GetUint256s() ([]*uint256.Int, error) {
	arr, err := p.GetArray()
	if err != nil {
		return nil, err
	}
	res := make([]*uint256.Int, len(arr))
	for i := range arr {
		res[i], err = arr[i].GetUint256()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return res, nil
}

// Canonical returns the textual form of the parameter used in signed
// messages: strings unquoted and lowercased, arrays as comma-separated
// elements.
func (p *Param) Canonical() (string, error) {
	if arr, err := p.GetArray(); err == nil {
		parts := make([]string, len(arr))
		for i := range arr {
			parts[i], err = arr[i].Canonical()
			if err != nil {
				return "", err
			}
		}
		return strings.Join(parts, ","), nil
	}
	s, err := p.GetString()
	if err != nil {
		return "", err
	}
	return strings.ToLower(s), nil
}
