/*
Package result contains the structures returned by the claim engine RPC
methods.
*/
package result

import (
	"github.com/ethereum/go-ethereum/common"
)

type (
	// Root is the allocation root state.
	Root struct {
		Root   common.Hash `json:"root"`
		Locked bool        `json:"locked"`
	}

	// Claim lists units minted by a claim.
	Claim struct {
		To    common.Address `json:"to"`
		Units []uint64       `json:"units"`
	}

	// Quota is the claim quota of an external collection.
	Quota struct {
		Collection common.Address `json:"collection"`
		Initial    uint64         `json:"initial"`
		Remaining  uint64         `json:"remaining"`
	}

	// SeedState is the randomness request state. Value is only set after
	// the fulfillment.
	SeedState struct {
		Status    string      `json:"status"`
		RequestID common.Hash `json:"requestid"`
		Value     string      `json:"value,omitempty"`
		Fee       string      `json:"fee"`
		KeyHash   common.Hash `json:"keyhash"`
	}

	// Supply is the minted and maximum number of units.
	Supply struct {
		TotalMinted uint64 `json:"totalminted"`
		MaxSupply   uint64 `json:"maxsupply"`
	}
)
