/*
Package native implements the claim engine components working over the
ledger state: the token ledger the units are minted in, Merkle allocation
claims, collection quota claims, the one-time randomness request and the
attribute reveal.

Every method takes the DAO to work with, the caller is responsible for
providing an isolated one and persisting it only if the method succeeds.
*/
package native

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lobsterdao/mintreveal/pkg/crypto/hash"
)

// EngineAddress is the account of the claim engine itself. It's the only
// minter of the token ledger and the payer of the randomness fee.
var EngineAddress = common.BytesToAddress(hash.Keccak256([]byte("mintreveal.engine"))[12:])

// Claim and reveal errors.
var (
	ErrInvalidProof          = errors.New("invalid proof")
	ErrQuotaExceeded         = errors.New("quota exceeded")
	ErrSupplyExceeded        = errors.New("max supply exceeded")
	ErrAlreadyClaimedByToken = errors.New("already claimed by token")
	ErrNotOwner              = errors.New("token not owned by caller")
	ErrEmptyInput            = errors.New("empty input")
	ErrAlreadyFulfilled      = errors.New("seed already generated")
	ErrInsufficientFunding   = errors.New("fee balance is not enough")
	ErrUnauthorized          = errors.New("caller is not authorized")
	ErrRootLocked            = errors.New("root is locked")
	ErrSeedRequested         = errors.New("seed is already requested")
	ErrUnknownRequest        = errors.New("unknown randomness request")
	ErrSeedConfigFrozen      = errors.New("seed configuration can't be changed after the request")
	ErrNotRevealed           = errors.New("attributes are not revealed yet")
	ErrUnitOutOfRange        = errors.New("unit id is out of range")
	ErrUnknownUnit           = errors.New("unit is not minted")
	ErrNotMinter             = errors.New("caller is not the minter")
	ErrMinterAlreadySet      = errors.New("minter is already set")
	ErrBaseURIFinal          = errors.New("base URI is already final")
	ErrNoCollaborator        = errors.New("external service is not configured")
)

// checkOperator returns ErrUnauthorized if caller is not the operator.
func checkOperator(operator, caller common.Address) error {
	if caller != operator {
		return ErrUnauthorized
	}
	return nil
}
