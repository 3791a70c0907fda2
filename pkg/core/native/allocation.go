package native

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lobsterdao/mintreveal/pkg/core/dao"
	"github.com/lobsterdao/mintreveal/pkg/crypto/merkle"
)

// Allocation handles claims of recipients listed in the Merkle-committed
// entitlement list. A recipient can claim any number of times as long as
// the total doesn't exceed the committed maximum.
type Allocation struct {
	Operator common.Address
	Token    *Token
}

// NewAllocation creates an Allocation minting through token.
func NewAllocation(operator common.Address, token *Token) *Allocation {
	return &Allocation{
		Operator: operator,
		Token:    token,
	}
}

// Initialize stores the initial root, it stays unlocked until the first
// claim.
func (a *Allocation) Initialize(d *dao.Simple, root common.Hash) {
	d.PutRoot(root)
}

// Root returns the current entitlement root.
func (a *Allocation) Root(d *dao.Simple) (common.Hash, error) {
	return d.GetRoot()
}

// RootLocked tells whether the root can still be updated.
func (a *Allocation) RootLocked(d *dao.Simple) bool {
	return d.IsRootLocked()
}

// UpdateRoot replaces the entitlement root. It's only possible before the
// root is locked.
func (a *Allocation) UpdateRoot(d *dao.Simple, caller common.Address, root common.Hash) error {
	if err := checkOperator(a.Operator, caller); err != nil {
		return err
	}
	if d.IsRootLocked() {
		return ErrRootLocked
	}
	d.PutRoot(root)
	return nil
}

// LockRoot makes the root immutable.
func (a *Allocation) LockRoot(d *dao.Simple, caller common.Address) error {
	if err := checkOperator(a.Operator, caller); err != nil {
		return err
	}
	d.LockRoot()
	return nil
}

// ClaimedCount returns the number of units claimed by recipient so far.
func (a *Allocation) ClaimedCount(d *dao.Simple, recipient common.Address) (uint64, error) {
	return d.GetClaimed(recipient)
}

// VerifyClaim checks the proof of (recipient, maxCount) against the current
// root.
func (a *Allocation) VerifyClaim(d *dao.Simple, recipient common.Address, maxCount uint64, proof []common.Hash) (bool, error) {
	root, err := d.GetRoot()
	if err != nil {
		return false, err
	}
	return merkle.VerifyEntitlement(proof, root, recipient, maxCount), nil
}

// Claim mints requested units to recipient if the proof of (recipient,
// maxCount) is valid and the recipient's total stays within maxCount. Anyone
// can submit a claim, units always go to the recipient.
func (a *Allocation) Claim(d *dao.Simple, recipient common.Address, maxCount, requested uint64, proof []common.Hash) ([]uint64, error) {
	if requested == 0 {
		return nil, ErrEmptyInput
	}
	ok, err := a.VerifyClaim(d, recipient, maxCount, proof)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidProof
	}
	claimed, err := d.GetClaimed(recipient)
	if err != nil {
		return nil, err
	}
	if claimed > maxCount || requested > maxCount-claimed {
		return nil, fmt.Errorf("%w: %d claimed of %d, %d requested", ErrQuotaExceeded, claimed, maxCount, requested)
	}
	if err := a.Token.CheckSupply(d, requested); err != nil {
		return nil, err
	}
	d.PutClaimed(recipient, claimed+requested)
	d.LockRoot()
	return a.Token.Mint(d, EngineAddress, recipient, requested)
}
