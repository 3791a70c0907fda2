package native

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lobsterdao/mintreveal/pkg/core/dao"
	"github.com/lobsterdao/mintreveal/pkg/core/state"
	"github.com/lobsterdao/mintreveal/pkg/core/storage"
)

// Token is the ledger of minted units. Ids are assigned sequentially from
// zero and only the registered minter can create new units.
type Token struct {
	Operator common.Address
}

// NewToken creates a Token administered by operator.
func NewToken(operator common.Address) *Token {
	return &Token{Operator: operator}
}

// Initialize sets up an empty ledger with the given supply cap and URIs.
func (t *Token) Initialize(d *dao.Simple, maxSupply uint64, uris *state.URIs) error {
	err := d.PutSupply(&state.Supply{MaxSupply: maxSupply})
	if err != nil {
		return err
	}
	return d.PutURIs(uris)
}

// Supply returns the current supply state.
func (t *Token) Supply(d *dao.Simple) (*state.Supply, error) {
	s, err := d.GetSupply()
	if err != nil {
		return nil, fmt.Errorf("failed to get supply: %w", err)
	}
	return s, nil
}

// TotalMinted returns the number of units minted so far.
func (t *Token) TotalMinted(d *dao.Simple) (uint64, error) {
	s, err := t.Supply(d)
	if err != nil {
		return 0, err
	}
	return s.TotalMinted, nil
}

// MaxSupply returns the supply cap.
func (t *Token) MaxSupply(d *dao.Simple) (uint64, error) {
	s, err := t.Supply(d)
	if err != nil {
		return 0, err
	}
	return s.MaxSupply, nil
}

// CheckSupply returns ErrSupplyExceeded if n more units can't be minted.
func (t *Token) CheckSupply(d *dao.Simple, n uint64) error {
	s, err := t.Supply(d)
	if err != nil {
		return err
	}
	if n > s.Remaining() {
		return fmt.Errorf("%w: %d requested, %d left", ErrSupplyExceeded, n, s.Remaining())
	}
	return nil
}

// SetMinter registers the only account allowed to mint. It can be done once.
func (t *Token) SetMinter(d *dao.Simple, caller, minter common.Address) error {
	if err := checkOperator(t.Operator, caller); err != nil {
		return err
	}
	_, err := d.GetMinter()
	if err == nil {
		return ErrMinterAlreadySet
	}
	if !errors.Is(err, storage.ErrKeyNotFound) {
		return err
	}
	d.PutMinter(minter)
	return nil
}

// Minter returns the registered minter.
func (t *Token) Minter(d *dao.Simple) (common.Address, error) {
	return d.GetMinter()
}

// Mint creates n units owned by to and returns their ids.
func (t *Token) Mint(d *dao.Simple, minter, to common.Address, n uint64) ([]uint64, error) {
	m, err := d.GetMinter()
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		return nil, err
	}
	if err != nil || m != minter {
		return nil, ErrNotMinter
	}
	if n == 0 {
		return nil, ErrEmptyInput
	}
	s, err := t.Supply(d)
	if err != nil {
		return nil, err
	}
	if n > s.Remaining() {
		return nil, fmt.Errorf("%w: %d requested, %d left", ErrSupplyExceeded, n, s.Remaining())
	}
	bal, err := d.GetBalance(to)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = s.TotalMinted
		d.PutOwner(s.TotalMinted, to)
		s.TotalMinted++
	}
	d.PutBalance(to, bal+n)
	return ids, d.PutSupply(s)
}

// OwnerOf returns the owner of the minted unit.
func (t *Token) OwnerOf(d *dao.Simple, id uint64) (common.Address, error) {
	owner, err := d.GetOwner(id)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return common.Address{}, fmt.Errorf("%w: %d", ErrUnknownUnit, id)
	}
	return owner, err
}

// BalanceOf returns the number of units owned by owner.
func (t *Token) BalanceOf(d *dao.Simple, owner common.Address) (uint64, error) {
	return d.GetBalance(owner)
}

// URIs returns the metadata URIs.
func (t *Token) URIs(d *dao.Simple) (*state.URIs, error) {
	return d.GetURIs()
}

// SetDefaultURI changes the URI shown for every unit before the reveal.
func (t *Token) SetDefaultURI(d *dao.Simple, caller common.Address, uri string) error {
	if err := checkOperator(t.Operator, caller); err != nil {
		return err
	}
	if len(uri) > state.MaxURILength {
		return fmt.Errorf("URI is too long: %d", len(uri))
	}
	u, err := d.GetURIs()
	if err != nil {
		return err
	}
	u.Default = uri
	return d.PutURIs(u)
}

// SetBaseURI changes the prefix of revealed unit URIs. Once it's set with
// final flag it can't be changed anymore.
func (t *Token) SetBaseURI(d *dao.Simple, caller common.Address, uri string, final bool) error {
	if err := checkOperator(t.Operator, caller); err != nil {
		return err
	}
	if len(uri) > state.MaxURILength {
		return fmt.Errorf("URI is too long: %d", len(uri))
	}
	u, err := d.GetURIs()
	if err != nil {
		return err
	}
	if u.Final {
		return ErrBaseURIFinal
	}
	u.Base = uri
	u.Final = final
	return d.PutURIs(u)
}
