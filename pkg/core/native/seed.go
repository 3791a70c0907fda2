package native

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/lobsterdao/mintreveal/pkg/core/dao"
	"github.com/lobsterdao/mintreveal/pkg/core/state"
)

// FeeToken is the asset the randomness fee is paid in.
type FeeToken interface {
	BalanceOf(owner common.Address) (*uint256.Int, error)
}

// Coordinator is the external randomness service. RequestRandomness takes
// the fee from EngineAddress and returns the id the answer will come with.
type Coordinator interface {
	RequestRandomness(keyHash common.Hash, fee *uint256.Int) (common.Hash, error)
}

// Seed manages the single randomness request. Its state only moves forward:
// unrequested, requested, fulfilled.
type Seed struct {
	Operator           common.Address
	CoordinatorAddress common.Address
	Coordinator        Coordinator
	FeeToken           FeeToken
}

// NewSeed creates a Seed. Fulfillments are only accepted from
// coordinatorAddr.
func NewSeed(operator, coordinatorAddr common.Address, coordinator Coordinator, feeToken FeeToken) *Seed {
	return &Seed{
		Operator:           operator,
		CoordinatorAddress: coordinatorAddr,
		Coordinator:        coordinator,
		FeeToken:           feeToken,
	}
}

// Initialize stores the unrequested state with the request configuration.
func (s *Seed) Initialize(d *dao.Simple, fee *uint256.Int, keyHash common.Hash) error {
	return d.PutSeed(state.NewSeed(fee, keyHash))
}

// State returns the current request state.
func (s *Seed) State(d *dao.Simple) (*state.Seed, error) {
	st, err := d.GetSeed()
	if err != nil {
		return nil, fmt.Errorf("failed to get seed state: %w", err)
	}
	return st, nil
}

// SetConfig changes the fee and key hash, it's only allowed before the
// request is made.
func (s *Seed) SetConfig(d *dao.Simple, caller common.Address, fee *uint256.Int, keyHash common.Hash) error {
	if err := checkOperator(s.Operator, caller); err != nil {
		return err
	}
	st, err := s.State(d)
	if err != nil {
		return err
	}
	if st.Status != state.SeedUnrequested {
		return ErrSeedConfigFrozen
	}
	st.Fee = new(uint256.Int).Set(fee)
	st.KeyHash = keyHash
	return d.PutSeed(st)
}

// RequestSeed asks the coordinator for randomness paying the configured fee.
// The request can only be made once. The state is moved to requested
// before the coordinator is called, so anything it triggers sees the
// request as already made.
func (s *Seed) RequestSeed(d *dao.Simple, caller common.Address) (common.Hash, error) {
	st, err := s.PrepareRequest(d, caller)
	if err != nil {
		return common.Hash{}, err
	}
	if err := s.CheckFunding(st); err != nil {
		return common.Hash{}, err
	}
	st.Status = state.SeedRequested
	if err := d.PutSeed(st); err != nil {
		return common.Hash{}, err
	}
	id, err := s.Call(st)
	if err != nil {
		return common.Hash{}, err
	}
	return id, s.CompleteRequest(d, id)
}

// PrepareRequest checks that caller can make the request now and returns
// the request configuration.
func (s *Seed) PrepareRequest(d *dao.Simple, caller common.Address) (*state.Seed, error) {
	if err := checkOperator(s.Operator, caller); err != nil {
		return nil, err
	}
	st, err := s.State(d)
	if err != nil {
		return nil, err
	}
	if err := checkRequestable(st); err != nil {
		return nil, err
	}
	if s.Coordinator == nil || s.FeeToken == nil {
		return nil, fmt.Errorf("randomness coordinator: %w", ErrNoCollaborator)
	}
	return st, nil
}

func checkRequestable(st *state.Seed) error {
	switch st.Status {
	case state.SeedFulfilled:
		return ErrAlreadyFulfilled
	case state.SeedRequested:
		return fmt.Errorf("%w: %s", ErrSeedRequested, st.RequestID.Hex())
	}
	return nil
}

// CheckFunding makes sure EngineAddress holds enough of the fee token to pay
// for the request.
func (s *Seed) CheckFunding(st *state.Seed) error {
	bal, err := s.FeeToken.BalanceOf(EngineAddress)
	if err != nil {
		return fmt.Errorf("failed to get fee balance: %w", err)
	}
	if bal.Lt(st.Fee) {
		return fmt.Errorf("%w: %s < %s", ErrInsufficientFunding, bal.Dec(), st.Fee.Dec())
	}
	return nil
}

// Call makes the request to the coordinator. It doesn't touch the state.
func (s *Seed) Call(st *state.Seed) (common.Hash, error) {
	id, err := s.Coordinator.RequestRandomness(st.KeyHash, st.Fee)
	if err != nil {
		return common.Hash{}, fmt.Errorf("randomness request failed: %w", err)
	}
	if id == (common.Hash{}) {
		return common.Hash{}, errors.New("randomness request failed: empty request id")
	}
	return id, nil
}

// CompleteRequest records the request made with Call. A requested state
// without an id is the one RequestSeed stores before calling out.
func (s *Seed) CompleteRequest(d *dao.Simple, id common.Hash) error {
	st, err := s.State(d)
	if err != nil {
		return err
	}
	if st.Status != state.SeedRequested || st.RequestID != (common.Hash{}) {
		if err := checkRequestable(st); err != nil {
			return err
		}
	}
	st.Status = state.SeedRequested
	st.RequestID = id
	return d.PutSeed(st)
}

// Fulfill accepts the coordinator's answer to the pending request.
func (s *Seed) Fulfill(d *dao.Simple, caller common.Address, requestID common.Hash, value *uint256.Int) error {
	if caller != s.CoordinatorAddress {
		return ErrUnauthorized
	}
	if value == nil {
		return fmt.Errorf("%w: nil random value", ErrEmptyInput)
	}
	st, err := s.State(d)
	if err != nil {
		return err
	}
	if st.Status == state.SeedFulfilled {
		return ErrAlreadyFulfilled
	}
	if st.Status != state.SeedRequested || st.RequestID == (common.Hash{}) || st.RequestID != requestID {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, requestID.Hex())
	}
	st.Value = new(uint256.Int).Set(value)
	st.Status = state.SeedFulfilled
	return d.PutSeed(st)
}
