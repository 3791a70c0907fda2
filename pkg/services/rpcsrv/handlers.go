package rpcsrv

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lobsterdao/mintreveal/pkg/core/state"
	"github.com/lobsterdao/mintreveal/pkg/rpcapi"
	"github.com/lobsterdao/mintreveal/pkg/rpcapi/result"
	"github.com/lobsterdao/mintreveal/pkg/services/rpcsrv/params"
)

func invalidParam(index int, err error) *rpcapi.Error {
	return rpcapi.WrapErrorWithData(rpcapi.ErrInvalidParams, fmt.Sprintf("parameter %d: %s", index, err))
}

func (s *Server) caller(method string, reqParams params.Params, n int) (common.Address, *rpcapi.Error) {
	addr, err := recoverCaller(method, reqParams, n)
	if err != nil {
		return common.Address{}, rpcapi.WrapErrorWithData(errInvalidSignature, err.Error())
	}
	return addr, nil
}

func (s *Server) getRoot(_ params.Params) (any, *rpcapi.Error) {
	root, err := s.ledger.Root()
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	locked, err := s.ledger.RootLocked()
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	return result.Root{Root: root, Locked: locked}, nil
}

// verifyClaim checks the proof: [recipient, maxcount, proof].
func (s *Server) verifyClaim(reqParams params.Params) (any, *rpcapi.Error) {
	recipient, err := reqParams.Value(0).GetAddress()
	if err != nil {
		return nil, invalidParam(0, err)
	}
	maxCount, err := reqParams.Value(1).GetUint64()
	if err != nil {
		return nil, invalidParam(1, err)
	}
	proof, err := reqParams.Value(2).GetHashes()
	if err != nil {
		return nil, invalidParam(2, err)
	}
	ok, err := s.ledger.VerifyClaim(recipient, maxCount, proof)
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	return ok, nil
}

// claim mints units by allocation: [recipient, maxcount, requested, proof].
// Units always go to the recipient, so the call needs no signature.
func (s *Server) claim(reqParams params.Params) (any, *rpcapi.Error) {
	recipient, err := reqParams.Value(0).GetAddress()
	if err != nil {
		return nil, invalidParam(0, err)
	}
	maxCount, err := reqParams.Value(1).GetUint64()
	if err != nil {
		return nil, invalidParam(1, err)
	}
	requested, err := reqParams.Value(2).GetUint64()
	if err != nil {
		return nil, invalidParam(2, err)
	}
	proof, err := reqParams.Value(3).GetHashes()
	if err != nil {
		return nil, invalidParam(3, err)
	}
	units, err := s.ledger.Claim(recipient, maxCount, requested, proof)
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	return result.Claim{To: recipient, Units: units}, nil
}

// claimByCollection mints units to the signer: [collection, ids, signature].
func (s *Server) claimByCollection(reqParams params.Params) (any, *rpcapi.Error) {
	collection, err := reqParams.Value(0).GetAddress()
	if err != nil {
		return nil, invalidParam(0, err)
	}
	ids, err := reqParams.Value(1).GetUint256s()
	if err != nil {
		return nil, invalidParam(1, err)
	}
	caller, respErr := s.caller("claimbycollection", reqParams, 2)
	if respErr != nil {
		return nil, respErr
	}
	units, err := s.ledger.ClaimByCollection(caller, collection, ids)
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	return result.Claim{To: caller, Units: units}, nil
}

func (s *Server) getClaimedCount(reqParams params.Params) (any, *rpcapi.Error) {
	recipient, err := reqParams.Value(0).GetAddress()
	if err != nil {
		return nil, invalidParam(0, err)
	}
	n, err := s.ledger.ClaimedCount(recipient)
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	return n, nil
}

func (s *Server) getRemainingQuota(reqParams params.Params) (any, *rpcapi.Error) {
	collection, err := reqParams.Value(0).GetAddress()
	if err != nil {
		return nil, invalidParam(0, err)
	}
	n, err := s.ledger.RemainingQuota(collection)
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	return n, nil
}

func (s *Server) getCollections(_ params.Params) (any, *rpcapi.Error) {
	quotas, err := s.ledger.Collections()
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	res := make([]result.Quota, len(quotas))
	for i, q := range quotas {
		res[i] = result.Quota{Collection: q.Collection, Initial: q.Initial, Remaining: q.Remaining}
	}
	return res, nil
}

func (s *Server) isClaimedByToken(reqParams params.Params) (any, *rpcapi.Error) {
	collection, err := reqParams.Value(0).GetAddress()
	if err != nil {
		return nil, invalidParam(0, err)
	}
	id, err := reqParams.Value(1).GetUint256()
	if err != nil {
		return nil, invalidParam(1, err)
	}
	claimed, err := s.ledger.IsClaimedByToken(collection, id)
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	return claimed, nil
}

func (s *Server) getSeedState(_ params.Params) (any, *rpcapi.Error) {
	st, err := s.ledger.SeedState()
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	res := result.SeedState{
		Status:    st.Status.String(),
		RequestID: st.RequestID,
		Fee:       st.Fee.Dec(),
		KeyHash:   st.KeyHash,
	}
	if st.Status == state.SeedFulfilled {
		res.Value = st.Value.Dec()
	}
	return res, nil
}

// updateRoot replaces the allocation root: [root, signature].
func (s *Server) updateRoot(reqParams params.Params) (any, *rpcapi.Error) {
	root, err := reqParams.Value(0).GetHash()
	if err != nil {
		return nil, invalidParam(0, err)
	}
	caller, respErr := s.caller("updateroot", reqParams, 1)
	if respErr != nil {
		return nil, respErr
	}
	if err := s.ledger.UpdateRoot(caller, root); err != nil {
		return nil, wrapLedgerError(err)
	}
	return true, nil
}

// lockRoot freezes the allocation root: [signature].
func (s *Server) lockRoot(reqParams params.Params) (any, *rpcapi.Error) {
	caller, respErr := s.caller("lockroot", reqParams, 0)
	if respErr != nil {
		return nil, respErr
	}
	if err := s.ledger.LockRoot(caller); err != nil {
		return nil, wrapLedgerError(err)
	}
	return true, nil
}

// requestSeed makes the randomness request: [signature].
func (s *Server) requestSeed(reqParams params.Params) (any, *rpcapi.Error) {
	caller, respErr := s.caller("requestseed", reqParams, 0)
	if respErr != nil {
		return nil, respErr
	}
	id, err := s.ledger.RequestSeed(caller)
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	return id, nil
}

// fulfillRandomness delivers the randomness: [requestid, value, signature].
func (s *Server) fulfillRandomness(reqParams params.Params) (any, *rpcapi.Error) {
	id, err := reqParams.Value(0).GetHash()
	if err != nil {
		return nil, invalidParam(0, err)
	}
	value, err := reqParams.Value(1).GetUint256()
	if err != nil {
		return nil, invalidParam(1, err)
	}
	caller, respErr := s.caller("fulfillrandomness", reqParams, 2)
	if respErr != nil {
		return nil, respErr
	}
	if err := s.ledger.FulfillRandomness(caller, id, value); err != nil {
		return nil, wrapLedgerError(err)
	}
	return true, nil
}

func (s *Server) getAttribute(reqParams params.Params) (any, *rpcapi.Error) {
	id, err := reqParams.Value(0).GetUint64()
	if err != nil {
		return nil, invalidParam(0, err)
	}
	attr, err := s.ledger.AttributeOf(id)
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	return attr, nil
}

func (s *Server) getTokenURI(reqParams params.Params) (any, *rpcapi.Error) {
	id, err := reqParams.Value(0).GetUint64()
	if err != nil {
		return nil, invalidParam(0, err)
	}
	uri, err := s.ledger.TokenURI(id)
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	return uri, nil
}

// setDefaultURI changes the pre-reveal URI: [uri, signature].
func (s *Server) setDefaultURI(reqParams params.Params) (any, *rpcapi.Error) {
	uri, err := reqParams.Value(0).GetStringStrict()
	if err != nil {
		return nil, invalidParam(0, err)
	}
	caller, respErr := s.caller("setdefaulturi", reqParams, 1)
	if respErr != nil {
		return nil, respErr
	}
	if err := s.ledger.SetDefaultURI(caller, uri); err != nil {
		return nil, wrapLedgerError(err)
	}
	return true, nil
}

// setBaseURI changes the revealed URI prefix: [uri, final, signature].
func (s *Server) setBaseURI(reqParams params.Params) (any, *rpcapi.Error) {
	uri, err := reqParams.Value(0).GetStringStrict()
	if err != nil {
		return nil, invalidParam(0, err)
	}
	final, err := reqParams.Value(1).GetBoolean()
	if err != nil {
		return nil, invalidParam(1, err)
	}
	caller, respErr := s.caller("setbaseuri", reqParams, 2)
	if respErr != nil {
		return nil, respErr
	}
	if err := s.ledger.SetBaseURI(caller, uri, final); err != nil {
		return nil, wrapLedgerError(err)
	}
	return true, nil
}

func (s *Server) getOwnerOf(reqParams params.Params) (any, *rpcapi.Error) {
	id, err := reqParams.Value(0).GetUint64()
	if err != nil {
		return nil, invalidParam(0, err)
	}
	owner, err := s.ledger.OwnerOf(id)
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	return owner, nil
}

func (s *Server) getBalance(reqParams params.Params) (any, *rpcapi.Error) {
	owner, err := reqParams.Value(0).GetAddress()
	if err != nil {
		return nil, invalidParam(0, err)
	}
	n, err := s.ledger.BalanceOf(owner)
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	return n, nil
}

func (s *Server) getSupply(_ params.Params) (any, *rpcapi.Error) {
	sup, err := s.ledger.Supply()
	if err != nil {
		return nil, wrapLedgerError(err)
	}
	return result.Supply{TotalMinted: sup.TotalMinted, MaxSupply: sup.MaxSupply}, nil
}
