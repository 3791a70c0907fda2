package rpcsrv

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lobsterdao/mintreveal/pkg/services/rpcsrv/params"
)

// SignedMessage returns the text signed by the caller of a state-changing
// method: the method name followed by the canonical form of its parameters,
// all separated by colons.
func SignedMessage(method string, canonicalParams string) []byte {
	return []byte(method + ":" + canonicalParams)
}

// recoverCaller returns the account that signed the first n parameters of
// the call, the signature is expected to be the n-th parameter (zero-based).
func recoverCaller(method string, reqParams params.Params, n int) (common.Address, error) {
	canonical, err := reqParams.Canonical(n)
	if err != nil {
		return common.Address{}, err
	}
	sig, err := reqParams.Value(n).GetBytesHex()
	if err != nil {
		return common.Address{}, fmt.Errorf("bad signature: %w", err)
	}
	return recoverSigner(SignedMessage(method, canonical), sig)
}

// recoverSigner returns the account that made an EIP-191 personal signature
// of msg.
func recoverSigner(msg []byte, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	s := make([]byte, len(sig))
	copy(s, sig)
	if s[crypto.RecoveryIDOffset] >= 27 {
		s[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash(msg), s)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// SignCall produces the signature recoverCaller expects, it's used by
// clients holding the key.
func SignCall(method string, canonicalParams string, sign func(hash []byte) ([]byte, error)) ([]byte, error) {
	sig, err := sign(accounts.TextHash(SignedMessage(method, canonicalParams)))
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
