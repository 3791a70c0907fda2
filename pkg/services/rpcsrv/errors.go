package rpcsrv

import (
	"errors"
	"net/http"

	"github.com/lobsterdao/mintreveal/pkg/core/native"
	"github.com/lobsterdao/mintreveal/pkg/rpcapi"
)

var errorCodes = []struct {
	err     error
	code    int64
	message string
}{
	{native.ErrInvalidProof, rpcapi.ErrInvalidProofCode, "Invalid proof"},
	{native.ErrQuotaExceeded, rpcapi.ErrQuotaExceededCode, "Quota exceeded"},
	{native.ErrSupplyExceeded, rpcapi.ErrSupplyExceededCode, "Supply exceeded"},
	{native.ErrAlreadyClaimedByToken, rpcapi.ErrAlreadyClaimedCode, "Already claimed"},
	{native.ErrNotOwner, rpcapi.ErrNotOwnerCode, "Not owner"},
	{native.ErrEmptyInput, rpcapi.ErrEmptyInputCode, "Empty input"},
	{native.ErrAlreadyFulfilled, rpcapi.ErrAlreadyFulfilledCode, "Already fulfilled"},
	{native.ErrInsufficientFunding, rpcapi.ErrInsufficientFundingCode, "Insufficient funding"},
	{native.ErrUnauthorized, rpcapi.ErrUnauthorizedCode, "Unauthorized"},
	{native.ErrRootLocked, rpcapi.ErrRootLockedCode, "Root locked"},
	{native.ErrSeedRequested, rpcapi.ErrSeedRequestedCode, "Seed requested"},
	{native.ErrUnknownRequest, rpcapi.ErrUnknownRequestCode, "Unknown request"},
	{native.ErrSeedConfigFrozen, rpcapi.ErrSeedConfigFrozenCode, "Seed config frozen"},
	{native.ErrNotRevealed, rpcapi.ErrNotRevealedCode, "Not revealed"},
	{native.ErrUnitOutOfRange, rpcapi.ErrUnitOutOfRangeCode, "Unit out of range"},
	{native.ErrUnknownUnit, rpcapi.ErrUnknownUnitCode, "Unknown unit"},
	{native.ErrBaseURIFinal, rpcapi.ErrBaseURIFinalCode, "Base URI final"},
	{native.ErrNoCollaborator, rpcapi.ErrNoCollaboratorCode, "No collaborator"},
}

// errInvalidSignature is returned when the caller can't be recovered from
// the request signature.
var errInvalidSignature = rpcapi.NewError(rpcapi.ErrInvalidSignatureCode, "Invalid signature", "")

// wrapLedgerError converts a ledger error into RPC one.
func wrapLedgerError(err error) *rpcapi.Error {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return rpcapi.NewError(c.code, c.message, err.Error())
		}
	}
	return rpcapi.NewInternalServerError(err.Error())
}

func getHTTPCodeForError(respErr *rpcapi.Error) int {
	var httpCode int
	switch respErr.Code {
	case rpcapi.BadRequestCode, rpcapi.InvalidRequestCode, rpcapi.InvalidParamsCode:
		httpCode = http.StatusBadRequest
	case rpcapi.MethodNotFoundCode:
		httpCode = http.StatusMethodNotAllowed
	case rpcapi.InternalServerErrorCode:
		httpCode = http.StatusInternalServerError
	default:
		httpCode = http.StatusOK
	}
	return httpCode
}
