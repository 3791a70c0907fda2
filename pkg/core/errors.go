package core

import (
	"errors"

	"github.com/lobsterdao/mintreveal/pkg/core/dao"
	"github.com/lobsterdao/mintreveal/pkg/core/native"
	"github.com/lobsterdao/mintreveal/pkg/core/storage"
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{native.ErrInvalidProof, "invalid_proof"},
	{native.ErrQuotaExceeded, "quota_exceeded"},
	{native.ErrSupplyExceeded, "supply_exceeded"},
	{native.ErrAlreadyClaimedByToken, "already_claimed"},
	{native.ErrNotOwner, "not_owner"},
	{native.ErrEmptyInput, "empty_input"},
	{native.ErrAlreadyFulfilled, "already_fulfilled"},
	{native.ErrInsufficientFunding, "insufficient_funding"},
	{native.ErrUnauthorized, "unauthorized"},
	{native.ErrRootLocked, "root_locked"},
	{native.ErrSeedRequested, "seed_requested"},
	{native.ErrUnknownRequest, "unknown_request"},
	{native.ErrSeedConfigFrozen, "seed_config_frozen"},
	{native.ErrNotRevealed, "not_revealed"},
	{native.ErrUnitOutOfRange, "unit_out_of_range"},
	{native.ErrUnknownUnit, "unknown_unit"},
	{native.ErrNotMinter, "not_minter"},
	{native.ErrMinterAlreadySet, "minter_already_set"},
	{native.ErrBaseURIFinal, "base_uri_final"},
	{native.ErrNoCollaborator, "no_collaborator"},
	{dao.ErrVersionMismatch, "version_mismatch"},
	{storage.ErrKeyNotFound, "not_found"},
}

// ErrorKind returns a short label for the known error err wraps, "other"
// if there is none.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "other"
}
