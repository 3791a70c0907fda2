package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/lobsterdao/mintreveal/pkg/config"
	"github.com/lobsterdao/mintreveal/pkg/core/dao"
	"github.com/lobsterdao/mintreveal/pkg/core/native"
	"github.com/lobsterdao/mintreveal/pkg/core/state"
	"github.com/lobsterdao/mintreveal/pkg/core/storage"
	"go.uber.org/zap"
)

// Claim paths used in logs and metrics.
const (
	pathAllocation = "allocation"
	pathCollection = "collection"
)

// External is a set of collaborators living outside of the ledger. Any of
// them can be nil, operations needing a missing one fail with
// native.ErrNoCollaborator.
type External struct {
	Ownership   native.OwnershipReader
	FeeToken    native.FeeToken
	Coordinator native.Coordinator
}

// Ledger is the claim engine. Every call is serialized and every mutating
// call is applied to the store only if it succeeds. Collaborators are never
// called with the lock held, so they can call back into the Ledger and
// other callers don't wait on them.
type Ledger struct {
	mu sync.Mutex
	// seedInFlight is set while the randomness request is being made.
	seedInFlight bool

	store storage.Store
	dao   *dao.Simple
	cfg   config.Ledger
	log   *zap.Logger

	token  *native.Token
	alloc  *native.Allocation
	colls  *native.Collections
	seed   *native.Seed
	reveal *native.Reveal
}

// NewLedger creates a Ledger over the given store. An empty store is
// initialized from cfg, a non-empty one is checked for compatibility and
// used as is.
func NewLedger(s storage.Store, cfg config.Ledger, ext External, log *zap.Logger) (*Ledger, error) {
	if log == nil {
		return nil, errors.New("empty logger")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ledger configuration: %w", err)
	}
	l := &Ledger{
		store: s,
		dao:   dao.NewSimple(s),
		cfg:   cfg,
		log:   log,
	}
	operator := cfg.OperatorAddress()
	l.token = native.NewToken(operator)
	l.alloc = native.NewAllocation(operator, l.token)
	l.colls = native.NewCollections(l.token, ext.Ownership)
	l.seed = native.NewSeed(operator, cfg.Seed.CoordinatorAddress(), ext.Coordinator, ext.FeeToken)
	l.reveal = native.NewReveal(l.token, l.seed, cfg.AttributeCacheSize)

	if err := l.init(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) init() error {
	ver, err := l.dao.GetVersion()
	if errors.Is(err, storage.ErrKeyNotFound) {
		l.log.Info("no storage version found, initializing ledger",
			zap.Uint64("max supply", l.cfg.MaxSupply),
			zap.Int("collections", len(l.cfg.Collections)))
		return l.genesis()
	}
	if err != nil {
		return fmt.Errorf("failed to get storage version: %w", err)
	}
	if ver != dao.Version {
		return fmt.Errorf("%w: expected %s, got %s", dao.ErrVersionMismatch, dao.Version, ver)
	}
	sup, err := l.token.Supply(l.dao)
	if err != nil {
		return err
	}
	st, err := l.seed.State(l.dao)
	if err != nil {
		return err
	}
	if sup.MaxSupply != l.cfg.MaxSupply {
		l.log.Warn("configured supply differs from the stored one, using stored",
			zap.Uint64("configured", l.cfg.MaxSupply),
			zap.Uint64("stored", sup.MaxSupply))
	}
	totalMinted.Set(float64(sup.TotalMinted))
	updateSeedMetric(st.Status)
	l.log.Info("restoring ledger",
		zap.String("version", ver),
		zap.Uint64("minted", sup.TotalMinted),
		zap.Uint64("max supply", sup.MaxSupply),
		zap.Stringer("seed", st.Status))
	return nil
}

func (l *Ledger) genesis() error {
	d := l.dao.GetWrapped()
	operator := l.cfg.OperatorAddress()
	err := l.token.Initialize(d, l.cfg.MaxSupply, &state.URIs{
		Default: l.cfg.DefaultURI,
		Base:    l.cfg.BaseURI,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token: %w", err)
	}
	if err := l.token.SetMinter(d, operator, native.EngineAddress); err != nil {
		return fmt.Errorf("failed to set minter: %w", err)
	}
	l.alloc.Initialize(d, l.cfg.RootHash())
	quotas := make([]state.Quota, len(l.cfg.Collections))
	for i, c := range l.cfg.Collections {
		quotas[i] = state.Quota{Collection: c.CollectionAddress(), Initial: c.Quota}
	}
	if err := l.colls.Initialize(d, quotas); err != nil {
		return fmt.Errorf("failed to initialize collections: %w", err)
	}
	if err := l.seed.Initialize(d, l.cfg.Seed.FeeAmount(), l.cfg.Seed.KeyHashValue()); err != nil {
		return fmt.Errorf("failed to initialize seed: %w", err)
	}
	d.PutVersion(dao.Version)
	if _, err := d.Persist(); err != nil {
		return err
	}
	if _, err := l.dao.Persist(); err != nil {
		return fmt.Errorf("failed to persist genesis state: %w", err)
	}
	totalMinted.Set(0)
	updateSeedMetric(state.SeedUnrequested)
	return nil
}

// Close flushes the state and closes the underlying store.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.dao.Persist(); err != nil {
		l.log.Error("failed to persist state on close", zap.Error(err))
	}
	return l.store.Close()
}

// apply runs f over a private DAO layer and persists the changes if f
// succeeds.
func (l *Ledger) apply(operation string, f func(d *dao.Simple) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	d := l.dao.GetWrapped()
	if err := f(d); err != nil {
		updateRejectedMetric(operation, err)
		l.log.Debug("call rejected", zap.String("operation", operation), zap.Error(err))
		return err
	}
	if _, err := d.Persist(); err != nil {
		return fmt.Errorf("failed to apply %s: %w", operation, err)
	}
	if _, err := l.dao.Persist(); err != nil {
		return fmt.Errorf("failed to persist %s: %w", operation, err)
	}
	return nil
}

// view runs f over the current state.
func (l *Ledger) view(f func(d *dao.Simple) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return f(l.dao)
}

// Root returns the current allocation root.
func (l *Ledger) Root() (common.Hash, error) {
	var root common.Hash
	err := l.view(func(d *dao.Simple) error {
		var err error
		root, err = l.alloc.Root(d)
		return err
	})
	return root, err
}

// RootLocked tells whether the root can't be changed anymore.
func (l *Ledger) RootLocked() (bool, error) {
	var locked bool
	err := l.view(func(d *dao.Simple) error {
		locked = l.alloc.RootLocked(d)
		return nil
	})
	return locked, err
}

// UpdateRoot replaces the allocation root.
func (l *Ledger) UpdateRoot(caller common.Address, root common.Hash) error {
	err := l.apply("updateRoot", func(d *dao.Simple) error {
		return l.alloc.UpdateRoot(d, caller, root)
	})
	if err == nil {
		l.log.Info("allocation root updated", zap.Stringer("root", root))
	}
	return err
}

// LockRoot freezes the allocation root.
func (l *Ledger) LockRoot(caller common.Address) error {
	err := l.apply("lockRoot", func(d *dao.Simple) error {
		return l.alloc.LockRoot(d, caller)
	})
	if err == nil {
		l.log.Info("allocation root locked")
	}
	return err
}

// VerifyClaim checks the proof of recipient's entitlement against the
// current root.
func (l *Ledger) VerifyClaim(recipient common.Address, maxCount uint64, proof []common.Hash) (bool, error) {
	var ok bool
	err := l.view(func(d *dao.Simple) error {
		var err error
		ok, err = l.alloc.VerifyClaim(d, recipient, maxCount, proof)
		return err
	})
	return ok, err
}

// ClaimedCount returns the number of units recipient has claimed by
// allocation.
func (l *Ledger) ClaimedCount(recipient common.Address) (uint64, error) {
	var n uint64
	err := l.view(func(d *dao.Simple) error {
		var err error
		n, err = l.alloc.ClaimedCount(d, recipient)
		return err
	})
	return n, err
}

// Claim mints requested units to recipient within its allocation.
func (l *Ledger) Claim(recipient common.Address, maxCount, requested uint64, proof []common.Hash) ([]uint64, error) {
	var minted []uint64
	err := l.apply("claim", func(d *dao.Simple) error {
		var err error
		minted, err = l.alloc.Claim(d, recipient, maxCount, requested, proof)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.claimed(pathAllocation, recipient, minted)
	return minted, nil
}

// ClaimByCollection mints one unit to caller for every external token id
// it holds and hasn't used yet. Ownership is looked up before the state is
// locked, the claim itself is checked against the state at the time it's
// applied.
func (l *Ledger) ClaimByCollection(caller, collection common.Address, ids []*uint256.Int) ([]uint64, error) {
	owners := l.colls.FetchOwners(collection, ids)

	var minted []uint64
	err := l.apply("claimByCollection", func(d *dao.Simple) error {
		var err error
		minted, err = l.colls.ClaimWithOwners(d, caller, collection, ids, owners)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.claimed(pathCollection, caller, minted, zap.Stringer("collection", collection))
	return minted, nil
}

func (l *Ledger) claimed(path string, to common.Address, minted []uint64, fields ...zap.Field) {
	total := minted[len(minted)-1] + 1
	updateClaimMetrics(path, len(minted), total)
	l.log.Info("units claimed", append([]zap.Field{
		zap.String("path", path),
		zap.Stringer("to", to),
		zap.Int("count", len(minted)),
		zap.Uint64("first", minted[0]),
	}, fields...)...)
}

// RemainingQuota returns the number of claims left for the collection.
func (l *Ledger) RemainingQuota(collection common.Address) (uint64, error) {
	var n uint64
	err := l.view(func(d *dao.Simple) error {
		var err error
		n, err = l.colls.RemainingQuota(d, collection)
		return err
	})
	return n, err
}

// Collections returns the quotas of all configured collections.
func (l *Ledger) Collections() ([]state.Quota, error) {
	var res []state.Quota
	err := l.view(func(d *dao.Simple) error {
		var err error
		res, err = l.colls.Collections(d)
		return err
	})
	return res, err
}

// IsClaimedByToken tells whether the external token was already used for
// a claim.
func (l *Ledger) IsClaimedByToken(collection common.Address, id *uint256.Int) (bool, error) {
	var claimed bool
	err := l.view(func(d *dao.Simple) error {
		claimed = l.colls.IsClaimed(d, collection, id)
		return nil
	})
	return claimed, err
}

// SeedState returns the randomness request state.
func (l *Ledger) SeedState() (*state.Seed, error) {
	var st *state.Seed
	err := l.view(func(d *dao.Simple) error {
		var err error
		st, err = l.seed.State(d)
		return err
	})
	return st, err
}

// SetSeedConfig changes the randomness fee and key hash before the request.
func (l *Ledger) SetSeedConfig(caller common.Address, fee *uint256.Int, keyHash common.Hash) error {
	err := l.apply("setSeedConfig", func(d *dao.Simple) error {
		return l.seed.SetConfig(d, caller, fee, keyHash)
	})
	if err == nil {
		l.log.Info("seed configuration changed", zap.String("fee", fee.Dec()), zap.Stringer("key hash", keyHash))
	}
	return err
}

// RequestSeed makes the randomness request. The state is checked and the
// request is marked as in flight under the lock, the fee token and the
// coordinator are called without it and the result is stored afterwards.
// Another request made meanwhile fails with native.ErrSeedRequested.
func (l *Ledger) RequestSeed(caller common.Address) (common.Hash, error) {
	var st *state.Seed
	err := l.apply("requestSeed", func(d *dao.Simple) error {
		if l.seedInFlight {
			return fmt.Errorf("%w: request in progress", native.ErrSeedRequested)
		}
		var err error
		st, err = l.seed.PrepareRequest(d, caller)
		if err == nil {
			l.seedInFlight = true
		}
		return err
	})
	if err != nil {
		return common.Hash{}, err
	}

	id, callErr := l.callCoordinator(st)

	err = l.apply("requestSeed", func(d *dao.Simple) error {
		l.seedInFlight = false
		if callErr != nil {
			return callErr
		}
		return l.seed.CompleteRequest(d, id)
	})
	if err != nil {
		return common.Hash{}, err
	}
	updateSeedMetric(state.SeedRequested)
	l.log.Info("randomness requested", zap.Stringer("request", id))
	return id, nil
}

func (l *Ledger) callCoordinator(st *state.Seed) (common.Hash, error) {
	if err := l.seed.CheckFunding(st); err != nil {
		return common.Hash{}, err
	}
	return l.seed.Call(st)
}

// FulfillRandomness accepts the coordinator's answer to the request.
func (l *Ledger) FulfillRandomness(caller common.Address, requestID common.Hash, value *uint256.Int) error {
	err := l.apply("fulfillRandomness", func(d *dao.Simple) error {
		return l.seed.Fulfill(d, caller, requestID, value)
	})
	if err != nil {
		return err
	}
	updateSeedMetric(state.SeedFulfilled)
	l.log.Info("randomness fulfilled", zap.Stringer("request", requestID))
	return nil
}

// AttributeOf returns the attribute id of the unit.
func (l *Ledger) AttributeOf(unitID uint64) (uint64, error) {
	var attr uint64
	err := l.view(func(d *dao.Simple) error {
		var err error
		attr, err = l.reveal.AttributeOf(d, unitID)
		return err
	})
	return attr, err
}

// TokenURI returns the metadata URI of the minted unit.
func (l *Ledger) TokenURI(unitID uint64) (string, error) {
	var uri string
	err := l.view(func(d *dao.Simple) error {
		var err error
		uri, err = l.reveal.TokenURI(d, unitID)
		return err
	})
	return uri, err
}

// SetDefaultURI changes the URI shown before the reveal.
func (l *Ledger) SetDefaultURI(caller common.Address, uri string) error {
	err := l.apply("setDefaultURI", func(d *dao.Simple) error {
		return l.token.SetDefaultURI(d, caller, uri)
	})
	if err == nil {
		l.log.Info("default URI changed", zap.String("uri", uri))
	}
	return err
}

// SetBaseURI changes the prefix of revealed unit URIs, final makes it
// permanent.
func (l *Ledger) SetBaseURI(caller common.Address, uri string, final bool) error {
	err := l.apply("setBaseURI", func(d *dao.Simple) error {
		return l.token.SetBaseURI(d, caller, uri, final)
	})
	if err == nil {
		l.log.Info("base URI changed", zap.String("uri", uri), zap.Bool("final", final))
	}
	return err
}

// OwnerOf returns the holder of the unit.
func (l *Ledger) OwnerOf(unitID uint64) (common.Address, error) {
	var owner common.Address
	err := l.view(func(d *dao.Simple) error {
		var err error
		owner, err = l.token.OwnerOf(d, unitID)
		return err
	})
	return owner, err
}

// BalanceOf returns the number of units owner holds.
func (l *Ledger) BalanceOf(owner common.Address) (uint64, error) {
	var n uint64
	err := l.view(func(d *dao.Simple) error {
		var err error
		n, err = l.token.BalanceOf(d, owner)
		return err
	})
	return n, err
}

// Supply returns the minted and maximum number of units.
func (l *Ledger) Supply() (*state.Supply, error) {
	var s *state.Supply
	err := l.view(func(d *dao.Simple) error {
		var err error
		s, err = l.token.Supply(d)
		return err
	})
	return s, err
}

// Operator returns the operator account.
func (l *Ledger) Operator() common.Address {
	return l.cfg.OperatorAddress()
}

// URIs returns the metadata URIs.
func (l *Ledger) URIs() (*state.URIs, error) {
	var u *state.URIs
	err := l.view(func(d *dao.Simple) error {
		var err error
		u, err = l.token.URIs(d)
		return err
	})
	return u, err
}
