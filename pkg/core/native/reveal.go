package native

import (
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru"
	"github.com/lobsterdao/mintreveal/pkg/core/dao"
	"github.com/lobsterdao/mintreveal/pkg/core/permutation"
	"github.com/lobsterdao/mintreveal/pkg/core/state"
)

// DefaultAttributeCacheSize is the number of resolved attributes kept in
// memory by default.
const DefaultAttributeCacheSize = 4096

// Reveal maps unit ids to attribute ids using the seed permutation.
type Reveal struct {
	Token *Token
	Seed  *Seed

	cache *lru.Cache
}

type attributeKey struct {
	seed [32]byte
	id   uint64
}

// NewReveal creates a Reveal keeping up to cacheSize resolved attributes.
func NewReveal(token *Token, seed *Seed, cacheSize int) *Reveal {
	if cacheSize <= 0 {
		cacheSize = DefaultAttributeCacheSize
	}
	cache, _ := lru.New(cacheSize) // Never errors for positive size.
	return &Reveal{
		Token: token,
		Seed:  seed,
		cache: cache,
	}
}

// AttributeOf returns the attribute id of the unit. Any id below the supply
// cap can be asked about, minted or not.
func (r *Reveal) AttributeOf(d *dao.Simple, unitID uint64) (uint64, error) {
	st, err := r.Seed.State(d)
	if err != nil {
		return 0, err
	}
	if st.Status != state.SeedFulfilled {
		return 0, ErrNotRevealed
	}
	maxSupply, err := r.Token.MaxSupply(d)
	if err != nil {
		return 0, err
	}
	if unitID >= maxSupply {
		return 0, fmt.Errorf("%w: %d >= %d", ErrUnitOutOfRange, unitID, maxSupply)
	}
	key := attributeKey{seed: st.Value.Bytes32(), id: unitID}
	if v, ok := r.cache.Get(key); ok {
		return v.(uint64), nil
	}
	v, err := permutation.Resolve(st.Value, maxSupply, unitID)
	if err != nil {
		return 0, err
	}
	r.cache.Add(key, v)
	return v, nil
}

// TokenURI returns the metadata URI of the minted unit: the default one
// before the reveal (or while the base URI is not set) and the base URI
// followed by the attribute id after it.
func (r *Reveal) TokenURI(d *dao.Simple, unitID uint64) (string, error) {
	if _, err := r.Token.OwnerOf(d, unitID); err != nil {
		return "", err
	}
	uris, err := r.Token.URIs(d)
	if err != nil {
		return "", err
	}
	st, err := r.Seed.State(d)
	if err != nil {
		return "", err
	}
	if st.Status != state.SeedFulfilled || uris.Base == "" {
		return uris.Default, nil
	}
	attr, err := r.AttributeOf(d, unitID)
	if err != nil {
		return "", err
	}
	return uris.Base + strconv.FormatUint(attr, 10), nil
}
