package server

import (
	"encoding/json"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lobsterdao/mintreveal/pkg/core"
	"github.com/lobsterdao/mintreveal/pkg/core/state"
	"github.com/lobsterdao/mintreveal/pkg/rpcapi/result"
)

// dump is the human-readable ledger state.
type dump struct {
	Root    result.Root      `json:"root"`
	Supply  result.Supply    `json:"supply"`
	Quotas  []result.Quota   `json:"quotas"`
	Seed    result.SeedState `json:"seed"`
	Owners  []common.Address `json:"owners"`
	BaseURI string           `json:"baseuri"`
	Default string           `json:"defaulturi"`
}

func newDump(l *core.Ledger) (*dump, error) {
	var (
		d   dump
		err error
	)
	d.Root.Root, err = l.Root()
	if err != nil {
		return nil, err
	}
	d.Root.Locked, err = l.RootLocked()
	if err != nil {
		return nil, err
	}
	sup, err := l.Supply()
	if err != nil {
		return nil, err
	}
	d.Supply = result.Supply{TotalMinted: sup.TotalMinted, MaxSupply: sup.MaxSupply}
	quotas, err := l.Collections()
	if err != nil {
		return nil, err
	}
	d.Quotas = make([]result.Quota, len(quotas))
	for i, q := range quotas {
		d.Quotas[i] = result.Quota{Collection: q.Collection, Initial: q.Initial, Remaining: q.Remaining}
	}
	st, err := l.SeedState()
	if err != nil {
		return nil, err
	}
	d.Seed = result.SeedState{
		Status:    st.Status.String(),
		RequestID: st.RequestID,
		Fee:       st.Fee.Dec(),
		KeyHash:   st.KeyHash,
	}
	if st.Status == state.SeedFulfilled {
		d.Seed.Value = st.Value.Dec()
	}
	d.Owners = make([]common.Address, sup.TotalMinted)
	for i := range d.Owners {
		d.Owners[i], err = l.OwnerOf(uint64(i))
		if err != nil {
			return nil, err
		}
	}
	uris, err := l.URIs()
	if err != nil {
		return nil, err
	}
	d.BaseURI, d.Default = uris.Base, uris.Default
	return &d, nil
}

func (d *dump) write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(d)
}
