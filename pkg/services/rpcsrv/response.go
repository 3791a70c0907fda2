package rpcsrv

import (
	"github.com/lobsterdao/mintreveal/pkg/rpcapi"
)

type (
	// abstractResult is an interface which represents either single JSON-RPC 2.0 response
	// or batch JSON-RPC 2.0 response.
	abstractResult interface {
		RunForErrors(f func(jsonErr *rpcapi.Error))
	}

	// abstract represents abstract JSON-RPC 2.0 response.
	abstract struct {
		rpcapi.Header
		Error  *rpcapi.Error `json:"error,omitempty"`
		Result any           `json:"result,omitempty"`
	}

	// abstractBatch represents abstract JSON-RPC 2.0 batch-response.
	abstractBatch []abstract
)

// RunForErrors implements abstractResult interface.
func (a abstract) RunForErrors(f func(jsonErr *rpcapi.Error)) {
	if a.Error != nil {
		f(a.Error)
	}
}

// RunForErrors implements abstractResult interface.
func (ab abstractBatch) RunForErrors(f func(jsonErr *rpcapi.Error)) {
	for _, a := range ab {
		a.RunForErrors(f)
	}
}
